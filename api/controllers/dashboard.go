package controllers

import (
	"net/http"
	"time"

	"github.com/nilecommerce/admin-service/api/responses"
	"github.com/nilecommerce/admin-service/api/validators"
	"github.com/nilecommerce/admin-service/internal/dashboard"
	"github.com/nilecommerce/admin-service/pkg/logger"
)

// RecordDashboardStat ingests a counter delta for a time bucket.
func RecordDashboardStat(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dashboard.RecordStatRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		value := float64(1)
		if req.Value != nil {
			value = *req.Value
		}

		if err := svc.RecordMetric(r.Context(), req.MetricType, req.CreatedAt, value); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "stat recorded", nil)
	}
}

// RecordFailedOrderReason ingests a failure-reason delta for a time bucket.
func RecordFailedOrderReason(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dashboard.RecordReasonRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		value := float64(1)
		if req.Value != nil {
			value = *req.Value
		}

		if err := svc.RecordFailureReason(r.Context(), req.Reason, req.CreatedAt, value); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "failure reason recorded", nil)
	}
}

// WeeklySummary returns the current and previous ISO week snapshots.
func WeeklySummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.WeeklyOrderSummary(r.Context(), time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "weekly summary retrieved", summary)
	}
}

// MonthlyTrend returns per-month order volume for a year.
func MonthlyTrend(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := validators.ParseQueryInt(r, "year", time.Now().UTC().Year(), 2000, 2200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trend, err := svc.MonthlyOrderTrend(r.Context(), year)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "monthly trend retrieved", trend)
	}
}

// FailureBreakdown returns the top failure reasons plus an Others slice.
func FailureBreakdown(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := validators.ParseQueryInt(r, "year", time.Now().UTC().Year(), 2000, 2200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		breakdown, err := svc.FailureBreakdown(r.Context(), year)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "failure breakdown retrieved", breakdown)
	}
}
