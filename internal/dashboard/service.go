package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nilecommerce/admin-service/pkg/db/models"
	pkgerrors "github.com/nilecommerce/admin-service/pkg/errors"
	"github.com/nilecommerce/admin-service/pkg/timebucket"
)

const topReasonCount = 5

// Service defines the dashboard aggregation operations. The HTTP controllers
// and the queue consumer both call the same implementation.
type Service interface {
	RecordMetric(ctx context.Context, metricType string, at time.Time, delta float64) error
	RecordFailureReason(ctx context.Context, reason string, at time.Time, delta float64) error
	WeeklyOrderSummary(ctx context.Context, now time.Time) (*WeeklySummary, error)
	MonthlyOrderTrend(ctx context.Context, year int) ([]MonthTrend, error)
	FailureBreakdown(ctx context.Context, year int) ([]ReasonSlice, error)
}

type statRepository interface {
	IncrementStat(ctx context.Context, metricType string, bucket timebucket.Bucket, delta float64) error
	IncrementReason(ctx context.Context, reason string, bucket timebucket.Bucket, delta float64) error
	StatsForBucket(ctx context.Context, metricType string, bucket timebucket.Bucket) ([]models.DashboardStat, error)
	ReasonsForBucket(ctx context.Context, bucket timebucket.Bucket) ([]models.FailedOrderReason, error)
	MonthlySums(ctx context.Context, metricType string, year int) ([]MonthSum, error)
	TopReasonSums(ctx context.Context, year, limit int) ([]ReasonSum, error)
	TotalReasonSum(ctx context.Context, year int) (float64, error)
}

// StoreCounter reports how many upstream stores are currently active.
type StoreCounter interface {
	CountActiveStores(ctx context.Context) (int, error)
}

type service struct {
	repo   statRepository
	stores StoreCounter
}

// NewService constructs the aggregator. The store counter may be nil when no
// merchant upstream is configured; the summary then reports zero.
func NewService(repo statRepository, stores StoreCounter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stat repository is required")
	}
	return &service{repo: repo, stores: stores}, nil
}

func (s *service) RecordMetric(ctx context.Context, metricType string, at time.Time, delta float64) error {
	metricType = strings.TrimSpace(metricType)
	if !models.ValidMetricType(metricType) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown metric type %q", metricType))
	}
	if at.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "createdAt is required")
	}
	bucket := timebucket.Compute(at)
	if err := s.repo.IncrementStat(ctx, metricType, bucket, delta); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment dashboard stat")
	}
	return nil
}

func (s *service) RecordFailureReason(ctx context.Context, reason string, at time.Time, delta float64) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}
	if at.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "createdAt is required")
	}
	bucket := timebucket.Compute(at)
	if err := s.repo.IncrementReason(ctx, reason, bucket, delta); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment failed order reason")
	}
	return nil
}

func (s *service) WeeklyOrderSummary(ctx context.Context, now time.Time) (*WeeklySummary, error) {
	current, err := s.snapshotWeek(ctx, timebucket.Compute(now))
	if err != nil {
		return nil, err
	}
	previous, err := s.snapshotWeek(ctx, timebucket.Compute(now.AddDate(0, 0, -7)))
	if err != nil {
		return nil, err
	}

	activeStores := 0
	if s.stores != nil {
		activeStores, err = s.stores.CountActiveStores(ctx)
		if err != nil {
			return nil, err
		}
	}

	return &WeeklySummary{
		CurrentWeek:  *current,
		PreviousWeek: *previous,
		ActiveStores: activeStores,
	}, nil
}

func (s *service) snapshotWeek(ctx context.Context, bucket timebucket.Bucket) (*WeekSnapshot, error) {
	stats, err := s.repo.StatsForBucket(ctx, models.MetricOrders, bucket)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load weekly order stats")
	}
	reasons, err := s.repo.ReasonsForBucket(ctx, bucket)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load weekly failure reasons")
	}

	snapshot := &WeekSnapshot{
		Bucket:        bucket,
		Orders:        make([]StatDTO, 0, len(stats)),
		FailedReasons: make([]ReasonDTO, 0, len(reasons)),
	}
	for _, stat := range stats {
		snapshot.Orders = append(snapshot.Orders, StatDTO{
			MetricType: stat.MetricType,
			Year:       stat.Year,
			Month:      stat.Month,
			Week:       stat.Week,
			Value:      stat.Value,
		})
	}
	for _, reason := range reasons {
		snapshot.FailedReasons = append(snapshot.FailedReasons, ReasonDTO{
			Reason: reason.Reason,
			Year:   reason.Year,
			Month:  reason.Month,
			Week:   reason.Week,
			Value:  reason.Value,
		})
	}
	return snapshot, nil
}

func (s *service) MonthlyOrderTrend(ctx context.Context, year int) ([]MonthTrend, error) {
	sums, err := s.repo.MonthlySums(ctx, models.MetricOrders, year)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load monthly order trend")
	}
	trend := make([]MonthTrend, 0, len(sums))
	for _, sum := range sums {
		trend = append(trend, MonthTrend{Month: sum.Month, Value: sum.Total})
	}
	return trend, nil
}

// FailureBreakdown returns the top reasons plus an "Others" remainder. The
// remainder is omitted entirely when it is not positive.
func (s *service) FailureBreakdown(ctx context.Context, year int) ([]ReasonSlice, error) {
	top, err := s.repo.TopReasonSums(ctx, year, topReasonCount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load top failure reasons")
	}
	total, err := s.repo.TotalReasonSum(ctx, year)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load failure reason total")
	}

	slices := make([]ReasonSlice, 0, len(top)+1)
	topSum := 0.0
	for _, sum := range top {
		slices = append(slices, ReasonSlice{Reason: sum.Reason, Value: sum.Total})
		topSum += sum.Total
	}
	if others := total - topSum; others > 0 {
		slices = append(slices, ReasonSlice{Reason: "Others", Value: others})
	}
	return slices, nil
}
