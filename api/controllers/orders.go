package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nilecommerce/admin-service/api/responses"
	"github.com/nilecommerce/admin-service/api/validators"
	"github.com/nilecommerce/admin-service/internal/orders"
	pkgerrors "github.com/nilecommerce/admin-service/pkg/errors"
	"github.com/nilecommerce/admin-service/pkg/logger"
)

// ListOrders returns the normalized order listing with outcome stats.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := orderFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListOrders(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, "orders retrieved", list.Orders, list.Total, list.Stats)
	}
}

// OrderStatsSummary returns outcome counts over the full upstream order set.
func OrderStatsSummary(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.OrderStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "order stats retrieved", stats)
	}
}

// GetOrder returns one normalized order.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderId")
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		order, err := svc.GetOrderByID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "order retrieved", order)
	}
}

// MerchantOrders lists one merchant's orders with outcome stats.
func MerchantOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := chi.URLParam(r, "merchantId")
		if merchantID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "merchant id is required"))
			return
		}

		filters := orders.MerchantOrderFilters{
			Status:    strings.TrimSpace(r.URL.Query().Get("status")),
			StartDate: strings.TrimSpace(r.URL.Query().Get("startDate")),
			EndDate:   strings.TrimSpace(r.URL.Query().Get("endDate")),
		}
		var err error
		if filters.Limit, err = validators.ParseQueryInt(r, "limit", 0, 0, 500); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.MerchantOrders(r.Context(), merchantID, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, "merchant orders retrieved", list.Orders, list.Total, list.Stats)
	}
}

// CreateOrder forwards a new order to the upstream order service.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orders.CreateOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, "order created", order)
	}
}

// UpdateOrderStatus changes an order's upstream status.
func UpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderId")
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		var req orders.UpdateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateOrderStatus(r.Context(), orderID, req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "order status updated", order)
	}
}

// CancelOrder cancels an order through the upstream order service.
func CancelOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := chi.URLParam(r, "orderId")
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		if err := svc.CancelOrder(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "order cancelled", nil)
	}
}

func orderFiltersFromQuery(r *http.Request) (orders.OrderFilters, error) {
	filters := orders.OrderFilters{
		Status:     strings.TrimSpace(r.URL.Query().Get("status")),
		StartDate:  strings.TrimSpace(r.URL.Query().Get("startDate")),
		EndDate:    strings.TrimSpace(r.URL.Query().Get("endDate")),
		StoreName:  strings.TrimSpace(r.URL.Query().Get("storeName")),
		StoreEmail: strings.TrimSpace(r.URL.Query().Get("storeEmail")),
		MerchantID: strings.TrimSpace(r.URL.Query().Get("merchantId")),
	}

	var err error
	if filters.Limit, err = validators.ParseQueryInt(r, "limit", 0, 0, 500); err != nil {
		return filters, err
	}
	if filters.Offset, err = validators.ParseQueryInt(r, "offset", 0, 0, 1_000_000); err != nil {
		return filters, err
	}
	return filters, nil
}
