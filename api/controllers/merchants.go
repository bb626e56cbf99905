package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nilecommerce/admin-service/api/responses"
	"github.com/nilecommerce/admin-service/api/validators"
	"github.com/nilecommerce/admin-service/internal/merchants"
	pkgerrors "github.com/nilecommerce/admin-service/pkg/errors"
	"github.com/nilecommerce/admin-service/pkg/logger"
)

// ListStores returns the joined store view with totals and age stats.
func ListStores(svc merchants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := storeFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListStores(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, "stores retrieved", list.Stores, list.Total, list.Stats)
	}
}

// GetStore returns one store with its joined totals.
func GetStore(svc merchants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID := chi.URLParam(r, "storeId")
		if storeID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store id is required"))
			return
		}

		store, err := svc.GetStoreByID(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "store retrieved", store)
	}
}

// DeleteStore removes a store through the upstream merchant service.
func DeleteStore(svc merchants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID := chi.URLParam(r, "storeId")
		if storeID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store id is required"))
			return
		}

		if err := svc.DeleteStore(r.Context(), storeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "store deleted", nil)
	}
}

// MerchantStats passes the upstream store statistics through.
func MerchantStats(svc merchants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.StoreStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "store stats retrieved", stats)
	}
}

func storeFiltersFromQuery(r *http.Request) (merchants.StoreFilters, error) {
	filters := merchants.StoreFilters{
		Name:  strings.TrimSpace(r.URL.Query().Get("name")),
		Email: strings.TrimSpace(r.URL.Query().Get("email")),
	}

	var err error
	if filters.IsActive, err = validators.ParseQueryBoolPtr(r, "isActive"); err != nil {
		return filters, err
	}
	if filters.IsOld, err = validators.ParseQueryBoolPtr(r, "isOld"); err != nil {
		return filters, err
	}
	if filters.Limit, err = validators.ParseQueryInt(r, "limit", 0, 0, 500); err != nil {
		return filters, err
	}
	if filters.Offset, err = validators.ParseQueryInt(r, "offset", 0, 0, 1_000_000); err != nil {
		return filters, err
	}
	if filters.Page, err = validators.ParseQueryInt(r, "page", 0, 0, 1_000_000); err != nil {
		return filters, err
	}
	return filters, nil
}
