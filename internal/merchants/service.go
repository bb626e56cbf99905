package merchants

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/nilecommerce/admin-service/pkg/errors"
	"github.com/nilecommerce/admin-service/pkg/logger"
)

const oldStoreAge = 365 * 24 * time.Hour

// Service aggregates the upstream merchant and order services into the
// admin-facing store views.
type Service interface {
	ListStores(ctx context.Context, filters StoreFilters) (*StoreList, error)
	GetStoreByID(ctx context.Context, storeID string) (*Store, error)
	DeleteStore(ctx context.Context, storeID string) error
	StoreStats(ctx context.Context) (*StoreStats, error)
	CountActiveStores(ctx context.Context) (int, error)
}

type upstreamClient interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Delete(ctx context.Context, path string, out any) error
}

type service struct {
	merchants  upstreamClient
	orders     upstreamClient
	paidStatus string
	logger     *logger.Logger
}

// NewService wires the two upstream clients into the aggregation service.
// paidStatus is the payment status that counts toward a store's sales total.
func NewService(merchants, orders upstreamClient, paidStatus string, logg *logger.Logger) (Service, error) {
	if merchants == nil {
		return nil, fmt.Errorf("merchant upstream client is required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order upstream client is required")
	}
	if paidStatus == "" {
		return nil, fmt.Errorf("paid payment status is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{merchants: merchants, orders: orders, paidStatus: paidStatus, logger: logg}, nil
}

func (s *service) ListStores(ctx context.Context, filters StoreFilters) (*StoreList, error) {
	query := url.Values{}
	if filters.Name != "" {
		query.Set("name", filters.Name)
	}
	if filters.Email != "" {
		query.Set("email", filters.Email)
	}
	if filters.IsActive != nil {
		query.Set("isActive", strconv.FormatBool(*filters.IsActive))
	}
	if filters.Limit > 0 {
		query.Set("limit", strconv.Itoa(filters.Limit))
	}
	if filters.Offset > 0 {
		query.Set("offset", strconv.Itoa(filters.Offset))
	}
	if filters.Page > 0 {
		query.Set("page", strconv.Itoa(filters.Page))
	}

	var rawStores []upstreamStore
	if err := s.merchants.Get(ctx, "/all-stores", query, &rawStores); err != nil {
		return nil, err
	}

	var rawOrders []upstreamOrder
	if err := s.orders.Get(ctx, "/all-orders", nil, &rawOrders); err != nil {
		return nil, err
	}

	salesByStore, countByStore := joinOrders(ctx, s.logger, s.paidStatus, rawOrders)

	now := time.Now().UTC()
	stores := make([]Store, 0, len(rawStores))
	for _, raw := range rawStores {
		store, err := s.projectStore(ctx, raw)
		if err != nil {
			return nil, err
		}
		store.TotalSales = salesByStore[raw.ID].StringFixed(2)
		store.TotalOrders = countByStore[raw.ID]

		if filters.IsOld != nil && isOldStore(store.CreatedAt, now) != *filters.IsOld {
			continue
		}
		stores = append(stores, *store)
	}

	return &StoreList{
		Stores: stores,
		Total:  len(rawStores),
		Stats:  calculateStats(stores, now),
	}, nil
}

func (s *service) GetStoreByID(ctx context.Context, storeID string) (*Store, error) {
	var raw upstreamStore
	if err := s.merchants.Get(ctx, "/stores/"+storeID, nil, &raw); err != nil {
		return nil, err
	}
	if raw.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	return s.projectStore(ctx, raw)
}

func (s *service) DeleteStore(ctx context.Context, storeID string) error {
	return s.merchants.Delete(ctx, "/stores/"+storeID, nil)
}

func (s *service) StoreStats(ctx context.Context) (*StoreStats, error) {
	var stats StoreStats
	if err := s.merchants.Get(ctx, "/stores/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// CountActiveStores feeds the dashboard's weekly summary.
func (s *service) CountActiveStores(ctx context.Context) (int, error) {
	query := url.Values{"isActive": {"true"}}
	var rawStores []upstreamStore
	if err := s.merchants.Get(ctx, "/all-stores", query, &rawStores); err != nil {
		return 0, err
	}
	return len(rawStores), nil
}

func (s *service) projectStore(ctx context.Context, raw upstreamStore) (*Store, error) {
	createdAt, err := time.Parse(time.RFC3339, raw.CreatedAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err,
			fmt.Sprintf("store %s has malformed createdAt", raw.ID))
	}

	return &Store{
		ID:                raw.ID,
		Name:              raw.Name,
		Email:             raw.Email,
		Logo:              raw.Logo,
		StoreBaseCurrency: raw.StoreBaseCurrency,
		Banner:            raw.Banner,
		Address:           raw.Address,
		Phone:             raw.Phone,
		Category:          raw.Category,
		Website:           raw.Website,
		About:             raw.About,
		Country:           raw.Country,
		State:             raw.State,
		City:              raw.City,
		Status:            raw.Status,
		Whitelabel:        raw.Whitelabel,
		Facebook:          raw.Facebook,
		WhatsappLink:      raw.WhatsappLink,
		WhatsappPhone:     raw.WhatsappPhone,
		Instagram:         raw.Instagram,
		Twitter:           raw.Twitter,
		Linkedin:          raw.Linkedin,
		OwnerID:           raw.OwnerID,
		StoreURL:          raw.StoreURL,
		IsActive:          raw.IsActive,
		CreatedAt:         createdAt.UTC(),
	}, nil
}

// joinOrders folds the raw order list into per-store sales and order counts.
// Sales only include orders whose payment settled.
func joinOrders(ctx context.Context, logg *logger.Logger, paidStatus string, orders []upstreamOrder) (map[string]decimal.Decimal, map[string]int) {
	sales := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for _, order := range orders {
		counts[order.StoreID]++
		if order.PaymentStatus != paidStatus {
			continue
		}
		amount, err := decimal.NewFromString(order.GrandTotal)
		if err != nil {
			logg.Warn(logg.WithField(ctx, "store_id", order.StoreID), "skipping order with malformed grandTotal")
			continue
		}
		sales[order.StoreID] = sales[order.StoreID].Add(amount)
	}
	return sales, counts
}

func isOldStore(createdAt, now time.Time) bool {
	return now.Sub(createdAt) > oldStoreAge
}

func calculateStats(stores []Store, now time.Time) StoreStats {
	stats := StoreStats{TotalStores: len(stores)}
	for _, store := range stores {
		if isOldStore(store.CreatedAt, now) {
			stats.OldStores++
		}
	}
	stats.NewStores = stats.TotalStores - stats.OldStores
	return stats
}
