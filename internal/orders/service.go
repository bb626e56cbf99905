package orders

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/nilecommerce/admin-service/pkg/errors"
	"github.com/nilecommerce/admin-service/pkg/logger"
)

// Service proxies the upstream order service and layers the admin-side
// normalization on top: derived outcome, merchant substring filters and
// outcome stats.
type Service interface {
	ListOrders(ctx context.Context, filters OrderFilters) (*OrderList, error)
	OrderStats(ctx context.Context) (*OrderStats, error)
	GetOrderByID(ctx context.Context, orderID string) (*Order, error)
	MerchantOrders(ctx context.Context, merchantID string, filters MerchantOrderFilters) (*OrderList, error)
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) (*Order, error)
	CancelOrder(ctx context.Context, orderID string) error
}

type upstreamClient interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

type service struct {
	orders  upstreamClient
	success map[string]struct{}
	logger  *logger.Logger
}

// NewService wires the upstream order client into the aggregation service.
// success is the set of upstream statuses that count as a successful order,
// keyed uppercase.
func NewService(orders upstreamClient, success map[string]struct{}, logg *logger.Logger) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order upstream client is required")
	}
	if len(success) == 0 {
		return nil, fmt.Errorf("successful-status set is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{orders: orders, success: success, logger: logg}, nil
}

func (s *service) ListOrders(ctx context.Context, filters OrderFilters) (*OrderList, error) {
	query := url.Values{}
	if filters.Status != "" {
		query.Set("status", filters.Status)
	}
	if filters.StartDate != "" {
		query.Set("startDate", filters.StartDate)
	}
	if filters.EndDate != "" {
		query.Set("endDate", filters.EndDate)
	}
	if filters.MerchantID != "" {
		query.Set("merchantId", filters.MerchantID)
	}
	if filters.Limit > 0 {
		query.Set("limit", strconv.Itoa(filters.Limit))
	}
	if filters.Offset > 0 {
		query.Set("offset", strconv.Itoa(filters.Offset))
	}

	var raw []upstreamOrder
	if err := s.orders.Get(ctx, "/all-orders", query, &raw); err != nil {
		return nil, err
	}

	orders, err := s.projectAll(raw)
	if err != nil {
		return nil, err
	}
	orders = filterByMerchant(orders, filters.StoreName, filters.StoreEmail)

	return &OrderList{
		Orders: orders,
		Total:  len(orders),
		Stats:  calculateStats(orders),
	}, nil
}

func (s *service) OrderStats(ctx context.Context) (*OrderStats, error) {
	var raw []upstreamOrder
	if err := s.orders.Get(ctx, "/all-orders", nil, &raw); err != nil {
		return nil, err
	}
	orders, err := s.projectAll(raw)
	if err != nil {
		return nil, err
	}
	stats := calculateStats(orders)
	return &stats, nil
}

func (s *service) GetOrderByID(ctx context.Context, orderID string) (*Order, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	var raw upstreamOrder
	if err := s.orders.Get(ctx, "/orders/"+orderID, nil, &raw); err != nil {
		return nil, err
	}
	if raw.OrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.project(raw)
}

func (s *service) MerchantOrders(ctx context.Context, merchantID string, filters MerchantOrderFilters) (*OrderList, error) {
	if merchantID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "merchant not found")
	}

	query := url.Values{}
	if filters.Status != "" {
		query.Set("status", filters.Status)
	}
	if filters.StartDate != "" {
		query.Set("startDate", filters.StartDate)
	}
	if filters.EndDate != "" {
		query.Set("endDate", filters.EndDate)
	}
	if filters.Limit > 0 {
		query.Set("limit", strconv.Itoa(filters.Limit))
	}

	var raw []upstreamOrder
	if err := s.orders.Get(ctx, "/merchants/"+merchantID+"/orders", query, &raw); err != nil {
		return nil, err
	}

	orders, err := s.projectAll(raw)
	if err != nil {
		return nil, err
	}

	return &OrderList{
		Orders: orders,
		Total:  len(orders),
		Stats:  calculateStats(orders),
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var raw upstreamOrder
	if err := s.orders.Post(ctx, "/orders", req, &raw); err != nil {
		return nil, err
	}
	return s.project(raw)
}

func (s *service) UpdateOrderStatus(ctx context.Context, orderID, status string) (*Order, error) {
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if status == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status is required")
	}
	var raw upstreamOrder
	if err := s.orders.Put(ctx, "/orders/"+orderID, UpdateOrderStatusRequest{Status: status}, &raw); err != nil {
		return nil, err
	}
	return s.project(raw)
}

func (s *service) CancelOrder(ctx context.Context, orderID string) error {
	if orderID == "" {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.orders.Delete(ctx, "/orders/"+orderID, nil)
}

func (s *service) projectAll(raw []upstreamOrder) ([]Order, error) {
	orders := make([]Order, 0, len(raw))
	for _, r := range raw {
		order, err := s.project(r)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

func (s *service) project(raw upstreamOrder) (*Order, error) {
	createdAt, err := time.Parse(time.RFC3339, raw.CreatedAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err,
			fmt.Sprintf("order %s has malformed createdAt", raw.OrderID))
	}
	updatedAt, err := time.Parse(time.RFC3339, raw.UpdatedAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err,
			fmt.Sprintf("order %s has malformed updatedAt", raw.OrderID))
	}

	products := make([]Product, 0, len(raw.Products))
	for _, p := range raw.Products {
		products = append(products, Product{
			ProductID: p.ProductID,
			Name:      p.Name,
			Quantity:  p.Quantity,
			Price:     p.Price,
		})
	}

	_, successful := s.success[strings.ToUpper(raw.Status)]

	return &Order{
		ID:            raw.OrderID,
		MerchantID:    raw.MerchantID,
		MerchantName:  raw.MerchantName,
		MerchantEmail: raw.MerchantEmail,
		CustomerEmail: raw.CustomerEmail,
		Amount:        raw.Amount,
		Status:        raw.Status,
		CreatedAt:     createdAt.UTC(),
		UpdatedAt:     updatedAt.UTC(),
		Products:      products,
		IsSuccessful:  successful,
	}, nil
}

// filterByMerchant keeps orders whose merchant name/email contains the
// given substrings, case-insensitively. Empty filters match everything.
func filterByMerchant(orders []Order, name, email string) []Order {
	if name == "" && email == "" {
		return orders
	}
	name = strings.ToLower(name)
	email = strings.ToLower(email)

	filtered := orders[:0]
	for _, order := range orders {
		if name != "" && !strings.Contains(strings.ToLower(order.MerchantName), name) {
			continue
		}
		if email != "" && !strings.Contains(strings.ToLower(order.MerchantEmail), email) {
			continue
		}
		filtered = append(filtered, order)
	}
	return filtered
}

func calculateStats(orders []Order) OrderStats {
	stats := OrderStats{TotalOrders: len(orders)}
	for _, order := range orders {
		if order.IsSuccessful {
			stats.SuccessfulOrders++
		}
	}
	stats.FailedOrders = stats.TotalOrders - stats.SuccessfulOrders
	return stats
}
