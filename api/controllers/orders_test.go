package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nilecommerce/admin-service/internal/orders"
	pkgerrors "github.com/nilecommerce/admin-service/pkg/errors"
	"github.com/nilecommerce/admin-service/pkg/types"
)

type stubOrderService struct {
	list       *orders.OrderList
	order      *orders.Order
	stats      *orders.OrderStats
	err        error
	gotFilters orders.OrderFilters
	gotCreate  orders.CreateOrderRequest
	gotStatus  string
	cancelled  []string
}

func (s *stubOrderService) ListOrders(ctx context.Context, filters orders.OrderFilters) (*orders.OrderList, error) {
	s.gotFilters = filters
	return s.list, s.err
}

func (s *stubOrderService) OrderStats(ctx context.Context) (*orders.OrderStats, error) {
	return s.stats, s.err
}

func (s *stubOrderService) GetOrderByID(ctx context.Context, orderID string) (*orders.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) MerchantOrders(ctx context.Context, merchantID string, filters orders.MerchantOrderFilters) (*orders.OrderList, error) {
	return s.list, s.err
}

func (s *stubOrderService) CreateOrder(ctx context.Context, req orders.CreateOrderRequest) (*orders.Order, error) {
	s.gotCreate = req
	return s.order, s.err
}

func (s *stubOrderService) UpdateOrderStatus(ctx context.Context, orderID, status string) (*orders.Order, error) {
	s.gotStatus = status
	return s.order, s.err
}

func (s *stubOrderService) CancelOrder(ctx context.Context, orderID string) error {
	s.cancelled = append(s.cancelled, orderID)
	return s.err
}

func TestListOrdersForwardsFilters(t *testing.T) {
	svc := &stubOrderService{list: &orders.OrderList{Orders: []orders.Order{}, Total: 0}}
	handler := ListOrders(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders?status=PENDING&storeName=lagos&merchantId=m-1&limit=20", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotFilters.Status != "PENDING" || svc.gotFilters.StoreName != "lagos" {
		t.Fatalf("filters not forwarded: %+v", svc.gotFilters)
	}
	if svc.gotFilters.MerchantID != "m-1" || svc.gotFilters.Limit != 20 {
		t.Fatalf("filters not forwarded: %+v", svc.gotFilters)
	}
}

func TestListOrdersEnvelopeCarriesStats(t *testing.T) {
	svc := &stubOrderService{list: &orders.OrderList{
		Orders: []orders.Order{{ID: "o1", IsSuccessful: true}},
		Total:  1,
		Stats:  orders.OrderStats{TotalOrders: 1, SuccessfulOrders: 1},
	}}
	handler := ListOrders(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var envelope types.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Total == nil || *envelope.Total != 1 {
		t.Fatalf("expected total 1, got %v", envelope.Total)
	}
	if envelope.Stats == nil {
		t.Fatal("expected stats in envelope")
	}
}

func TestGetOrderUpstreamFailure(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeUpstream, "order service unreachable")}
	handler := GetOrder(svc, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/orders/o1", nil), "orderId", "o1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", rec.Code)
	}
}

func TestCreateOrderValidatesBody(t *testing.T) {
	svc := &stubOrderService{order: &orders.Order{ID: "o-new"}}
	handler := CreateOrder(svc, nil)

	// products missing
	req := httptest.NewRequest(http.MethodPost, "/orders",
		strings.NewReader(`{"merchantId":"m-1","customerEmail":"buyer@example.com","amount":"10.00"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/orders",
		strings.NewReader(`{"merchantId":"m-1","customerEmail":"buyer@example.com","amount":"10.00","products":[{"productId":"p1","quantity":1}]}`))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotCreate.MerchantID != "m-1" {
		t.Fatalf("unexpected create payload: %+v", svc.gotCreate)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	svc := &stubOrderService{order: &orders.Order{ID: "o1", Status: "SHIPPED"}}
	handler := UpdateOrderStatus(svc, nil)

	req := withURLParam(httptest.NewRequest(http.MethodPut, "/orders/o1",
		strings.NewReader(`{"status":"SHIPPED"}`)), "orderId", "o1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotStatus != "SHIPPED" {
		t.Fatalf("status not forwarded, got %q", svc.gotStatus)
	}
}

func TestCancelOrder(t *testing.T) {
	svc := &stubOrderService{}
	handler := CancelOrder(svc, nil)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/orders/o9", nil), "orderId", "o9")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(svc.cancelled) != 1 || svc.cancelled[0] != "o9" {
		t.Fatalf("unexpected cancels: %v", svc.cancelled)
	}
}
