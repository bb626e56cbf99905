package orders

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"

	pkgerrors "github.com/nilecommerce/admin-service/pkg/errors"
	"github.com/nilecommerce/admin-service/pkg/logger"
)

// stubUpstream replays canned JSON per path and records requests.
type stubUpstream struct {
	responses map[string]string
	errs      map[string]error
	gotQuery  map[string]url.Values
	posted    map[string]any
	put       map[string]any
	deleted   []string
}

func newStubUpstream() *stubUpstream {
	return &stubUpstream{
		responses: map[string]string{},
		errs:      map[string]error{},
		gotQuery:  map[string]url.Values{},
		posted:    map[string]any{},
		put:       map[string]any{},
	}
}

func (s *stubUpstream) Get(ctx context.Context, path string, query url.Values, out any) error {
	s.gotQuery[path] = query
	return s.reply(path, out)
}

func (s *stubUpstream) Post(ctx context.Context, path string, body, out any) error {
	s.posted[path] = body
	return s.reply(path, out)
}

func (s *stubUpstream) Put(ctx context.Context, path string, body, out any) error {
	s.put[path] = body
	return s.reply(path, out)
}

func (s *stubUpstream) Delete(ctx context.Context, path string, out any) error {
	s.deleted = append(s.deleted, path)
	if err, ok := s.errs[path]; ok {
		return err
	}
	return nil
}

func (s *stubUpstream) reply(path string, out any) error {
	if err, ok := s.errs[path]; ok {
		return err
	}
	raw, ok := s.responses[path]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func testSuccessSet() map[string]struct{} {
	return map[string]struct{}{"SHIPPED": {}, "DELIVERED": {}}
}

func orderJSON(id, merchantName, merchantEmail, status string) string {
	return `{"orderId":"` + id + `","merchantId":"m-` + id + `","merchantName":"` + merchantName + `",` +
		`"merchantEmail":"` + merchantEmail + `","customerEmail":"buyer@example.com",` +
		`"amount":"125.40","status":"` + status + `",` +
		`"createdAt":"2026-02-10T08:00:00Z","updatedAt":"2026-02-11T09:30:00Z",` +
		`"products":[{"productId":"p1","name":"Ankara tote","quantity":2,"price":"62.70"}]}`
}

func buildService(t *testing.T, up upstreamClient) Service {
	t.Helper()
	svc, err := NewService(up, testSuccessSet(), testLogger())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestListOrdersDerivesOutcomeAndStats(t *testing.T) {
	up := newStubUpstream()
	up.responses["/all-orders"] = "[" +
		orderJSON("o1", "lagosmart", "sales@lagosmart.ng", "DELIVERED") + "," +
		orderJSON("o2", "cairocrafts", "hello@cairocrafts.eg", "shipped") + "," +
		orderJSON("o3", "lagosmart", "sales@lagosmart.ng", "CANCELLED") + "]"

	svc := buildService(t, up)

	list, err := svc.ListOrders(context.Background(), OrderFilters{})
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if list.Total != 3 || len(list.Orders) != 3 {
		t.Fatalf("expected 3 orders, got total=%d len=%d", list.Total, len(list.Orders))
	}
	if !list.Orders[0].IsSuccessful {
		t.Fatal("DELIVERED should be successful")
	}
	if !list.Orders[1].IsSuccessful {
		t.Fatal("status matching is case-insensitive, shipped should be successful")
	}
	if list.Orders[2].IsSuccessful {
		t.Fatal("CANCELLED should not be successful")
	}
	if list.Stats.TotalOrders != 3 || list.Stats.SuccessfulOrders != 2 || list.Stats.FailedOrders != 1 {
		t.Fatalf("unexpected stats: %+v", list.Stats)
	}
	if got := list.Orders[0].Amount.String(); got != "125.4" {
		t.Fatalf("unexpected amount: %q", got)
	}
	if list.Orders[0].CreatedAt != time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected createdAt: %v", list.Orders[0].CreatedAt)
	}
}

func TestListOrdersPassesFiltersUpstream(t *testing.T) {
	up := newStubUpstream()
	up.responses["/all-orders"] = "[]"

	svc := buildService(t, up)

	if _, err := svc.ListOrders(context.Background(), OrderFilters{
		Status:     "PENDING",
		StartDate:  "2026-01-01",
		EndDate:    "2026-01-31",
		MerchantID: "m-7",
		Limit:      50,
		Offset:     100,
	}); err != nil {
		t.Fatalf("list orders: %v", err)
	}

	query := up.gotQuery["/all-orders"]
	if query.Get("status") != "PENDING" || query.Get("merchantId") != "m-7" {
		t.Fatalf("status/merchantId not forwarded: %v", query)
	}
	if query.Get("startDate") != "2026-01-01" || query.Get("endDate") != "2026-01-31" {
		t.Fatalf("dates not forwarded: %v", query)
	}
	if query.Get("limit") != "50" || query.Get("offset") != "100" {
		t.Fatalf("paging not forwarded: %v", query)
	}
}

func TestListOrdersFiltersByMerchantInMemory(t *testing.T) {
	up := newStubUpstream()
	up.responses["/all-orders"] = "[" +
		orderJSON("o1", "LagosMart", "sales@lagosmart.ng", "DELIVERED") + "," +
		orderJSON("o2", "cairocrafts", "hello@cairocrafts.eg", "DELIVERED") + "]"

	svc := buildService(t, up)

	list, err := svc.ListOrders(context.Background(), OrderFilters{StoreName: "lagos"})
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(list.Orders) != 1 || list.Orders[0].ID != "o1" {
		t.Fatalf("expected only the LagosMart order, got %+v", list.Orders)
	}
	// Total and stats both follow the filtered set.
	if list.Total != 1 || list.Stats.TotalOrders != 1 {
		t.Fatalf("total/stats should be post-filter: total=%d stats=%+v", list.Total, list.Stats)
	}

	// The substring filter is never forwarded upstream.
	if up.gotQuery["/all-orders"].Get("storeName") != "" {
		t.Fatalf("storeName leaked upstream: %v", up.gotQuery["/all-orders"])
	}

	list, err = svc.ListOrders(context.Background(), OrderFilters{StoreEmail: "CAIROCRAFTS.EG"})
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(list.Orders) != 1 || list.Orders[0].ID != "o2" {
		t.Fatalf("expected only the cairocrafts order, got %+v", list.Orders)
	}
}

func TestOrderStats(t *testing.T) {
	up := newStubUpstream()
	up.responses["/all-orders"] = "[" +
		orderJSON("o1", "a", "a@x.com", "SHIPPED") + "," +
		orderJSON("o2", "b", "b@x.com", "PENDING") + "," +
		orderJSON("o3", "c", "c@x.com", "REFUNDED") + "]"

	svc := buildService(t, up)

	stats, err := svc.OrderStats(context.Background())
	if err != nil {
		t.Fatalf("order stats: %v", err)
	}
	if stats.TotalOrders != 3 || stats.SuccessfulOrders != 1 || stats.FailedOrders != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestGetOrderByID(t *testing.T) {
	up := newStubUpstream()
	up.responses["/orders/o1"] = orderJSON("o1", "lagosmart", "sales@lagosmart.ng", "DELIVERED")

	svc := buildService(t, up)

	order, err := svc.GetOrderByID(context.Background(), "o1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.ID != "o1" || !order.IsSuccessful {
		t.Fatalf("unexpected order: %+v", order)
	}
	if len(order.Products) != 1 || order.Products[0].Quantity != 2 {
		t.Fatalf("unexpected products: %+v", order.Products)
	}

	_, err = svc.GetOrderByID(context.Background(), "missing")
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", code)
	}

	_, err = svc.GetOrderByID(context.Background(), "")
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for empty id, got %v", code)
	}
}

func TestMerchantOrders(t *testing.T) {
	up := newStubUpstream()
	up.responses["/merchants/m-5/orders"] = "[" +
		orderJSON("o1", "lagosmart", "sales@lagosmart.ng", "DELIVERED") + "," +
		orderJSON("o2", "lagosmart", "sales@lagosmart.ng", "ON_HOLD") + "]"

	svc := buildService(t, up)

	list, err := svc.MerchantOrders(context.Background(), "m-5", MerchantOrderFilters{
		Status: "DELIVERED",
		Limit:  10,
	})
	if err != nil {
		t.Fatalf("merchant orders: %v", err)
	}
	if list.Total != 2 || list.Stats.SuccessfulOrders != 1 {
		t.Fatalf("unexpected list: total=%d stats=%+v", list.Total, list.Stats)
	}

	query := up.gotQuery["/merchants/m-5/orders"]
	if query.Get("status") != "DELIVERED" || query.Get("limit") != "10" {
		t.Fatalf("filters not forwarded: %v", query)
	}
}

func TestCreateOrderForwardsRequest(t *testing.T) {
	up := newStubUpstream()
	up.responses["/orders"] = orderJSON("o-new", "lagosmart", "sales@lagosmart.ng", "PENDING")

	svc := buildService(t, up)

	req := CreateOrderRequest{
		MerchantID:    "m-1",
		CustomerEmail: "buyer@example.com",
		Products:      []CreateOrderProduct{{ProductID: "p1", Quantity: 2}},
	}
	order, err := svc.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != "o-new" || order.IsSuccessful {
		t.Fatalf("unexpected order: %+v", order)
	}

	sent, ok := up.posted["/orders"].(CreateOrderRequest)
	if !ok || sent.MerchantID != "m-1" {
		t.Fatalf("unexpected posted body: %+v", up.posted["/orders"])
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	up := newStubUpstream()
	up.responses["/orders/o1"] = orderJSON("o1", "lagosmart", "sales@lagosmart.ng", "SHIPPED")

	svc := buildService(t, up)

	order, err := svc.UpdateOrderStatus(context.Background(), "o1", "SHIPPED")
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if !order.IsSuccessful {
		t.Fatalf("expected successful after SHIPPED, got %+v", order)
	}

	sent, ok := up.put["/orders/o1"].(UpdateOrderStatusRequest)
	if !ok || sent.Status != "SHIPPED" {
		t.Fatalf("unexpected put body: %+v", up.put["/orders/o1"])
	}

	_, err = svc.UpdateOrderStatus(context.Background(), "o1", "")
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty status, got %v", code)
	}
}

func TestCancelOrder(t *testing.T) {
	up := newStubUpstream()
	svc := buildService(t, up)

	if err := svc.CancelOrder(context.Background(), "o9"); err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if len(up.deleted) != 1 || up.deleted[0] != "/orders/o9" {
		t.Fatalf("unexpected delete calls: %v", up.deleted)
	}
}

func TestListOrdersMalformedTimestamp(t *testing.T) {
	up := newStubUpstream()
	up.responses["/all-orders"] = `[{"orderId":"o1","status":"DELIVERED","createdAt":"yesterday","updatedAt":"2026-02-11T09:30:00Z"}]`

	svc := buildService(t, up)

	_, err := svc.ListOrders(context.Background(), OrderFilters{})
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeUpstream {
		t.Fatalf("expected upstream error, got %v", code)
	}
}
