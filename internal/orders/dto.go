package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderFilters narrows the admin order listing. Status, the date range,
// merchantId, limit and offset are forwarded to the upstream service;
// store name and email are matched in memory against the merchant fields
// of each order.
type OrderFilters struct {
	Status     string
	StartDate  string
	EndDate    string
	StoreName  string
	StoreEmail string
	MerchantID string
	Limit      int
	Offset     int
}

// MerchantOrderFilters narrows the per-merchant order listing.
type MerchantOrderFilters struct {
	Status    string
	StartDate string
	EndDate   string
	Limit     int
}

// upstreamOrder is the order service's wire shape.
type upstreamOrder struct {
	OrderID       string            `json:"orderId"`
	MerchantID    string            `json:"merchantId"`
	MerchantName  string            `json:"merchantName"`
	MerchantEmail string            `json:"merchantEmail"`
	CustomerEmail string            `json:"customerEmail"`
	Amount        decimal.Decimal   `json:"amount"`
	Status        string            `json:"status"`
	CreatedAt     string            `json:"createdAt"`
	UpdatedAt     string            `json:"updatedAt"`
	Products      []upstreamProduct `json:"products"`
}

type upstreamProduct struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is the admin-facing projection of an upstream order.
type Order struct {
	ID            string          `json:"id"`
	MerchantID    string          `json:"merchantId"`
	MerchantName  string          `json:"merchantName"`
	MerchantEmail string          `json:"merchantEmail"`
	CustomerEmail string          `json:"customerEmail"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Products      []Product       `json:"products"`
	IsSuccessful  bool            `json:"isSuccessful"`
}

// Product is a projected order line item.
type Product struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderStats summarizes an order set by derived outcome.
type OrderStats struct {
	TotalOrders      int `json:"totalOrders"`
	SuccessfulOrders int `json:"successfulOrders"`
	FailedOrders     int `json:"failedOrders"`
}

// OrderList is the listing payload: projected orders after in-memory
// filtering, the filtered count, and outcome stats over the same set.
type OrderList struct {
	Orders []Order    `json:"orders"`
	Total  int        `json:"total"`
	Stats  OrderStats `json:"stats"`
}

// CreateOrderRequest is forwarded to the upstream order service as-is.
type CreateOrderRequest struct {
	MerchantID    string               `json:"merchantId" validate:"required"`
	CustomerEmail string               `json:"customerEmail" validate:"required,email"`
	Amount        decimal.Decimal      `json:"amount" validate:"required"`
	Products      []CreateOrderProduct `json:"products" validate:"required,min=1,dive"`
}

// CreateOrderProduct is a line item on a new order.
type CreateOrderProduct struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// UpdateOrderStatusRequest carries the new status for an order.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
