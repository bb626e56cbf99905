package merchants

import "time"

// StoreFilters narrows the store listing. Name, email, isActive, and paging
// pass through to the upstream merchant service; isOld is applied locally.
type StoreFilters struct {
	Name     string
	Email    string
	IsActive *bool
	IsOld    *bool
	Limit    int
	Offset   int
	Page     int
}

// upstreamStore is the raw record returned by the merchant service.
type upstreamStore struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Logo              *string `json:"logo"`
	StoreBaseCurrency string  `json:"storeBaseCurrency"`
	Banner            *string `json:"banner"`
	Address           string  `json:"address"`
	Phone             string  `json:"phone"`
	Category          string  `json:"category"`
	Website           *string `json:"website"`
	About             *string `json:"about"`
	Country           *string `json:"country"`
	State             *string `json:"state"`
	City              *string `json:"city"`
	Status            string  `json:"status"`
	Whitelabel        bool    `json:"whitelabel"`
	Facebook          *string `json:"facebook"`
	WhatsappLink      *string `json:"whatsappLink"`
	WhatsappPhone     *string `json:"whatsappPhone"`
	Instagram         *string `json:"instagram"`
	Twitter           *string `json:"twitter"`
	Linkedin          *string `json:"linkedin"`
	OwnerID           string  `json:"ownerId"`
	StoreURL          string  `json:"storeUrl"`
	IsActive          bool    `json:"isActive"`
	CreatedAt         string  `json:"createdAt"`
}

// upstreamOrder is the slice of the order record the store join needs.
type upstreamOrder struct {
	StoreID       string `json:"storeId"`
	PaymentStatus string `json:"paymentStatus"`
	GrandTotal    string `json:"grandTotal"`
}

// Store is the admin-facing store projection with joined order figures.
type Store struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Logo              *string   `json:"logo"`
	StoreBaseCurrency string    `json:"storeBaseCurrency"`
	Banner            *string   `json:"banner"`
	Address           string    `json:"address"`
	Phone             string    `json:"phone"`
	Category          string    `json:"category"`
	Website           *string   `json:"website"`
	About             *string   `json:"about"`
	Country           *string   `json:"country"`
	State             *string   `json:"state"`
	City              *string   `json:"city"`
	Status            string    `json:"status"`
	Whitelabel        bool      `json:"whitelabel"`
	Facebook          *string   `json:"facebook"`
	WhatsappLink      *string   `json:"whatsappLink"`
	WhatsappPhone     *string   `json:"whatsappPhone"`
	Instagram         *string   `json:"instagram"`
	Twitter           *string   `json:"twitter"`
	Linkedin          *string   `json:"linkedin"`
	OwnerID           string    `json:"ownerId"`
	StoreURL          string    `json:"storeUrl"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	TotalSales        string    `json:"totalSales,omitempty"`
	TotalOrders       int       `json:"totalOrders"`
}

// StoreStats summarizes store age distribution.
type StoreStats struct {
	TotalStores int `json:"totalStores"`
	OldStores   int `json:"oldStores"`
	NewStores   int `json:"newStores"`
}

// StoreList is the ListStores result. Total reflects the upstream count
// before the local isOld filter is applied.
type StoreList struct {
	Stores []Store    `json:"stores"`
	Total  int        `json:"total"`
	Stats  StoreStats `json:"stats"`
}
