package domain

import "time"

// OrderLine is one purchased item within an order.
type OrderLine struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Order is a commerce order as shaped by the ingestion layer.
type Order struct {
	ID            string      `json:"id"`
	AccountID     string      `json:"account_id"`
	CustomerEmail string      `json:"customer_email"`
	Total         float64     `json:"total"`
	Lines         []OrderLine `json:"lines"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Customer carries lifetime commerce value plus first-touch attribution.
type Customer struct {
	Email         string    `json:"email"`
	AccountID     string    `json:"account_id"`
	LifetimeSpend float64   `json:"lifetime_spend"`
	OrderCount    int       `json:"order_count"`
	FirstSource   string    `json:"first_source"`
	FirstSeenAt   time.Time `json:"first_seen_at"`
}

// Product is a catalog entry referenced by order lines.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Cost  float64 `json:"cost"`
	Stock int     `json:"stock"`
}
