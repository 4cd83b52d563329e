package models

import "time"

// OrderNote is an append-only audit record attached to an order.
type OrderNote struct {
	OrderID           string    `json:"order_id"`
	Note              string    `json:"note"`
	DisplayToCustomer bool      `json:"display_to_customer"`
	CreatedAt         time.Time `json:"created_at"`
}
