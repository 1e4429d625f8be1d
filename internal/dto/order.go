package dto

import "time"

// OrderStatusRequest moves an order along its lifecycle.
type OrderStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// OrderItemResponse is one purchased line.
type OrderItemResponse struct {
	ProductID int64  `json:"product_id"`
	VariantID int64  `json:"variant_id,omitempty"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID          string              `json:"id"`
	Number      string              `json:"number"`
	Status      string              `json:"status"`
	Subtotal    string              `json:"subtotal"`
	Total       string              `json:"total"`
	PaymentID   string              `json:"payment_id,omitempty"`
	ShipAddress string              `json:"ship_address"`
	ShipAWB     string              `json:"ship_awb,omitempty"`
	Items       []OrderItemResponse `json:"items,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// OrderEventResponse is one audit-trail entry.
type OrderEventResponse struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorID   string    `json:"actor_id,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TrackingEventResponse is one carrier scan.
type TrackingEventResponse struct {
	Status   string `json:"status"`
	Location string `json:"location"`
	Time     string `json:"time"`
}
