package dto

import "time"

// CheckoutRequest starts payment for the current cart.
type CheckoutRequest struct {
	Method      string `json:"method"`
	ShipAddress string `json:"ship_address"`
}

// PaymentConfirmRequest completes a gateway payment with the client-side
// checkout result.
type PaymentConfirmRequest struct {
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
	ShipAddress      string `json:"ship_address"`
}

// PaymentResponse represents a payment as exposed via transport layers.
type PaymentResponse struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"order_id,omitempty"`
	Method         string    `json:"method"`
	Status         string    `json:"status"`
	Amount         string    `json:"amount"`
	GatewayOrderID string    `json:"gateway_order_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// CheckoutResponse bundles the payment with the placed order when the
// method settles inline, or the gateway handle when it does not.
type CheckoutResponse struct {
	Payment        PaymentResponse `json:"payment"`
	Order          *OrderResponse  `json:"order,omitempty"`
	GatewayOrderID string          `json:"gateway_order_id,omitempty"`
	GatewayKeyID   string          `json:"gateway_key_id,omitempty"`
}
