package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// PaymentMethod enumerates accepted payment instruments.
type PaymentMethod string

const (
	PaymentMethodCOD      PaymentMethod = "cod"
	PaymentMethodRazorpay PaymentMethod = "razorpay"
	PaymentMethodWallet   PaymentMethod = "wallet"
)

// Valid reports whether the method is recognised.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodRazorpay, PaymentMethodWallet:
		return true
	}
	return false
}

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// Payment records one settlement attempt. OrderID stays empty until the
// payment succeeds and the checkout handoff creates the order.
type Payment struct {
	bun.BaseModel `bun:"table:payments"`

	ID               string          `bun:",pk"`
	UserID           string          `bun:"user_id"`
	OrderID          string          `bun:"order_id,nullzero"`
	Method           PaymentMethod   `bun:"method"`
	Status           PaymentStatus   `bun:"status"`
	Amount           decimal.Decimal `bun:"amount,type:numeric"`
	GatewayOrderID   string          `bun:"gateway_order_id,nullzero"`
	GatewayPaymentID string          `bun:"gateway_payment_id,nullzero"`
	GatewaySignature string          `bun:"gateway_signature,nullzero"`
	CreatedAt        time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time       `bun:"updated_at,nullzero"`
}
