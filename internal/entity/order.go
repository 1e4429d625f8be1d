package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// forward is the linear status chain; cancellation is the only side exit.
var forward = map[OrderStatus]OrderStatus{
	OrderPending:    OrderProcessing,
	OrderProcessing: OrderShipped,
	OrderShipped:    OrderDelivered,
}

// CanTransition reports whether moving from s to next is allowed: one step
// forward along the chain, or to cancelled while still pending/processing.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if next == OrderCancelled {
		return s == OrderPending || s == OrderProcessing
	}
	return forward[s] == next
}

// Terminal reports whether no further transitions are possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// Order represents a purchase order stored in the relational database.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID          string          `bun:",pk"`
	Number      string          `bun:"number,unique"`
	UserID      string          `bun:"user_id"`
	Status      OrderStatus     `bun:"status"`
	Subtotal    decimal.Decimal `bun:"subtotal,type:numeric"`
	Total       decimal.Decimal `bun:"total,type:numeric"`
	PaymentID   string          `bun:"payment_id,nullzero"`
	ShipAddress string          `bun:"ship_address"`
	ShipAWB     string          `bun:"ship_awb,nullzero"`
	CreatedAt   time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time       `bun:"updated_at,nullzero"`

	Items []*OrderItem `bun:"rel:has-many,join:id=order_id"`
}

// OrderItem snapshots one purchased line; name, price and the owning
// supplier are copied from the catalog so later edits do not rewrite
// history. SupplierID grants the product's supplier fulfillment access to
// the order.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID         int64           `bun:",pk,autoincrement"`
	OrderID    string          `bun:"order_id"`
	ProductID  int64           `bun:"product_id"`
	VariantID  int64           `bun:"variant_id,nullzero"`
	SupplierID string          `bun:"supplier_id,nullzero"`
	Name       string          `bun:"name"`
	Quantity   int             `bun:"quantity"`
	UnitPrice  decimal.Decimal `bun:"unit_price,type:numeric"`
}

// OrderStatusEvent is one entry in an order's append-only audit trail.
type OrderStatusEvent struct {
	bun.BaseModel `bun:"table:order_status_events"`

	ID        int64       `bun:",pk,autoincrement"`
	OrderID   string      `bun:"order_id"`
	From      OrderStatus `bun:"from_status"`
	To        OrderStatus `bun:"to_status"`
	ActorID   string      `bun:"actor_id"`
	Note      string      `bun:"note"`
	CreatedAt time.Time   `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
