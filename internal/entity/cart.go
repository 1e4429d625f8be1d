package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// CartItem is one product line in a user's cart. UnitPrice snapshots the
// catalog price at the time the line was added.
type CartItem struct {
	bun.BaseModel `bun:"table:cart_items"`

	ID        int64           `bun:",pk,autoincrement"`
	UserID    string          `bun:"user_id"`
	ProductID int64           `bun:"product_id"`
	VariantID int64           `bun:"variant_id,nullzero"`
	Quantity  int             `bun:"quantity"`
	UnitPrice decimal.Decimal `bun:"unit_price,type:numeric"`
	CreatedAt time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time       `bun:"updated_at,nullzero"`

	Product *Product `bun:"rel:belongs-to,join:product_id=id"`
}

// LineTotal is quantity times the snapshotted unit price.
func (c *CartItem) LineTotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
