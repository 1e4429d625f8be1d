package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// ListingStatus is the moderation state of a catalog item.
type ListingStatus string

const (
	ListingPending   ListingStatus = "pending"
	ListingApproved  ListingStatus = "approved"
	ListingPublished ListingStatus = "published"
	ListingRejected  ListingStatus = "rejected"
)

// PublicStatuses are the listing states visible to unauthenticated and
// regular-user callers.
var PublicStatuses = []ListingStatus{ListingApproved, ListingPublished}

// Brand groups products under a manufacturer label.
type Brand struct {
	bun.BaseModel `bun:"table:brands"`

	ID        int64         `bun:",pk,autoincrement"`
	Name      string        `bun:"name"`
	Slug      string        `bun:"slug,unique"`
	Status    ListingStatus `bun:"status"`
	CreatedBy string        `bun:"created_by"`
	CreatedAt time.Time     `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time     `bun:"updated_at,nullzero"`
}

// Category is a navigational grouping for products.
type Category struct {
	bun.BaseModel `bun:"table:categories"`

	ID        int64         `bun:",pk,autoincrement"`
	Name      string        `bun:"name"`
	Slug      string        `bun:"slug,unique"`
	Status    ListingStatus `bun:"status"`
	CreatedBy string        `bun:"created_by"`
	CreatedAt time.Time     `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time     `bun:"updated_at,nullzero"`
}

// Product is a sellable catalog item owned by its creating supplier.
type Product struct {
	bun.BaseModel `bun:"table:products"`

	ID          int64           `bun:",pk,autoincrement"`
	Name        string          `bun:"name"`
	Slug        string          `bun:"slug,unique"`
	Description string          `bun:"description"`
	BrandID     int64           `bun:"brand_id,nullzero"`
	CategoryID  int64           `bun:"category_id,nullzero"`
	Status      ListingStatus   `bun:"status"`
	CreatedBy   string          `bun:"created_by"`
	Price       decimal.Decimal `bun:"price,type:numeric"`
	Stock       int             `bun:"stock"`
	ImageURL    string          `bun:"image_url,nullzero"`
	CreatedAt   time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time       `bun:"updated_at,nullzero"`

	Variants []*ProductVariant `bun:"rel:has-many,join:id=product_id"`
}

// ProductVariant carries its own price and stock under a parent product.
type ProductVariant struct {
	bun.BaseModel `bun:"table:product_variants"`

	ID        int64           `bun:",pk,autoincrement"`
	ProductID int64           `bun:"product_id"`
	SKU       string          `bun:"sku,unique"`
	Label     string          `bun:"label"`
	Price     decimal.Decimal `bun:"price,type:numeric"`
	Stock     int             `bun:"stock"`
}
