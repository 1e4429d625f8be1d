package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Role enumerates the access levels a user can hold.
type Role string

const (
	RoleUser       Role = "user"
	RoleSupplier   Role = "supplier"
	RoleAdmin      Role = "admin"
	RoleRxVerifier Role = "rx_verifier"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleSupplier, RoleAdmin, RoleRxVerifier:
		return true
	}
	return false
}

// User represents a registered account.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID            string          `bun:",pk"`
	Email         string          `bun:"email,unique"`
	Phone         string          `bun:"phone"`
	PasswordHash  string          `bun:"password_hash"`
	Role          Role            `bun:"role"`
	EmailVerified bool            `bun:"email_verified"`
	TokenEpoch    int64           `bun:"token_epoch"`
	WalletBalance decimal.Decimal `bun:"wallet_balance,type:numeric"`
	CreatedAt     time.Time       `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `bun:"updated_at,nullzero"`

	Address *Address `bun:"rel:has-one,join:id=user_id"`
}

// Address is the single shipping/billing address attached to a user.
type Address struct {
	bun.BaseModel `bun:"table:addresses"`

	ID         int64  `bun:",pk,autoincrement"`
	UserID     string `bun:"user_id"`
	Line1      string `bun:"line1"`
	Line2      string `bun:"line2"`
	City       string `bun:"city"`
	State      string `bun:"state"`
	PostalCode string `bun:"postal_code"`
	Country    string `bun:"country"`
}
