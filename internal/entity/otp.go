package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// OTPPurpose covers the verification flows an OTP can belong to.
type OTPPurpose string

const (
	OTPPurposeRegistration  OTPPurpose = "registration"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
	OTPPurposeLogin         OTPPurpose = "login"
)

// OTP is a short-lived numeric verification code tied to a user.
type OTP struct {
	bun.BaseModel `bun:"table:otps"`

	ID        int64      `bun:",pk,autoincrement"`
	UserID    string     `bun:"user_id"`
	Code      string     `bun:"code"`
	Purpose   OTPPurpose `bun:"purpose"`
	ExpiresAt time.Time  `bun:"expires_at"`
	Attempts  int        `bun:"attempts"`
	Used      bool       `bun:"used"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// Expired reports whether the code is past its expiry at the given instant.
func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
