package dto

import "time"

// RegisterRequest starts account creation.
type RegisterRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// VerifyOTPRequest confirms a one-time code sent by email or SMS.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// LoginRequest exchanges credentials for a token pair.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginOTPRequest asks for a login code instead of a password.
type LoginOTPRequest struct {
	Email string `json:"email"`
}

// OAuthLoginRequest exchanges an identity-provider token for a session.
type OAuthLoginRequest struct {
	ProviderToken string `json:"provider_token"`
}

// RefreshRequest rotates a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest revokes the current session.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// PasswordResetRequest asks for a reset code.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest completes a password reset.
type PasswordResetConfirmRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// AddressRequest sets the account's shipping address.
type AddressRequest struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// TokenResponse carries an issued access/refresh pair.
type TokenResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// UserResponse is the account as exposed via transport layers.
type UserResponse struct {
	ID            string           `json:"id"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone,omitempty"`
	Role          string           `json:"role"`
	EmailVerified bool             `json:"email_verified"`
	Address       *AddressResponse `json:"address,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// AddressResponse mirrors the stored shipping address.
type AddressResponse struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}
