package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/Additional-Code/bazaar/internal/cache"
	"github.com/Additional-Code/bazaar/internal/config"
	"github.com/Additional-Code/bazaar/internal/entity"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	denylistPrefix = "auth:denylist:"
)

// ErrTokenInvalid is returned for malformed, expired, revoked, or
// wrong-typed tokens.
var ErrTokenInvalid = errors.New("token invalid")

// Claims carries the bazaar-specific token payload on top of the
// registered JWT claims.
type Claims struct {
	Role      entity.Role `json:"role"`
	TokenType string      `json:"typ"`
	Epoch     int64       `json:"epoch"`
	jwt.RegisteredClaims
}

// TokenPair bundles the access/refresh tokens issued to a session.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Tokens issues and verifies JWTs and tracks revoked token ids in the
// cache store so a logout outlives the process.
type Tokens struct {
	cfg      config.Auth
	denylist cache.Store
	now      func() time.Time
}

// NewTokens wires the token manager.
func NewTokens(cfg config.Config, store cache.Store) *Tokens {
	return &Tokens{cfg: cfg.Auth, denylist: store, now: time.Now}
}

// Issue mints a fresh access/refresh pair for the user.
func (t *Tokens) Issue(user *entity.User) (*TokenPair, error) {
	now := t.now().UTC()
	accessExp := now.Add(t.cfg.AccessTokenTTL)
	refreshExp := now.Add(t.cfg.RefreshTokenTTL)

	access, err := t.sign(user, tokenTypeAccess, now, accessExp)
	if err != nil {
		return nil, err
	}
	refresh, err := t.sign(user, tokenTypeRefresh, now, refreshExp)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccess validates an access token and checks it has not been revoked.
func (t *Tokens) VerifyAccess(ctx context.Context, token string) (*Claims, error) {
	return t.verify(ctx, token, tokenTypeAccess)
}

// VerifyRefresh validates a refresh token and checks it has not been revoked.
func (t *Tokens) VerifyRefresh(ctx context.Context, token string) (*Claims, error) {
	return t.verify(ctx, token, tokenTypeRefresh)
}

// Revoke denylists the token id for the remainder of its lifetime. Expired
// tokens need no entry; the signature check already rejects them.
func (t *Tokens) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return t.denylist.Set(ctx, denylistPrefix+claims.ID, []byte("revoked"), ttl)
}

func (t *Tokens) sign(user *entity.User, typ string, now, exp time.Time) (string, error) {
	claims := Claims{
		Role:      user.Role,
		TokenType: typ,
		Epoch:     user.TokenEpoch,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    t.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.cfg.JWTSecret))
}

func (t *Tokens) verify(ctx context.Context, raw, wantType string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(t.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != wantType || claims.Subject == "" || claims.ID == "" {
		return nil, ErrTokenInvalid
	}

	if _, err := t.denylist.Get(ctx, denylistPrefix+claims.ID); err == nil {
		return nil, ErrTokenInvalid
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		return nil, err
	}
	return claims, nil
}
