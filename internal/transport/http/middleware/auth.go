package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Additional-Code/bazaar/internal/entity"
	"github.com/Additional-Code/bazaar/internal/presentation/http/response"
	authsvc "github.com/Additional-Code/bazaar/internal/service/auth"
	"github.com/Additional-Code/bazaar/pkg/errorbank"
)

const claimsKey = "bazaar.claims"

// Auth guards routes with bearer-token authentication.
type Auth struct {
	svc *authsvc.Service
}

// NewAuth constructs the auth middleware.
func NewAuth(svc *authsvc.Service) *Auth {
	return &Auth{svc: svc}
}

// Required rejects requests without a valid access token.
func (a *Auth) Required(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := a.authenticate(c)
		if err != nil {
			return response.New(c).WithError(err).Build()
		}
		c.Set(claimsKey, claims)
		return next(c)
	}
}

// Optional attaches claims when a valid token is present but lets
// anonymous requests through. Listing endpoints use it to widen catalog
// visibility for signed-in suppliers and admins.
func (a *Auth) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if claims, err := a.authenticate(c); err == nil {
			c.Set(claimsKey, claims)
		}
		return next(c)
	}
}

// Roles rejects authenticated requests whose role is not in the allow
// list. It must run after Required.
func (a *Auth) Roles(roles ...entity.Role) echo.MiddlewareFunc {
	allowed := make(map[entity.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil || !allowed[claims.Role] {
				return response.New(c).WithError(errorbank.Forbidden("insufficient role")).Build()
			}
			return next(c)
		}
	}
}

func (a *Auth) authenticate(c echo.Context) (*authsvc.Claims, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, errorbank.Unauthorized("missing bearer token")
	}
	return a.svc.Authenticate(c.Request().Context(), token)
}

// ClaimsFrom returns the authenticated claims, or nil for anonymous
// requests.
func ClaimsFrom(c echo.Context) *authsvc.Claims {
	claims, _ := c.Get(claimsKey).(*authsvc.Claims)
	return claims
}
