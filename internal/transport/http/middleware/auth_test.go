package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/bazaar/internal/entity"
	authsvc "github.com/Additional-Code/bazaar/internal/service/auth"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestClaimsFromAnonymous(t *testing.T) {
	c, _ := newTestContext(t)
	assert.Nil(t, ClaimsFrom(c))
}

func TestRolesAllowsListedRole(t *testing.T) {
	mw := NewAuth(nil)
	c, _ := newTestContext(t)
	c.Set(claimsKey, &authsvc.Claims{Role: entity.RoleAdmin})

	called := false
	handler := mw.Roles(entity.RoleAdmin)(func(echo.Context) error {
		called = true
		return nil
	})
	require.NoError(t, handler(c))
	assert.True(t, called)
}

func TestRolesRejectsOtherRole(t *testing.T) {
	mw := NewAuth(nil)
	c, rec := newTestContext(t)
	c.Set(claimsKey, &authsvc.Claims{Role: entity.RoleUser})

	handler := mw.Roles(entity.RoleAdmin)(func(echo.Context) error {
		t.Fatal("handler should not run")
		return nil
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRolesRejectsAnonymous(t *testing.T) {
	mw := NewAuth(nil)
	c, rec := newTestContext(t)

	handler := mw.Roles(entity.RoleAdmin)(func(echo.Context) error {
		t.Fatal("handler should not run")
		return nil
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
