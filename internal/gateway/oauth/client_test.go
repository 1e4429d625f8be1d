package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/bazaar/internal/config"
)

func testClient(url string) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		cfg:        config.OAuth{UserinfoURL: url},
		logger:     zap.NewNop(),
	}
}

func TestUserinfoParsesProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"provider-1","email":"demo@bazaar.local","email_verified":true,"name":"Demo"}`))
	}))
	defer srv.Close()

	profile, err := testClient(srv.URL).Userinfo(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "provider-1", profile.Subject)
	assert.Equal(t, "demo@bazaar.local", profile.Email)
	assert.True(t, profile.EmailVerified)
}

func TestUserinfoRejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Userinfo(context.Background(), "bad")
	assert.Error(t, err)
}
