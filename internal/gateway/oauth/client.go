package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Additional-Code/bazaar/internal/config"
)

// Profile is the identity the provider asserts for a delegated login.
type Profile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Client resolves provider access tokens against the configured userinfo
// endpoint. Token acquisition happens on the client side; the backend only
// validates what it is handed.
type Client struct {
	httpClient *http.Client
	cfg        config.OAuth
	logger     *zap.Logger
}

// NewClient builds an identity-provider client from configuration.
func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.OAuth.Timeout},
		cfg:        cfg.OAuth,
		logger:     logger,
	}
}

// Userinfo exchanges a provider access token for the profile it asserts.
func (c *Client) Userinfo(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.UserinfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.logger.Warn("provider rejected token", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("provider userinfo: status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &profile, nil
}
