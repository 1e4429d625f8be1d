package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Additional-Code/bazaar/internal/config"
)

// GatewayOrder is the gateway-side order created ahead of a card/UPI
// checkout; its id is what the client signs against.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client talks to the payment gateway's REST API.
type Client struct {
	httpClient *http.Client
	cfg        config.Payment
	logger     *zap.Logger
}

// NewClient builds a gateway client from configuration.
func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Payment.Timeout},
		cfg:        cfg.Payment,
		logger:     logger,
	}
}

// CreateOrder registers an order with the gateway. Amounts are sent in the
// smallest currency unit, as the gateway requires.
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*GatewayOrder, error) {
	body := map[string]any{
		"amount":   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"currency": "INR",
		"receipt":  receipt,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GatewayURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.GatewayKeyID, c.cfg.GatewaySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway order create: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.logger.Warn("gateway rejected order create", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("gateway order create: status %d", resp.StatusCode)
	}

	var order GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode gateway order: %w", err)
	}
	return &order, nil
}

// Verify checks a checkout confirmation against the configured secret.
func (c *Client) Verify(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return VerifySignature(gatewayOrderID, gatewayPaymentID, signature, c.cfg.GatewaySecret)
}

// KeyID exposes the public key id clients embed in their checkout widget.
func (c *Client) KeyID() string {
	return c.cfg.GatewayKeyID
}
