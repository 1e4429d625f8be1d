package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Additional-Code/bazaar/internal/config"
)

// Rate is one courier quote for a shipment.
type Rate struct {
	Courier      string          `json:"courier"`
	Charge       decimal.Decimal `json:"charge"`
	EstimatedDay int             `json:"estimated_days"`
}

// Shipment is the carrier-side record for a dispatched order.
type Shipment struct {
	AWB     string `json:"awb"`
	Courier string `json:"courier"`
	Label   string `json:"label_url"`
}

// TrackingEvent is one scan in a shipment's journey.
type TrackingEvent struct {
	Status   string `json:"status"`
	Location string `json:"location"`
	Time     string `json:"time"`
}

// CreateShipmentRequest describes the parcel handed to the carrier.
type CreateShipmentRequest struct {
	OrderNumber    string          `json:"order_number"`
	PickupCode     string          `json:"pickup_code"`
	Address        string          `json:"address"`
	DropPincode    string          `json:"drop_pincode"`
	WeightGrams    int             `json:"weight_grams"`
	DeclaredValue  decimal.Decimal `json:"declared_value"`
	CashOnDelivery bool            `json:"cod"`
}

// Client calls the external carrier API. All calls are plain
// request/response; the carrier owns retries and reconciliation.
type Client struct {
	httpClient *http.Client
	cfg        config.Shipping
	logger     *zap.Logger
}

// NewClient builds a carrier client from configuration.
func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Shipping.Timeout},
		cfg:        cfg.Shipping,
		logger:     logger,
	}
}

// Serviceable reports whether the carrier delivers to the pincode.
func (c *Client) Serviceable(ctx context.Context, pincode string) (bool, error) {
	var out struct {
		Serviceable bool `json:"serviceable"`
	}
	query := url.Values{"pincode": []string{pincode}}
	if err := c.get(ctx, "/serviceability?"+query.Encode(), &out); err != nil {
		return false, err
	}
	return out.Serviceable, nil
}

// Rates quotes couriers for a parcel between two pincodes.
func (c *Client) Rates(ctx context.Context, pickupPincode, dropPincode string, weightGrams int) ([]Rate, error) {
	var out struct {
		Rates []Rate `json:"rates"`
	}
	query := url.Values{
		"pickup": []string{pickupPincode},
		"drop":   []string{dropPincode},
		"weight": []string{fmt.Sprintf("%d", weightGrams)},
	}
	if err := c.get(ctx, "/rates?"+query.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Rates, nil
}

// CreateShipment registers a parcel and returns the assigned AWB.
func (c *Client) CreateShipment(ctx context.Context, req CreateShipmentRequest) (*Shipment, error) {
	if req.PickupCode == "" {
		req.PickupCode = c.cfg.PickupCode
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/shipments", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.decorate(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("carrier create shipment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.logger.Warn("carrier rejected shipment", zap.Int("status", resp.StatusCode), zap.String("order", req.OrderNumber))
		return nil, fmt.Errorf("carrier create shipment: status %d", resp.StatusCode)
	}

	var shipment Shipment
	if err := json.NewDecoder(resp.Body).Decode(&shipment); err != nil {
		return nil, fmt.Errorf("decode shipment: %w", err)
	}
	return &shipment, nil
}

// Track fetches the scan history for an AWB.
func (c *Client) Track(ctx context.Context, awb string) ([]TrackingEvent, error) {
	var out struct {
		Events []TrackingEvent `json:"events"`
	}
	if err := c.get(ctx, "/track/"+url.PathEscape(awb), &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return err
	}
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("carrier request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("carrier request %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
}
