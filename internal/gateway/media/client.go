package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"go.uber.org/zap"

	"github.com/Additional-Code/bazaar/internal/config"
)

// ErrDisabled is returned when no upload URL is configured.
var ErrDisabled = errors.New("media uploads disabled")

// Asset is the CDN-side record for an uploaded image.
type Asset struct {
	ID  string `json:"file_id"`
	URL string `json:"url"`
}

// Client pushes product images to the external CDN. Transformation and
// delivery stay on the CDN side; we only store the returned URL.
type Client struct {
	httpClient *http.Client
	cfg        config.Media
	logger     *zap.Logger
}

// NewClient builds a CDN client from configuration.
func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Media.Timeout},
		cfg:        cfg.Media,
		logger:     logger,
	}
}

// Enabled reports whether an upload endpoint is configured.
func (c *Client) Enabled() bool {
	return c.cfg.UploadURL != ""
}

// Upload sends an image as multipart form data and returns the hosted asset.
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (*Asset, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := form.WriteField("fileName", filename); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.UploadURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.SetBasicAuth(c.cfg.Key, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cdn upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.logger.Warn("cdn rejected upload", zap.Int("status", resp.StatusCode), zap.String("file", filename))
		return nil, fmt.Errorf("cdn upload: status %d", resp.StatusCode)
	}

	var asset Asset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &asset, nil
}
