// Package edex implements domain.DataAccess against a JSON data-access
// gateway that fronts an AWIPS EDEX server.
package edex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/storm-radar-etl/internal/domain"
)

const (
	timesPath   = "/times"
	recordsPath = "/radar/records"
)

// Client implements domain.DataAccess over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a data-access client. The timeout bounds each request.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// AvailableTimes lists the observation times the catalog holds for a request.
func (c *Client) AvailableTimes(ctx context.Context, req domain.DataRequest) ([]time.Time, error) {
	var resp timesResponse
	if err := c.post(ctx, timesPath, req, &resp); err != nil {
		return nil, fmt.Errorf("available times: %w", err)
	}
	return resp.Times, nil
}

// RadarRecords fetches the radar records matching a product request.
func (c *Client) RadarRecords(ctx context.Context, req domain.ProductRequest) ([]domain.RadarRecord, error) {
	var resp recordsResponse
	if err := c.post(ctx, recordsPath, req, &resp); err != nil {
		return nil, fmt.Errorf("radar records: %w", err)
	}
	return resp.Records, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("data service response", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("data service error: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Gateway response types.

type timesResponse struct {
	Times []time.Time `json:"times"`
}

type recordsResponse struct {
	Records []domain.RadarRecord `json:"records"`
}
