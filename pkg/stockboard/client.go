// Package stockboard is a Go SDK for a running stock-server. It reads the
// same static artifacts the dashboard UI reads.
package stockboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"stockboard/internal/domain"
)

// Artifact types, re-exported for SDK users.
type (
	StocksIndex  = domain.StocksIndex
	StockSummary = domain.StockSummary
	StockSeries  = domain.StockSeries
	PricePoint   = domain.PricePoint
	Enrichment   = domain.Enrichment
)

// ErrDataUnavailable is wrapped by every fetch failure.
var ErrDataUnavailable = domain.ErrDataUnavailable

// DefaultTimeout is the per-request timeout of a new Client.
const DefaultTimeout = 30 * time.Second

// Client fetches artifacts from a stock-server.
type Client struct {
	baseURL string
	client  *resty.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(DefaultTimeout).
		SetHeader("Accept", "application/json")
	return &Client{baseURL: baseURL, client: client}
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Index fetches the stocks index.
func (c *Client) Index(ctx context.Context) (*StocksIndex, error) {
	var idx StocksIndex
	if err := c.getJSON(ctx, "/data/stocks-index.json", &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

// Series fetches the full price history for symbol.
func (c *Client) Series(ctx context.Context, symbol string) (StockSeries, error) {
	var series StockSeries
	if err := c.getJSON(ctx, "/data/prices/"+url.PathEscape(symbol)+".json", &series); err != nil {
		return StockSeries{}, err
	}
	return series, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.client.R().SetContext(ctx).Get(path)
	if err != nil {
		return fmt.Errorf("fetching %s: %w: %w", path, ErrDataUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("fetching %s: status %d: %w", path, resp.StatusCode(), ErrDataUnavailable)
	}
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return fmt.Errorf("decoding %s: %w: %w", path, ErrDataUnavailable, err)
	}
	return nil
}
