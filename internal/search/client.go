// File path: internal/search/client.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nicodishanthj/shopsense/internal/common"
	"github.com/nicodishanthj/shopsense/internal/common/telemetry"
)

// Client talks to the managed hybrid search service over HTTP. Each named
// service indexes one relation (the catalog or a staging relation) and ranks
// lexical matches together with semantic relevance on the service side.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	available  bool

	cfg Config
}

// NewFromEnv constructs a client from environment configuration.
func NewFromEnv(ctx context.Context) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg)
}

// New constructs a client using the provided configuration. A service that is
// unreachable at startup leaves the client in a degraded (unavailable) state
// rather than failing construction; every search then degrades to empty.
func New(ctx context.Context, cfg Config) (*Client, error) {
	baseURL := fmt.Sprintf("%s://%s:%s/api/v1", cfg.Scheme, cfg.Host, cfg.Port)
	logger := common.Logger()
	logger.Info(
		"search: initializing hybrid search client",
		"host", cfg.Host,
		"port", cfg.Port,
		"service", cfg.CatalogService,
		"timeout", cfg.Timeout,
	)
	transport := &http.Transport{
		MaxIdleConns:        cfg.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: cfg.HTTPMaxIdlePerHost,
		IdleConnTimeout:     cfg.HTTPIdleConnTimeout,
	}
	client := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		cfg:        cfg,
	}
	if err := client.ping(ctx); err != nil {
		logger.Warn("search: service unreachable at startup", "error", err)
		return client, nil
	}
	client.available = true
	logger.Info("search: hybrid search connection established")
	return client, nil
}

// Available reports whether the service answered the startup health check.
func (c *Client) Available() bool {
	return c != nil && c.available
}

// CatalogService returns the configured catalog-wide service name.
func (c *Client) CatalogService() string {
	if c == nil {
		return ""
	}
	return c.cfg.CatalogService
}

func (c *Client) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("health check status %d", resp.StatusCode)
	}
	return nil
}

type searchRequest struct {
	Query   string   `json:"query"`
	Columns []string `json:"columns"`
	Limit   int      `json:"limit"`
}

// Search runs a hybrid query against the named service and returns the
// decoded results. Transport failures and malformed payloads surface as
// errors; callers substitute an empty candidate set for either.
func (c *Client) Search(ctx context.Context, service, query string, columns []string, limit int) (*Response, error) {
	if c == nil {
		return nil, errors.New("search client not configured")
	}
	service = strings.TrimSpace(service)
	if service == "" {
		return nil, errors.New("search service name required")
	}
	body, err := json.Marshal(searchRequest{Query: query, Columns: columns, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/services/%s/search", c.baseURL, url.PathEscape(service))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	telemetry.RecordSearch(err)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", service, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search %s: status %d", service, resp.StatusCode)
	}
	decoded, err := DecodeResponse(payload)
	if err != nil {
		common.Logger().Warn("search: degraded response", "service", service, "error", err)
		return nil, err
	}
	return decoded, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
