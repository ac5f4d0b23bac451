// File path: internal/search/config.go
package search

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Scheme  string
	Host    string
	Port    string
	APIKey  string
	Timeout time.Duration

	// CatalogService is the service name indexing the full product catalog.
	CatalogService string

	HTTPMaxIdleConns    int
	HTTPMaxIdlePerHost  int
	HTTPIdleConnTimeout time.Duration
}

// LoadConfig reads the hybrid search service endpoint from the environment.
func LoadConfig() (Config, error) {
	cfg := Config{
		Scheme:              "http",
		Host:                "localhost",
		Port:                "8108",
		CatalogService:      "product_search_service",
		Timeout:             30 * time.Second,
		HTTPMaxIdleConns:    16,
		HTTPMaxIdlePerHost:  8,
		HTTPIdleConnTimeout: 90 * time.Second,
	}
	if v := strings.TrimSpace(os.Getenv("SHOPSENSE_SEARCH_SCHEME")); v != "" {
		cfg.Scheme = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOPSENSE_SEARCH_HOST")); v != "" {
		cfg.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOPSENSE_SEARCH_PORT")); v != "" {
		cfg.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOPSENSE_SEARCH_API_KEY")); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOPSENSE_SEARCH_SERVICE")); v != "" {
		cfg.CatalogService = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOPSENSE_SEARCH_TIMEOUT")); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHOPSENSE_SEARCH_TIMEOUT: %w", err)
		}
		cfg.Timeout = timeout
	}
	return cfg, nil
}
