// File path: internal/recommend/config.go
package recommend

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// hardRankCap bounds the similarity cross join regardless of configuration;
// the ranking cost is O(context x candidates).
const hardRankCap = 100

type Config struct {
	CandidateLimit      int           `yaml:"candidate_limit"`
	RankLimit           int           `yaml:"rank_limit"`
	ContextLimit        int           `yaml:"context_limit"`
	FallbackLimit       int           `yaml:"fallback_limit"`
	FinalLimit          int           `yaml:"final_limit"`
	SimilarityThreshold float64       `yaml:"similarity_threshold"`
	EmbedDim            int           `yaml:"embed_dim"`
	CacheTTL            time.Duration `yaml:"cache_ttl"`
}

func (c Config) Merge(override Config) Config {
	result := c
	if override.CandidateLimit > 0 {
		result.CandidateLimit = override.CandidateLimit
	}
	if override.RankLimit > 0 {
		result.RankLimit = override.RankLimit
	}
	if override.ContextLimit > 0 {
		result.ContextLimit = override.ContextLimit
	}
	if override.FallbackLimit > 0 {
		result.FallbackLimit = override.FallbackLimit
	}
	if override.FinalLimit > 0 {
		result.FinalLimit = override.FinalLimit
	}
	if override.SimilarityThreshold != 0 {
		result.SimilarityThreshold = override.SimilarityThreshold
	}
	if override.EmbedDim > 0 {
		result.EmbedDim = override.EmbedDim
	}
	if override.CacheTTL > 0 {
		result.CacheTTL = override.CacheTTL
	}
	return result
}

// LoadConfig assembles pipeline limits from defaults, an optional YAML file
// (SHOPSENSE_PIPELINE_CONFIG) and environment overrides, in that order.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if path := strings.TrimSpace(os.Getenv("SHOPSENSE_PIPELINE_CONFIG")); path != "" {
		fileCfg, err := loadConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.Merge(fileCfg)
	}
	envCfg, err := loadConfigEnv()
	if err != nil {
		return Config{}, err
	}
	cfg = cfg.Merge(envCfg)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.CandidateLimit <= 0 {
		c.CandidateLimit = 100
	}
	if c.RankLimit <= 0 || c.RankLimit > hardRankCap {
		c.RankLimit = hardRankCap
	}
	if c.ContextLimit <= 0 {
		c.ContextLimit = 50
	}
	if c.FallbackLimit <= 0 {
		c.FallbackLimit = 20
	}
	if c.FinalLimit <= 0 {
		c.FinalLimit = 100
	}
	if c.EmbedDim <= 0 {
		c.EmbedDim = 768
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Minute
	}
}

func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read pipeline config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse pipeline config: %w", err)
	}
	return cfg, nil
}

func loadConfigEnv() (Config, error) {
	cfg := Config{}
	intVars := map[string]*int{
		"SHOPSENSE_CANDIDATE_LIMIT": &cfg.CandidateLimit,
		"SHOPSENSE_RANK_LIMIT":      &cfg.RankLimit,
		"SHOPSENSE_CONTEXT_LIMIT":   &cfg.ContextLimit,
		"SHOPSENSE_FALLBACK_LIMIT":  &cfg.FallbackLimit,
		"SHOPSENSE_FINAL_LIMIT":     &cfg.FinalLimit,
		"SHOPSENSE_EMBED_DIM":       &cfg.EmbedDim,
	}
	for name, target := range intVars {
		raw := strings.TrimSpace(os.Getenv(name))
		if raw == "" {
			continue
		}
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", name, err)
		}
		*target = parsed
	}
	if raw := strings.TrimSpace(os.Getenv("SHOPSENSE_SIMILARITY_THRESHOLD")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHOPSENSE_SIMILARITY_THRESHOLD: %w", err)
		}
		cfg.SimilarityThreshold = parsed
	}
	if raw := strings.TrimSpace(os.Getenv("SHOPSENSE_CACHE_TTL")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHOPSENSE_CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = parsed
	}
	return cfg, nil
}
