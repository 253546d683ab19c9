package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port           int                 `json:"port"`
	LogConfig      logger.LogConfig    `json:"log_config"`
	DocumentHost   DocumentHostConfig  `json:"document_host"`
	Cache          CacheConfig         `json:"cache"`
	Pagination     PaginationConfig    `json:"pagination"`
	GraphQLGroups  map[string][]string `json:"graphql_groups"`
	TimeoutSeconds int                 `json:"timeout_seconds"`
	CORSAllowlist  []string            `json:"cors_allowlist"`
}

// DocumentHostConfig locates the canonical lore document and its
// proposals on the source-control host.
type DocumentHostConfig struct {
	Owner             string   `json:"owner"`
	Repo              string   `json:"repo"`
	Branch            string   `json:"branch"`
	DocumentPath      string   `json:"document_path"`
	Token             string   `json:"token"`
	APIMirrors        []string `json:"api_mirrors"`
	Proxy             string   `json:"proxy"`
	RequestsPerSecond float64  `json:"requests_per_second"`
}

type CacheConfig struct {
	TTLSeconds int `json:"ttl_seconds"`
	Size       int `json:"size"`
}

type PaginationConfig struct {
	DefaultLimit int `json:"default_limit"`
	MaxLimit     int `json:"max_limit"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if cfg.DocumentHost.Owner == "" || cfg.DocumentHost.Repo == "" {
		return fmt.Errorf("document_host.owner and document_host.repo are required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.DocumentHost.Branch == "" {
		cfg.DocumentHost.Branch = "main"
	}
	if cfg.DocumentHost.DocumentPath == "" {
		cfg.DocumentHost.DocumentPath = "README.md"
	}
	if len(cfg.DocumentHost.APIMirrors) == 0 {
		cfg.DocumentHost.APIMirrors = []string{"https://api.github.com"}
	}
	if cfg.DocumentHost.RequestsPerSecond <= 0 {
		cfg.DocumentHost.RequestsPerSecond = 1.2
	}
	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 300
	}
	if cfg.Cache.Size <= 0 {
		cfg.Cache.Size = 256
	}
	if cfg.Pagination.DefaultLimit <= 0 {
		cfg.Pagination.DefaultLimit = 20
	}
	if cfg.Pagination.MaxLimit <= 0 {
		cfg.Pagination.MaxLimit = 100
	}
	if cfg.Pagination.DefaultLimit > cfg.Pagination.MaxLimit {
		return fmt.Errorf("pagination.default_limit must not exceed pagination.max_limit")
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 10
	}
	for group, mirrors := range cfg.GraphQLGroups {
		if len(mirrors) == 0 {
			return fmt.Errorf("graphql_groups.%s has no mirrors", group)
		}
	}
	return nil
}
