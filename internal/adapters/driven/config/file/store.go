// Package file loads graphcal's TOML configuration and overlays the
// environment.
package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/graphcal/internal/connectors/microsoft"
	"github.com/custodia-labs/graphcal/internal/connectors/microsoft/calendar"
	"github.com/custodia-labs/graphcal/internal/core/domain"
)

// Environment variables read by Load. They take precedence over the file.
const (
	EnvClientID  = "CLIENT_ID"
	EnvTenantID  = "TENANT_ID"
	EnvScopes    = "GRAPHCAL_SCOPES"
	EnvAuthority = "GRAPHCAL_AUTHORITY"
)

// AuthConfig is the [auth] section.
type AuthConfig struct {
	ClientID  string   `toml:"client_id"`
	TenantID  string   `toml:"tenant_id"`
	Scopes    []string `toml:"scopes,omitempty"`
	Authority string   `toml:"authority,omitempty"`
}

// GraphConfig is the [graph] section.
type GraphConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second,omitempty"`
	Burst             int     `toml:"burst,omitempty"`
}

// Config holds all graphcal configuration.
type Config struct {
	Auth     AuthConfig      `toml:"auth"`
	Calendar calendar.Config `toml:"calendar"`
	Graph    GraphConfig     `toml:"graph"`
}

// Credentials validates the [auth] section into domain credentials.
// Missing client or tenant id fails with ErrConfig.
func (c *Config) Credentials() (domain.Credentials, error) {
	creds, err := domain.NewCredentials(c.Auth.ClientID, c.Auth.TenantID, c.Auth.Scopes)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("%w (set %s and %s)", err, EnvClientID, EnvTenantID)
	}
	return creds, nil
}

// RateLimit returns the Graph client limiter settings.
// Unset values fall back to the client defaults.
func (c *Config) RateLimit() microsoft.RateLimitConfig {
	return microsoft.RateLimitConfig{
		RequestsPerSecond: c.Graph.RequestsPerSecond,
		BurstSize:         c.Graph.Burst,
	}
}

// Store reads and writes a config file.
type Store struct {
	path   string
	lookup func(string) (string, bool)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLookupEnv replaces the environment lookup. Used by tests.
func WithLookupEnv(lookup func(string) (string, bool)) StoreOption {
	return func(s *Store) {
		if lookup != nil {
			s.lookup = lookup
		}
	}
}

// NewStore creates a config store. An empty path uses DefaultPath.
func NewStore(path string, opts ...StoreOption) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	s := &Store{path: path, lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultPath returns ~/.graphcal/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".graphcal", "config.toml"), nil
}

// Path returns the file the store reads.
func (s *Store) Path() string {
	return s.path
}

// Load reads the config file and applies environment overrides.
// A missing file is not an error. Unknown keys are rejected.
func (s *Store) Load() (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", s.path, err)
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrConfig, s.path, err)
		}
	}

	s.applyEnvOverrides(&cfg)

	if err := cfg.Calendar.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Store) applyEnvOverrides(cfg *Config) {
	if v, ok := s.lookup(EnvClientID); ok && v != "" {
		cfg.Auth.ClientID = v
	}
	if v, ok := s.lookup(EnvTenantID); ok && v != "" {
		cfg.Auth.TenantID = v
	}
	if v, ok := s.lookup(EnvScopes); ok && v != "" {
		cfg.Auth.Scopes = ParseScopes(v)
	}
	if v, ok := s.lookup(EnvAuthority); ok && v != "" {
		cfg.Auth.Authority = v
	}
}

// Save writes cfg to the store's path, creating parent directories.
// The file is written with 0600 permissions.
func (s *Store) Save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write config %s: %w", s.path, err)
	}
	return nil
}

// ParseScopes splits a space or comma separated scope list.
func ParseScopes(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}
