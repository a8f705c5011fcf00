package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

type Config struct {
	// Public holds the configuration for the public interface.
	Public InterfaceConfig `koanf:"public"`
	// FHIR holds the configuration for the upstream FHIR store.
	FHIR FHIRConfig `koanf:"fhir"`
	// Auth holds the token signing configuration.
	Auth AuthConfig `koanf:"auth"`
	// Database holds the user account store configuration. When no URL is
	// set, accounts are kept in memory and lost on restart.
	Database DatabaseConfig `koanf:"database"`
	LogLevel zerolog.Level  `koanf:"loglevel"`
}

func (c Config) Validate() error {
	if c.FHIR.URL == "" {
		return errors.New("FHIR store base URL is not configured")
	}
	parsed, err := url.Parse(c.FHIR.URL)
	if err != nil || parsed.Host == "" {
		return errors.New("invalid FHIR store base URL")
	}
	if c.Auth.SigningKey == "" {
		return errors.New("token signing key is not configured")
	}
	if c.FHIR.SearchTimeout <= 0 {
		return errors.New("FHIR search timeout must be positive")
	}
	return nil
}

// InterfaceConfig holds the configuration for an HTTP interface.
type InterfaceConfig struct {
	// Address holds the address to listen on.
	Address string `koanf:"address"`
}

type FHIRConfig struct {
	// URL holds the base URL of the upstream FHIR store.
	URL string `koanf:"url"`
	// SearchTimeout bounds each history sub-search individually.
	SearchTimeout time.Duration `koanf:"searchtimeout"`
}

func (c FHIRConfig) ParseURL() *url.URL {
	u, _ := url.Parse(c.URL)
	return u
}

type AuthConfig struct {
	// SigningKey is the HMAC secret used to sign and verify tokens.
	SigningKey string `koanf:"signingkey"`
	Issuer     string `koanf:"issuer"`
}

type DatabaseConfig struct {
	// URL is a Postgres connection string.
	URL string `koanf:"url"`
}

// LoadConfig loads the configuration from the environment.
func LoadConfig() (*Config, error) {
	result := DefaultConfig()
	if err := loadConfigInto(&result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &result, nil
}

func loadConfigInto(target any) error {
	k := koanf.New(".")
	err := k.Load(env.ProviderWithValue("GATEWAY_", ".", func(key string, value string) (string, interface{}) {
		key = strings.Replace(strings.ToLower(strings.TrimPrefix(key, "GATEWAY_")), "_", ".", -1)
		if len(value) == 0 {
			return key, nil
		}
		return key, value
	}), nil)
	if err != nil {
		return err
	}
	return k.Unmarshal("", target)
}

// DefaultConfig returns sensible, but not complete, default configuration values.
func DefaultConfig() Config {
	return Config{
		LogLevel: zerolog.InfoLevel,
		Public: InterfaceConfig{
			Address: ":8080",
		},
		FHIR: FHIRConfig{
			SearchTimeout: 5 * time.Second,
		},
		Auth: AuthConfig{
			Issuer: "fhir-gateway",
		},
	}
}
