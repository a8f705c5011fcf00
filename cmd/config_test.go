package cmd

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		config := DefaultConfig()
		config.FHIR.URL = "http://fhir.example.com/fhir"
		config.Auth.SigningKey = "secret"
		return config
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})
	t.Run("FHIR URL not configured", func(t *testing.T) {
		config := valid()
		config.FHIR.URL = ""
		require.EqualError(t, config.Validate(), "FHIR store base URL is not configured")
	})
	t.Run("invalid FHIR URL", func(t *testing.T) {
		config := valid()
		config.FHIR.URL = "not-a-url"
		require.EqualError(t, config.Validate(), "invalid FHIR store base URL")
	})
	t.Run("signing key not configured", func(t *testing.T) {
		config := valid()
		config.Auth.SigningKey = ""
		require.EqualError(t, config.Validate(), "token signing key is not configured")
	})
	t.Run("non-positive search timeout", func(t *testing.T) {
		config := valid()
		config.FHIR.SearchTimeout = 0
		require.Error(t, config.Validate())
	})
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("GATEWAY_FHIR_URL", "http://fhir.example.com/fhir")
	t.Setenv("GATEWAY_FHIR_SEARCHTIMEOUT", "2s")
	t.Setenv("GATEWAY_AUTH_SIGNINGKEY", "secret")
	t.Setenv("GATEWAY_PUBLIC_ADDRESS", ":9090")

	config, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "http://fhir.example.com/fhir", config.FHIR.URL)
	assert.Equal(t, 2*time.Second, config.FHIR.SearchTimeout)
	assert.Equal(t, ":9090", config.Public.Address)
	assert.Equal(t, "fhir-gateway", config.Auth.Issuer, "default issuer is kept")
	assert.Equal(t, zerolog.InfoLevel, config.LogLevel)
}
