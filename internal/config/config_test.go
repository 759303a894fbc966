package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	var (
		addr = "localhost:8080"
		dsn  = "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable"
		key  = "sk-test"
	)

	tcases := []struct {
		name    string
		addr    string
		dsn     string
		baseURL string
		key     string
		origins string
		err     bool
	}{
		{
			name: "valid config",
			addr: addr,
			dsn:  dsn,
			key:  key,
			err:  false,
		},
		{
			name: "empty address",
			addr: "",
			dsn:  dsn,
			key:  key,
			err:  true,
		},
		{
			name: "empty DSN",
			addr: addr,
			dsn:  "",
			key:  key,
			err:  true,
		},
		{
			name: "empty API key",
			addr: addr,
			dsn:  dsn,
			key:  "",
			err:  true,
		},
		{
			name:    "invalid base URL",
			addr:    addr,
			dsn:     dsn,
			baseURL: "not a url",
			key:     key,
			err:     true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			config, err := NewConfig(tc.addr, tc.dsn, tc.baseURL, tc.key, tc.origins)
			if tc.err {
				assert.Error(t, err, "expected error for config: %s", tc.name)
				return
			}
			assert.NoError(t, err, "expected no error for config: %s", tc.name)

			assert.Equal(t, tc.addr, config.ServerAddr, "expected server address to match")
			assert.Equal(t, tc.dsn, config.DatabaseDSN, "expected database DSN to match")
			assert.Equal(t, "https://api.openai.com", config.OpenAIBaseURL, "expected default base URL")
			assert.Equal(t, []string{"*"}, config.AllowedOrigins, "expected wildcard origin by default")
		})
	}
}

func TestNewConfigOrigins(t *testing.T) {
	config, err := NewConfig("localhost:8080", "dsn", "", "sk-test",
		"http://localhost:3000, http://localhost:5173")
	assert.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, config.AllowedOrigins)
}

func TestNewConfigTrimsBaseURLSlash(t *testing.T) {
	config, err := NewConfig("localhost:8080", "dsn", "https://proxy.example.com/", "sk-test", "")
	assert.NoError(t, err)
	assert.Equal(t, "https://proxy.example.com", config.OpenAIBaseURL)
}
