package server_test

import (
	"testing"

	"affiliate-sync/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Origins(t *testing.T) {
	tests := []struct {
		name    string
		origins string
		want    string
	}{
		{"Wildcard", "*", "*"},
		{"Empty", "", "*"},
		{"Single", "https://example.com", "https://example.com"},
		{"Trimmed list", " https://a.com , https://b.com,", "https://a.com,https://b.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{AllowedOrigins: tt.origins}
			assert.Equal(t, tt.want, c.Origins())
		})
	}
}

func TestConfig_AdminEnabled(t *testing.T) {
	assert.False(t, server.Config{}.AdminEnabled())
	assert.True(t, server.Config{ApiKey: "secret"}.AdminEnabled())
}
