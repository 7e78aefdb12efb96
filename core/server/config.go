package server

import "strings"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the admin API.
	// The public vote endpoint is never protected by it.
	ApiKey string `mapstructure:"api_key" default:""`
	// AllowedOrigins is a comma separated list of origins allowed to call the
	// public endpoints from a browser.
	AllowedOrigins string `mapstructure:"allowed_origins" default:"*"`
}

// Origins returns the configured CORS origins as a normalized comma separated list.
func (c Config) Origins() string {
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return "*"
	}
	return strings.Join(out, ",")
}

// AdminEnabled reports whether admin routes can be served.
// Without an API key the admin group is not mounted at all.
func (c Config) AdminEnabled() bool {
	return c.ApiKey != ""
}
