package clients

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// ClientConfig tells callers how to reach the kinship service
type ClientConfig struct {
	// Base URL of the kinship service, e.g. http://kinship:8080
	KinshipURL string

	// Shared secret sent as X-Internal-Service on mutation hooks
	InternalSecret string

	Timeout time.Duration
}

// LoadClientConfig reads KINSHIP_URL, INTERNAL_SERVICE_SECRET and
// KINSHIP_CLIENT_TIMEOUT, falling back to local development defaults
func LoadClientConfig() *ClientConfig {
	cfg := &ClientConfig{
		KinshipURL:     getEnvOrDefault("KINSHIP_URL", "http://localhost:8080"),
		InternalSecret: getEnvOrDefault("INTERNAL_SERVICE_SECRET", "default-internal-secret-change-in-prod"),
		Timeout:        30 * time.Second,
	}
	if d, err := time.ParseDuration(os.Getenv("KINSHIP_CLIENT_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg
}

// Validate checks that the base URL is absolute http(s)
func (c *ClientConfig) Validate() error {
	u, err := url.Parse(c.KinshipURL)
	if err != nil {
		return fmt.Errorf("invalid kinship url %q: %w", c.KinshipURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("kinship url %q must be an absolute http(s) url", c.KinshipURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("kinship client timeout must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
