package thingspeak

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	envAPIURL  = "THINGSPEAK_API_URL"
	envTimeout = "THINGSPEAK_TIMEOUT"
)

// NewFromEnv initialises an HTTP client from THINGSPEAK_API_URL (default
// DefaultBaseURL) and THINGSPEAK_TIMEOUT (a Go duration). Additional options
// are applied after the environment.
func NewFromEnv(opts ...Option) (*Client, error) {
	var envOpts []Option
	if baseURL := strings.TrimSpace(os.Getenv(envAPIURL)); baseURL != "" {
		envOpts = append(envOpts, WithBaseURL(baseURL))
	}
	if raw := strings.TrimSpace(os.Getenv(envTimeout)); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("thingspeak: invalid %s value %q: %w", envTimeout, raw, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("thingspeak: %s must be positive, got %s", envTimeout, d)
		}
		envOpts = append(envOpts, WithTimeout(d))
	}

	client, err := New(append(envOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("thingspeak: init HTTP client: %w", err)
	}
	return client, nil
}
