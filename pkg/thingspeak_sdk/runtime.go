package thingspeak_sdk

import (
	"fmt"
	"os"
	"strings"

	"github.com/Ratio1/thingspeak_sdk_go/internal/devseed"
	"github.com/Ratio1/thingspeak_sdk_go/pkg/thingspeak"
	"github.com/Ratio1/thingspeak_sdk_go/pkg/thingspeak/mock"
)

const (
	envMode     = "THINGSPEAK_RUNTIME_MODE"
	envAPIURL   = "THINGSPEAK_API_URL"
	envMockSeed = "THINGSPEAK_MOCK_SEED"
	modeAuto    = "auto"
	modeHTTP    = "http"
	modeMock    = "mock"
)

// NewFromEnv initialises a client based on environment variables and returns
// the resolved mode ("http" or "mock"). In mock mode the backing *mock.Mock is
// returned as well so callers can register channels; it is nil in http mode.
func NewFromEnv(opts ...thingspeak.Option) (*thingspeak.Client, *mock.Mock, string, error) {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv(envMode)))
	apiURL := strings.TrimSpace(os.Getenv(envAPIURL))

	switch mode {
	case "", modeAuto:
		if apiURL != "" {
			return newHTTPClient(opts)
		}
		return newMockClient(opts)
	case modeHTTP:
		return newHTTPClient(opts)
	case modeMock:
		return newMockClient(opts)
	default:
		return nil, nil, "", fmt.Errorf("thingspeak_sdk: unsupported %s value %q", envMode, mode)
	}
}

func newHTTPClient(opts []thingspeak.Option) (*thingspeak.Client, *mock.Mock, string, error) {
	client, err := thingspeak.NewFromEnv(opts...)
	if err != nil {
		return nil, nil, "", fmt.Errorf("thingspeak_sdk: init HTTP client: %w", err)
	}
	return client, nil, modeHTTP, nil
}

func newMockClient(opts []thingspeak.Option) (*thingspeak.Client, *mock.Mock, string, error) {
	m := mock.New()
	if path := strings.TrimSpace(os.Getenv(envMockSeed)); path != "" {
		channels, err := devseed.LoadChannelSeed(path)
		if err != nil {
			return nil, nil, "", fmt.Errorf("thingspeak_sdk: load mock seed: %w", err)
		}
		if err := m.Seed(channels); err != nil {
			return nil, nil, "", fmt.Errorf("thingspeak_sdk: apply mock seed: %w", err)
		}
	}
	return thingspeak.NewWithTransport(m, opts...), m, modeMock, nil
}
