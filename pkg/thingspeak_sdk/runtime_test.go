package thingspeak_sdk_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Ratio1/thingspeak_sdk_go/pkg/thingspeak"
	"github.com/Ratio1/thingspeak_sdk_go/pkg/thingspeak_sdk"
)

func TestNewFromEnvHTTPMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/update":
			io.WriteString(w, "3")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Setenv("THINGSPEAK_RUNTIME_MODE", "http")
	t.Setenv("THINGSPEAK_API_URL", srv.URL)

	client, m, mode, err := thingspeak_sdk.NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	if mode != "http" {
		t.Fatalf("expected http mode, got %q", mode)
	}
	if client == nil || m != nil {
		t.Fatalf("expected client without mock")
	}
	if got := client.WriteField(context.Background(), 1, 1, "x", "K"); got != thingspeak.Success {
		t.Fatalf("WriteField = %d", got)
	}
}

func TestNewFromEnvMockAutoFallback(t *testing.T) {
	t.Setenv("THINGSPEAK_RUNTIME_MODE", "")
	t.Setenv("THINGSPEAK_API_URL", "")
	t.Setenv("THINGSPEAK_MOCK_SEED", "")

	client, m, mode, err := thingspeak_sdk.NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	if mode != "mock" || m == nil {
		t.Fatalf("expected mock mode, got %q", mode)
	}
	if err := m.AddChannel(1, "W", ""); err != nil {
		t.Fatalf("AddChannel: %v", err)
	}
	if got := client.WriteField(context.Background(), 1, 1, "x", "W"); got != thingspeak.Success {
		t.Fatalf("mock WriteField = %d", got)
	}
}

func TestNewFromEnvSeed(t *testing.T) {
	seed := `
channels:
  - id: 100
    write_key: W
    entries:
      - fields:
          field3: "on"
        status: "seeded"
`
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	t.Setenv("THINGSPEAK_RUNTIME_MODE", "mock")
	t.Setenv("THINGSPEAK_MOCK_SEED", path)

	client, _, mode, err := thingspeak_sdk.NewFromEnv()
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	if mode != "mock" {
		t.Fatalf("expected mock mode, got %q", mode)
	}
	ctx := context.Background()
	if got := client.ReadStringField(ctx, 100, 3, ""); got != "on" {
		t.Fatalf("seeded field = %q (status %d)", got, client.LastReadStatus())
	}
	if got := client.ReadStatus(ctx, 100, ""); got != "seeded" {
		t.Fatalf("seeded status = %q", got)
	}
}

func TestNewFromEnvErrors(t *testing.T) {
	t.Setenv("THINGSPEAK_RUNTIME_MODE", "bogus")
	if _, _, _, err := thingspeak_sdk.NewFromEnv(); err == nil {
		t.Fatalf("expected error for unknown mode")
	}

	t.Setenv("THINGSPEAK_RUNTIME_MODE", "mock")
	t.Setenv("THINGSPEAK_MOCK_SEED", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, _, _, err := thingspeak_sdk.NewFromEnv(); err == nil {
		t.Fatalf("expected error for missing seed")
	}
}
