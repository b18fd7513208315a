package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDoReturnsStatusAndBodyVerbatim(t *testing.T) {
	var gotUA, gotKey, gotBody, gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotKey = r.Header.Get("X-Test-Key")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "missing")
	}))
	defer srv.Close()

	cl, err := NewClient(srv.URL, WithHeaders(http.Header{"User-Agent": {"agent/1.0"}}))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	resp, err := cl.Do(context.Background(), &Request{
		Method: http.MethodPost,
		Path:   "feeds/last.txt?status=true",
		Header: http.Header{"X-Test-Key": {"k"}},
		Body:   []byte("a=b"),
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound || resp.Body != "missing" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if gotUA != "agent/1.0" || gotKey != "k" || gotBody != "a=b" {
		t.Fatalf("unexpected request: ua=%q key=%q body=%q", gotUA, gotKey, gotBody)
	}
	if gotPath != "/feeds/last.txt" || gotQuery != "status=true" {
		t.Fatalf("unexpected url: path=%q query=%q", gotPath, gotQuery)
	}
}

func TestRequestHeaderOverridesDefault(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Values("User-Agent")
	}))
	defer srv.Close()

	cl, err := NewClient(srv.URL, WithHeaders(http.Header{"User-Agent": {"default"}}))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := cl.Do(context.Background(), &Request{
		Method: http.MethodGet,
		Path:   "/",
		Header: http.Header{"User-Agent": {"override"}},
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(got) != 1 || got[0] != "override" {
		t.Fatalf("expected single overridden header, got %v", got)
	}
}

func TestDoTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cl, err := NewClient(srv.URL, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = cl.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/slow"})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.Kind != KindTimeout {
		t.Fatalf("expected timeout kind, got %s", te.Kind)
	}
}

func TestDoConnectFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	cl, err := NewClient(url)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = cl.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/"})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.Kind != KindConnect {
		t.Fatalf("expected connect kind, got %s (%v)", te.Kind, te.Err)
	}
}

func TestNewClientValidation(t *testing.T) {
	for _, raw := range []string{"", "   ", "://bad", "/relative"} {
		if _, err := NewClient(raw); err == nil {
			t.Fatalf("expected error for base URL %q", raw)
		}
	}
}
