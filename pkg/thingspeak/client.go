package thingspeak

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ratio1/thingspeak_sdk_go/internal/httpx"
)

// Client talks to the ThingSpeak channel API. It holds the pending multi-field
// update and the status of the last read, so it must not be shared between
// goroutines without external serialization.
type Client struct {
	transport      Transport
	logger         *slog.Logger
	pending        *Update
	lastReadStatus Code
}

type config struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*config)

// WithBaseURL overrides the API endpoint (default DefaultBaseURL).
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client used by the default transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *config) {
		c.httpClient = h
	}
}

// WithTimeout overrides the per-request timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithLogger sets the logger receiving debug records for every exchange.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// New constructs a Client that sends requests over HTTP.
func New(opts ...Option) (*Client, error) {
	cfg := newConfig(opts)
	httpOpts := []httpx.Option{
		httpx.WithHeaders(http.Header{"User-Agent": {UserAgent}}),
		httpx.WithTimeout(cfg.timeout),
	}
	if cfg.httpClient != nil {
		httpOpts = append(httpOpts, httpx.WithHTTPClient(cfg.httpClient))
	}
	cl, err := httpx.NewClient(cfg.baseURL, httpOpts...)
	if err != nil {
		return nil, fmt.Errorf("thingspeak: %w", err)
	}
	return newClient(&httpBackend{client: cl}, cfg.logger), nil
}

// NewWithTransport allows callers to supply a custom transport (e.g., mocks).
// Only WithLogger is meaningful here.
func NewWithTransport(t Transport, opts ...Option) *Client {
	cfg := newConfig(opts)
	return newClient(t, cfg.logger)
}

func newConfig(opts []Option) *config {
	cfg := &config{
		baseURL: DefaultBaseURL,
		timeout: httpx.DefaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func newClient(t Transport, logger *slog.Logger) *Client {
	return &Client{
		transport:      t,
		logger:         logger,
		pending:        NewUpdate(),
		lastReadStatus: Success,
	}
}

// Pending exposes the staged update for inspection.
func (c *Client) Pending() *Update {
	return c.pending
}

func (c *Client) send(ctx context.Context, req *Request) (*Response, Code) {
	if c == nil || c.transport == nil {
		return nil, UnexpectedFail
	}
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		code := codeForError(err)
		c.logger.Debug("thingspeak: transport failure", "method", req.Method, "path", req.Path, "code", int(code), "err", err)
		return nil, code
	}
	if resp == nil {
		return nil, UnexpectedFail
	}
	return resp, Code(resp.StatusCode)
}

func codeForError(err error) Code {
	var te *TransportError
	if errors.As(err, &te) && te.Code != 0 {
		return te.Code
	}
	var he *httpx.TransportError
	if errors.As(err, &he) {
		switch he.Kind {
		case httpx.KindConnect:
			return ConnectFailed
		case httpx.KindTimeout:
			return Timeout
		}
		return UnexpectedFail
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	return UnexpectedFail
}

type httpBackend struct {
	client *httpx.Client
}

func (b *httpBackend) Send(ctx context.Context, req *Request) (*Response, error) {
	if b == nil || b.client == nil {
		return nil, &TransportError{Code: UnexpectedFail, Err: errors.New("http backend not configured")}
	}
	resp, err := b.client.Do(ctx, &httpx.Request{
		Method: req.Method,
		Path:   req.Path,
		Header: req.Header,
		Body:   req.Body,
	})
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}
