package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Ratio1/thingspeak_sdk_go/internal/devseed"
	"github.com/Ratio1/thingspeak_sdk_go/pkg/thingspeak"
	"github.com/Ratio1/thingspeak_sdk_go/pkg/thingspeak/mock"
)

type failConfig struct {
	rate float64
	code int
}

type channelFlag struct {
	id       uint64
	writeKey string
	readKey  string
}

const apiURLEnv = "THINGSPEAK_API_URL"

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", ":8788", "listen address")
	seed := flag.String("seed", "", "path to YAML/JSON channel seed for the mock")
	channels := flag.String("channels", "", "extra channels as id:writeKey[:readKey], comma separated")
	latency := flag.Duration("latency", 0, "artificial latency to inject per request")
	fail := flag.String("fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	rateLimit := flag.Duration("rate-limit", mock.DefaultRateLimit, "minimum spacing between writes to a channel (0 disables)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	m := mock.New(mock.WithRateLimit(*rateLimit))
	if *seed != "" {
		entries, err := devseed.LoadChannelSeed(*seed)
		if err != nil {
			return fmt.Errorf("load seed: %w", err)
		}
		if err := m.Seed(entries); err != nil {
			return fmt.Errorf("apply seed: %w", err)
		}
	}
	extra, err := parseChannels(*channels)
	if err != nil {
		return fmt.Errorf("parse channels flag: %w", err)
	}
	for _, ch := range extra {
		if err := m.AddChannel(ch.id, ch.writeKey, ch.readKey); err != nil {
			return err
		}
	}

	failCfg, err := parseFailConfig(*fail)
	if err != nil {
		return fmt.Errorf("parse fail flag: %w", err)
	}

	server := &http.Server{
		Addr:         *addr,
		Handler:      newRouter(m, logger, *latency, failCfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("thingspeak-sandbox listening", "addr", *addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	host := *addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	fmt.Println()
	fmt.Println("export THINGSPEAK_RUNTIME_MODE=http")
	fmt.Printf("export %s=http://%s\n", apiURLEnv, host)
	fmt.Println()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-done:
	}
	logger.Info("shutting down thingspeak-sandbox")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func newRouter(m *mock.Mock, logger *slog.Logger, delay time.Duration, failCfg failConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestLog(logger))
	r.Use(faultInjection(delay, failCfg))

	r.Post("/update", func(w http.ResponseWriter, r *http.Request) {
		handleUpdate(w, r, m)
	})
	for _, last := range []string{"last", "last.txt", "last.json"} {
		r.Get("/channels/{channel}/fields/{field}/"+last, func(w http.ResponseWriter, r *http.Request) {
			handleLastField(w, r, m)
		})
		r.Get("/channels/{channel}/feeds/"+last, func(w http.ResponseWriter, r *http.Request) {
			handleLastFeed(w, r, m)
		})
	}
	return r
}

func requestLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			metrics := httpsnoop.CaptureMetrics(next, w, r)
			logger.Info("handled",
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", metrics.Code,
				"duration", metrics.Duration,
				"bytes", metrics.Written,
			)
		})
	}
}

func faultInjection(delay time.Duration, failCfg failConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-r.Context().Done():
					return
				}
			}
			if failCfg.rate > 0 && rand.Float64() < failCfg.rate {
				status := failCfg.code
				if status == 0 {
					status = http.StatusInternalServerError
				}
				http.Error(w, "failure injected", status)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func handleUpdate(w http.ResponseWriter, r *http.Request, m *mock.Mock) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	body := string(data)
	key := r.Header.Get(thingspeak.HeaderAPIKey)
	if key == "" {
		key = formValue(body, "api_key")
	}
	status, resp := m.Update(r.Context(), key, body)
	writeText(w, status, resp)
}

func handleLastField(w http.ResponseWriter, r *http.Request, m *mock.Mock) {
	id, err := strconv.ParseUint(chi.URLParam(r, "channel"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	field, err := strconv.Atoi(chi.URLParam(r, "field"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	status, resp := m.LastField(r.Context(), id, field, readKey(r))
	writeText(w, status, resp)
}

func handleLastFeed(w http.ResponseWriter, r *http.Request, m *mock.Mock) {
	id, err := strconv.ParseUint(chi.URLParam(r, "channel"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	status, resp := m.LastFeed(r.Context(), id, readKey(r), r.URL.Query().Get("status") == "true")
	writeText(w, status, resp)
}

func readKey(r *http.Request) string {
	if key := r.Header.Get(thingspeak.HeaderAPIKey); key != "" {
		return key
	}
	return r.URL.Query().Get("api_key")
}

// formValue finds name in an un-encoded form body.
func formValue(body, name string) string {
	for _, term := range strings.Split(body, "&") {
		if k, v, ok := strings.Cut(term, "="); ok && k == name {
			return v
		}
	}
	return ""
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func parseChannels(raw string) ([]channelFlag, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []channelFlag
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		segs := strings.Split(part, ":")
		if len(segs) < 2 || len(segs) > 3 {
			return nil, fmt.Errorf("invalid channel %q, want id:writeKey[:readKey]", part)
		}
		id, err := strconv.ParseUint(segs[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid channel id %q: %w", segs[0], err)
		}
		ch := channelFlag{id: id, writeKey: segs[1]}
		if len(segs) == 3 {
			ch.readKey = segs[2]
		}
		out = append(out, ch)
	}
	return out, nil
}

func parseFailConfig(raw string) (failConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return failConfig{}, nil
	}
	cfg := failConfig{code: http.StatusInternalServerError}
	parts := strings.Split(raw, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keyVal := strings.SplitN(part, "=", 2)
		if len(keyVal) != 2 {
			return failConfig{}, fmt.Errorf("invalid fail segment %q", part)
		}
		switch strings.TrimSpace(keyVal[0]) {
		case "rate":
			val, err := strconv.ParseFloat(strings.TrimSpace(keyVal[1]), 64)
			if err != nil {
				return failConfig{}, err
			}
			if val < 0 || val > 1 {
				return failConfig{}, fmt.Errorf("fail rate must be between 0 and 1, got %v", val)
			}
			cfg.rate = val
		case "code":
			val, err := strconv.Atoi(strings.TrimSpace(keyVal[1]))
			if err != nil {
				return failConfig{}, err
			}
			cfg.code = val
		default:
			return failConfig{}, fmt.Errorf("unknown fail key %q", keyVal[0])
		}
	}
	return cfg, nil
}
