package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Ratio1/thingspeak_sdk_go/internal/devseed"
	"github.com/Ratio1/thingspeak_sdk_go/pkg/thingspeak"
)

// DefaultRateLimit is the minimum spacing between two accepted writes to a
// channel on the free ThingSpeak tier.
const DefaultRateLimit = 15 * time.Second

// Entry is one accepted channel update.
type Entry struct {
	EntryID   int64
	CreatedAt time.Time
	Fields    [thingspeak.FieldMax]string
	Status    string
}

type channel struct {
	id        uint64
	name      string
	writeKey  string
	readKey   string
	entries   []Entry
	lastWrite time.Time
}

// Mock implements an in-memory ThingSpeak channel service. Unlike the client
// it is safe for concurrent use, since the sandbox serves it over HTTP.
type Mock struct {
	mu         sync.RWMutex
	channels   map[uint64]*channel
	byWriteKey map[string]*channel
	now        func() time.Time
	rateLimit  time.Duration
}

// Option configures the mock instance.
type Option func(*Mock)

// WithClock overrides the clock used for rate limiting and timestamps (useful in tests).
func WithClock(fn func() time.Time) Option {
	return func(m *Mock) {
		if fn != nil {
			m.now = fn
		}
	}
}

// WithRateLimit overrides the minimum spacing between writes; 0 disables it.
func WithRateLimit(d time.Duration) Option {
	return func(m *Mock) {
		if d >= 0 {
			m.rateLimit = d
		}
	}
}

// New creates an empty mock service.
func New(opts ...Option) *Mock {
	m := &Mock{
		channels:   make(map[uint64]*channel),
		byWriteKey: make(map[string]*channel),
		now: func() time.Time {
			return time.Now().UTC()
		},
		rateLimit: DefaultRateLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mock) clock() time.Time {
	if m.now == nil {
		return time.Now().UTC()
	}
	return m.now().UTC()
}

// AddChannel registers a channel. An empty readKey makes the channel public.
func (m *Mock) AddChannel(id uint64, writeKey, readKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addChannelLocked(id, "", writeKey, readKey)
}

func (m *Mock) addChannelLocked(id uint64, name, writeKey, readKey string) error {
	if id == 0 {
		return fmt.Errorf("mock thingspeak: channel id is required")
	}
	if strings.TrimSpace(writeKey) == "" {
		return fmt.Errorf("mock thingspeak: channel %d: write key is required", id)
	}
	if _, ok := m.channels[id]; ok {
		return fmt.Errorf("mock thingspeak: channel %d already exists", id)
	}
	if other, ok := m.byWriteKey[writeKey]; ok {
		return fmt.Errorf("mock thingspeak: write key already used by channel %d", other.id)
	}
	ch := &channel{id: id, name: name, writeKey: writeKey, readKey: readKey}
	m.channels[id] = ch
	m.byWriteKey[writeKey] = ch
	return nil
}

// Seed loads channels and entries (typically decoded via devseed.LoadChannelSeed).
// Seeded entries do not count against the rate limit.
func (m *Mock) Seed(channels []devseed.ChannelSeed) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	for _, s := range channels {
		if err := m.addChannelLocked(s.ID, s.Name, s.WriteKey, s.ReadKey); err != nil {
			return err
		}
		ch := m.channels[s.ID]
		for i, e := range s.Entries {
			entry := Entry{EntryID: int64(len(ch.entries) + 1), CreatedAt: now, Status: e.Status}
			if e.CreatedAt != "" {
				ts, err := parseCreatedAt(e.CreatedAt)
				if err != nil {
					return fmt.Errorf("mock thingspeak: channel %d entry[%d]: %w", s.ID, i, err)
				}
				entry.CreatedAt = ts
			}
			for name, value := range e.Fields {
				n, ok := fieldNumber(name)
				if !ok {
					return fmt.Errorf("mock thingspeak: channel %d entry[%d]: unknown field %q", s.ID, i, name)
				}
				entry.Fields[n-1] = value
			}
			ch.entries = append(ch.entries, entry)
		}
	}
	return nil
}

// Entries returns a copy of the feed of a channel, oldest first.
func (m *Mock) Entries(id uint64) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[id]
	if !ok {
		return nil
	}
	return append([]Entry(nil), ch.entries...)
}

// Update handles POST /update. The response mirrors the service: the new
// entry ID on success, "0" when the write is refused (rate limit or nothing
// to store) and 400 for an unknown write key.
func (m *Mock) Update(ctx context.Context, writeKey, body string) (int, string) {
	if err := ctx.Err(); err != nil {
		return http.StatusServiceUnavailable, "0"
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.byWriteKey[writeKey]
	if !ok || writeKey == "" {
		return http.StatusBadRequest, "0"
	}

	now := m.clock()
	if m.rateLimit > 0 && !ch.lastWrite.IsZero() && now.Sub(ch.lastWrite) < m.rateLimit {
		return http.StatusOK, "0"
	}

	entry, ok, err := parseUpdate(body, now)
	if err != nil {
		return http.StatusBadRequest, "0"
	}
	if !ok {
		return http.StatusOK, "0"
	}
	entry.EntryID = int64(len(ch.entries) + 1)
	ch.entries = append(ch.entries, entry)
	ch.lastWrite = now
	return http.StatusOK, strconv.FormatInt(entry.EntryID, 10)
}

// LastField handles GET /channels/{id}/fields/{field}/last and returns the
// most recent non-empty value of the field.
func (m *Mock) LastField(ctx context.Context, id uint64, field int, readKey string) (int, string) {
	if err := ctx.Err(); err != nil {
		return http.StatusServiceUnavailable, ""
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	ch, status := m.readableLocked(id, readKey)
	if ch == nil {
		return status, "-1"
	}
	if field < thingspeak.FieldMin || field > thingspeak.FieldMax {
		return http.StatusBadRequest, "-1"
	}
	for i := len(ch.entries) - 1; i >= 0; i-- {
		if v := ch.entries[i].Fields[field-1]; v != "" {
			return http.StatusOK, v
		}
	}
	return http.StatusOK, ""
}

// LastFeed handles GET /channels/{id}/feeds/last.txt, returning the latest
// entry as a flat JSON object. The status key is present only when requested.
func (m *Mock) LastFeed(ctx context.Context, id uint64, readKey string, withStatus bool) (int, string) {
	if err := ctx.Err(); err != nil {
		return http.StatusServiceUnavailable, ""
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	ch, status := m.readableLocked(id, readKey)
	if ch == nil {
		return status, "-1"
	}
	if len(ch.entries) == 0 {
		return http.StatusOK, "-1"
	}
	data, err := json.Marshal(feedDocument(ch.entries[len(ch.entries)-1], withStatus))
	if err != nil {
		return http.StatusInternalServerError, ""
	}
	return http.StatusOK, string(data)
}

func (m *Mock) readableLocked(id uint64, readKey string) (*channel, int) {
	ch, ok := m.channels[id]
	if !ok {
		return nil, http.StatusNotFound
	}
	if ch.readKey != "" && readKey != ch.readKey && readKey != ch.writeKey {
		return nil, http.StatusBadRequest
	}
	return ch, http.StatusOK
}

// Send implements thingspeak.Transport so a Client can talk to the mock
// without a network.
func (m *Mock) Send(ctx context.Context, req *thingspeak.Request) (*thingspeak.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := url.Parse(req.Path)
	if err != nil {
		return &thingspeak.Response{StatusCode: http.StatusBadRequest}, nil
	}
	key := req.Header.Get(thingspeak.HeaderAPIKey)

	var status int
	var body string
	switch {
	case req.Method == http.MethodPost && u.Path == "/update":
		status, body = m.Update(ctx, key, string(req.Body))
	case req.Method == http.MethodGet:
		status, body = m.route(ctx, u, key)
	default:
		status = http.StatusNotFound
	}
	return &thingspeak.Response{StatusCode: status, Body: body}, nil
}

func (m *Mock) route(ctx context.Context, u *url.URL, key string) (int, string) {
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || parts[0] != "channels" {
		return http.StatusNotFound, ""
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return http.StatusNotFound, ""
	}
	rest := parts[2:]
	switch {
	case len(rest) == 3 && rest[0] == "fields" && isLast(rest[2]):
		field, err := strconv.Atoi(rest[1])
		if err != nil {
			return http.StatusNotFound, ""
		}
		return m.LastField(ctx, id, field, key)
	case len(rest) == 2 && rest[0] == "feeds" && isLast(rest[1]):
		return m.LastFeed(ctx, id, key, u.Query().Get("status") == "true")
	default:
		return http.StatusNotFound, ""
	}
}

func isLast(segment string) bool {
	return segment == "last" || segment == "last.txt" || segment == "last.json"
}

func feedDocument(e Entry, withStatus bool) map[string]any {
	doc := map[string]any{
		"created_at": e.CreatedAt.UTC().Format(time.RFC3339),
		"entry_id":   e.EntryID,
	}
	for i, v := range e.Fields {
		name := "field" + strconv.Itoa(i+1)
		if v == "" {
			doc[name] = nil
			continue
		}
		doc[name] = v
	}
	if withStatus {
		if e.Status == "" {
			doc["status"] = nil
		} else {
			doc["status"] = e.Status
		}
	}
	return doc
}

// parseUpdate splits a form body on '&' and '=' without percent-decoding,
// matching how the client encodes it. ok is false when nothing is stored.
func parseUpdate(body string, now time.Time) (entry Entry, ok bool, err error) {
	entry.CreatedAt = now
	for _, term := range strings.Split(body, "&") {
		if term == "" {
			continue
		}
		name, value, _ := strings.Cut(term, "=")
		if n, isField := fieldNumber(name); isField {
			if value != "" {
				entry.Fields[n-1] = value
				ok = true
			}
			continue
		}
		switch name {
		case "status":
			if value != "" {
				entry.Status = value
				ok = true
			}
		case "created_at":
			if value == "" {
				continue
			}
			ts, perr := parseCreatedAt(value)
			if perr != nil {
				return Entry{}, false, perr
			}
			entry.CreatedAt = ts
		}
	}
	return entry, ok, nil
}

var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-07",
	"2006-01-02T15:04:05-07",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func parseCreatedAt(raw string) (time.Time, error) {
	for _, layout := range createdAtLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid created_at %q", raw)
}

func fieldNumber(name string) (int, bool) {
	if !strings.HasPrefix(name, "field") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(name, "field"))
	if err != nil || n < thingspeak.FieldMin || n > thingspeak.FieldMax {
		return 0, false
	}
	return n, true
}
