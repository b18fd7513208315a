package thingspeak

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/Ratio1/thingspeak_sdk_go/internal/tsapi"
)

// ReadRaw issues GET /channels/{channel}{suffix}. readKey may be empty for
// public channels. The body is returned only for a 200 response; otherwise the
// result is empty and LastReadStatus reports why.
func (c *Client) ReadRaw(ctx context.Context, channel uint64, suffix, readKey string) string {
	path := "/channels/" + strconv.FormatUint(channel, 10) + suffix
	header := make(http.Header)
	if readKey != "" {
		header.Set(HeaderAPIKey, readKey)
	}
	c.logger.Debug("thingspeak: readRaw", "channel", channel, "path", path, "private", readKey != "")

	resp, code := c.send(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Header: header,
	})
	c.lastReadStatus = code
	if resp == nil || code != Success {
		return ""
	}
	c.logger.Debug("thingspeak: read", "path", path, "body", resp.Body)
	return resp.Body
}

// ReadStringField returns the latest value of field (1-8), or "" on error.
func (c *Client) ReadStringField(ctx context.Context, channel uint64, field int, readKey string) string {
	if field < FieldMin || field > FieldMax {
		c.lastReadStatus = InvalidFieldNum
		return ""
	}
	return c.ReadRaw(ctx, channel, "/fields/"+strconv.Itoa(field)+"/last", readKey)
}

// ReadFloatField returns the latest value of field as a float, or 0 when the
// value is not numeric. NaN and infinities are valid results.
func (c *Client) ReadFloatField(ctx context.Context, channel uint64, field int, readKey string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(c.ReadStringField(ctx, channel, field, readKey)), 64)
	if err != nil {
		return 0
	}
	return v
}

// ReadLongField returns the latest value of field as an int64, or 0 when the
// value is not an integer.
func (c *Client) ReadLongField(ctx context.Context, channel uint64, field int, readKey string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(c.ReadStringField(ctx, channel, field, readKey)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ReadIntField returns the latest value of field as an int, or 0 when the
// value is not an integer.
func (c *Client) ReadIntField(ctx context.Context, channel uint64, field int, readKey string) int {
	return int(c.ReadLongField(ctx, channel, field, readKey))
}

// ReadStatus returns the status message of the latest update, or "".
func (c *Client) ReadStatus(ctx context.Context, channel uint64, readKey string) string {
	content := c.ReadRaw(ctx, channel, "/feeds/last.txt?status=true", readKey)
	if c.lastReadStatus != Success {
		return ""
	}
	return tsapi.ValueByKey(content, "status")
}

// ReadCreatedAt returns the created-at timestamp of the latest update, or "".
func (c *Client) ReadCreatedAt(ctx context.Context, channel uint64, readKey string) string {
	content := c.ReadRaw(ctx, channel, "/feeds/last.txt", readKey)
	if c.lastReadStatus != Success {
		return ""
	}
	return tsapi.ValueByKey(content, "created_at")
}

// LastReadStatus returns the Code of the previous read. Read methods return
// zero or empty values on failure; this tells why.
func (c *Client) LastReadStatus() Code {
	return c.lastReadStatus
}
