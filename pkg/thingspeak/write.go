package thingspeak

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Ratio1/thingspeak_sdk_go/internal/tsapi"
)

const updatePath = "/update"

// SetField stages value for field (1-8) of the next WriteFields call.
func (c *Client) SetField(field int, value string) Code {
	c.logger.Debug("thingspeak: setField", "field", field, "value", value)
	return c.pending.SetField(field, value)
}

// SetFieldInt stages an integer value for field.
func (c *Client) SetFieldInt(field int, value int64) Code {
	return c.SetField(field, FormatInt(value))
}

// SetFieldFloat stages a floating point value for field.
func (c *Client) SetFieldFloat(field int, value float64) Code {
	return c.SetField(field, FormatFloat(value))
}

// SetLatitude stores the latitude of the next update. Always returns Success.
func (c *Client) SetLatitude(latitude float64) Code {
	return c.pending.SetLatitude(latitude)
}

// SetLongitude stores the longitude of the next update. Always returns Success.
func (c *Client) SetLongitude(longitude float64) Code {
	return c.pending.SetLongitude(longitude)
}

// SetElevation stores the elevation of the next update. Always returns Success.
func (c *Client) SetElevation(elevation float64) Code {
	return c.pending.SetElevation(elevation)
}

// SetStatus stages the status message of the next update.
func (c *Client) SetStatus(status string) Code {
	return c.pending.SetStatus(status)
}

// SetTwitterTweet stages the twitter account and message of the next update.
// A twitter account must be linked through the ThingTweet app beforehand.
func (c *Client) SetTwitterTweet(twitter, tweet string) Code {
	return c.pending.SetTwitterTweet(twitter, tweet)
}

// SetCreatedAt stages the created-at timestamp of the next update.
func (c *Client) SetCreatedAt(createdAt string) Code {
	return c.pending.SetCreatedAt(createdAt)
}

// WriteFields sends every value staged with the Set* methods as one update.
// The pending update is cleared whatever the outcome.
func (c *Client) WriteFields(ctx context.Context, channel uint64, writeKey string) Code {
	defer c.pending.Reset()

	if c.pending.ContentLength() == 0 {
		c.logger.Debug("thingspeak: writeFields called with nothing staged", "channel", channel)
		return SetFieldNotCalled
	}
	body := c.pending.Encode()
	c.logger.Debug("thingspeak: writeFields", "channel", channel, "body", string(body))
	return c.post(ctx, body, writeKey)
}

// WriteRaw posts a caller-formed update body, e.g. "field1=10&status=ok".
// The staged update is left untouched.
func (c *Client) WriteRaw(ctx context.Context, channel uint64, body, writeKey string) Code {
	c.logger.Debug("thingspeak: writeRaw", "channel", channel, "body", body)
	return c.post(ctx, []byte(body+headersTerm), writeKey)
}

// WriteField writes a single string value to field (1-8).
func (c *Client) WriteField(ctx context.Context, channel uint64, field int, value, writeKey string) Code {
	if field < FieldMin || field > FieldMax {
		return InvalidFieldNum
	}
	if len(value) > MaxValueLength {
		return OutOfRange
	}
	c.logger.Debug("thingspeak: writeField", "channel", channel, "field", field, "value", value)
	return c.WriteRaw(ctx, channel, "field"+strconv.Itoa(field)+"="+value, writeKey)
}

// WriteFieldInt writes a single integer value to field.
func (c *Client) WriteFieldInt(ctx context.Context, channel uint64, field int, value int64, writeKey string) Code {
	return c.WriteField(ctx, channel, field, FormatInt(value), writeKey)
}

// WriteFieldFloat writes a single floating point value to field.
func (c *Client) WriteFieldFloat(ctx context.Context, channel uint64, field int, value float64, writeKey string) Code {
	return c.WriteField(ctx, channel, field, FormatFloat(value), writeKey)
}

func (c *Client) post(ctx context.Context, body []byte, writeKey string) Code {
	header := make(http.Header)
	header.Set(HeaderAPIKey, writeKey)
	header.Set("Content-Type", ContentTypeForm)

	resp, code := c.send(ctx, &Request{
		Method: http.MethodPost,
		Path:   updatePath,
		Header: header,
		Body:   body,
	})
	if resp == nil {
		return code
	}
	return c.interpretWrite(resp)
}

// interpretWrite maps an update response to a Code: any status other than 200
// is returned verbatim, otherwise the body must hold a non-zero entry ID.
func (c *Client) interpretWrite(resp *Response) Code {
	if Code(resp.StatusCode) != Success {
		c.logger.Debug("thingspeak: write rejected", "status", resp.StatusCode)
		return Code(resp.StatusCode)
	}
	entryID, err := tsapi.ParseEntryID(resp.Body)
	if err != nil {
		c.logger.Debug("thingspeak: unparseable write response", "body", resp.Body, "err", err)
		return BadResponse
	}
	c.logger.Debug("thingspeak: entry id", "entry_id", entryID)
	if entryID == 0 {
		return NotInserted
	}
	return Success
}
