package thingspeak

import (
	"context"
	"fmt"
	"net/http"
)

// Code is the result of a ThingSpeak operation. Positive values are HTTP status
// codes reported by the service; negative values are generated by the library.
// The numeric values are shared with the other ThingSpeak client libraries.
type Code int

const (
	Success           Code = 200  // OK / Success
	BadAPIKey         Code = 400  // Incorrect API key (or invalid ThingSpeak server address)
	BadURL            Code = 404  // Incorrect API key (or invalid ThingSpeak server address)
	OutOfRange        Code = -101 // Value is out of range or string is too long (> 255 bytes)
	InvalidFieldNum   Code = -201 // Invalid field number specified
	SetFieldNotCalled Code = -210 // SetField was not called before WriteFields
	ConnectFailed     Code = -301 // Failed to connect to ThingSpeak
	UnexpectedFail    Code = -302 // Unexpected failure during write to ThingSpeak
	BadResponse       Code = -303 // Unable to parse response
	Timeout           Code = -304 // Timeout waiting for server to respond
	NotInserted       Code = -401 // Point was not inserted (most probable cause is the rate limit of once every 15 seconds)
)

const (
	// FieldMin and FieldMax bound the field numbers of a channel.
	FieldMin = 1
	FieldMax = 8
	// MaxValueLength is the longest value, in bytes, ThingSpeak stores in a field.
	MaxValueLength = 255

	// DefaultBaseURL is the public ThingSpeak API endpoint.
	DefaultBaseURL = "http://api.thingspeak.com"
	// Version of the wire contract implemented by this package.
	Version = "2.0.0"
	// UserAgent is sent with every request.
	UserAgent = "tslib-mbed/" + Version + " (mbed)"

	// HeaderAPIKey carries the read or write API key.
	HeaderAPIKey = "X-THINGSPEAKAPIKEY"
	// ContentTypeForm is the content type of update bodies.
	ContentTypeForm = "application/x-www-form-urlencoded"
)

func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case BadAPIKey:
		return "bad api key"
	case BadURL:
		return "bad url"
	case OutOfRange:
		return "out of range"
	case InvalidFieldNum:
		return "invalid field number"
	case SetFieldNotCalled:
		return "set field not called"
	case ConnectFailed:
		return "connect failed"
	case UnexpectedFail:
		return "unexpected failure"
	case BadResponse:
		return "bad response"
	case Timeout:
		return "timeout"
	case NotInserted:
		return "not inserted"
	default:
		if text := http.StatusText(int(c)); text != "" {
			return text
		}
		return fmt.Sprintf("code %d", int(c))
	}
}

// OK reports whether c is Success.
func (c Code) OK() bool {
	return c == Success
}

// Err returns nil for Success and a *CodeError otherwise.
func (c Code) Err() error {
	if c == Success {
		return nil
	}
	return &CodeError{Code: c}
}

// CodeError adapts a non-success Code to the error interface.
type CodeError struct {
	Code Code
}

func (e *CodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("thingspeak: %s (%d)", e.Code, int(e.Code))
}

// Is matches another *CodeError carrying the same code.
func (e *CodeError) Is(target error) bool {
	t, ok := target.(*CodeError)
	return ok && e != nil && t != nil && t.Code == e.Code
}

// Request is a single exchange handed to a Transport. Path is relative to the
// API base and may include a query string.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Response is what a Transport returns once a status code was obtained.
type Response struct {
	StatusCode int
	Body       string
}

// Transport sends requests to ThingSpeak. A failure that prevents a status
// code from being received must be returned as an error; returning a
// *TransportError selects the reported Code explicitly.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// TransportError reports a failure before a status code was obtained.
// Code should be one of ConnectFailed, Timeout or UnexpectedFail.
type TransportError struct {
	Code Code
	Err  error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return fmt.Sprintf("thingspeak: transport: %s", e.Code)
	}
	return fmt.Sprintf("thingspeak: transport: %s: %v", e.Code, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
