package httpx

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a transport failure.
type Kind int

const (
	// KindUnexpected covers any failure that is neither a dial nor a timeout error.
	KindUnexpected Kind = iota
	// KindConnect means the connection to the remote host could not be established.
	KindConnect
	// KindTimeout means the remote host did not answer in time.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindTimeout:
		return "timeout"
	default:
		return "unexpected"
	}
}

// TransportError reports a failure that happened before an HTTP status was received.
type TransportError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Op != "" {
		return fmt.Sprintf("httpx: %s failure during %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("httpx: %s failure: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func classify(err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Kind: KindTimeout, Op: "request", Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Kind: KindTimeout, Op: "request", Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &TransportError{Kind: KindConnect, Op: "dial", Err: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &TransportError{Kind: KindConnect, Op: "lookup", Err: err}
	}
	return &TransportError{Kind: KindUnexpected, Op: "request", Err: err}
}
