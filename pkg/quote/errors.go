package quote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Reason classifies why a fetch failed. The refresh coordinator treats every
// reason identically; the classification exists for user-facing diagnostics.
type Reason string

const (
	ReasonRateLimited   Reason = "rate-limited"
	ReasonInvalidSymbol Reason = "invalid-symbol"
	ReasonNetwork       Reason = "network-error"
	ReasonTimeout       Reason = "timeout"
	ReasonUnknown       Reason = "unknown"
)

// ErrNoData indicates the source answered but returned no usable price.
var ErrNoData = errors.New("quote: no data returned")

// FetchError wraps a fetch failure with its classification.
type FetchError struct {
	Symbol string
	Reason Reason
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("quote: fetch %s: %s", e.Symbol, e.Reason)
	}
	return fmt.Sprintf("quote: fetch %s: %s: %v", e.Symbol, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError wraps err for symbol, classifying it if it is not already a
// FetchError.
func NewFetchError(symbol string, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		if fe.Symbol == "" {
			fe.Symbol = symbol
		}
		return fe
	}
	return &FetchError{Symbol: symbol, Reason: Classify(err), Err: err}
}

// Classify maps an arbitrary fetch error onto the diagnostic taxonomy.
func Classify(err error) Reason {
	if err == nil {
		return ReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	if errors.Is(err, ErrNoData) {
		return ReasonInvalidSymbol
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusTooManyRequests:
			return ReasonRateLimited
		case http.StatusNotFound:
			return ReasonInvalidSymbol
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return ReasonTimeout
		default:
			return ReasonNetwork
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ReasonTimeout
		}
		return ReasonNetwork
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ReasonNetwork
	}
	return ReasonUnknown
}

// StatusError reports a non-2xx HTTP response from a quote source.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("quote: http status %d: %s", e.Code, e.Body)
}
