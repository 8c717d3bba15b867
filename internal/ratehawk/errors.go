package ratehawk

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound means the upstream has no record for the requested hotel.
	ErrNotFound = errors.New("hotel not found upstream")

	// ErrRateLimited means the upstream (or the local pacer guarding it)
	// refused the call because the request rate ceiling was reached. It is
	// always delivered wrapped in an *UpstreamError.
	ErrRateLimited = errors.New("upstream rate limit exceeded")
)

// UpstreamError describes a failed upstream call: transport failure,
// unexpected HTTP status, malformed body, or an error declared in the
// response envelope.
type UpstreamError struct {
	Op     string // e.g. "hotel_info"
	Status int    // HTTP status, 0 when no response was received
	Code   string // upstream error code from the envelope, if any
	Err    error
}

func (e *UpstreamError) Error() string {
	msg := "ratehawk " + e.Op
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Code != "" {
		msg += " [" + e.Code + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err signals the upstream rate ceiling.
func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }

var rateLimitCodes = map[string]bool{
	"overlimit":           true,
	"rate_limit":          true,
	"rate_limit_exceeded": true,
	"too_many_requests":   true,
}

var notFoundCodes = map[string]bool{
	"hotel_not_found": true,
	"not_found":       true,
}

// classify maps an HTTP status and envelope error code to the error taxonomy.
func classify(op string, status int, code string) error {
	switch {
	case status == http.StatusTooManyRequests || rateLimitCodes[code]:
		return &UpstreamError{Op: op, Status: status, Code: code, Err: ErrRateLimited}
	case status == http.StatusNotFound || notFoundCodes[code]:
		return fmt.Errorf("ratehawk %s: %w", op, ErrNotFound)
	case code != "":
		return &UpstreamError{Op: op, Status: status, Code: code, Err: errors.New("upstream declared an error")}
	default:
		return &UpstreamError{Op: op, Status: status, Err: fmt.Errorf("unexpected status %d", status)}
	}
}
