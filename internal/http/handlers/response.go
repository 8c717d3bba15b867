// Package handlers provides HTTP handler implementations for the public API.
//
// Every failure leaves through fail() as an ErrorResponse with a stable code
// from errors.go; serviceError is the single place where service, upstream
// and cache errors are translated into statuses.
//
// Example error response:
//
//	HTTP/1.1 503 Service Unavailable
//	Retry-After: 60
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "upstream_rate_limited",
//	  "message": "upstream rate limit reached, retry later"
//	}
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-hotel-search/internal/cache"
	"github.com/tbourn/go-hotel-search/internal/http/middleware"
	"github.com/tbourn/go-hotel-search/internal/ratehawk"
	"github.com/tbourn/go-hotel-search/internal/services"
)

// statusClientClosedRequest is the de facto status for a request whose client
// went away before the response was ready.
const statusClientClosedRequest = 499

// upstreamRetryAfter is advertised when the partner API throttled us.
const upstreamRetryAfter = "60"

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"hotel not found"`
}

// badRequest is a query parsing failure; its text is returned verbatim.
type badRequest string

func (e badRequest) Error() string { return string(e) }

// fail aborts the request with the error envelope. 5xx responses are logged
// with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is the exported variant of fail() for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// serviceError maps an error returned by parsing or the hotel service onto
// the error envelope.
func serviceError(c *gin.Context, err error) {
	var br badRequest
	switch {
	case errors.As(err, &br), errors.Is(err, services.ErrInvalidCriteria):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrHotelNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "hotel not found")
	case ratehawk.IsRateLimited(err):
		c.Header("Retry-After", upstreamRetryAfter)
		fail(c, http.StatusServiceUnavailable, ErrCodeUpstreamRateLimited, "upstream rate limit reached, retry later")
	case errors.Is(err, services.ErrUpstreamUnavailable):
		fail(c, http.StatusServiceUnavailable, ErrCodeUpstreamUnavailable, "hotel provider is temporarily unavailable")
	case errors.Is(err, cache.ErrStatsUnsupported):
		fail(c, http.StatusNotImplemented, ErrCodeNotImplemented, "persistent cache is not configured")
	case errors.Is(err, context.DeadlineExceeded):
		fail(c, http.StatusGatewayTimeout, ErrCodeTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(statusClientClosedRequest)
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// notModified sets the ETag and answers 304 when the client already holds
// that version. It reports whether the response was written.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
