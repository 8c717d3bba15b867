// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access logger of the API. It
// scrubs obvious PII from request metadata before emitting one structured
// line per request and flags slow requests: a search page that has to enrich
// many hits upstream can legitimately take seconds, so slowness is logged at
// warn level with the configured threshold.
//
// Usage:
//
//	r := gin.New()
//	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
//	    MaskHeaders:   []string{"X-Api-Key"},
//	    SlowThreshold: 5 * time.Second,
//	}))
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures RedactingLogger.
//
// MaskHeaders lists extra header names whose values are replaced with
// "[REDACTED]" (case-insensitive, merged with Authorization, Cookie and
// Set-Cookie). SlowThreshold, when > 0, raises successful requests slower than
// it to warn level. Logger overrides the global logger.
type RedactOptions struct {
	MaskHeaders   []string
	SlowThreshold time.Duration
	Logger        *zerolog.Logger
}

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits only, so hex runs of a UUID never match.
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// redact scrubs identifiers, emails and phone numbers from s. UUIDs go first
// so the loose phone pattern cannot eat their digit groups.
func redact(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// RedactingLogger returns a Gin middleware that logs each request with
// sensitive values scrubbed. It never logs bodies.
//
// Level selection: error for 5xx or Gin errors, warn for 4xx or slow
// requests, info otherwise.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskHeaders := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		safeQuery := truncate(redact(c.Request.URL.RawQuery), maxQueryLogLength)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redact(strings.Join(vv, ", "))
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		reqID := c.Writer.Header().Get(requestIDHeader)
		if reqID == "" {
			reqID = c.GetHeader(requestIDHeader)
		}

		lg := log.Logger
		if opts.Logger != nil {
			lg = *opts.Logger
		}
		slow := opts.SlowThreshold > 0 && latency > opts.SlowThreshold

		var ev *zerolog.Event
		switch {
		case status >= 500 || len(c.Errors) > 0:
			ev = lg.Error()
			if len(c.Errors) > 0 {
				ev = ev.Str("errors", c.Errors.String())
			}
		case status >= 400 || slow:
			ev = lg.Warn()
		default:
			ev = lg.Info()
		}

		ev.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("route", routeOf(c)).
			Str("path", redact(c.Request.URL.Path)).
			Str("query", safeQuery).
			Str("remote_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", latency).
			Bool("slow", slow).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
