// Package ratehawk is the HTTP client for the RateHawk partner API (pAPI v3).
//
// It implements the region search transport consumed by the aggregator, the
// hotel info (detail) transport consumed by the enricher, location
// autocomplete, and the hotel dump URL lookup used by the bulk importer.
// Every call carries its own timeout; hotel info calls are additionally
// paced to stay under the account's requests-per-minute ceiling.
package ratehawk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

// Endpoint paths relative to the base URL.
const (
	pathSearchRegion  = "/api/b2b/v3/search/serp/region/"
	pathHotelInfo     = "/api/b2b/v3/hotel/info/"
	pathMulticomplete = "/api/b2b/v3/search/multicomplete/"
	pathInfoDump      = "/api/b2b/v3/hotel/info/dump/"
)

// DefaultBaseURL is the production pAPI host.
const DefaultBaseURL = "https://api.worldota.net"

// maxBody caps how much of a response body is read.
const maxBody = 32 << 20

// Options configures a Client.
type Options struct {
	BaseURL string
	KeyID   string
	Key     string

	// Timeout bounds each individual call. For hotel info calls the deadline
	// starts before the pacing wait, so wait and request share it.
	Timeout time.Duration

	// DetailRPM is the hotel info requests-per-minute ceiling; 0 disables
	// pacing. DetailBurst is the number of calls allowed back to back.
	DetailRPM   int
	DetailBurst int

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client talks to the pAPI. It is safe for concurrent use.
type Client struct {
	base    string
	keyID   string
	key     string
	timeout time.Duration
	http    *http.Client
	pacer   *rate.Limiter
}

// New builds a Client from opts, applying defaults.
func New(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	c := &Client{
		base:    base,
		keyID:   opts.KeyID,
		key:     opts.Key,
		timeout: opts.Timeout,
		http:    hc,
	}
	if opts.DetailRPM > 0 {
		burst := opts.DetailBurst
		if burst <= 0 {
			burst = 1
		}
		c.pacer = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.DetailRPM)), burst)
	}
	return c
}

// envelope is the common pAPI response wrapper.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Error  any             `json:"error"`
	Status string          `json:"status"`
}

func (e envelope) code() string {
	switch v := e.Error.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

func (e envelope) hasData() bool {
	d := bytes.TrimSpace(e.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// post sends body as JSON and returns the raw response body after envelope
// and status checks.
func (c *Client) post(ctx context.Context, op, path string, body any) ([]byte, envelope, error) {
	ctx, span := otel.Tracer("ratehawk").Start(ctx, "ratehawk."+op)
	defer span.End()
	span.SetAttributes(attribute.String("ratehawk.path", path))

	b, env, err := c.do(ctx, op, path, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return b, env, err
}

func (c *Client) do(ctx context.Context, op, path string, body any) ([]byte, envelope, error) {
	var env envelope

	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, env, &UpstreamError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(reqBody))
	if err != nil {
		return nil, env, &UpstreamError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.keyID != "" || c.key != "" {
		req.SetBasicAuth(c.keyID, c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, env, &UpstreamError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, env, &UpstreamError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	// Error bodies are usually enveloped too; prefer the declared code.
	jsonErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, env, classify(op, resp.StatusCode, env.code())
	}
	if jsonErr != nil {
		return nil, env, &UpstreamError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", jsonErr)}
	}
	if code := env.code(); code != "" {
		return nil, env, classify(op, resp.StatusCode, code)
	}
	return raw, env, nil
}

// pace blocks until the hotel info pacer admits a call. When the required
// wait would not leave the call inside its deadline (or the call timeout when
// ctx has none) the call is refused with ErrRateLimited instead of queueing.
func (c *Client) pace(ctx context.Context) error {
	if c.pacer == nil {
		return nil
	}
	r := c.pacer.Reserve()
	d := r.Delay()
	if d == 0 {
		return nil
	}
	limit := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		limit = time.Until(dl)
	}
	if d >= limit {
		r.Cancel()
		return &UpstreamError{Op: "hotel_info", Err: fmt.Errorf("pacer wait %s: %w", d.Round(time.Millisecond), ErrRateLimited)}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return &UpstreamError{Op: "hotel_info", Err: ctx.Err()}
	}
}
