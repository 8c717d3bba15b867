package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-hotel-search/internal/config"
	"github.com/tbourn/go-hotel-search/internal/domain"
	"github.com/tbourn/go-hotel-search/internal/services"
)

type stubSvc struct {
	searched services.SearchCriteria
}

func (s *stubSvc) SearchPage(_ context.Context, c services.SearchCriteria) (domain.PageResult, error) {
	s.searched = c
	return domain.PageResult{Items: []domain.Summary{}, Page: c.Page, PageSize: c.PageSize}, nil
}

func (s *stubSvc) GetDetail(_ context.Context, id, _ string) (domain.HotelDetails, error) {
	if id == "missing" {
		return domain.HotelDetails{}, services.ErrHotelNotFound
	}
	return domain.HotelDetails{Summary: domain.Summary{ID: id}, Photos: []string{}}, nil
}

func (s *stubSvc) Photos(_ context.Context, id, _ string) (domain.PhotoCollection, error) {
	return domain.PhotoCollection{HotelID: id, Photos: []string{}}, nil
}

func (s *stubSvc) Autocomplete(_ context.Context, _, _ string) ([]domain.LocationSuggestion, error) {
	return []domain.LocationSuggestion{}, nil
}

func (s *stubSvc) CacheStats(context.Context) (domain.CacheStats, error) {
	return domain.CacheStats{Entries: 3}, nil
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   10,
		Security:    config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour},
		OTEL:        config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newRouter(t *testing.T, cfg config.Config) (*gin.Engine, *stubSvc) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := &stubSvc{}
	RegisterRoutes(r, svc, cfg)
	return r, svc
}

func serve(r http.Handler, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_Health_Metrics_Fallbacks(t *testing.T) {
	r, _ := newRouter(t, testConfig())

	for _, p := range []string{"/health", "/healthz"} {
		w := serve(r, http.MethodGet, p, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s = %d", p, w.Code)
		}
		if w.Header().Get("X-Request-ID") == "" || w.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Fatalf("GET %s missing middleware headers: %#v", p, w.Header())
		}
	}

	w := serve(r, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	if w := serve(r, http.MethodGet, "/nope", nil); w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d", w.Code)
	}
	if w := serve(r, http.MethodPost, "/health", nil); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health = %d", w.Code)
	}
}

func TestRegisterRoutes_APIRoutes(t *testing.T) {
	r, svc := newRouter(t, testConfig())

	w := serve(r, http.MethodGet, "/api/v1/hotels/search?location_id=2734&check_in=2026-11-01&check_out=2026-11-03", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d: %s", w.Code, w.Body.String())
	}
	if svc.searched.LocationID != 2734 {
		t.Fatalf("criteria not forwarded: %+v", svc.searched)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("search Cache-Control = %q", got)
	}

	if w := serve(r, http.MethodGet, "/api/v1/hotels/abc", nil); w.Code != http.StatusOK {
		t.Fatalf("detail = %d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/api/v1/hotels/missing", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing detail = %d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/api/v1/hotels/abc/photos", nil); w.Code != http.StatusOK {
		t.Fatalf("photos = %d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/api/v1/locations/autocomplete?q=par", nil); w.Code != http.StatusOK {
		t.Fatalf("autocomplete = %d", w.Code)
	}

	w = serve(r, http.MethodGet, "/api/v1/cache/stats", nil)
	if w.Code != http.StatusOK || w.Header().Get("ETag") == "" {
		t.Fatalf("cache stats = %d etag=%q", w.Code, w.Header().Get("ETag"))
	}
	if got := w.Header().Get("Cache-Control"); got != "no-cache" {
		t.Fatalf("cache stats Cache-Control = %q", got)
	}
	var st domain.CacheStats
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil || st.Entries != 3 {
		t.Fatalf("cache stats body: %v %s", err, w.Body.String())
	}
}

func TestRegisterRoutes_CORS(t *testing.T) {
	r, _ := newRouter(t, testConfig())
	w := serve(r, http.MethodGet, "/health", map[string]string{"Origin": "http://anything.test"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-all ACAO = %q", got)
	}

	cfg := testConfig()
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}
	r, _ = newRouter(t, cfg)

	w = serve(r, http.MethodGet, "/health", map[string]string{"Origin": "http://localhost:3000"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allowlisted ACAO = %q", got)
	}
	w = serve(r, http.MethodGet, "/health", map[string]string{"Origin": "http://evil.test"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign origin = %d", w.Code)
	}
}

func TestRegisterRoutes_Gzip(t *testing.T) {
	r, _ := newRouter(t, testConfig())
	w := serve(r, http.MethodGet, "/api/v1/hotels/abc", map[string]string{"Accept-Encoding": "gzip"})
	if got := w.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q", got)
	}
}

func TestRegisterRoutes_RateLimitSkipsHealth(t *testing.T) {
	cfg := testConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	r, _ := newRouter(t, cfg)

	if w := serve(r, http.MethodGet, "/api/v1/hotels/abc", nil); w.Code != http.StatusOK {
		t.Fatalf("first = %d", w.Code)
	}
	w := serve(r, http.MethodGet, "/api/v1/hotels/abc", nil)
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") == "" {
		t.Fatalf("second = %d retry=%q", w.Code, w.Header().Get("Retry-After"))
	}
	for i := 0; i < 3; i++ {
		if w := serve(r, http.MethodGet, "/healthz", nil); w.Code != http.StatusOK {
			t.Fatalf("healthz limited: %d", w.Code)
		}
	}
}

func TestRegisterRoutes_Swagger(t *testing.T) {
	r, _ := newRouter(t, testConfig())
	if w := serve(r, http.MethodGet, "/swagger/index.html", nil); w.Code != http.StatusNotFound {
		t.Fatalf("swagger disabled = %d", w.Code)
	}

	cfg := testConfig()
	cfg.SwaggerEnabled = true
	r, _ = newRouter(t, cfg)
	if w := serve(r, http.MethodGet, "/swagger/index.html", nil); w.Code != http.StatusOK {
		t.Fatalf("swagger enabled = %d", w.Code)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		w := serve(r, http.MethodGet, path, nil)
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, w.Code, w.Body.String())
		}
	}
}
