package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-hotel-search/internal/app"
	"github.com/tbourn/go-hotel-search/internal/config"
)

const feed = `{"id":"alpha","name":"Alpha"}
{"id":"beta","name":"Beta"}
garbage
{"id":"gamma","name":"Gamma"}
`

func TestMain(m *testing.M) {
	for _, k := range []string{"PAPI_AUTH_KEY", "PAPI_KEY_ID", "PAPI_KEY", "PAPI_BASE_PATH", "CACHE_BACKEND", "PAPI_DEFAULT_LANGUAGE"} {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}

func keepLogger(t *testing.T) {
	t.Helper()
	prev, lvl := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(lvl)
	})
}

func cachedEntries(t *testing.T, dbPath string) int64 {
	t.Helper()
	store, closeFn, err := app.OpenStore(config.CacheConfig{Backend: config.CacheSQLite, Path: dbPath}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer closeFn()
	st, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	return st.Entries
}

func TestImportCommand(t *testing.T) {
	keepLogger(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "feed.jsonl")
	if err := os.WriteFile(src, []byte(feed), 0o644); err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(dir, "cache", "hotels.db")

	args := []string{"hoteldump", "--env", "", "--cache", dbPath, "--limit", "2", "import", src}
	if err := newCommand().Run(context.Background(), args); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := cachedEntries(t, dbPath); got != 2 {
		t.Fatalf("entries = %d, want 2", got)
	}
}

func TestImportCommand_MissingArgument(t *testing.T) {
	keepLogger(t)
	err := newCommand().Run(context.Background(), []string{"hoteldump", "--env", "", "import"})
	if err == nil || !strings.Contains(err.Error(), "missing dump file") {
		t.Fatalf("err = %v", err)
	}
}

func TestFetchCommand(t *testing.T) {
	keepLogger(t)
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/b2b/v3/hotel/info/dump/":
			if _, _, ok := r.BasicAuth(); !ok {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok","error":null,"data":{"url":"` + srv.URL + `/feed.jsonl"}}`))
		case "/feed.jsonl":
			_, _ = w.Write([]byte(feed))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Setenv("PAPI_BASE_PATH", srv.URL)
	t.Setenv("PAPI_AUTH_KEY", "1:secret")

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "hotels.db")
	out := filepath.Join(dir, "dl", "feed.jsonl")
	args := []string{"hoteldump", "--env", "", "--cache", dbPath, "fetch", "--out", out}
	if err := newCommand().Run(context.Background(), args); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("download missing: %v", err)
	}
	if got := cachedEntries(t, dbPath); got != 3 {
		t.Fatalf("entries = %d, want 3", got)
	}
}

func TestFetchCommand_RejectsInventory(t *testing.T) {
	keepLogger(t)
	args := []string{"hoteldump", "--env", "", "fetch", "--inventory", "everything"}
	if err := newCommand().Run(context.Background(), args); err == nil {
		t.Fatal("expected inventory validation error")
	}
}

func TestFetchCommand_NeedsCredentials(t *testing.T) {
	keepLogger(t)
	args := []string{"hoteldump", "--env", "", "fetch", "--out", filepath.Join(t.TempDir(), "x.zst")}
	if err := newCommand().Run(context.Background(), args); err == nil {
		t.Fatal("expected credentials error")
	}
}
