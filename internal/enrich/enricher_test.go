package enrich

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-hotel-search/internal/cache"
	"github.com/tbourn/go-hotel-search/internal/domain"
	"github.com/tbourn/go-hotel-search/internal/payload"
	"github.com/tbourn/go-hotel-search/internal/ratehawk"
)

// ----- fakes -----

type fakeTransport struct {
	infoCalls int
	rawCalls  int

	info    func(id string) (*domain.DetailRecord, payload.Raw, error)
	rawResp func(id string) (payload.Raw, error)
}

func (f *fakeTransport) HotelInfo(_ context.Context, id, _ string) (*domain.DetailRecord, payload.Raw, error) {
	f.infoCalls++
	return f.info(id)
}

func (f *fakeTransport) HotelInfoRaw(_ context.Context, id, _ string) (payload.Raw, error) {
	f.rawCalls++
	if f.rawResp == nil {
		return nil, errors.New("unexpected raw call")
	}
	return f.rawResp(id)
}

type memKV struct {
	mu     sync.Mutex
	data   map[cache.Key][]byte
	putErr error
	gets   int
}

func newMemKV() *memKV { return &memKV{data: map[cache.Key][]byte{}} }

func (m *memKV) Get(_ context.Context, id, lang string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	b, ok := m.data[cache.Key{ID: id, Language: lang}]
	return b, ok, nil
}

func (m *memKV) Put(_ context.Context, id, lang string, v []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.data[cache.Key{ID: id, Language: lang}] = v
	return nil
}

func validRaw(id, name string) payload.Raw {
	return payload.Raw{"data": map[string]any{
		"id": id, "name": name,
		"images": []any{}, "amenity_groups": []any{}, "room_groups": []any{}, "serp_filters": []any{},
	}}
}

func okInfo(id string) (*domain.DetailRecord, payload.Raw, error) {
	raw := validRaw(id, "Hotel "+id)
	rec, err := payload.Decode(raw)
	return rec, raw, err
}

// ----- tests -----

func TestFetch_RemoteThenCachedInBothTiers(t *testing.T) {
	ctx := context.Background()
	tr := &fakeTransport{info: okInfo}
	kv := newMemKV()
	e := New(tr, cache.NewStore(kv, zerolog.Nop()), zerolog.Nop())

	run := cache.NewRun()
	rec, src, err := e.Fetch(ctx, run, "h1", "en")
	if err != nil || src != SourceRemote || rec.Name != "Hotel h1" {
		t.Fatalf("first fetch: %v %v %v", rec, src, err)
	}
	if _, src, err := e.Fetch(ctx, run, "h1", "en"); err != nil || src != SourceRun {
		t.Fatalf("second fetch in run: src=%v err=%v", src, err)
	}
	if _, ok := kv.data[cache.Key{ID: "h1", Language: "en"}]; !ok {
		t.Fatal("record not written through to the store")
	}

	// a fresh run finds it in the store and promotes it
	run2 := cache.NewRun()
	if _, src, err := e.Fetch(ctx, run2, "h1", "en"); err != nil || src != SourceStore {
		t.Fatalf("fetch in new run: src=%v err=%v", src, err)
	}
	if run2.Len() != 1 {
		t.Fatal("store hit not promoted to the run cache")
	}
	if tr.infoCalls != 1 {
		t.Fatalf("upstream calls = %d, want 1", tr.infoCalls)
	}
}

func TestFetch_ValidationRetryOnce(t *testing.T) {
	tr := &fakeTransport{
		info: func(id string) (*domain.DetailRecord, payload.Raw, error) {
			return nil, nil, &payload.ValidationError{Problems: []payload.Problem{{Field: "data.images", Message: "must not be null"}}}
		},
		rawResp: func(id string) (payload.Raw, error) {
			return payload.Raw{"data": map[string]any{"id": id, "name": "Patched", "images": nil, "room_groups": nil}}, nil
		},
	}
	kv := newMemKV()
	e := New(tr, cache.NewStore(kv, zerolog.Nop()), zerolog.Nop())

	rec, src, err := e.Fetch(context.Background(), cache.NewRun(), "h1", "en")
	if err != nil || src != SourceRemote || rec.Name != "Patched" {
		t.Fatalf("got %v %v %v", rec, src, err)
	}
	if tr.infoCalls != 1 || tr.rawCalls != 1 {
		t.Fatalf("calls info=%d raw=%d", tr.infoCalls, tr.rawCalls)
	}
	// the sanitized form is what got persisted
	stored, ok := cache.NewStore(kv, zerolog.Nop()).Get(context.Background(), "h1", "en")
	if !ok || stored.Images == nil {
		t.Fatalf("stored = %+v %v", stored, ok)
	}
}

func TestFetch_StillInvalidIsUpstreamError(t *testing.T) {
	tr := &fakeTransport{
		info: func(string) (*domain.DetailRecord, payload.Raw, error) {
			return nil, nil, &payload.ValidationError{}
		},
		rawResp: func(string) (payload.Raw, error) {
			return payload.Raw{"data": map[string]any{"name": "no id"}}, nil
		},
	}
	e := New(tr, nil, zerolog.Nop())
	_, _, err := e.Fetch(context.Background(), cache.NewRun(), "h1", "en")
	var ue *ratehawk.UpstreamError
	if !errors.As(err, &ue) || !payload.IsValidation(err) {
		t.Fatalf("want UpstreamError wrapping validation, got %v", err)
	}
	if tr.rawCalls != 1 {
		t.Fatalf("retried %d times", tr.rawCalls)
	}
}

func TestFetch_NotFoundDistinct(t *testing.T) {
	tr := &fakeTransport{info: func(string) (*domain.DetailRecord, payload.Raw, error) {
		return nil, nil, ratehawk.ErrNotFound
	}}
	e := New(tr, nil, zerolog.Nop())
	_, _, err := e.Fetch(context.Background(), cache.NewRun(), "h1", "en")
	if !errors.Is(err, ratehawk.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	var ue *ratehawk.UpstreamError
	if errors.As(err, &ue) {
		t.Fatal("not found must not be an UpstreamError")
	}
	if tr.rawCalls != 0 {
		t.Fatal("not found must not be retried")
	}
}

func TestFetch_RateLimitedNotRetried(t *testing.T) {
	tr := &fakeTransport{info: func(string) (*domain.DetailRecord, payload.Raw, error) {
		return nil, nil, &ratehawk.UpstreamError{Op: "hotel_info", Status: 429, Err: ratehawk.ErrRateLimited}
	}}
	e := New(tr, nil, zerolog.Nop())
	_, _, err := e.Fetch(context.Background(), cache.NewRun(), "h1", "en")
	if !ratehawk.IsRateLimited(err) || tr.infoCalls != 1 || tr.rawCalls != 0 {
		t.Fatalf("err=%v info=%d raw=%d", err, tr.infoCalls, tr.rawCalls)
	}
}

func TestFetch_StoreWriteFailureIgnored(t *testing.T) {
	kv := newMemKV()
	kv.putErr = errors.New("disk full")
	e := New(&fakeTransport{info: okInfo}, cache.NewStore(kv, zerolog.Nop()), zerolog.Nop())
	rec, src, err := e.Fetch(context.Background(), cache.NewRun(), "h1", "en")
	if err != nil || rec == nil || src != SourceRemote {
		t.Fatalf("write failure leaked: %v %v %v", rec, src, err)
	}
}

func TestFetch_CancelledBeforeRemoteCall(t *testing.T) {
	tr := &fakeTransport{info: okInfo}
	e := New(tr, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := cache.NewRun()
	run.Set("cached", "en", &domain.DetailRecord{ID: "cached"})
	if _, src, err := e.Fetch(ctx, run, "cached", "en"); err != nil || src != SourceRun {
		t.Fatalf("cached lookups still work after cancel: %v %v", src, err)
	}
	if _, _, err := e.Fetch(ctx, run, "h1", "en"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if tr.infoCalls != 0 {
		t.Fatal("no remote call should be issued after cancellation")
	}
}

func TestCached_NoRemote(t *testing.T) {
	tr := &fakeTransport{info: okInfo}
	e := New(tr, cache.NewStore(newMemKV(), zerolog.Nop()), zerolog.Nop())
	if _, src, ok := e.Cached(context.Background(), cache.NewRun(), "h1", "en"); ok || src != SourceNone {
		t.Fatalf("unexpected cache hit %v", src)
	}
	if tr.infoCalls != 0 {
		t.Fatal("Cached must not call upstream")
	}
}

func TestFetch_RemoteRecordIsSanitized(t *testing.T) {
	ctx := context.Background()
	tr := &fakeTransport{info: func(id string) (*domain.DetailRecord, payload.Raw, error) {
		raw := validRaw(id, "Templated")
		raw["data"].(map[string]any)["images"] = []any{
			"//cdn.example.com/t/{size}/a.jpg",
			" https://cdn.example.com/b.jpg ",
			"not a url",
		}
		rec, err := payload.Decode(raw)
		return rec, raw, err
	}}
	e := New(tr, cache.NewStore(newMemKV(), zerolog.Nop()), zerolog.Nop())

	want := []string{"https://cdn.example.com/t/1024x768/a.jpg", "https://cdn.example.com/b.jpg"}
	rec, src, err := e.Fetch(ctx, cache.NewRun(), "h1", "en")
	if err != nil || src != SourceRemote {
		t.Fatalf("fetch: src=%v err=%v", src, err)
	}
	if !reflect.DeepEqual(rec.Images, want) {
		t.Fatalf("remote images = %v, want %v", rec.Images, want)
	}

	stored, src, ok := e.Cached(ctx, cache.NewRun(), "h1", "en")
	if !ok || src != SourceStore {
		t.Fatalf("store lookup: ok=%v src=%v", ok, src)
	}
	if !reflect.DeepEqual(stored.Images, rec.Images) {
		t.Fatalf("store images %v differ from remote %v", stored.Images, rec.Images)
	}
}

func TestRemote_SkipsCacheLookups(t *testing.T) {
	ctx := context.Background()
	tr := &fakeTransport{info: okInfo}
	kv := newMemKV()
	e := New(tr, cache.NewStore(kv, zerolog.Nop()), zerolog.Nop())

	run := cache.NewRun()
	if _, _, ok := e.Cached(ctx, run, "h1", "en"); ok {
		t.Fatal("unexpected hit")
	}
	if _, src, err := e.Remote(ctx, run, "h1", "en"); err != nil || src != SourceRemote {
		t.Fatalf("remote: src=%v err=%v", src, err)
	}
	if kv.gets != 1 {
		t.Fatalf("store reads = %d, want 1", kv.gets)
	}
	if _, ok := run.Get("h1", "en"); !ok {
		t.Fatal("remote result not placed in the run cache")
	}
	if _, ok := kv.data[cache.Key{ID: "h1", Language: "en"}]; !ok {
		t.Fatal("remote result not written to the store")
	}
}
