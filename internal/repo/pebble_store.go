package repo

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"github.com/tbourn/go-hotel-search/internal/domain"
)

// PebbleStore is an embedded LSM alternative to the SQLite hotels table. It
// implements cache.KV and cache.StatsReader.
//
// Keys are "<id>\x00<language>"; values are an 8-byte big-endian unix
// timestamp followed by the payload.
type PebbleStore struct {
	db *pebble.DB
}

// NewPebbleStore opens (or creates) a Pebble database in dir.
func NewPebbleStore(dir string) (*PebbleStore, error) {
	opts := &pebble.Options{
		MemTableSize:          64 << 20,
		L0CompactionThreshold: 4,
		L0StopWritesThreshold: 12,
		WALBytesPerSync:       1 << 20,
	}
	d, err := pebble.Open(filepath.Clean(dir), opts)
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: d}, nil
}

// Close flushes and closes the database.
func (p *PebbleStore) Close() error { return p.db.Close() }

func pebbleKey(id, lang string) []byte {
	k := make([]byte, 0, len(id)+1+len(lang))
	k = append(k, id...)
	k = append(k, 0)
	return append(k, lang...)
}

const tsLen = 8

// Get returns the stored payload for (id, lang).
func (p *PebbleStore) Get(_ context.Context, id, lang string) ([]byte, bool, error) {
	v, closer, err := p.db.Get(pebbleKey(id, lang))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()
	if len(v) < tsLen {
		return nil, false, fmt.Errorf("pebble: short value for %q/%q", id, lang)
	}
	return append([]byte(nil), v[tsLen:]...), true, nil
}

// Put replaces the value stored under (id, lang). Writes go through the WAL
// without an fsync per key; Close flushes.
func (p *PebbleStore) Put(_ context.Context, id, lang string, value []byte) error {
	v := make([]byte, tsLen, tsLen+len(value))
	binary.BigEndian.PutUint64(v, uint64(now().Unix()))
	v = append(v, value...)
	return p.db.Set(pebbleKey(id, lang), v, pebble.NoSync)
}

// Stats scans every key. It is linear in the size of the store and meant for
// the occasional operator request, not the hot path.
func (p *PebbleStore) Stats(ctx context.Context) (domain.CacheStats, error) {
	it, err := p.db.NewIter(nil)
	if err != nil {
		return domain.CacheStats{}, err
	}
	defer it.Close()

	var (
		st   domain.CacheStats
		last int64
	)
	for it.First(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return domain.CacheStats{}, err
		}
		st.Entries++
		if v := it.Value(); len(v) >= tsLen {
			if ts := int64(binary.BigEndian.Uint64(v[:tsLen])); ts > last {
				last = ts
			}
		}
	}
	if st.Entries > 0 && last > 0 {
		st.LastUpdated = domain.HotelInfoEntry{UpdatedAt: &last}.UpdatedTime()
	}
	return st, nil
}
