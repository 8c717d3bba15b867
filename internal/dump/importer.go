package dump

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-hotel-search/internal/cache"
	"github.com/tbourn/go-hotel-search/internal/payload"
)

// progressEvery controls how often import progress is logged.
const progressEvery = 1000

// ErrNoStore is returned when the importer has no persistent backend.
var ErrNoStore = errors.New("dump: persistent cache is disabled")

// Stats counts the outcome of an import.
type Stats struct {
	Lines     int // non-blank lines read
	Imported  int
	Malformed int // not a JSON object
	Invalid   int // failed strict validation or had no id
	Failed    int // cache write errors
}

// Importer writes dump records into the persistent cache under one language.
type Importer struct {
	Store    *cache.Store
	Language string
	Limit    int // stop after this many imported records; 0 imports all
	Log      zerolog.Logger
}

// Import reads JSON lines from r. Malformed and invalid records are skipped
// and counted; write failures are counted and logged. The returned error is
// non-nil only when reading fails or ctx is done.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Stats, error) {
	var st Stats
	if im.Store == nil || !im.Store.Enabled() {
		return st, ErrNoStore
	}

	err := Lines(ctx, r, func(line []byte) error {
		st.Lines++
		rec, err := payload.Parse(line)
		if err != nil {
			st.Malformed++
			return nil
		}

		clean := payload.Sanitize(ToPayload(rec))
		detail, err := payload.Decode(clean)
		if err != nil || detail.ID == "" {
			st.Invalid++
			im.Log.Debug().Err(err).Int("line", st.Lines).Msg("skipping invalid dump record")
			return nil
		}

		if _, err := im.Store.Set(ctx, detail.ID, im.Language, clean); err != nil {
			st.Failed++
			im.Log.Warn().Err(err).Str("hotel_id", detail.ID).Msg("dump record write failed")
			return nil
		}
		st.Imported++
		if st.Imported%progressEvery == 0 {
			im.Log.Info().Int("imported", st.Imported).Msg("import progress")
		}
		if im.Limit > 0 && st.Imported >= im.Limit {
			return ErrStop
		}
		return nil
	})

	im.Log.Info().
		Int("lines", st.Lines).
		Int("imported", st.Imported).
		Int("malformed", st.Malformed).
		Int("invalid", st.Invalid).
		Int("failed", st.Failed).
		Msg("dump import finished")
	return st, err
}
