// Package dump imports the upstream bulk hotel info dump into the persistent
// detail cache.
//
// A dump is a JSON Lines file, one hotel object per line, usually shipped
// zstd-compressed (.zst). Each record is converted to the canonical hotel
// info payload, sanitized and strictly validated before it is written under
// the same (id, language) keys live enrichment uses.
package dump

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// maxLineBytes bounds a single dump record.
const maxLineBytes = 64 << 20

// zstdMagic is the frame header of a zstd stream.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Source is an opened dump file yielding decompressed JSON lines.
type Source struct {
	f   *os.File
	dec *zstd.Decoder
	r   io.Reader
}

// Open opens path and sniffs whether it is zstd-compressed; anything else is
// read as plain JSON Lines.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dump: %w", err)
	}
	br := bufio.NewReaderSize(f, 1<<20)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return nil, fmt.Errorf("read dump header: %w", err)
	}

	s := &Source{f: f, r: br}
	if bytes.Equal(head, zstdMagic) {
		dec, err := zstd.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		s.dec, s.r = dec, dec
	}
	return s, nil
}

// Compressed reports whether the source is zstd-compressed.
func (s *Source) Compressed() bool { return s.dec != nil }

// Reader returns the decompressed stream.
func (s *Source) Reader() io.Reader { return s.r }

// Close releases the decoder and the file.
func (s *Source) Close() error {
	if s.dec != nil {
		s.dec.Close()
	}
	return s.f.Close()
}

// Lines calls fn for every non-blank line of r. The slice passed to fn is
// only valid until fn returns. Iteration stops at the first error from fn,
// or with ctx.Err() once ctx is done; ErrStop ends it without error.
func Lines(ctx context.Context, r io.Reader, fn func(line []byte) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<20), maxLineBytes)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read dump: %w", err)
	}
	return nil
}

// ErrStop may be returned by a Lines callback to end iteration early.
var ErrStop = errors.New("dump: stop")
