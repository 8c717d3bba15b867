package dump

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// URLSource resolves the download URL of the current dump.
type URLSource interface {
	DumpURL(ctx context.Context, inventory, lang string) (string, error)
}

// Fetch resolves the dump URL for (inventory, lang) and downloads it to dst.
func Fetch(ctx context.Context, src URLSource, hc *http.Client, inventory, lang, dst string) (int64, error) {
	u, err := src.DumpURL(ctx, inventory, lang)
	if err != nil {
		return 0, fmt.Errorf("resolve dump url: %w", err)
	}
	return Download(ctx, hc, u, dst)
}

// Download streams url into dst. The body goes to a temporary file in the
// same directory that is renamed into place once complete, so dst is never
// left half-written.
func Download(ctx context.Context, hc *http.Client, url, dst string) (int64, error) {
	if hc == nil {
		hc = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download dump: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download dump: unexpected status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".part-*")
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return n, fmt.Errorf("download dump: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return n, err
	}
	return n, nil
}
