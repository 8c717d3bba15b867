package cache

import "errors"

// ErrStatsUnsupported is returned by Store.Stats when the backend cannot
// summarize its contents.
var ErrStatsUnsupported = errors.New("cache backend does not report stats")
