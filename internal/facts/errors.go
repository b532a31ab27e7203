package facts

import "errors"

// Error kinds form a closed, semantic taxonomy — never a type-name leak to
// the caller. Each sentinel is wrapped via fmt.Errorf("...: %w", ErrX) at the
// point of failure so callers can still errors.Is against it.
var (
	// ErrConfig marks a configuration validation failure at load time.
	ErrConfig = errors.New("config error")
	// ErrIO marks a filesystem or network error; may be transient.
	ErrIO = errors.New("i/o error")
	// ErrParse marks a malformed CSV row, YAML document, URL, or semver string.
	ErrParse = errors.New("parse error")
	// ErrCacheStale marks a table magic/TTL mismatch. Never surfaced to the
	// user; the caller regenerates rather than reporting it.
	ErrCacheStale = errors.New("cache stale")
	// ErrProvider wraps a transient or permanent fact-provider fetch failure.
	ErrProvider = errors.New("provider error")
	// ErrPolicy marks an expression compile failure; fatal at startup.
	ErrPolicy = errors.New("policy error")
)
