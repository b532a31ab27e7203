// Package cache implements the filesystem-backed JSON document cache and the
// inter-process exclusive lock that every provider shares.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/observability"
)

var logger = slog.Default().With("component", "cache_doc")

// Load reads and JSON-decodes a document from path, logging a hit or miss
// under the given context label.
func Load[T any](path string, context string) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		logger.Debug("cache miss", "context", context, "error", err)
		observability.CacheMisses.WithLabelValues(context).Inc()
		return zero, fmt.Errorf("%w: unable to open file %q: %v", facts.ErrIO, path, err)
	}
	defer f.Close()

	var data T
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		logger.Debug("cache miss", "context", context, "error", err)
		observability.CacheMisses.WithLabelValues(context).Inc()
		return zero, fmt.Errorf("%w: unable to parse file %q: %v", facts.ErrParse, path, err)
	}
	logger.Debug("cache hit", "context", context)
	observability.CacheHits.WithLabelValues(context).Inc()
	return data, nil
}

// LoadWithTTL reads a document and applies TTL/clock-skew rules: absence,
// parse failure, or age >= ttl all report a miss (ok=false); a hit or a
// future timestamp reports ok=true.
//
// The TTL boundary is strict: age == ttl counts as expired, matching the
// original tool's documented behavior.
func LoadWithTTL[T any](path string, ttl time.Duration, timestampOf func(T) time.Time, now time.Time, context string) (T, bool) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		logger.Debug("cache miss", "context", context, "error", err)
		observability.CacheMisses.WithLabelValues(context).Inc()
		return zero, false
	}
	defer f.Close()

	var data T
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		logger.Debug("cache miss", "context", context, "error", err)
		observability.CacheMisses.WithLabelValues(context).Inc()
		return zero, false
	}

	timestamp := timestampOf(data)
	age := now.Sub(timestamp)
	if age < 0 {
		logger.Debug("cache timestamp is in the future (clock skew detected), treating as fresh", "context", context)
		observability.CacheHits.WithLabelValues(context).Inc()
		return data, true
	}

	if age < ttl {
		logger.Debug("cache hit", "context", context, "age_days", age.Hours()/24)
		observability.CacheHits.WithLabelValues(context).Inc()
		return data, true
	}
	logger.Debug("cache expired", "context", context, "age_days", age.Hours()/24, "ttl_days", ttl.Hours()/24)
	observability.CacheMisses.WithLabelValues(context).Inc()
	return zero, false
}

// Save atomically writes data as JSON to path: parent directories are
// created, the document is written to a temp file in the same directory,
// flushed, then renamed into place so a crash mid-write never leaves a
// partially written cache file.
func Save[T any](data T, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: unable to create directory %q: %v", facts.ErrIO, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: unable to create cache file: %v", facts.ErrIO, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: unable to write cache file %q: %v", facts.ErrIO, path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: unable to flush cache file %q: %v", facts.ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: unable to flush cache file %q: %v", facts.ErrIO, path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: unable to commit cache file %q: %v", facts.ErrIO, path, err)
	}
	return nil
}
