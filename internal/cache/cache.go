// Package cache keeps recent per-file check results so unchanged files are
// not parsed and checked again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/JNZader/declint/internal/checker"
)

// Entry is the cached outcome of checking one file.
type Entry struct {
	Interfaces   int
	Declarations int
	Violations   []checker.Violation
}

// Cache defines the interface for caching file results.
type Cache interface {
	// Get retrieves a cached entry.
	Get(key string) (*Entry, bool)

	// Set stores an entry in the cache.
	Set(key string, entry *Entry)

	// Clear removes all cached entries.
	Clear()

	// Stats reports hit and miss counts.
	Stats() Stats
}

// Stats contains cache statistics.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// HitRate returns the fraction of lookups served from the cache.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// ComputeKey identifies a file result. Equal keys mean equal path, equal
// content and an equal effective RuleSet, hence equal violations.
func ComputeKey(path string, content []byte, fingerprint string) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
