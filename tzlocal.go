// Package tzlocal determines the operating system's configured local
// timezone on Unix-like systems. It searches the TZ environment
// variable, the Android property service, distribution configuration
// files, and the localtime symlink, in that order, and returns a
// *time.Location usable with the standard time package.
package tzlocal

import (
	"sync/atomic"
	"time"
)

// DefaultRoot is the search root used by the package-level functions.
const DefaultRoot = "/"

// sentinelZoneName names zones loaded from raw TZif data, where the
// real zone identifier is not recoverable.
const sentinelZoneName = "local"

// Cache memoizes the result of the detection chain for the lifetime of
// the process. The slot is a single atomic pointer: concurrent first
// calls may run the chain more than once, but callers always observe
// either nothing or a fully constructed location. Callers that need
// strict run-once semantics serialize Get and Reload themselves.
type Cache struct {
	detect func() (*time.Location, error)
	tz     atomic.Pointer[time.Location]
}

// NewCache returns an empty cache that resolves against the given
// search root. Production callers use DefaultRoot; other roots exist
// for isolated testing.
func NewCache(root string) *Cache {
	d := newDetector(root)
	return &Cache{detect: d.detect}
}

// Get returns the cached zone, running the detection chain on first
// use.
func (c *Cache) Get() (*time.Location, error) {
	if loc := c.tz.Load(); loc != nil {
		return loc, nil
	}
	return c.Reload()
}

// Reload re-runs the detection chain unconditionally and replaces the
// cached zone. Call it after the system timezone has changed.
func (c *Cache) Reload() (*time.Location, error) {
	loc, err := c.detect()
	if err != nil {
		return nil, err
	}
	c.tz.Store(loc)
	return loc, nil
}

var defaultCache = NewCache(DefaultRoot)

// GetLocalzone returns the computer's configured local timezone.
func GetLocalzone() (*time.Location, error) {
	return defaultCache.Get()
}

// ReloadLocalzone reloads the cached local timezone. Call it if the
// system timezone has changed since the first lookup.
func ReloadLocalzone() (*time.Location, error) {
	return defaultCache.Reload()
}

// GetLocalzoneName returns the IANA name of the local timezone, or
// "local" when only a raw TZif file was found.
func GetLocalzoneName() (string, error) {
	loc, err := GetLocalzone()
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}
