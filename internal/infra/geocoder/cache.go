// Package geocoder resolves postal addresses to coordinates for
// distance filtering. Lookups go through three tiers: a persistent
// file cache, a static table of known local areas, and the Nominatim
// API as a rate-limited last resort.
package geocoder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"library-events/internal/usecase/query"
)

// FileCache persists successful geocoding results as a JSON map of
// address to [lat, lon]. It is loaded once at startup and flushed on
// shutdown; lookups in between are memory-only.
type FileCache struct {
	path string

	mu      sync.Mutex
	entries map[string][2]float64
	dirty   bool
}

// NewCache returns an empty cache that will flush to path.
func NewCache(path string) *FileCache {
	return &FileCache{path: path, entries: make(map[string][2]float64)}
}

// LoadCache reads the cache file at path. A missing file yields an
// empty cache; a corrupt one is an error so a bad deploy is noticed
// instead of silently re-geocoding everything.
func LoadCache(path string) (*FileCache, error) {
	cache := &FileCache{path: path, entries: make(map[string][2]float64)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read geo cache: %w", err)
	}
	if err := json.Unmarshal(data, &cache.entries); err != nil {
		return nil, fmt.Errorf("parse geo cache %s: %w", path, err)
	}
	return cache, nil
}

// Get returns the cached coordinates for an address.
func (c *FileCache) Get(address string) (query.Coordinates, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pair, ok := c.entries[address]
	if !ok {
		return query.Coordinates{}, false
	}
	return query.Coordinates{Lat: pair[0], Lon: pair[1]}, true
}

// Put records a successful lookup. Only successes are cached so a
// transient failure never poisons future requests.
func (c *FileCache) Put(address string, coords query.Coordinates) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[address] = [2]float64{coords.Lat, coords.Lon}
	c.dirty = true
}

// Len reports the number of cached addresses.
func (c *FileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Flush writes the cache back to disk when anything changed since the
// last flush.
func (c *FileCache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode geo cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write geo cache: %w", err)
	}
	c.dirty = false
	return nil
}
