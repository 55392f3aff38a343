package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-events/internal/usecase/query"
)

func newTestCache(t *testing.T) *FileCache {
	t.Helper()
	cache, err := LoadCache(filepath.Join(t.TempDir(), "geo_cache.json"))
	require.NoError(t, err)
	return cache
}

func TestGeocodeEmptyAddress(t *testing.T) {
	svc := NewService(nil, newTestCache(t), "http://unused.invalid")

	_, ok, err := svc.Geocode(context.Background(), "   ")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGeocodeStaticZip(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	cache := newTestCache(t)
	svc := NewService(server.Client(), cache, server.URL)

	coords, ok, err := svc.Geocode(context.Background(), "60201")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 42.0450, coords.Lat, 0.0001)
	assert.InDelta(t, -87.6877, coords.Lon, 0.0001)
	assert.Equal(t, int32(0), calls.Load(), "static hits never reach the network")

	cached, ok := cache.Get("60201")
	assert.True(t, ok, "static hits are written through to the cache")
	assert.Equal(t, coords, cached)
}

func TestGeocodeAreaPattern(t *testing.T) {
	svc := NewService(nil, newTestCache(t), "http://unused.invalid")

	coords, ok, err := svc.Geocode(context.Background(), "Harold Washington Library, downtown Chicago")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 41.8781, coords.Lat, 0.0001)
}

func TestGeocodeRemoteLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "123 Main St, Springfield", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`[{"lat":"41.9000","lon":"-87.7000"}]`))
	}))
	defer server.Close()

	cache := newTestCache(t)
	svc := NewService(server.Client(), cache, server.URL)

	coords, ok, err := svc.Geocode(context.Background(), "123 Main St, Springfield")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 41.9, coords.Lat, 0.0001)
	assert.InDelta(t, -87.7, coords.Lon, 0.0001)

	// Second lookup is served from the cache without another request.
	server.Close()
	coords2, ok, err := svc.Geocode(context.Background(), "123 Main St, Springfield")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, coords, coords2)
}

func TestGeocodeRemoteNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	svc := NewService(server.Client(), newTestCache(t), server.URL)

	_, ok, err := svc.Geocode(context.Background(), "nowhere at all")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGeocodeRemoteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	svc := NewService(server.Client(), newTestCache(t), server.URL)

	_, ok, err := svc.Geocode(context.Background(), "somewhere blocked")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestFileCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geo_cache.json")

	cache, err := LoadCache(path)
	require.NoError(t, err)
	cache.Put("60077", query.Coordinates{Lat: 42.0406, Lon: -87.7334})
	require.NoError(t, err)
	require.NoError(t, cache.Flush())

	reloaded, err := LoadCache(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
	coords, ok := reloaded.Get("60077")
	require.True(t, ok)
	assert.InDelta(t, 42.0406, coords.Lat, 0.0001)
}

func TestLoadCacheCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geo_cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadCache(path)
	assert.Error(t, err)
}

func TestFileCacheFlushSkipsWhenClean(t *testing.T) {
	cache, err := LoadCache(filepath.Join(t.TempDir(), "missing", "geo_cache.json"))
	require.NoError(t, err)
	// The parent directory does not exist, but a clean cache never writes.
	assert.NoError(t, cache.Flush())
}
