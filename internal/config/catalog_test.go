package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-events/internal/domain/entity"
)

const sampleCatalog = `
sources:
  - id: maplewood
    name: Maplewood
    kind: bibliocommons
    transport: render-api
    url: https://maplewood.bibliocommons.com/v2/events
    query: "audiences=564274cf4d477f3000"
    latitude: 42.0450
    longitude: -87.6877
    active: true
  - id: oakpark
    name: Oak Park
    kind: libnet
    url: https://oakpark.libnet.info/api/events/list
    audiences: ["Grades K-2", "Grades 3-5"]
    active: true
  - id: riverside
    name: Riverside
    kind: rss
    url: https://riverside.example.org/events/feed
    active: false
`

func TestParseCatalog(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, catalog.Sources, 3)

	assert.Equal(t, entity.KindBibliocommons, catalog.Sources[0].Kind)
	assert.True(t, catalog.Sources[0].HasCoordinates())
	assert.Equal(t, entity.TransportHTTP, catalog.Sources[1].Transport, "transport defaults from kind")
	assert.Equal(t, []string{"Grades K-2", "Grades 3-5"}, catalog.Sources[1].Audiences)

	active := catalog.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "maplewood", active[0].ID)

	assert.True(t, catalog.NeedsRenderAPI())
}

func TestParseCatalogRejectsDuplicateIDs(t *testing.T) {
	_, err := ParseCatalog([]byte(`
sources:
  - {id: a, name: A, kind: rss, url: "https://a.example.org/feed", active: true}
  - {id: a, name: A2, kind: rss, url: "https://a2.example.org/feed", active: true}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate source id")
}

func TestParseCatalogRejectsInvalidSource(t *testing.T) {
	_, err := ParseCatalog([]byte(`
sources:
  - {id: a, name: A, kind: eventlist, url: "https://a.example.org/events", active: true}
`))
	assert.Error(t, err, "eventlist without selectors fails validation")
}

func TestParseCatalogEmpty(t *testing.T) {
	_, err := ParseCatalog([]byte("sources: []"))
	assert.Error(t, err)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o644))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, catalog.Sources, 3)
}

func TestNeedsRenderAPIIgnoresInactive(t *testing.T) {
	catalog, err := ParseCatalog([]byte(`
sources:
  - {id: a, name: A, kind: bibliocommons, transport: render-api, url: "https://a.example.org/events", active: false}
  - {id: b, name: B, kind: rss, url: "https://b.example.org/feed", active: true}
`))
	require.NoError(t, err)
	assert.False(t, catalog.NeedsRenderAPI())
}
