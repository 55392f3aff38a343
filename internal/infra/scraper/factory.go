package scraper

import (
	"net/http"
	"time"

	"library-events/internal/domain/entity"
	"library-events/internal/usecase/aggregate"
)

// Factory creates the adapter set for the aggregation service.
type Factory struct {
	client *http.Client
	render *RenderClient
}

// NewFactory creates a Factory. client is the shared pool for direct
// HTTP sources; render is the markdown render service client (nil
// disables bibliocommons sources).
func NewFactory(client *http.Client, render *RenderClient) *Factory {
	return &Factory{client: client, render: render}
}

// CreateAdapters returns the adapter registry keyed by source kind.
// The aggregation service routes each catalog entry through this map.
func (f *Factory) CreateAdapters() map[entity.SourceKind]aggregate.Adapter {
	adapters := map[entity.SourceKind]aggregate.Adapter{
		entity.KindLibnet:    NewLibnetAdapter(f.client),
		entity.KindEventList: NewEventListAdapter(f.client),
		entity.KindRSS:       NewRSSAdapter(f.client),
	}
	if f.render != nil {
		adapters[entity.KindBibliocommons] = NewBibliocommonsAdapter(f.render)
	}
	return adapters
}

// Release drops the idle connections pooled by the shared client. A
// crawl touches every source host in a burst; between runs there is
// nothing to keep those sockets open for, so the run's orchestrator
// calls this once the pass finishes.
func (f *Factory) Release() {
	f.client.CloseIdleConnections()
}

// NewHTTPClient returns an HTTP client configured for source fetches.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
