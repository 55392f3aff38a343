// Package config loads the source catalog: the YAML file describing
// every library site and feed the aggregator pulls from.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"library-events/internal/domain/entity"
)

// Catalog is the parsed sources file.
type Catalog struct {
	Sources []*entity.Source `yaml:"sources"`
}

// LoadCatalog reads and validates the catalog at path. Every source
// must validate and IDs must be unique; catalog order is preserved
// because it fixes deduplication precedence.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses and validates raw catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(catalog.Sources) == 0 {
		return nil, fmt.Errorf("catalog has no sources")
	}

	seen := make(map[string]struct{}, len(catalog.Sources))
	for i, src := range catalog.Sources {
		if err := src.Validate(); err != nil {
			return nil, fmt.Errorf("source %d (%s): %w", i, src.ID, err)
		}
		if _, dup := seen[src.ID]; dup {
			return nil, fmt.Errorf("duplicate source id %q", src.ID)
		}
		seen[src.ID] = struct{}{}
	}
	return &catalog, nil
}

// Active returns the active sources in catalog order.
func (c *Catalog) Active() []*entity.Source {
	out := make([]*entity.Source, 0, len(c.Sources))
	for _, src := range c.Sources {
		if src.Active {
			out = append(out, src)
		}
	}
	return out
}

// NeedsRenderAPI reports whether any active source uses the render
// transport, so startup can require the API key only when it matters.
func (c *Catalog) NeedsRenderAPI() bool {
	for _, src := range c.Sources {
		if src.Active && src.Transport == entity.TransportRenderAPI {
			return true
		}
	}
	return false
}
