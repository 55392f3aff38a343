// Diagnose every source in the catalog: fetch each one once with a
// short window and report what came back. Useful when a library site
// changes its markup and a source quietly starts returning nothing.
//
// Usage:
//
//	go run scripts/diagnose_sources.go [-catalog sources.yaml] [-days 7]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"library-events/internal/config"
	"library-events/internal/domain/entity"
	"library-events/internal/infra/scraper"
	"library-events/internal/usecase/aggregate"
)

// SourceDiagnostic is the per-source result line.
type SourceDiagnostic struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	URL          string `json:"url"`
	Status       string `json:"status"` // "OK", "ERROR", "EMPTY", "SKIPPED"
	EventCount   int    `json:"event_count"`
	FirstTitle   string `json:"first_title,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
}

func main() {
	catalogPath := flag.String("catalog", "sources.yaml", "path to the source catalog")
	days := flag.Int("days", 7, "window length in days")
	timeout := flag.Duration("timeout", 60*time.Second, "per-source timeout")
	flag.Parse()

	catalog, err := config.LoadCatalog(*catalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	client := scraper.NewHTTPClient(*timeout)
	var render *scraper.RenderClient
	apiKey := os.Getenv("RENDER_API_KEY")
	if apiKey != "" {
		baseURL := os.Getenv("RENDER_API_URL")
		if baseURL == "" {
			baseURL = "https://api.firecrawl.dev"
		}
		render = scraper.NewRenderClient(client, baseURL, apiKey)
	}
	adapters := scraper.NewFactory(client, render).CreateAdapters()

	now := time.Now()
	window := aggregate.Window{
		Start: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local),
		Days:  *days,
	}

	results := make([]SourceDiagnostic, 0, len(catalog.Sources))
	okCount := 0
	for _, src := range catalog.Active() {
		diag := SourceDiagnostic{
			ID:   src.ID,
			Name: src.Name,
			Kind: string(src.Kind),
			URL:  src.URL,
		}

		adapter, ok := adapters[src.Kind]
		if !ok || (src.Transport == entity.TransportRenderAPI && render == nil) {
			diag.Status = "SKIPPED"
			diag.ErrorMessage = "no adapter available, set RENDER_API_KEY for render-api sources"
			results = append(results, diag)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		start := time.Now()
		raw, err := adapter.Fetch(ctx, src, window)
		cancel()
		diag.ResponseTime = time.Since(start).Milliseconds()

		switch {
		case err != nil:
			diag.Status = "ERROR"
			diag.ErrorMessage = err.Error()
		case len(raw) == 0:
			diag.Status = "EMPTY"
		default:
			diag.Status = "OK"
			diag.EventCount = len(raw)
			diag.FirstTitle = raw[0].Title
			okCount++
		}
		results = append(results, diag)

		fmt.Fprintf(os.Stderr, "%-20s %-8s %4d events  %6dms\n",
			src.ID, diag.Status, diag.EventCount, diag.ResponseTime)
	}

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode results: %v", err)
	}
	fmt.Println(string(out))

	fmt.Fprintf(os.Stderr, "\n%d/%d sources returned events\n", okCount, len(results))
	if okCount == 0 && len(results) > 0 {
		os.Exit(1)
	}
}
