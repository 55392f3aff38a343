// Package snapshot persists each aggregation run as a CSV file and
// serves the newest one back, so the API can answer queries from the
// last successful run across restarts.
package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"library-events/internal/domain/entity"
	"library-events/internal/normalize"
	"library-events/internal/usecase/export"
)

// ErrNoSnapshot is returned when the data directory holds no snapshot
// file yet.
var ErrNoSnapshot = errors.New("no snapshot available")

// snapshotGlob matches the files this store writes.
const snapshotGlob = "all_library_events_*.csv"

// Store reads and writes run snapshots under one data directory.
type Store struct {
	dir string
}

// NewStore ensures the data directory exists and returns a store
// bound to it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Write persists the records as the snapshot for runDate and returns
// the file path. The file appears atomically; a crash mid-write never
// leaves a truncated snapshot behind.
func (s *Store) Write(records []*entity.EventRecord, runDate time.Time) (string, error) {
	dest := filepath.Join(s.dir, export.CSVFilename(runDate))

	tmp, err := os.CreateTemp(s.dir, ".snapshot-*.csv")
	if err != nil {
		return "", fmt.Errorf("create snapshot temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := export.WriteCSV(tmp, records); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("publish snapshot: %w", err)
	}

	slog.Info("snapshot written", "path", dest, "events", len(records))
	return dest, nil
}

// LoadLatest reads the most recently modified snapshot file and
// returns its records together with the file path.
func (s *Store) LoadLatest() ([]*entity.EventRecord, string, error) {
	path, err := s.latestPath()
	if err != nil {
		return nil, "", err
	}
	records, err := s.load(path)
	if err != nil {
		return nil, "", err
	}
	return records, path, nil
}

func (s *Store) latestPath() (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, snapshotGlob))
	if err != nil {
		return "", fmt.Errorf("list snapshots: %w", err)
	}
	if len(matches) == 0 {
		return "", ErrNoSnapshot
	}

	latest := ""
	var latestMod time.Time
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = path
			latestMod = info.ModTime()
		}
	}
	if latest == "" {
		return "", ErrNoSnapshot
	}
	return latest, nil
}

func (s *Store) load(path string) ([]*entity.EventRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(export.CSVHeader)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("snapshot %s: missing header row", path)
	}

	records := make([]*entity.EventRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, rowToRecord(row))
	}
	return records, nil
}

// rowToRecord rebuilds a record from a snapshot row. Date and time go
// back through the normalizer so the parsed forms match what the
// aggregation pipeline produced.
func rowToRecord(row []string) *entity.EventRecord {
	rec := &entity.EventRecord{
		SourceID:    row[0],
		Library:     row[1],
		Title:       row[2],
		Date:        normalize.Date(row[3]),
		TimeRaw:     row[4],
		Location:    row[5],
		Category:    row[7],
		Description: row[8],
		Link:        row[9],
	}
	rec.Time, rec.EndTime = normalize.Time(row[4])
	if ages := strings.TrimSpace(row[6]); ages != "" {
		rec.Audience = entity.NormalizeAudience(strings.Split(ages, ","))
	}
	return rec
}
