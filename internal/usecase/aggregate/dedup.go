package aggregate

import "library-events/internal/domain/entity"

// Dedupe removes duplicate records in a single pass, keeping the first
// occurrence of each identity key. Input order is preserved for the
// survivors, so callers control which duplicate wins by ordering the
// input. Running Dedupe over its own output changes nothing.
func Dedupe(records []*entity.EventRecord) (kept []*entity.EventRecord, dropped int) {
	seen := make(map[string]struct{}, len(records))
	kept = make([]*entity.EventRecord, 0, len(records))

	for _, rec := range records {
		key := rec.IdentityKey()
		if _, ok := seen[key]; ok {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, rec)
	}

	return kept, dropped
}
