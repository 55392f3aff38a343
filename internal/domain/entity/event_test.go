package entity

import (
	"testing"
	"time"
)

func TestDateOrdering(t *testing.T) {
	known := NewDate(2025, time.December, 10)
	later := NewDate(2025, time.December, 11)
	unknown := UnknownDate()

	if !known.Before(later) {
		t.Error("expected Dec 10 before Dec 11")
	}
	if later.Before(known) {
		t.Error("expected Dec 11 not before Dec 10")
	}
	if !known.Before(unknown) {
		t.Error("known dates must sort before unknown dates")
	}
	if unknown.Before(known) {
		t.Error("unknown dates must never sort before known dates")
	}
	if !unknown.Equal(UnknownDate()) {
		t.Error("two unknown dates should be equal")
	}
}

func TestDateString(t *testing.T) {
	d := NewDate(2025, time.December, 10)
	if got := d.String(); got != "2025-12-10" {
		t.Errorf("String() = %q, want 2025-12-10", got)
	}
	if got := d.Display(); got != "Wednesday, December 10, 2025" {
		t.Errorf("Display() = %q", got)
	}
	if got := UnknownDate().String(); got != DescriptionNotFound {
		t.Errorf("unknown String() = %q, want %q", got, DescriptionNotFound)
	}
}

func TestTimeOfDaySortKey(t *testing.T) {
	allDay := TimeOfDay{Kind: TimeAllDay}
	midnight := TimeAtMinutes(0)
	morning := TimeAtMinutes(10 * 60)
	unknown := TimeOfDay{}

	if allDay.SortKey() >= midnight.SortKey() {
		t.Error("all-day must sort before every timed entry, midnight included")
	}
	if midnight.SortKey() >= morning.SortKey() {
		t.Error("earlier times must sort first")
	}
	if morning.SortKey() >= unknown.SortKey() {
		t.Error("unknown must sort after every known time")
	}
}

func TestTimeOfDayString(t *testing.T) {
	tests := []struct {
		name string
		in   TimeOfDay
		want string
	}{
		{"timed", TimeAtMinutes(10*60 + 30), "10:30 AM"},
		{"afternoon", TimeAtMinutes(15 * 60), "3:00 PM"},
		{"all day", TimeOfDay{Kind: TimeAllDay}, "All Day"},
		{"unknown", TimeOfDay{}, DescriptionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIdentityKeyIgnoresDescription(t *testing.T) {
	a := EventRecord{
		SourceID: "skokie",
		Title:    "Storytime",
		Date:     NewDate(2025, time.December, 10),
		TimeRaw:  "10:00 AM",
	}
	b := a
	b.Description = "a completely different description"
	b.Link = "https://example.com/other"

	if a.IdentityKey() != b.IdentityKey() {
		t.Error("records differing only in description/link must share an identity key")
	}

	c := a
	c.TimeRaw = "11:00 AM"
	if a.IdentityKey() == c.IdentityKey() {
		t.Error("records with different raw times must not share an identity key")
	}
}

func TestIdentityKeyNormalizesTitleCase(t *testing.T) {
	a := EventRecord{SourceID: "s", Title: "Baby Storytime "}
	b := EventRecord{SourceID: "s", Title: "baby storytime"}
	if a.IdentityKey() != b.IdentityKey() {
		t.Error("identity key should be case- and whitespace-insensitive on title")
	}
}

func TestNormalizeAudience(t *testing.T) {
	got := NormalizeAudience([]string{"Teen", "Kids", "", " Kids ", "Teen"})
	want := []string{"Kids", "Teen"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeAudience = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeAudience[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if NormalizeAudience(nil) != nil {
		t.Error("empty input should stay nil")
	}
}
