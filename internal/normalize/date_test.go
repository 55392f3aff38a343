package normalize

import (
	"testing"
	"time"

	"library-events/internal/domain/entity"
)

func TestDateFormatEquivalence(t *testing.T) {
	want := entity.NewDate(2025, time.December, 10)
	variants := []string{
		"Wednesday, December 10, 2025",
		"Wednesday December 10 2025",
		"December 10, 2025",
		"Dec 10, 2025",
		"Dec 10 2025",
		"12/10/2025",
		"2025-12-10",
	}
	for _, v := range variants {
		got := Date(v)
		if !got.Equal(want) {
			t.Errorf("Date(%q) = %v, want %v", v, got, want)
		}
	}
}

func TestDateUnparsable(t *testing.T) {
	for _, v := range []string{"", "soon", "the 10th of Smarch", "Not found"} {
		if got := Date(v); got.Known {
			t.Errorf("Date(%q) = %v, want unknown", v, got)
		}
	}
}

func TestDateYearInference(t *testing.T) {
	tests := []struct {
		name string
		text string
		now  time.Time
		want entity.Date
	}{
		{
			name: "same year",
			text: "December 10",
			now:  time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC),
			want: entity.NewDate(2025, time.December, 10),
		},
		{
			name: "rolls to next year in last quarter",
			text: "January 5",
			now:  time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC),
			want: entity.NewDate(2026, time.January, 5),
		},
		{
			name: "no roll outside last quarter",
			text: "January 5",
			now:  time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
			want: entity.NewDate(2025, time.January, 5),
		},
		{
			name: "boundary month october rolls",
			text: "Mar 3",
			now:  time.Date(2025, time.October, 15, 0, 0, 0, 0, time.UTC),
			want: entity.NewDate(2026, time.March, 3),
		},
		{
			name: "september does not roll",
			text: "Mar 3",
			now:  time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC),
			want: entity.NewDate(2025, time.March, 3),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateAt(tt.text, tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("DateAt(%q, %v) = %v, want %v", tt.text, tt.now, got, tt.want)
			}
		})
	}
}

func TestDateCombinedDateTime(t *testing.T) {
	want := entity.NewDate(2025, time.December, 10)
	for _, v := range []string{
		"Dec 10, 2025 @ 10:00 AM",
		"Dec 10, 2025 at 10:00 AM",
		"December 10, 2025 at 10 AM - 11 AM",
	} {
		if got := Date(v); !got.Equal(want) {
			t.Errorf("Date(%q) = %v, want %v", v, got, want)
		}
	}
}

func TestSplitDateTime(t *testing.T) {
	tests := []struct {
		in       string
		wantDate string
		wantTime string
	}{
		{"Dec 10, 2025 @ 10:00 AM", "Dec 10, 2025", "10:00 AM"},
		{"Dec 10, 2025 at 10:00 AM", "Dec 10, 2025", "10:00 AM"},
		{"Dec 10, 2025", "Dec 10, 2025", ""},
	}
	for _, tt := range tests {
		d, tm := SplitDateTime(tt.in)
		if d != tt.wantDate || tm != tt.wantTime {
			t.Errorf("SplitDateTime(%q) = (%q, %q), want (%q, %q)", tt.in, d, tm, tt.wantDate, tt.wantTime)
		}
	}
}
