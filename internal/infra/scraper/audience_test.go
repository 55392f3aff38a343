package scraper

import "testing"

func TestCoalesceAudience(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Grades K-2", AudienceGradesK2},
		{"K to 2", AudienceGradesK2},
		{"kindergarten through 2nd", AudienceGradesK2},
		{"Lower Elementary", AudienceGradesK2},
		{"Grades 3-5", AudienceGrades35},
		{"3rd to 5th", AudienceGrades35},
		{"Upper Elementary", AudienceGrades35},
		{"Kids", AudienceKids},
		{"Kids/Family", AudienceKids},
		{"Children", AudienceKids},
		{"Adults", "Adults"},
		{"  Teens  ", "Teens"},
	}

	for _, tt := range tests {
		if got := CoalesceAudience(tt.label); got != tt.want {
			t.Errorf("CoalesceAudience(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestCoalesceAllDeduplicates(t *testing.T) {
	got := coalesceAll([]string{"Grades K-2", "K to 2", "Kids", ""})
	if len(got) != 2 || got[0] != AudienceGradesK2 || got[1] != AudienceKids {
		t.Errorf("coalesceAll = %v, want [%s %s]", got, AudienceGradesK2, AudienceKids)
	}
}

func TestKeepForAudiences(t *testing.T) {
	tests := []struct {
		name     string
		wanted   []string
		labels   []string
		fallback string
		want     bool
	}{
		{name: "no filter keeps everything", labels: []string{"Adults"}, want: true},
		{name: "matching tag", wanted: []string{"Grades K-2"}, labels: []string{AudienceGradesK2}, want: true},
		{name: "generic kids satisfies grade filter", wanted: []string{"Grades 3-5"}, labels: []string{AudienceKids}, want: true},
		{name: "untagged events kept", wanted: []string{"Grades K-2"}, labels: nil, want: true},
		{name: "wrong audience dropped", wanted: []string{"Grades K-2"}, labels: []string{"Adults"}, want: false},
		{
			name:     "fallback text rescues mislabeled event",
			wanted:   []string{"Grades 3-5"},
			labels:   []string{"Adults"},
			fallback: "Chess for grades 3 to 5",
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keepForAudiences(tt.wanted, tt.labels, tt.fallback); got != tt.want {
				t.Errorf("keepForAudiences(%v, %v, %q) = %v, want %v",
					tt.wanted, tt.labels, tt.fallback, got, tt.want)
			}
		})
	}
}
