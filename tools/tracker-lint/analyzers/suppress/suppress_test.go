package suppress

import "testing"

func TestMatches(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"//nolint", true},
		{"//nolint // reason", true},
		{"//nolint:loopcall", true},
		{"//nolint:loopcall // startups are processed one at a time", true},
		{"//nolint:regexloop,loopcall", true},
		{"//nolint:regexloop", false},
		{"// nolint:loopcall", true},
		{"// plain comment", false},
		{"//nolintloopcall", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := matches(tt.text, "loopcall"); got != tt.want {
				t.Errorf("matches(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
