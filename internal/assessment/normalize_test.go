// internal/assessment/normalize_test.go
package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProcessName(t *testing.T) {
	tests := map[string]string{
		"Pocket join (Kangaro)":     "pocket join kangaro",
		"Zipper-Join 2nd":           "zipper join 2nd",
		"  Neck   JOIN ":            "neck join",
		"Back neck tape/top-stitch": "back neck tape top stitch",
		"":                          "",
		"***":                       "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeProcessName(in), "input %q", in)
	}
}

func TestMatchesKeyword(t *testing.T) {
	tests := []struct {
		name    string
		process string
		keyword string
		want    bool
	}{
		{"exact", "Neck join", "neck join", true},
		{"case and punctuation", "NECK-JOIN", "neck join", true},
		{"embedded in longer name", "Back Neck Join (rib)", "neck join", true},
		{"partial token", "Neck joining", "neck join", false},
		{"prefix token", "Turtleneck join", "neck join", false},
		{"reordered", "Join neck", "neck join", false},
		{"benchmark full name", "Back neck tape top stitch insert label", "back neck tape top stitch", true},
		{"bracketed suffix", "Pocket join (Kangaro)", "pocket join", true},
		{"empty keyword", "Neck join", "", false},
		{"empty name", "", "neck join", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesKeyword(tt.process, tt.keyword))
		})
	}
}
