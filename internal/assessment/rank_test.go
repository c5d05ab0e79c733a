// internal/assessment/rank_test.go
package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(id string, total, practical, quality, machine float64, level Level) *Result {
	return &Result{
		CandidateID: id,
		Scores: Scores{
			Total:     total,
			Practical: practical,
			Quality:   quality,
			Machine:   machine,
		},
		FinalAssessment: Assessment{Level: level},
	}
}

func ids(ranked []Ranked) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.Result.CandidateID
	}
	return out
}

func TestRank_OrdersByTotal(t *testing.T) {
	ranked := Rank([]*Result{
		scored("c", 61, 10, 10, 10, LevelMedium),
		scored("a", 92, 10, 10, 10, LevelExcellent),
		scored("b", 75, 10, 10, 10, LevelGood),
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"a", "b", "c"}, ids(ranked))
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Position)
		assert.False(t, r.Tied)
	}
}

func TestRank_TieBreakers(t *testing.T) {
	tests := []struct {
		name  string
		input []*Result
		want  []string
		tied  []bool
	}{
		{
			name: "override level beats equal total",
			input: []*Result{
				scored("plain", 75, 30, 10, 30, LevelGood),
				scored("multi", 75, 30, 10, 30, LevelMultiskill),
			},
			want: []string{"multi", "plain"},
			tied: []bool{false, false},
		},
		{
			name: "practical before quality",
			input: []*Result{
				scored("quality", 70, 20, 10, 16.5, LevelGood),
				scored("practical", 70, 24, 6, 16.5, LevelGood),
			},
			want: []string{"practical", "quality"},
			tied: []bool{false, false},
		},
		{
			name: "quality before machine",
			input: []*Result{
				scored("machine", 70, 24, 6, 30, LevelGood),
				scored("quality", 70, 24, 8, 16.5, LevelGood),
			},
			want: []string{"quality", "machine"},
			tied: []bool{false, false},
		},
		{
			name: "full tie falls back to candidate id",
			input: []*Result{
				scored("cand-9", 66, 18, 8, 24, LevelMedium),
				scored("cand-2", 66, 18, 8, 24, LevelMedium),
				scored("cand-5", 66, 18, 8, 24, LevelMedium),
			},
			want: []string{"cand-2", "cand-5", "cand-9"},
			tied: []bool{false, true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := Rank(tt.input)
			assert.Equal(t, tt.want, ids(ranked))
			for i, r := range ranked {
				assert.Equal(t, tt.tied[i], r.Tied, "position %d", r.Position)
			}
		})
	}
}

func TestRank_SkipsNilAndDoesNotMutateInput(t *testing.T) {
	a := scored("a", 50, 0, 0, 0, LevelAverage)
	b := scored("b", 80, 0, 0, 0, LevelVeryGood)
	input := []*Result{a, nil, b}

	ranked := Rank(input)

	assert.Equal(t, []string{"b", "a"}, ids(ranked))
	assert.Same(t, a, input[0])
	assert.Nil(t, input[1])
	assert.Same(t, b, input[2])
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}

func TestRank_ComputedResults(t *testing.T) {
	strong, err := Compute(Input{
		CandidateID:       "strong",
		Processes:         benchmarkProcesses("No Defect"),
		EducationalStatus: "Eight Above",
		Attitude:          "Good",
	})
	require.NoError(t, err)

	weak, err := Compute(Input{
		CandidateID:       "weak",
		Processes:         []ProcessRecord{proc("Manual", "Thread cut", 0.2, "Basic", "4 Operation Defect", 90)},
		EducationalStatus: "Below Five",
		Attitude:          "Bad",
	})
	require.NoError(t, err)

	ranked := Rank([]*Result{weak, strong})
	assert.Equal(t, []string{"strong", "weak"}, ids(ranked))
}

func TestCommonScale(t *testing.T) {
	weighted := scored("a", 70, 0, 0, 0, LevelGood)
	weighted.Scale = ScaleWeighted
	legacy := scored("b", 60, 0, 0, 0, LevelMedium)
	flat := scored("c", 58, 0, 0, 0, LevelAverage)
	flat.Scale = ScaleFlat

	scale, err := CommonScale([]*Result{weighted, nil, legacy})
	require.NoError(t, err)
	assert.Equal(t, ScaleWeighted, scale)

	scale, err = CommonScale([]*Result{flat})
	require.NoError(t, err)
	assert.Equal(t, ScaleFlat, scale)

	scale, err = CommonScale(nil)
	require.NoError(t, err)
	assert.Empty(t, scale)

	_, err = CommonScale([]*Result{weighted, flat})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{"results[1].scale"}, verrs.Fields())
	assert.Contains(t, err.Error(), `"c"`)
}
