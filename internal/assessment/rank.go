// internal/assessment/rank.go
package assessment

import (
	"fmt"
	"sort"
)

// Ranked is one entry of a ranked candidate list.
type Ranked struct {
	Position int     `json:"position"`
	Tied     bool    `json:"tied"`
	Result   *Result `json:"result"`
}

// CommonScale returns the scale every non-nil result was scored on. Totals
// from different scales are not comparable, so a mixed batch is rejected
// with one ValidationError per result that differs from the first. An
// empty Scale counts as weighted.
func CommonScale(results []*Result) (string, error) {
	var (
		scale string
		errs  ValidationErrors
	)
	for i, r := range results {
		if r == nil {
			continue
		}
		name := r.Scale
		if name == "" {
			name = ScaleWeighted
		}
		if scale == "" {
			scale = name
			continue
		}
		if name != scale {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("results[%d].scale", i),
				Code:    CodeInvalidValue,
				Message: fmt.Sprintf("candidate %q was scored on %s, batch is %s", r.CandidateID, name, scale),
			})
		}
	}
	if len(errs) > 0 {
		return "", errs
	}
	return scale, nil
}

// Rank orders results best first. Callers mixing scales must check
// CommonScale first. Ties on total score are broken by final
// level, then practical, quality and machine sub-scores, and finally by
// candidate ID so the order is stable across runs. Tied marks an entry
// that only the candidate ID separated from the one before it. Nil
// results are skipped.
func Rank(results []*Result) []Ranked {
	sorted := make([]*Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			sorted = append(sorted, r)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if c := compareMerit(a, b); c != 0 {
			return c > 0
		}
		return a.CandidateID < b.CandidateID
	})

	out := make([]Ranked, len(sorted))
	for i, r := range sorted {
		out[i] = Ranked{Position: i + 1, Result: r}
		if i > 0 && compareMerit(sorted[i-1], r) == 0 {
			out[i].Tied = true
		}
	}
	return out
}

// compareMerit returns >0 when a outranks b, <0 when b outranks a.
func compareMerit(a, b *Result) int {
	keys := [][2]float64{
		{a.Scores.Total, b.Scores.Total},
		{float64(a.FinalAssessment.Level.Rank()), float64(b.FinalAssessment.Level.Rank())},
		{a.Scores.Practical, b.Scores.Practical},
		{a.Scores.Quality, b.Scores.Quality},
		{a.Scores.Machine, b.Scores.Machine},
	}
	for _, k := range keys {
		switch {
		case k[0] > k[1]:
			return 1
		case k[0] < k[1]:
			return -1
		}
	}
	return 0
}
