// internal/workers/assessment/rank-assessment-candidates/models.go
package rankassessmentcandidates

import "operator-assessment-workers/internal/assessment"

// Input carries either the results themselves or the candidates whose
// latest stored results should be ranked. Both may be given.
type Input struct {
	AssessmentResults []*assessment.Result `json:"assessmentResults,omitempty"`
	CandidateIDs      []string             `json:"candidateIds,omitempty"`
	// Limit keeps the top N entries; 0 keeps all.
	Limit int `json:"limit,omitempty"`
}

type RankedCandidate struct {
	Position    int     `json:"position"`
	Tied        bool    `json:"tied"`
	CandidateID string  `json:"candidateId"`
	TotalScore  float64 `json:"totalScore"`
	Grade       string  `json:"grade"`
	Level       string  `json:"level"`
	Designation string  `json:"designation"`
}

type Output struct {
	// Scale is the one scale every ranked result was scored on.
	Scale               string            `json:"scale,omitempty"`
	Ranking             []RankedCandidate `json:"ranking"`
	MissingCandidateIDs []string          `json:"missingCandidateIds,omitempty"`
}
