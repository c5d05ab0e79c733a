// internal/workers/assessment/load-assessment-input/models.go
package loadassessmentinput

import "operator-assessment-workers/internal/assessment"

type Input struct {
	CandidateID string `json:"candidateId"`
}

type Output struct {
	AssessmentInput assessment.Input `json:"assessmentInput"`
	FromCache       bool             `json:"fromCache"`
}
