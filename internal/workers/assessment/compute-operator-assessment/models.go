// internal/workers/assessment/compute-operator-assessment/models.go
package computeoperatorassessment

import "operator-assessment-workers/internal/assessment"

type Input struct {
	AssessmentInput assessment.Input `json:"assessmentInput"`
	// CandidateID fills assessmentInput.candidateId when that is empty.
	CandidateID string `json:"candidateId,omitempty"`
	// Scale overrides the configured scale for this job.
	Scale string `json:"scale,omitempty"`
}

type Output struct {
	AssessmentResult *assessment.Result `json:"assessmentResult"`
	Grade            string             `json:"grade"`
	Level            string             `json:"level"`
	Designation      string             `json:"designation"`
	TotalScore       float64            `json:"totalScore"`
	QualityFloored   bool               `json:"qualityFloored"`
}
