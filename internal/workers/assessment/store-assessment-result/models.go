// internal/workers/assessment/store-assessment-result/models.go
package storeassessmentresult

import "operator-assessment-workers/internal/assessment"

type Input struct {
	AssessmentResult *assessment.Result `json:"assessmentResult"`
	// AssessmentID is set when the process already reserved an ID; a
	// second store under the same ID is rejected.
	AssessmentID string `json:"assessmentId,omitempty"`
}

type Output struct {
	AssessmentID string `json:"assessmentId"`
	StoredAt     string `json:"storedAt"` // ISO 8601
}
