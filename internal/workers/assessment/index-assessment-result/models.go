// internal/workers/assessment/index-assessment-result/models.go
package indexassessmentresult

import "operator-assessment-workers/internal/assessment"

type Input struct {
	AssessmentID     string             `json:"assessmentId"`
	AssessmentResult *assessment.Result `json:"assessmentResult"`
	StoredAt         string             `json:"storedAt,omitempty"`
}

type Output struct {
	Indexed    bool   `json:"indexed"`
	Index      string `json:"index"`
	DocumentID string `json:"documentId"`
}

// Document is the search view of one stored assessment. Field names match
// database.AssessmentIndexMapping.
type Document struct {
	AssessmentID   string   `json:"assessmentId"`
	CandidateID    string   `json:"candidateId"`
	Scale          string   `json:"scale"`
	Grade          string   `json:"grade"`
	Level          string   `json:"level"`
	Designation    string   `json:"designation"`
	TotalScore     float64  `json:"totalScore"`
	QualityFloored bool     `json:"qualityFloored"`
	Overrides      []string `json:"overrides"`
	MachineTypes   []string `json:"machineTypes"`
	ProcessNames   []string `json:"processNames"`
	AssessedAt     string   `json:"assessedAt"`
}
