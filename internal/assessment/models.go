// internal/assessment/models.go
package assessment

// ProcessRecord is one process the candidate sewed during the practical test.
type ProcessRecord struct {
	MachineType   string    `json:"machineType"`
	ProcessName   string    `json:"processName"`
	SMV           float64   `json:"smv"`
	CycleTimes    []float64 `json:"cycleTimes"`
	DOP           string    `json:"dop"`
	QualityStatus string    `json:"qualityStatus"`
}

// Input is everything the engine needs for one candidate.
type Input struct {
	CandidateID       string          `json:"candidateId,omitempty"`
	Processes         []ProcessRecord `json:"processes"`
	EducationalStatus string          `json:"educationalStatus"`
	Attitude          string          `json:"attitude,omitempty"`
}

// ProcessMetrics are the per-process figures printed on the sheet.
type ProcessMetrics struct {
	MachineType    MachineType `json:"machineType"`
	ProcessName    string      `json:"processName"`
	SMV            float64     `json:"smv"`
	ValidSamples   int         `json:"validSamples"`
	AvgCycleTime   float64     `json:"avgCycleTime"`
	Target         float64     `json:"target"`
	Capacity       float64     `json:"capacity"`
	Performance    float64     `json:"performance"`
	PracticalMarks float64     `json:"practicalMarks"`
	Degenerate     bool        `json:"degenerate"`
}

// Scores are the weighted sub-scores; Attitude is nil when the scale does not score it.
type Scores struct {
	Machine   float64  `json:"machineScore"`
	DOP       float64  `json:"dopScore"`
	Practical float64  `json:"practicalScore"`
	Quality   float64  `json:"qualityScore"`
	Education float64  `json:"educationScore"`
	Attitude  *float64 `json:"attitudeScore,omitempty"`
	Total     float64  `json:"totalScore"`
}

// MachineDetail explains how the machine score was reached.
type MachineDetail struct {
	Distinct           []MachineType `json:"distinct"`
	SpecialCount       int           `json:"specialCount"`
	SemiSpecialCount   int           `json:"semiSpecialCount"`
	OtherCount         int           `json:"otherCount"`
	RawScore           float64       `json:"rawScore"`
	MultiskillEligible bool          `json:"multiskillEligible"`
}

// Assessment is the grade, level and designation triple.
type Assessment struct {
	Grade       Grade       `json:"grade"`
	Level       Level       `json:"level"`
	Designation Designation `json:"designation"`
}

// Result is the complete engine output for one candidate.
type Result struct {
	CandidateID     string           `json:"candidateId,omitempty"`
	Scale           string           `json:"scale"`
	Processes       []ProcessMetrics `json:"processes"`
	Scores          Scores           `json:"scores"`
	MachineDetail   MachineDetail    `json:"machineDetail"`
	BaseAssessment  Assessment       `json:"baseAssessment"`
	FinalAssessment Assessment       `json:"finalAssessment"`
	Overrides       []string         `json:"overrides"`
	QualityFloored  bool             `json:"qualityFloored"`
	Warnings        []Warning        `json:"warnings"`
}
