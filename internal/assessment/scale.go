// internal/assessment/scale.go
package assessment

import "fmt"

// Scale names accepted by ScaleByName and the assessment.scale config key.
const (
	ScaleWeighted = "weighted"
	ScaleFlat     = "flat"
)

// GradeBand maps totals at or above Min to an assessment.
type GradeBand struct {
	Min        float64
	Assessment Assessment
}

// Scale holds every constant that differs between the two scoring sheets
// used on the factory floor. Point tables are arrays so that a Scale value
// can be copied freely without sharing state.
//
// Each *Pct field converts raw points into the sub-score contribution:
// contribution = points * pct / 100.
type Scale struct {
	Name string

	// PracticalMarks is indexed by performance tier, 0 (<50%) to 5 (>90%).
	PracticalMarks [6]float64
	PracticalPct   float64

	MachinePct float64

	// DOPPoints is indexed Basic, Semi Critical, Critical.
	DOPPoints [3]float64
	DOPPct    float64

	// QualityPoints is indexed by defect count.
	QualityPoints [6]float64
	QualityPct    float64

	// EducationPoints is indexed Eight Above, Five Above, Below Five.
	EducationPoints [3]float64
	EducationPct    float64

	ScoresAttitude bool
	// AttitudePoints is indexed Good, Normal, Bad.
	AttitudePoints [3]float64
	AttitudePct    float64

	MaxTotal     float64
	GradeBands   [5]GradeBand
	QualityFloor float64
}

var (
	jrOperator = DesignationJrOperator

	unskilled = Assessment{Grade: GradeUnskill, Level: LevelUnskill, Designation: DesignationAsstOperator}
)

// Weighted is the percentage sheet: machine 30, DOP 20, practical 30,
// quality 10, education 5, attitude 5.
func Weighted() Scale {
	return Scale{
		Name:            ScaleWeighted,
		PracticalMarks:  [6]float64{0, 20, 40, 60, 80, 100},
		PracticalPct:    30,
		MachinePct:      30,
		DOPPoints:       [3]float64{30, 50, 100},
		DOPPct:          20,
		QualityPoints:   [6]float64{100, 80, 60, 40, 20, 0},
		QualityPct:      10,
		EducationPoints: [3]float64{100, 70, 40},
		EducationPct:    5,
		ScoresAttitude:  true,
		AttitudePoints:  [3]float64{100, 60, 20},
		AttitudePct:     5,
		MaxTotal:        100,
		GradeBands: [5]GradeBand{
			{Min: 90, Assessment: Assessment{GradeAPlusPlus, LevelExcellent, jrOperator}},
			{Min: 80, Assessment: Assessment{GradeAPlus, LevelVeryGood, jrOperator}},
			{Min: 70, Assessment: Assessment{GradeA, LevelGood, jrOperator}},
			{Min: 60, Assessment: Assessment{GradeBPlus, LevelMedium, jrOperator}},
			{Min: 50, Assessment: Assessment{GradeB, LevelAverage, DesignationGenOperator}},
		},
		QualityFloor: 5,
	}
}

// Flat is the older point sheet: machine 15, DOP 10, practical 50,
// quality 30, education 5, no attitude. Totals run to 110.
func Flat() Scale {
	return Scale{
		Name:            ScaleFlat,
		PracticalMarks:  [6]float64{0, 1, 2, 3, 4, 5},
		PracticalPct:    1000,
		MachinePct:      15,
		DOPPoints:       [3]float64{5, 7, 10},
		DOPPct:          100,
		QualityPoints:   [6]float64{30, 24, 18, 12, 6, 0},
		QualityPct:      100,
		EducationPoints: [3]float64{5, 5, 3},
		EducationPct:    100,
		MaxTotal:        110,
		GradeBands: [5]GradeBand{
			{Min: 90, Assessment: Assessment{GradeAPlusPlus, LevelExcellent, jrOperator}},
			{Min: 80, Assessment: Assessment{GradeAPlus, LevelVeryGood, jrOperator}},
			{Min: 75, Assessment: Assessment{GradeA, LevelGood, jrOperator}},
			{Min: 60, Assessment: Assessment{GradeBPlus, LevelMedium, jrOperator}},
			{Min: 50, Assessment: Assessment{GradeB, LevelAverage, DesignationGenOperator}},
		},
		QualityFloor: 15,
	}
}

// ScaleByName resolves a configured scale name; empty means weighted.
func ScaleByName(name string) (Scale, error) {
	switch name {
	case "", ScaleWeighted:
		return Weighted(), nil
	case ScaleFlat:
		return Flat(), nil
	default:
		return Scale{}, fmt.Errorf("unknown assessment scale %q", name)
	}
}

// PerformanceTier buckets a performance percentage: >90 is 5, [80,90] is 4,
// [70,80) is 3, [60,70) is 2, [50,60) is 1, below 50 is 0.
func PerformanceTier(performance float64) int {
	switch {
	case performance > 90:
		return 5
	case performance >= 80:
		return 4
	case performance >= 70:
		return 3
	case performance >= 60:
		return 2
	case performance >= 50:
		return 1
	default:
		return 0
	}
}

// GradeFor maps a total score to the base assessment using inclusive lower bounds.
func (s Scale) GradeFor(total float64) Assessment {
	for _, band := range s.GradeBands {
		if total >= band.Min {
			return band.Assessment
		}
	}
	return unskilled
}

func (s Scale) dopPoints(d DOP) float64 {
	switch d {
	case DOPCritical:
		return s.DOPPoints[2]
	case DOPSemiCritical:
		return s.DOPPoints[1]
	default:
		return s.DOPPoints[0]
	}
}

func (s Scale) educationPoints(e Education) float64 {
	switch e {
	case EducationEightAbove:
		return s.EducationPoints[0]
	case EducationFiveAbove:
		return s.EducationPoints[1]
	default:
		return s.EducationPoints[2]
	}
}

func (s Scale) attitudePoints(a Attitude) float64 {
	switch a {
	case AttitudeGood:
		return s.AttitudePoints[0]
	case AttitudeNormal:
		return s.AttitudePoints[1]
	default:
		return s.AttitudePoints[2]
	}
}

func weigh(points, pct float64) float64 {
	return points * pct / 100
}
