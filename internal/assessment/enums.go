// internal/assessment/enums.go
package assessment

import "strings"

// MachineType is a sewing machine family recorded against a process.
type MachineType string

const (
	MachineSNLSDNLS     MachineType = "SNLS/DNLS"
	MachineOverLock     MachineType = "Over Lock"
	MachineFlatLock     MachineType = "Flat Lock"
	MachineKansai       MachineType = "Kansai"
	MachineFSleamer     MachineType = "F/Sleamer"
	MachineFOA          MachineType = "FOA"
	MachineBartack      MachineType = "Bartack"
	MachineButtonHole   MachineType = "Button Hole"
	MachineButtonStitch MachineType = "Button Stitch"
	MachineSnapButton   MachineType = "Snap Button"
	MachineManual       MachineType = "Manual"
)

// MachineClass groups machine types for the machine score.
type MachineClass int

const (
	MachineClassOther MachineClass = iota
	MachineClassSemiSpecial
	MachineClassSpecial
)

// Class reports whether m is a special, semi-special or other machine.
func (m MachineType) Class() MachineClass {
	switch m {
	case MachineSNLSDNLS, MachineOverLock, MachineFlatLock:
		return MachineClassSpecial
	case MachineFSleamer, MachineKansai, MachineFOA:
		return MachineClassSemiSpecial
	default:
		return MachineClassOther
	}
}

var machineTypes = []MachineType{
	MachineSNLSDNLS, MachineOverLock, MachineFlatLock,
	MachineKansai, MachineFSleamer, MachineFOA,
	MachineBartack, MachineButtonHole, MachineButtonStitch, MachineSnapButton, MachineManual,
}

// MachineTypes returns the recognised machine types in canonical spelling.
func MachineTypes() []MachineType {
	out := make([]MachineType, len(machineTypes))
	copy(out, machineTypes)
	return out
}

// ParseMachineType accepts any casing and spacing of a canonical machine name.
func ParseMachineType(s string) (MachineType, error) {
	key := enumKey(s)
	for _, m := range machineTypes {
		if enumKey(string(m)) == key {
			return m, nil
		}
	}
	return "", invalidEnum("machineType", s)
}

// DOP is the degree of process difficulty.
type DOP string

const (
	DOPBasic        DOP = "Basic"
	DOPSemiCritical DOP = "Semi Critical"
	DOPCritical     DOP = "Critical"
)

func ParseDOP(s string) (DOP, error) {
	switch enumKey(s) {
	case "basic":
		return DOPBasic, nil
	case "semicritical":
		return DOPSemiCritical, nil
	case "critical":
		return DOPCritical, nil
	default:
		return "", invalidEnum("dop", s)
	}
}

// QualityStatus records how many operation defects were found during the test.
type QualityStatus string

const (
	QualityNoDefect QualityStatus = "No Defect"
	Quality1Defect  QualityStatus = "1 Operation Defect"
	Quality2Defect  QualityStatus = "2 Operation Defect"
	Quality3Defect  QualityStatus = "3 Operation Defect"
	Quality4Defect  QualityStatus = "4 Operation Defect"
	Quality5Defect  QualityStatus = "5 Operation Defect"
)

// Defects returns the defect count, 0..5.
func (q QualityStatus) Defects() int {
	switch q {
	case Quality1Defect:
		return 1
	case Quality2Defect:
		return 2
	case Quality3Defect:
		return 3
	case Quality4Defect:
		return 4
	case Quality5Defect:
		return 5
	default:
		return 0
	}
}

func ParseQualityStatus(s string) (QualityStatus, error) {
	switch enumKey(s) {
	case "nodefect":
		return QualityNoDefect, nil
	case "1operationdefect":
		return Quality1Defect, nil
	case "2operationdefect":
		return Quality2Defect, nil
	case "3operationdefect":
		return Quality3Defect, nil
	case "4operationdefect":
		return Quality4Defect, nil
	case "5operationdefect":
		return Quality5Defect, nil
	default:
		return "", invalidEnum("qualityStatus", s)
	}
}

// Education is the candidate's highest completed schooling band.
type Education string

const (
	EducationEightAbove Education = "Eight Above"
	EducationFiveAbove  Education = "Five Above"
	EducationBelowFive  Education = "Below Five"
)

func ParseEducation(s string) (Education, error) {
	switch enumKey(s) {
	case "eightabove":
		return EducationEightAbove, nil
	case "fiveabove":
		return EducationFiveAbove, nil
	case "belowfive":
		return EducationBelowFive, nil
	default:
		return "", invalidEnum("educationalStatus", s)
	}
}

// Attitude is the interviewer's behavioural rating.
type Attitude string

const (
	AttitudeGood   Attitude = "Good"
	AttitudeNormal Attitude = "Normal"
	AttitudeBad    Attitude = "Bad"
)

func ParseAttitude(s string) (Attitude, error) {
	switch enumKey(s) {
	case "good":
		return AttitudeGood, nil
	case "normal":
		return AttitudeNormal, nil
	case "bad":
		return AttitudeBad, nil
	default:
		return "", invalidEnum("attitude", s)
	}
}

// Grade is the letter grade printed on the assessment sheet.
type Grade string

const (
	GradeAPlusPlus Grade = "A++"
	GradeAPlus     Grade = "A+"
	GradeA         Grade = "A"
	GradeBPlus     Grade = "B+"
	GradeB         Grade = "B"
	GradeUnskill   Grade = "Unskill"
)

var gradeRank = map[Grade]int{
	GradeUnskill:   0,
	GradeB:         1,
	GradeBPlus:     2,
	GradeA:         3,
	GradeAPlus:     4,
	GradeAPlusPlus: 5,
}

// Rank orders grades: Unskill < B < B+ < A < A+ < A++.
func (g Grade) Rank() int {
	return gradeRank[g]
}

// Level is the skill level paired with a grade.
type Level string

const (
	LevelMultiskill Level = "Multiskill"
	LevelExcellent  Level = "Excellent"
	LevelVeryGood   Level = "Very Good"
	LevelGood       Level = "Good"
	LevelMedium     Level = "Medium"
	LevelAverage    Level = "Average"
	LevelUnskill    Level = "Unskill"
)

var levelRank = map[Level]int{
	LevelUnskill:    0,
	LevelAverage:    1,
	LevelMedium:     2,
	LevelGood:       3,
	LevelVeryGood:   4,
	LevelExcellent:  5,
	LevelMultiskill: 6,
}

// Rank orders levels; Multiskill sits above Excellent within grade A++.
func (l Level) Rank() int {
	return levelRank[l]
}

// Designation is the job title the candidate is hired at.
type Designation string

const (
	DesignationJrOperator   Designation = "Jr.Operator"
	DesignationGenOperator  Designation = "Gen.Operator"
	DesignationAsstOperator Designation = "Asst.Operator"
)

// enumKey folds case and drops everything but letters and digits so that
// "semi-critical", "Semi Critical" and "SEMICRITICAL" compare equal.
func enumKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
