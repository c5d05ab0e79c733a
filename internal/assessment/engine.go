// internal/assessment/engine.go

// Package assessment scores a sewing-operator candidate from the processes
// sewn during the practical test and a few interview attributes. It is
// pure: no I/O, no shared mutable state, safe for concurrent use.
package assessment

import (
	"fmt"
	"math"
)

// Engine computes assessments for a fixed scale and allowance.
type Engine struct {
	scale            Scale
	allowancePercent float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithAllowancePercent inflates the average cycle time by p percent before
// capacity is derived (10 reproduces the sheet that used avg*1.1).
// Negative values are treated as 0.
func WithAllowancePercent(p float64) Option {
	return func(e *Engine) {
		if p > 0 && !math.IsInf(p, 0) {
			e.allowancePercent = p
		}
	}
}

// WithQualityFloor replaces the scale's quality floor.
func WithQualityFloor(f float64) Option {
	return func(e *Engine) {
		if f >= 0 && !math.IsNaN(f) {
			e.scale.QualityFloor = f
		}
	}
}

// NewEngine returns an engine for scale with opts applied.
func NewEngine(scale Scale, opts ...Option) *Engine {
	e := &Engine{scale: scale}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scale returns the engine's scale after options were applied.
func (e *Engine) Scale() Scale {
	return e.scale
}

// Compute scores input on the weighted scale.
func Compute(input Input, opts ...Option) (*Result, error) {
	return NewEngine(Weighted(), opts...).Compute(input)
}

type parsedProcess struct {
	machine MachineType
	dop     DOP
	quality QualityStatus
}

type parsedInput struct {
	processes []parsedProcess
	education Education
	attitude  Attitude
}

// Compute validates input and returns the full result. On invalid input it
// returns ValidationErrors and a nil result.
func (e *Engine) Compute(input Input) (*Result, error) {
	parsed, err := e.validate(input)
	if err != nil {
		return nil, err
	}

	result := &Result{
		CandidateID: input.CandidateID,
		Scale:       e.scale.Name,
		Processes:   make([]ProcessMetrics, len(input.Processes)),
		Overrides:   []string{},
		Warnings:    []Warning{},
	}

	for i, rec := range input.Processes {
		m := e.processMetrics(rec, parsed.processes[i].machine)
		if m.Degenerate {
			result.Warnings = append(result.Warnings, Warning{
				Code:         WarningDegenerateCycleTimes,
				ProcessIndex: i,
				Message:      fmt.Sprintf("process %q has no positive cycle time; capacity and performance set to 0", rec.ProcessName),
			})
		}
		result.Processes[i] = m
	}

	result.MachineDetail = machineDetail(parsed.processes)
	result.Scores = e.scores(parsed, result.Processes, result.MachineDetail.RawScore)

	base := e.scale.GradeFor(result.Scores.Total)
	if result.Scores.Quality < e.scale.QualityFloor {
		base = unskilled
		result.QualityFloored = true
	}
	result.BaseAssessment = base
	result.FinalAssessment = base

	if !result.QualityFloored {
		result.FinalAssessment, result.Overrides = applyOverrides(base, result.Processes)
	}

	return result, nil
}

func (e *Engine) validate(input Input) (*parsedInput, error) {
	var errs ValidationErrors
	add := func(err error, field string) {
		if ve, ok := err.(*ValidationError); ok {
			ve.Field = field
			errs = append(errs, ve)
		}
	}

	parsed := &parsedInput{processes: make([]parsedProcess, len(input.Processes))}

	if len(input.Processes) == 0 {
		errs = append(errs, &ValidationError{Field: "processes", Code: CodeRequired, Message: "at least one process is required"})
	}

	for i, p := range input.Processes {
		prefix := fmt.Sprintf("processes[%d]", i)
		var err error

		if parsed.processes[i].machine, err = ParseMachineType(p.MachineType); err != nil {
			add(err, prefix+".machineType")
		}
		if parsed.processes[i].dop, err = ParseDOP(p.DOP); err != nil {
			add(err, prefix+".dop")
		}
		if parsed.processes[i].quality, err = ParseQualityStatus(p.QualityStatus); err != nil {
			add(err, prefix+".qualityStatus")
		}
		if !(p.SMV > 0) || math.IsInf(p.SMV, 0) {
			errs = append(errs, &ValidationError{
				Field:   prefix + ".smv",
				Code:    CodeNonPositive,
				Message: fmt.Sprintf("smv must be a positive number, got %v", p.SMV),
			})
		}
		for j, ct := range p.CycleTimes {
			if math.IsNaN(ct) || math.IsInf(ct, 0) {
				errs = append(errs, &ValidationError{
					Field:   fmt.Sprintf("%s.cycleTimes[%d]", prefix, j),
					Code:    CodeInvalidValue,
					Message: "cycle time must be a finite number",
				})
			}
		}
	}

	var err error
	if input.EducationalStatus == "" {
		errs = append(errs, &ValidationError{Field: "educationalStatus", Code: CodeRequired, Message: "educational status is required"})
	} else if parsed.education, err = ParseEducation(input.EducationalStatus); err != nil {
		add(err, "educationalStatus")
	}

	switch {
	case input.Attitude == "" && e.scale.ScoresAttitude:
		errs = append(errs, &ValidationError{Field: "attitude", Code: CodeRequired, Message: fmt.Sprintf("attitude is required on the %s scale", e.scale.Name)})
	case input.Attitude != "":
		if parsed.attitude, err = ParseAttitude(input.Attitude); err != nil {
			add(err, "attitude")
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return parsed, nil
}

func (e *Engine) processMetrics(rec ProcessRecord, machine MachineType) ProcessMetrics {
	m := ProcessMetrics{
		MachineType: machine,
		ProcessName: rec.ProcessName,
		SMV:         rec.SMV,
	}

	sum := 0.0
	for _, ct := range rec.CycleTimes {
		if ct > 0 {
			sum += ct
			m.ValidSamples++
		}
	}

	target := 60 / rec.SMV
	m.Target = round2(target)

	if m.ValidSamples == 0 {
		m.Degenerate = true
		m.PracticalMarks = e.scale.PracticalMarks[0]
		return m
	}

	avg := sum / float64(m.ValidSamples)
	capacity := 3600 / (avg * (1 + e.allowancePercent/100))

	m.AvgCycleTime = round2(avg)
	m.Capacity = round2(capacity)
	m.Performance = round2(capacity / target * 100)
	m.PracticalMarks = e.scale.PracticalMarks[PerformanceTier(m.Performance)]
	return m
}

// machineDetail computes the raw 0-100 machine score from the distinct
// machine types used. All three special machines earn the maximum outright;
// otherwise special machines earn 55/80, then each semi-special adds 20 and
// each other machine adds 10 while the score is still below 100.
func machineDetail(processes []parsedProcess) MachineDetail {
	d := MachineDetail{Distinct: []MachineType{}}
	seen := make(map[MachineType]bool, len(processes))
	for _, p := range processes {
		if seen[p.machine] {
			continue
		}
		seen[p.machine] = true
		d.Distinct = append(d.Distinct, p.machine)
		switch p.machine.Class() {
		case MachineClassSpecial:
			d.SpecialCount++
		case MachineClassSemiSpecial:
			d.SemiSpecialCount++
		default:
			d.OtherCount++
		}
	}

	switch d.SpecialCount {
	case 3:
		d.RawScore = 100
		d.MultiskillEligible = true
		return d
	case 2:
		d.RawScore = 80
	case 1:
		d.RawScore = 55
	}
	if d.RawScore < 100 {
		d.RawScore += 20 * float64(d.SemiSpecialCount)
	}
	if d.RawScore < 100 {
		d.RawScore += 10 * float64(d.OtherCount)
	}
	d.RawScore = math.Min(d.RawScore, 100)
	return d
}

func (e *Engine) scores(parsed *parsedInput, metrics []ProcessMetrics, machineRaw float64) Scores {
	s := e.scale
	n := float64(len(metrics))

	var dopSum, marksSum, qualitySum float64
	for i, p := range parsed.processes {
		dopSum += s.dopPoints(p.dop)
		qualitySum += s.QualityPoints[p.quality.Defects()]
		marksSum += metrics[i].PracticalMarks
	}

	out := Scores{
		Machine:   round2(weigh(machineRaw, s.MachinePct)),
		DOP:       round2(weigh(dopSum/n, s.DOPPct)),
		Practical: round2(weigh(marksSum/n, s.PracticalPct)),
		Quality:   round2(weigh(qualitySum/n, s.QualityPct)),
		Education: round2(weigh(s.educationPoints(parsed.education), s.EducationPct)),
	}
	total := out.Machine + out.DOP + out.Practical + out.Quality + out.Education
	if s.ScoresAttitude {
		att := round2(weigh(s.attitudePoints(parsed.attitude), s.AttitudePct))
		out.Attitude = &att
		total += att
	}
	out.Total = round2(total)
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
