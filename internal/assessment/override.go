// internal/assessment/override.go
package assessment

import "math"

// Benchmark is a high-value process that earns a grade upgrade when sewn
// on the right machine at or above MinCapacity pieces per hour.
type Benchmark struct {
	Name        string
	Keyword     string
	Machine     MachineType
	MinCapacity float64
}

// Override rule names reported in Result.Overrides.
const (
	OverrideAllBenchmarksNeckAndHem = "ALL_BENCHMARKS_NECK_JOIN_BOTTOM_HEM"
	OverrideNeckAndHem              = "NECK_JOIN_BOTTOM_HEM"
	OverrideAllBenchmarksHem        = "ALL_BENCHMARKS_BOTTOM_HEM"
	OverrideAllBenchmarksNeck       = "ALL_BENCHMARKS_NECK_JOIN"
	OverrideAllBenchmarks           = "ALL_BENCHMARKS"
	OverrideCapacityTierPrefix      = "CAPACITY_TIER:"
)

var benchmarks = [4]Benchmark{
	{Name: "Pocket join (Kangaro)", Keyword: "pocket join", Machine: MachineSNLSDNLS, MinCapacity: 90},
	{Name: "Placket box", Keyword: "placket box", Machine: MachineSNLSDNLS, MinCapacity: 90},
	{Name: "Zipper join (2nd)", Keyword: "zipper join", Machine: MachineSNLSDNLS, MinCapacity: 60},
	{Name: "Back neck tape top stitch insert label", Keyword: "back neck tape top stitch", Machine: MachineSNLSDNLS, MinCapacity: 120},
}

var (
	neckJoinOverLock = Benchmark{Name: "Neck join", Keyword: "neck join", Machine: MachineOverLock, MinCapacity: 150}
	bodyHemFlatLock  = Benchmark{Name: "Bottom hem", Keyword: "bottom hem", Machine: MachineFlatLock, MinCapacity: 220}
)

// Benchmarks returns a copy of the four SNLS/DNLS benchmark processes.
func Benchmarks() []Benchmark {
	out := make([]Benchmark, len(benchmarks))
	copy(out, benchmarks[:])
	return out
}

// capacityTierProcess is a process whose capacity alone can lift the grade.
type capacityTierProcess struct {
	Keyword string
	SMV     float64
}

var capacityTierProcesses = [2]capacityTierProcess{
	{Keyword: "neck join", SMV: 0.35},
	{Keyword: "bottom hem", SMV: 0.23},
}

const smvTolerance = 0.005

var capacityTiers = [3]struct {
	MinCapacity float64
	Assessment  Assessment
}{
	{150, Assessment{GradeAPlus, LevelVeryGood, jrOperator}},
	{120, Assessment{GradeA, LevelGood, jrOperator}},
	{100, Assessment{GradeBPlus, LevelMedium, jrOperator}},
}

func (b Benchmark) satisfiedBy(processes []ProcessMetrics) bool {
	for _, p := range processes {
		if p.MachineType == b.Machine && MatchesKeyword(p.ProcessName, b.Keyword) && p.Capacity >= b.MinCapacity {
			return true
		}
	}
	return false
}

// better reports whether candidate is strictly above current. Levels are a
// finer ordering than grades (A++ carries both Excellent and Multiskill).
func better(candidate, current Assessment) bool {
	return candidate.Level.Rank() > current.Level.Rank()
}

// applyOverrides upgrades base using the special-process rules. It never
// returns an assessment ranked below base.
func applyOverrides(base Assessment, processes []ProcessMetrics) (Assessment, []string) {
	current := base
	fired := []string{}

	allBenchmarks := true
	for _, b := range benchmarks {
		if !b.satisfiedBy(processes) {
			allBenchmarks = false
			break
		}
	}
	neck := neckJoinOverLock.satisfiedBy(processes)
	hem := bodyHemFlatLock.satisfiedBy(processes)

	var rule string
	var target Assessment
	switch {
	case allBenchmarks && neck && hem:
		rule, target = OverrideAllBenchmarksNeckAndHem, Assessment{GradeAPlusPlus, LevelMultiskill, jrOperator}
	case neck && hem:
		rule, target = OverrideNeckAndHem, Assessment{GradeAPlusPlus, LevelExcellent, jrOperator}
	case allBenchmarks && hem:
		rule, target = OverrideAllBenchmarksHem, Assessment{GradeAPlusPlus, LevelExcellent, jrOperator}
	case allBenchmarks && neck:
		rule, target = OverrideAllBenchmarksNeck, Assessment{GradeAPlusPlus, LevelExcellent, jrOperator}
	case allBenchmarks:
		rule, target = OverrideAllBenchmarks, Assessment{GradeAPlus, LevelVeryGood, jrOperator}
	}
	if rule != "" && better(target, current) {
		current = target
		fired = append(fired, rule)
	}

	for _, tp := range capacityTierProcesses {
		for _, p := range processes {
			if !MatchesKeyword(p.ProcessName, tp.Keyword) || math.Abs(p.SMV-tp.SMV) > smvTolerance {
				continue
			}
			for _, tier := range capacityTiers {
				if p.Capacity < tier.MinCapacity {
					continue
				}
				if better(tier.Assessment, current) {
					current = tier.Assessment
					fired = append(fired, OverrideCapacityTierPrefix+NormalizeProcessName(tp.Keyword))
				}
				break
			}
		}
	}

	if len(fired) > 0 {
		current.Designation = DesignationJrOperator
	}
	return current, fired
}
