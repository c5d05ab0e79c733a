// internal/workers/assessment/compute-operator-assessment/config.go
package computeoperatorassessment

import (
	"time"

	"operator-assessment-workers/internal/assessment"
	"operator-assessment-workers/internal/common/config"
)

type Config struct {
	Timeout          time.Duration
	Scale            string
	AllowancePercent float64
	// QualityFloor replaces the configured scale's floor when set. Jobs that
	// request the other scale keep that scale's own floor.
	QualityFloor *float64
}

func LoadConfig(appCfg *config.Config) *Config {
	wc := config.GetWorkerConfig(appCfg, TaskType)
	return &Config{
		Timeout:          config.GetDuration(wc.Timeout),
		Scale:            appCfg.Assessment.Scale,
		AllowancePercent: appCfg.Assessment.AllowancePercent,
		QualityFloor:     appCfg.Assessment.QualityFloor,
	}
}

// engineOptions returns the options for an engine on scaleName. The
// allowance applies to every scale; the floor only to the configured one.
func (c *Config) engineOptions(scaleName string) []assessment.Option {
	opts := []assessment.Option{assessment.WithAllowancePercent(c.AllowancePercent)}
	if c.QualityFloor != nil && canonicalScale(scaleName) == canonicalScale(c.Scale) {
		opts = append(opts, assessment.WithQualityFloor(*c.QualityFloor))
	}
	return opts
}

func canonicalScale(name string) string {
	if name == "" {
		return assessment.ScaleWeighted
	}
	return name
}
