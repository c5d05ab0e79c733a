// internal/workers/assessment/load-assessment-input/config.go
package loadassessmentinput

import (
	"time"

	"operator-assessment-workers/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig(appCfg *config.Config) *Config {
	wc := config.GetWorkerConfig(appCfg, TaskType)
	return &Config{
		Timeout:  config.GetDuration(wc.Timeout),
		CacheTTL: appCfg.Assessment.CacheTTL,
	}
}
