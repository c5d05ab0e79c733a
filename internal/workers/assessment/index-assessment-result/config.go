// internal/workers/assessment/index-assessment-result/config.go
package indexassessmentresult

import (
	"time"

	"operator-assessment-workers/internal/common/config"
)

type Config struct {
	Timeout   time.Duration
	IndexName string
}

func LoadConfig(appCfg *config.Config) *Config {
	wc := config.GetWorkerConfig(appCfg, TaskType)
	return &Config{
		Timeout:   config.GetDuration(wc.Timeout),
		IndexName: appCfg.Assessment.IndexName,
	}
}
