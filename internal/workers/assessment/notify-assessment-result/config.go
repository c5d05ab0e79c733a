// internal/workers/assessment/notify-assessment-result/config.go
package notifyassessmentresult

import (
	"time"

	"operator-assessment-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration

	EmailEnabled bool
	FromEmail    string
	Recipients   []string

	SMSEnabled bool
	TopicARN   string
	// MinGrade limits SMS alerts to this grade and above; empty sends for
	// every grade.
	MinGrade string
}

func LoadConfig(appCfg *config.Config) *Config {
	wc := config.GetWorkerConfig(appCfg, TaskType)
	n := appCfg.Notifications
	return &Config{
		Timeout:      config.GetDuration(wc.Timeout),
		EmailEnabled: n.Email.Enabled,
		FromEmail:    n.Email.FromEmail,
		Recipients:   n.Email.Recipients,
		SMSEnabled:   n.SMS.Enabled,
		TopicARN:     n.SMS.TopicARN,
		MinGrade:     n.SMS.MinGrade,
	}
}
