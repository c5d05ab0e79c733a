// internal/workers/assessment/notify-assessment-result/models.go
package notifyassessmentresult

import "operator-assessment-workers/internal/assessment"

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"

	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type Input struct {
	AssessmentID     string             `json:"assessmentId,omitempty"`
	AssessmentResult *assessment.Result `json:"assessmentResult"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"`
	Channels       []string `json:"channels"`
	SentAt         string   `json:"sentAt"` // ISO 8601
}
