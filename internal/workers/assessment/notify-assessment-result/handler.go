// internal/workers/assessment/notify-assessment-result/handler.go
package notifyassessmentresult

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"operator-assessment-workers/internal/assessment"
	awsclient "operator-assessment-workers/internal/common/aws"
	"operator-assessment-workers/internal/common/errors"
	"operator-assessment-workers/internal/common/logger"
	"operator-assessment-workers/internal/common/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "notify-assessment-result"

var (
	subjectTmpl = template.Must(template.New("subject").Parse(
		`Operator assessment: {{.CandidateID}} graded {{.Grade}} ({{.Level}})`))

	bodyTmpl = template.Must(template.New("body").Parse(`Candidate: {{.CandidateID}}
{{- if .AssessmentID}}
Assessment: {{.AssessmentID}}{{end}}
Scale: {{.Scale}}
Total score: {{printf "%.2f" .Total}}
Grade: {{.Grade}}
Level: {{.Level}}
Designation: {{.Designation}}
{{- if .QualityFloored}}
Quality below the minimum; graded Unskill regardless of total.{{end}}
{{- if .Overrides}}
Special-process rules applied: {{.Overrides}}{{end}}
`))

	smsTmpl = template.Must(template.New("sms").Parse(
		`{{.CandidateID}} graded {{.Grade}}/{{.Level}} ({{printf "%.2f" .Total}}), hire as {{.Designation}}`))
)

type messageData struct {
	AssessmentID   string
	CandidateID    string
	Scale          string
	Total          float64
	Grade          string
	Level          string
	Designation    string
	QualityFloored bool
	Overrides      string
}

type Handler struct {
	config       *Config
	ses          awsclient.SESAPI
	sns          awsclient.SNSAPI
	minGrade     assessment.Grade
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, sesClient awsclient.SESAPI, snsClient awsclient.SNSAPI, log logger.Logger) (*Handler, error) {
	minGrade := assessment.Grade(config.MinGrade)
	if config.MinGrade != "" && !knownGrade(minGrade) {
		return nil, fmt.Errorf("invalid configuration for %s: unknown min grade %q", TaskType, config.MinGrade)
	}
	if config.EmailEnabled && sesClient == nil {
		return nil, fmt.Errorf("invalid configuration for %s: email enabled without an SES client", TaskType)
	}
	if config.SMSEnabled && snsClient == nil {
		return nil, fmt.Errorf("invalid configuration for %s: sms enabled without an SNS client", TaskType)
	}

	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		ses:          sesClient,
		sns:          snsClient,
		minGrade:     minGrade,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}, nil
}

func knownGrade(g assessment.Grade) bool {
	switch g {
	case assessment.GradeAPlusPlus, assessment.GradeAPlus, assessment.GradeA,
		assessment.GradeBPlus, assessment.GradeB, assessment.GradeUnskill:
		return true
	}
	return false
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, timer, errors.NewInvalidJobVariablesError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, timer, err)
		return
	}

	h.completeJob(client, job, output)
	timer.Done("")
}

// execute sends on every enabled channel. The job fails only when every
// attempted channel failed, so a retry never repeats a delivered message.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	r := input.AssessmentResult
	if r == nil || r.CandidateID == "" {
		return nil, errors.NewInvalidJobVariablesError(fmt.Errorf("assessmentResult.candidateId is required"))
	}

	data := messageData{
		AssessmentID:   input.AssessmentID,
		CandidateID:    r.CandidateID,
		Scale:          r.Scale,
		Total:          r.Scores.Total,
		Grade:          string(r.FinalAssessment.Grade),
		Level:          string(r.FinalAssessment.Level),
		Designation:    string(r.FinalAssessment.Designation),
		QualityFloored: r.QualityFloored,
		Overrides:      strings.Join(r.Overrides, ", "),
	}

	out := &Output{
		NotificationID: uuid.New().String(),
		Channels:       []string{},
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	attempted := 0
	var lastErr error
	var lastChannel string

	if h.config.EmailEnabled && len(h.config.Recipients) > 0 {
		attempted++
		if err := h.sendEmail(ctx, data); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error":       err.Error(),
				"candidateId": r.CandidateID,
			})
			lastErr, lastChannel = err, ChannelEmail
		} else {
			out.Channels = append(out.Channels, ChannelEmail)
		}
	}

	if h.config.SMSEnabled && h.config.TopicARN != "" && h.meetsMinGrade(r.FinalAssessment.Grade) {
		attempted++
		if err := h.sendSMS(ctx, data); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error":       err.Error(),
				"candidateId": r.CandidateID,
			})
			lastErr, lastChannel = err, ChannelSMS
		} else {
			out.Channels = append(out.Channels, ChannelSMS)
		}
	}

	switch {
	case attempted == 0:
		out.Status = StatusDisabled
	case len(out.Channels) == 0:
		return nil, errors.NewNotificationSendFailedError(lastChannel, lastErr)
	default:
		out.Status = StatusSent
	}

	h.logger.Info("assessment notification processed", map[string]interface{}{
		"candidateId":    r.CandidateID,
		"notificationId": out.NotificationID,
		"status":         out.Status,
		"channels":       out.Channels,
	})
	return out, nil
}

func (h *Handler) meetsMinGrade(g assessment.Grade) bool {
	return h.minGrade == "" || g.Rank() >= h.minGrade.Rank()
}

func (h *Handler) sendEmail(ctx context.Context, data messageData) error {
	subject, err := render(subjectTmpl, data)
	if err != nil {
		return err
	}
	body, err := render(bodyTmpl, data)
	if err != nil {
		return err
	}

	_, err = h.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: h.config.Recipients,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, data messageData) error {
	msg, err := render(smsTmpl, data)
	if err != nil {
		return err
	}
	_, err = h.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.TopicARN),
		Message:  aws.String(msg),
	})
	return err
}

func render(t *template.Template, data messageData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
		"status": output.Status,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, timer *metrics.JobTimer, err error) {
	d := h.errorHandler.HandleJobError(context.Background(), client, job, err)
	timer.Done(d.BPMNError.Code)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
