// internal/workers/assessment/notify-assessment-result/handler_test.go
package notifyassessmentresult

import (
	"context"
	"fmt"
	"testing"
	"time"

	"operator-assessment-workers/internal/assessment"
	"operator-assessment-workers/internal/common/config"
	"operator-assessment-workers/internal/common/errors"
	"operator-assessment-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSES struct {
	mock.Mock
}

func (m *MockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*ses.SendEmailOutput)
	return out, args.Error(1)
}

type MockSNS struct {
	mock.Mock
}

func (m *MockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		EmailEnabled: true,
		FromEmail:    "hr-assessments@example.com",
		Recipients:   []string{"line-a@example.com", "line-b@example.com"},
		SMSEnabled:   true,
		TopicARN:     "arn:aws:sns:ap-south-1:000000000000:assessment-alerts",
		MinGrade:     "A+",
	}
}

func createTestInput(grade assessment.Grade, level assessment.Level) *Input {
	return &Input{
		AssessmentID: "4a9f3c1e-0000-4000-8000-000000000001",
		AssessmentResult: &assessment.Result{
			CandidateID: "cand-001",
			Scale:       assessment.ScaleWeighted,
			Scores:      assessment.Scores{Total: 82.25},
			FinalAssessment: assessment.Assessment{
				Grade: grade, Level: level, Designation: assessment.DesignationJrOperator,
			},
			Overrides: []string{assessment.OverrideNeckAndHem},
		},
	}
}

func newHandler(t *testing.T, cfg *Config, sesClient *MockSES, snsClient *MockSNS) *Handler {
	t.Helper()
	h, err := NewHandler(cfg, sesClient, snsClient, logger.NewTestLogger(t))
	require.NoError(t, err)
	return h
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_EmailAndSMS(t *testing.T) {
	sesClient, snsClient := &MockSES{}, &MockSNS{}
	sesClient.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.ToString(in.Source) == "hr-assessments@example.com" &&
			len(in.Destination.ToAddresses) == 2 &&
			aws.ToString(in.Message.Subject.Data) == "Operator assessment: cand-001 graded A++ (Excellent)"
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil)
	snsClient.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return aws.ToString(in.TopicArn) == createTestConfig().TopicARN &&
			aws.ToString(in.Message) == "cand-001 graded A++/Excellent (82.25), hire as Jr.Operator"
	})).Return(&sns.PublishOutput{MessageId: aws.String("sns-1")}, nil)

	handler := newHandler(t, createTestConfig(), sesClient, snsClient)
	output, err := handler.Execute(context.Background(), createTestInput(assessment.GradeAPlusPlus, assessment.LevelExcellent))

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, []string{ChannelEmail, ChannelSMS}, output.Channels)
	assert.NotEmpty(t, output.NotificationID)
	_, err = time.Parse(time.RFC3339, output.SentAt)
	assert.NoError(t, err)

	sesClient.AssertExpectations(t)
	snsClient.AssertExpectations(t)
}

func TestHandler_Execute_EmailBody(t *testing.T) {
	sesClient := &MockSES{}
	var body string
	sesClient.On("SendEmail", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			body = aws.ToString(args.Get(1).(*ses.SendEmailInput).Message.Body.Text.Data)
		}).
		Return(&ses.SendEmailOutput{}, nil)

	cfg := createTestConfig()
	cfg.SMSEnabled = false
	handler := newHandler(t, cfg, sesClient, nil)
	_, err := handler.Execute(context.Background(), createTestInput(assessment.GradeAPlusPlus, assessment.LevelExcellent))

	require.NoError(t, err)
	assert.Contains(t, body, "Candidate: cand-001")
	assert.Contains(t, body, "Total score: 82.25")
	assert.Contains(t, body, "Designation: Jr.Operator")
	assert.Contains(t, body, "Special-process rules applied: "+assessment.OverrideNeckAndHem)
	assert.NotContains(t, body, "Quality below the minimum")
}

func TestHandler_Execute_SMSBelowMinGrade(t *testing.T) {
	sesClient, snsClient := &MockSES{}, &MockSNS{}
	sesClient.On("SendEmail", mock.Anything, mock.Anything).Return(&ses.SendEmailOutput{}, nil)

	handler := newHandler(t, createTestConfig(), sesClient, snsClient)
	output, err := handler.Execute(context.Background(), createTestInput(assessment.GradeA, assessment.LevelGood))

	require.NoError(t, err)
	assert.Equal(t, []string{ChannelEmail}, output.Channels)
	snsClient.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestHandler_Execute_PartialFailureStillSent(t *testing.T) {
	sesClient, snsClient := &MockSES{}, &MockSNS{}
	sesClient.On("SendEmail", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("throttled"))
	snsClient.On("Publish", mock.Anything, mock.Anything).Return(&sns.PublishOutput{}, nil)

	handler := newHandler(t, createTestConfig(), sesClient, snsClient)
	output, err := handler.Execute(context.Background(), createTestInput(assessment.GradeAPlus, assessment.LevelVeryGood))

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, []string{ChannelSMS}, output.Channels)
}

func TestHandler_Execute_AllChannelsFailed(t *testing.T) {
	sesClient, snsClient := &MockSES{}, &MockSNS{}
	sesClient.On("SendEmail", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("throttled"))
	snsClient.On("Publish", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("endpoint disabled"))

	handler := newHandler(t, createTestConfig(), sesClient, snsClient)
	output, err := handler.Execute(context.Background(), createTestInput(assessment.GradeAPlusPlus, assessment.LevelMultiskill))

	assert.Nil(t, output)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotificationSendFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "channel: sms")
}

func TestHandler_Execute_Disabled(t *testing.T) {
	cfg := createTestConfig()
	cfg.EmailEnabled = false
	cfg.SMSEnabled = false

	handler := newHandler(t, cfg, nil, nil)
	output, err := handler.Execute(context.Background(), createTestInput(assessment.GradeAPlusPlus, assessment.LevelExcellent))

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.Empty(t, output.Channels)
}

func TestHandler_Execute_MissingResult(t *testing.T) {
	handler := newHandler(t, createTestConfig(), &MockSES{}, &MockSNS{})
	_, err := handler.Execute(context.Background(), &Input{AssessmentID: "x"})

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidJobVariables, stdErr.Code)
}

// ==========================
// Configuration Tests
// ==========================

func TestNewHandler_InvalidConfig(t *testing.T) {
	cfg := createTestConfig()
	cfg.MinGrade = "A+++"
	_, err := NewHandler(cfg, &MockSES{}, &MockSNS{}, logger.NewTestLogger(t))
	assert.Error(t, err)

	_, err = NewHandler(createTestConfig(), nil, &MockSNS{}, logger.NewTestLogger(t))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	appCfg := &config.Config{}
	appCfg.Notifications.Email.Enabled = true
	appCfg.Notifications.Email.FromEmail = "hr@example.com"
	appCfg.Notifications.Email.Recipients = []string{"line@example.com"}
	appCfg.Notifications.SMS.MinGrade = "A"

	cfg := LoadConfig(appCfg)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.EmailEnabled)
	assert.Equal(t, []string{"line@example.com"}, cfg.Recipients)
	assert.Equal(t, "A", cfg.MinGrade)
	assert.False(t, cfg.SMSEnabled)
}
