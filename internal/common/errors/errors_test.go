package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	messages []string
}

func (r *recordingLogger) Error(msg string, _ map[string]interface{}) {
	r.messages = append(r.messages, msg)
}

func job(retries int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Type: "store-assessment-result", Retries: retries}}
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewAssessmentValidationError(fmt.Errorf("processes: at least one process is required"), []string{"processes"})
	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "ASSESSMENT_VALIDATION_FAILED", bpmnErr.Code)
	assert.False(t, bpmnErr.Retryable)
	assert.Zero(t, bpmnErr.Retries)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "ASSESSMENT_VALIDATION_FAILED", vars["errorCode"])
	assert.Equal(t, "ASSESSMENT", vars["errorCategory"])
	assert.Equal(t, []string{"processes"}, vars["fields"])
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code    ErrorCode
		retries int
	}{
		{ErrCodeDatabaseInsertFailed, 3},
		{ErrCodeQueryExecutionFailed, 3},
		{ErrCodeElasticsearchIndexFailed, 3},
		{ErrCodeNotificationSendFailed, 3},
		{ErrCodeQueryTimeout, 2},
		{ErrCodeAssessmentValidationFailed, 0},
		{ErrCodeAssessmentInputNotFound, 0},
		{ErrCodeDuplicateAssessment, 0},
		{ErrCodeInternal, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.retries, GetRetryCount(tt.code), string(tt.code))
		assert.Equal(t, tt.retries > 0, IsRetryableErrorCode(tt.code))
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "ASSESSMENT", GetErrorCategory(ErrCodeAssessmentInputNotFound))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDatabaseInsertFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeElasticsearchIndexFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeSchemaValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestIsKnownErrorCode(t *testing.T) {
	assert.True(t, IsKnownErrorCode("QUERY_TIMEOUT"))
	assert.True(t, IsKnownErrorCode(string(ErrCodeNotificationSendFailed)))
	assert.False(t, IsKnownErrorCode("PAYMENT_DECLINED"))
	assert.False(t, IsKnownErrorCode(""))
}

func TestStandardError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := fmt.Errorf("store: %w", NewDatabaseInsertFailedError(cause))

	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, stderrors.Is(err, &StandardError{Code: ErrCodeDatabaseInsertFailed}))
	assert.False(t, stderrors.Is(err, &StandardError{Code: ErrCodeQueryTimeout}))

	stdErr, ok := AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeDatabaseInsertFailed, stdErr.Code)
}

func TestErrorHandler_Decide(t *testing.T) {
	h := NewErrorHandler(&recordingLogger{})

	tests := []struct {
		name    string
		err     error
		retries int32
		retry   bool
		left    int32
		code    string
	}{
		{"retryable with retries left", NewDatabaseInsertFailedError(fmt.Errorf("timeout")), 3, true, 2, "DATABASE_INSERT_FAILED"},
		{"retry budget caps broker retries", NewQueryTimeoutError("assessment_input"), 10, true, 2, "QUERY_TIMEOUT"},
		{"last attempt throws", NewNotificationSendFailedError("sms", fmt.Errorf("throttled")), 1, false, 0, "NOTIFICATION_SEND_FAILED"},
		{"business error throws", NewAssessmentInputNotFoundError("cand-404"), 3, false, 0, "ASSESSMENT_INPUT_NOT_FOUND"},
		{"plain error becomes internal", fmt.Errorf("boom"), 3, false, 0, "INTERNAL_ERROR"},
		{"wrapped standard error is found", fmt.Errorf("index: %w", NewElasticsearchIndexFailedError("operator-assessments", fmt.Errorf("503"))), 2, true, 1, "ELASTICSEARCH_INDEX_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := h.Decide(job(tt.retries), tt.err)
			assert.Equal(t, tt.retry, d.Retry)
			assert.Equal(t, tt.left, d.Retries)
			assert.Equal(t, tt.code, d.BPMNError.Code)
		})
	}
}
