// internal/common/errors/handler.go
package errors

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler turns a worker error into either a failed job (retryable
// codes with retries left) or a thrown BPMN error.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Decision is what HandleJobError did with a job.
type Decision struct {
	BPMNError *BPMNError
	Retry     bool
	Retries   int32
}

// Decide computes the outcome without talking to the broker.
func (h *ErrorHandler) Decide(job entities.Job, err error) Decision {
	stdErr := normalizeError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	// job.Retries counts the current attempt
	remaining := job.Retries - 1
	if bpmnErr.Retries > 0 && remaining > 0 {
		if remaining > int32(bpmnErr.Retries) {
			remaining = int32(bpmnErr.Retries)
		}
		return Decision{BPMNError: bpmnErr, Retry: true, Retries: remaining}
	}
	return Decision{BPMNError: bpmnErr}
}

// HandleJobError logs err and sends the fail or throw command for job.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) Decision {
	d := h.Decide(job, err)
	h.logError(job, d)

	var sendErr error
	if d.Retry {
		sendErr = h.failJob(ctx, client, job, d)
	} else {
		sendErr = h.throwBPMNError(ctx, client, job, d.BPMNError)
	}
	if sendErr != nil {
		h.logger.Error("failed to report job error", map[string]interface{}{
			"jobKey": job.Key,
			"error":  sendErr.Error(),
		})
	}
	return d
}

func normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return NewInternalError(err)
}

func (h *ErrorHandler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, d Decision) error {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(d.Retries).
		ErrorMessage(d.BPMNError.Message)

	withVars, err := cmd.VariablesFromMap(d.BPMNError.ToErrorVariables())
	if err != nil {
		_, err = cmd.Send(ctx)
		return err
	}
	_, err = withVars.Send(ctx)
	return err
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) error {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err != nil {
		_, err = cmd.Send(ctx)
		return err
	}
	_, err = withVars.Send(ctx)
	return err
}

func (h *ErrorHandler) logError(job entities.Job, d Decision) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        d.BPMNError.Code,
		"message":          d.BPMNError.Message,
		"details":          d.BPMNError.Details,
		"retryable":        d.BPMNError.Retryable,
		"retry":            d.Retry,
		"retriesLeft":      d.Retries,
		"errorCategory":    d.BPMNError.ErrorVariables["errorCategory"],
		"workflowInstance": job.ProcessInstanceKey,
	})
}
