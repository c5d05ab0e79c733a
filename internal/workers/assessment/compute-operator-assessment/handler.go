// internal/workers/assessment/compute-operator-assessment/handler.go
package computeoperatorassessment

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"operator-assessment-workers/internal/assessment"
	"operator-assessment-workers/internal/common/errors"
	"operator-assessment-workers/internal/common/logger"
	"operator-assessment-workers/internal/common/metrics"
	"operator-assessment-workers/internal/common/observability"
	"operator-assessment-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "compute-operator-assessment"

type Handler struct {
	config       *Config
	engine       *assessment.Engine
	validator    *validation.Validator
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler builds the engine for the configured scale. validator and obs
// may be nil.
func NewHandler(config *Config, validator *validation.Validator, obs *observability.Observability, log logger.Logger) (*Handler, error) {
	scale, err := assessment.ScaleByName(config.Scale)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       assessment.NewEngine(scale, config.engineOptions(scale.Name)...),
		validator:    validator,
		obs:          obs,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err == nil {
		var output *Output
		if output, err = h.execute(ctx, input); err == nil {
			h.completeJob(client, job, output)
			timer.Done("")
			h.obs.RecordJobProcessed(ctx, TaskType, "completed")
			h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
			return
		}
	}

	d := h.errorHandler.HandleJobError(context.Background(), client, job, err)
	timer.Done(d.BPMNError.Code)
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
}

// parseInput decodes the job variables and checks them against the
// registry schema for this task type.
func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewInvalidJobVariablesError(err)
	}

	if h.validator != nil {
		res, err := h.validator.ValidateJSON(TaskType, job.Variables)
		if err != nil {
			return nil, errors.NewInvalidJobVariablesError(err)
		}
		if !res.Valid {
			return nil, errors.NewSchemaValidationFailedError(res.Summary()).
				WithMetadata("fields", res.Fields())
		}
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	engine, err := h.engineFor(input.Scale)
	if err != nil {
		return nil, errors.NewAssessmentValidationError(err, []string{"scale"})
	}

	in := input.AssessmentInput
	if in.CandidateID == "" {
		in.CandidateID = input.CandidateID
	}

	_, span := h.obs.StartSpan(ctx, "assessment.compute",
		attribute.String("candidate.id", in.CandidateID),
		attribute.String("assessment.scale", engine.Scale().Name),
		attribute.Int("assessment.processes", len(in.Processes)),
	)
	result, err := engine.Compute(in)
	observability.EndSpan(span, err)

	if err != nil {
		var verrs assessment.ValidationErrors
		if stderrors.As(err, &verrs) {
			return nil, errors.NewAssessmentValidationError(err, verrs.Fields())
		}
		return nil, errors.NewInternalError(err)
	}

	for _, w := range result.Warnings {
		h.logger.Warn("assessment warning", map[string]interface{}{
			"candidateId":  result.CandidateID,
			"code":         w.Code,
			"processIndex": w.ProcessIndex,
			"message":      w.Message,
		})
	}

	final := result.FinalAssessment
	metrics.RecordAssessment(result.Scale, string(final.Grade), string(final.Level), result.Scores.Total, result.Overrides)

	h.logger.Info("assessment computed", map[string]interface{}{
		"candidateId":    result.CandidateID,
		"scale":          result.Scale,
		"totalScore":     result.Scores.Total,
		"baseGrade":      string(result.BaseAssessment.Grade),
		"grade":          string(final.Grade),
		"level":          string(final.Level),
		"overrides":      result.Overrides,
		"qualityFloored": result.QualityFloored,
	})

	return &Output{
		AssessmentResult: result,
		Grade:            string(final.Grade),
		Level:            string(final.Level),
		Designation:      string(final.Designation),
		TotalScore:       result.Scores.Total,
		QualityFloored:   result.QualityFloored,
	}, nil
}

// engineFor returns the configured engine, or one for the requested scale.
// A configured quality floor is not carried across scales.
func (h *Handler) engineFor(scaleName string) (*assessment.Engine, error) {
	if scaleName == "" || scaleName == h.engine.Scale().Name {
		return h.engine, nil
	}
	scale, err := assessment.ScaleByName(scaleName)
	if err != nil {
		return nil, err
	}
	return assessment.NewEngine(scale, h.config.engineOptions(scale.Name)...), nil
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
		"grade":  output.Grade,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
