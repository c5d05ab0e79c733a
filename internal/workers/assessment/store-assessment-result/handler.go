// internal/workers/assessment/store-assessment-result/handler.go
package storeassessmentresult

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"operator-assessment-workers/internal/common/database"
	"operator-assessment-workers/internal/common/errors"
	"operator-assessment-workers/internal/common/logger"
	"operator-assessment-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const TaskType = "store-assessment-result"

// pqUniqueViolation is the SQLSTATE for a duplicate primary key.
const pqUniqueViolation = "23505"

type Handler struct {
	config       *Config
	db           *sql.DB
	cache        *database.JSONCache
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, db *sql.DB, rdb redis.Cmdable, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	h := &Handler{
		config:       config,
		db:           db,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
	if rdb != nil {
		h.cache = database.NewJSONCache(rdb, database.AssessmentResultPrefix, config.CacheTTL)
	}
	return h
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result := input.AssessmentResult
	if result == nil || result.CandidateID == "" {
		return nil, errors.NewInvalidJobVariablesError(fmt.Errorf("assessmentResult.candidateId is required"))
	}

	assessmentID := input.AssessmentID
	if assessmentID == "" {
		assessmentID = uuid.New().String()
	} else if _, err := uuid.Parse(assessmentID); err != nil {
		return nil, errors.NewInvalidJobVariablesError(fmt.Errorf("assessmentId: %w", err))
	}
	storedAt := time.Now().UTC().Format(time.RFC3339)

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("marshal assessment result: %w", err))
	}

	final := result.FinalAssessment
	overrides := result.Overrides
	if overrides == nil {
		overrides = []string{}
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO operator_assessments (
			id, candidate_id, scale, total_score, grade, level, designation,
			quality_floored, overrides, result, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		assessmentID,
		result.CandidateID,
		result.Scale,
		result.Scores.Total,
		string(final.Grade),
		string(final.Level),
		string(final.Designation),
		result.QualityFloored,
		pq.Array(overrides),
		resultJSON,
		storedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, errors.NewDuplicateAssessmentError(assessmentID)
		}
		return nil, errors.NewDatabaseInsertFailedError(err)
	}

	auditDetails, err := json.Marshal(map[string]interface{}{
		"candidateId": result.CandidateID,
		"scale":       result.Scale,
		"totalScore":  result.Scores.Total,
		"grade":       final.Grade,
		"level":       final.Level,
		"overrides":   overrides,
	})
	if err != nil {
		auditDetails = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"assessment_stored",
		"operator_assessment",
		assessmentID,
		auditDetails,
		storedAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":        err.Error(),
			"assessmentId": assessmentID,
		})
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, result.CandidateID, result); err != nil {
			h.logger.Warn("result cache write failed", map[string]interface{}{
				"error":       err.Error(),
				"candidateId": result.CandidateID,
			})
		}
	}

	h.logger.Info("assessment stored", map[string]interface{}{
		"assessmentId": assessmentID,
		"candidateId":  result.CandidateID,
		"grade":        string(final.Grade),
		"totalScore":   result.Scores.Total,
	})

	return &Output{AssessmentID: assessmentID, StoredAt: storedAt}, nil
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
		"jobKey":       job.Key,
		"assessmentId": output.AssessmentID,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, timer *metrics.JobTimer, err error) {
	d := h.errorHandler.HandleJobError(context.Background(), client, job, err)
	timer.Done(d.BPMNError.Code)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
