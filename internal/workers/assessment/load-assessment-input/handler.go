// internal/workers/assessment/load-assessment-input/handler.go
package loadassessmentinput

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"operator-assessment-workers/internal/assessment"
	"operator-assessment-workers/internal/common/database"
	"operator-assessment-workers/internal/common/errors"
	"operator-assessment-workers/internal/common/logger"
	"operator-assessment-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const TaskType = "load-assessment-input"

const candidateQuery = `
	SELECT educational_status, COALESCE(attitude, '')
	FROM assessment_candidates
	WHERE candidate_id = $1`

const processesQuery = `
	SELECT machine_type, process_name, smv, cycle_times, dop, quality_status
	FROM assessment_processes
	WHERE candidate_id = $1
	ORDER BY seq`

type Handler struct {
	config       *Config
	db           *sql.DB
	cache        *database.JSONCache
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler builds the worker. rdb may be nil, in which case every job
// goes to PostgreSQL.
func NewHandler(config *Config, db *sql.DB, rdb redis.Cmdable, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	h := &Handler{
		config:       config,
		db:           db,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
	if rdb != nil {
		h.cache = database.NewJSONCache(rdb, database.AssessmentInputPrefix, config.CacheTTL)
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
	id := strings.TrimSpace(input.CandidateID)
	if id == "" {
		return nil, errors.NewInvalidJobVariablesError(fmt.Errorf("candidateId is required"))
	}

	if h.cache != nil {
		var cached assessment.Input
		hit, err := h.cache.Get(ctx, id, &cached)
		if err != nil {
			h.logger.Warn("input cache read failed", map[string]interface{}{
				"candidateId": id,
				"error":       err.Error(),
			})
		}
		metrics.RecordCacheLookup("assessment_input", hit)
		if hit {
			return &Output{AssessmentInput: cached, FromCache: true}, nil
		}
	}

	loaded, err := h.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, id, loaded); err != nil {
			h.logger.Warn("input cache write failed", map[string]interface{}{
				"candidateId": id,
				"error":       err.Error(),
			})
		}
	}

	h.logger.Info("assessment input loaded", map[string]interface{}{
		"candidateId": id,
		"processes":   len(loaded.Processes),
	})
	return &Output{AssessmentInput: *loaded}, nil
}

func (h *Handler) load(ctx context.Context, candidateID string) (*assessment.Input, error) {
	in := &assessment.Input{CandidateID: candidateID}

	err := h.db.QueryRowContext(ctx, candidateQuery, candidateID).Scan(&in.EducationalStatus, &in.Attitude)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewAssessmentInputNotFoundError(candidateID)
	}
	if err != nil {
		return nil, queryError(ctx, "candidate", err)
	}

	rows, err := h.db.QueryContext(ctx, processesQuery, candidateID)
	if err != nil {
		return nil, queryError(ctx, "processes", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p assessment.ProcessRecord
		if err := rows.Scan(&p.MachineType, &p.ProcessName, &p.SMV, pq.Array(&p.CycleTimes), &p.DOP, &p.QualityStatus); err != nil {
			return nil, queryError(ctx, "processes", err)
		}
		in.Processes = append(in.Processes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, "processes", err)
	}

	if len(in.Processes) == 0 {
		return nil, errors.NewAssessmentInputNotFoundError(candidateID).
			WithMetadata("reason", "no processes recorded")
	}
	return in, nil
}

func queryError(ctx context.Context, queryType string, err error) error {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewQueryTimeoutError(queryType)
	}
	return errors.NewQueryExecutionFailedError(queryType, err)
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
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, timer *metrics.JobTimer, err error) {
	d := h.errorHandler.HandleJobError(context.Background(), client, job, err)
	timer.Done(d.BPMNError.Code)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
