// internal/workers/assessment/rank-assessment-candidates/handler.go
package rankassessmentcandidates

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
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

const TaskType = "rank-assessment-candidates"

const latestResultsQuery = `
	SELECT DISTINCT ON (candidate_id) candidate_id, result
	FROM operator_assessments
	WHERE candidate_id = ANY($1)
	ORDER BY candidate_id, created_at DESC`

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
	if len(input.AssessmentResults) == 0 && len(input.CandidateIDs) == 0 {
		return nil, errors.NewInvalidJobVariablesError(fmt.Errorf("assessmentResults or candidateIds is required"))
	}
	if input.Limit < 0 {
		return nil, errors.NewInvalidJobVariablesError(fmt.Errorf("limit must not be negative"))
	}

	// inline results win over stored ones for the same candidate
	byID := make(map[string]*assessment.Result)
	results := make([]*assessment.Result, 0, len(input.AssessmentResults)+len(input.CandidateIDs))
	for _, r := range input.AssessmentResults {
		if r == nil {
			continue
		}
		if r.CandidateID != "" {
			if _, dup := byID[r.CandidateID]; dup {
				continue
			}
			byID[r.CandidateID] = r
		}
		results = append(results, r)
	}

	var wanted []string
	seen := make(map[string]bool)
	for _, id := range input.CandidateIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] || byID[id] != nil {
			continue
		}
		seen[id] = true
		wanted = append(wanted, id)
	}

	resolved, missing, err := h.resolve(ctx, wanted)
	if err != nil {
		return nil, err
	}
	results = append(results, resolved...)

	scale, err := assessment.CommonScale(results)
	if err != nil {
		var verrs assessment.ValidationErrors
		stderrors.As(err, &verrs)
		return nil, errors.NewAssessmentValidationError(err, verrs.Fields())
	}

	ranked := assessment.Rank(results)
	if input.Limit > 0 && len(ranked) > input.Limit {
		ranked = ranked[:input.Limit]
	}

	out := &Output{Scale: scale, Ranking: make([]RankedCandidate, len(ranked)), MissingCandidateIDs: missing}
	for i, r := range ranked {
		final := r.Result.FinalAssessment
		out.Ranking[i] = RankedCandidate{
			Position:    r.Position,
			Tied:        r.Tied,
			CandidateID: r.Result.CandidateID,
			TotalScore:  r.Result.Scores.Total,
			Grade:       string(final.Grade),
			Level:       string(final.Level),
			Designation: string(final.Designation),
		}
	}

	if len(missing) > 0 {
		h.logger.Warn("candidates without stored results", map[string]interface{}{
			"candidateIds": missing,
		})
	}
	h.logger.Info("candidates ranked", map[string]interface{}{
		"ranked":  len(out.Ranking),
		"missing": len(missing),
	})
	return out, nil
}

// resolve looks each candidate up in the result cache, then loads the rest
// from PostgreSQL. missing lists candidates with no stored result.
func (h *Handler) resolve(ctx context.Context, ids []string) ([]*assessment.Result, []string, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}

	var found []*assessment.Result
	var pending []string
	for _, id := range ids {
		if h.cache == nil {
			pending = append(pending, id)
			continue
		}
		var r assessment.Result
		hit, err := h.cache.Get(ctx, id, &r)
		if err != nil {
			h.logger.Warn("result cache read failed", map[string]interface{}{
				"candidateId": id,
				"error":       err.Error(),
			})
		}
		metrics.RecordCacheLookup("assessment_result", hit)
		if hit {
			found = append(found, &r)
		} else {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return found, nil, nil
	}

	rows, err := h.db.QueryContext(ctx, latestResultsQuery, pq.Array(pending))
	if err != nil {
		return nil, nil, errors.NewQueryExecutionFailedError("latest_results", err)
	}
	defer rows.Close()

	loaded := make(map[string]bool, len(pending))
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, nil, errors.NewQueryExecutionFailedError("latest_results", err)
		}
		var r assessment.Result
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, nil, errors.NewInternalError(fmt.Errorf("decode stored result for %s: %w", id, err))
		}
		if r.CandidateID == "" {
			r.CandidateID = id
		}
		found = append(found, &r)
		loaded[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, nil, errors.NewQueryExecutionFailedError("latest_results", err)
	}

	var missing []string
	for _, id := range pending {
		if !loaded[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return found, missing, nil
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
