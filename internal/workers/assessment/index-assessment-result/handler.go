// internal/workers/assessment/index-assessment-result/handler.go
package indexassessmentresult

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"operator-assessment-workers/internal/assessment"
	"operator-assessment-workers/internal/common/database"
	"operator-assessment-workers/internal/common/errors"
	"operator-assessment-workers/internal/common/logger"
	"operator-assessment-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "index-assessment-result"

type Handler struct {
	config       *Config
	es           *database.ElasticsearchClient
	errorHandler *errors.ErrorHandler
	logger       logger.Logger

	mu      sync.Mutex
	ensured bool
}

func NewHandler(config *Config, es *database.ElasticsearchClient, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		es:           es,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
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
	if input.AssessmentID == "" || input.AssessmentResult == nil {
		return nil, errors.NewInvalidJobVariablesError(fmt.Errorf("assessmentId and assessmentResult are required"))
	}

	if err := h.ensureIndex(ctx); err != nil {
		return nil, errors.NewElasticsearchConnectionFailedError(err)
	}

	body, err := json.Marshal(buildDocument(input))
	if err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("marshal document: %w", err))
	}

	es := h.es.Client
	res, err := es.Index(h.config.IndexName, bytes.NewReader(body),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(input.AssessmentID),
	)
	if err != nil {
		return nil, errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewElasticsearchIndexFailedError(h.config.IndexName, fmt.Errorf("%s", res.String()))
	}

	h.logger.Info("assessment indexed", map[string]interface{}{
		"index":        h.config.IndexName,
		"assessmentId": input.AssessmentID,
		"candidateId":  input.AssessmentResult.CandidateID,
	})
	return &Output{Indexed: true, Index: h.config.IndexName, DocumentID: input.AssessmentID}, nil
}

// ensureIndex creates the index on first use. A failure is retried on the
// next job.
func (h *Handler) ensureIndex(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ensured {
		return nil
	}
	if err := h.es.EnsureIndex(ctx, h.config.IndexName, database.AssessmentIndexMapping); err != nil {
		return err
	}
	h.ensured = true
	return nil
}

func buildDocument(input *Input) *Document {
	r := input.AssessmentResult
	doc := &Document{
		AssessmentID:   input.AssessmentID,
		CandidateID:    r.CandidateID,
		Scale:          r.Scale,
		Grade:          string(r.FinalAssessment.Grade),
		Level:          string(r.FinalAssessment.Level),
		Designation:    string(r.FinalAssessment.Designation),
		TotalScore:     r.Scores.Total,
		QualityFloored: r.QualityFloored,
		Overrides:      r.Overrides,
		AssessedAt:     input.StoredAt,
	}
	if doc.Overrides == nil {
		doc.Overrides = []string{}
	}
	if doc.AssessedAt == "" {
		doc.AssessedAt = time.Now().UTC().Format(time.RFC3339)
	}

	seen := make(map[assessment.MachineType]bool)
	for _, p := range r.Processes {
		doc.ProcessNames = append(doc.ProcessNames, p.ProcessName)
		if !seen[p.MachineType] {
			seen[p.MachineType] = true
			doc.MachineTypes = append(doc.MachineTypes, string(p.MachineType))
		}
	}
	return doc
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
