// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of job processing in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	AssessmentGrades = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_grades_total",
			Help: "Final assessments issued, by grade and level",
		},
		[]string{"scale", "grade", "level"},
	)

	AssessmentTotalScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assessment_total_score",
			Help:    "Distribution of weighted total scores",
			Buckets: []float64{40, 50, 60, 70, 75, 80, 90, 100, 110},
		},
		[]string{"scale"},
	)

	AssessmentOverrides = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_overrides_total",
			Help: "Special-process override rules that changed a grade",
		},
		[]string{"rule"},
	)

	AssessmentCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_cache_lookups_total",
			Help: "Redis lookups for assessment input and results",
		},
		[]string{"cache", "outcome"},
	)
)

// JobTimer tracks one job from activation to completion.
type JobTimer struct {
	taskType string
	start    time.Time
}

// StartJob marks a job active for taskType.
func StartJob(taskType string) *JobTimer {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &JobTimer{taskType: taskType, start: time.Now()}
}

// Done records the outcome. An empty errorCode counts as completed.
func (t *JobTimer) Done(errorCode string) {
	WorkerJobsActive.WithLabelValues(t.taskType).Dec()
	WorkerJobDuration.WithLabelValues(t.taskType).Observe(time.Since(t.start).Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(t.taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(t.taskType, errorCode).Inc()
}

// RecordAssessment counts one final assessment.
func RecordAssessment(scale, grade, level string, total float64, overrides []string) {
	AssessmentGrades.WithLabelValues(scale, grade, level).Inc()
	AssessmentTotalScore.WithLabelValues(scale).Observe(total)
	for _, rule := range overrides {
		AssessmentOverrides.WithLabelValues(rule).Inc()
	}
}

func RecordCacheLookup(cache string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	AssessmentCacheLookups.WithLabelValues(cache, outcome).Inc()
}
