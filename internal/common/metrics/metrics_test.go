// internal/common/metrics/metrics_test.go
package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestJobTimer(t *testing.T) {
	const task = "metrics-test-task"

	timer := StartJob(task)
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsActive.WithLabelValues(task)))
	timer.Done("")
	assert.Equal(t, 0.0, testutil.ToFloat64(WorkerJobsActive.WithLabelValues(task)))
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues(task)))

	StartJob(task).Done("DATABASE_INSERT_FAILED")
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsFailed.WithLabelValues(task, "DATABASE_INSERT_FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(WorkerJobsCompleted.WithLabelValues(task)))
}

func TestRecordAssessment(t *testing.T) {
	RecordAssessment("metrics-test", "A++", "Multiskill", 75, []string{"ALL_BENCHMARKS_NECK_JOIN_BOTTOM_HEM"})

	assert.Equal(t, 1.0, testutil.ToFloat64(AssessmentGrades.WithLabelValues("metrics-test", "A++", "Multiskill")))
	assert.Equal(t, 1.0, testutil.ToFloat64(AssessmentOverrides.WithLabelValues("ALL_BENCHMARKS_NECK_JOIN_BOTTOM_HEM")))
}

func TestRecordCacheLookup(t *testing.T) {
	RecordCacheLookup("metrics-test", true)
	RecordCacheLookup("metrics-test", false)
	RecordCacheLookup("metrics-test", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(AssessmentCacheLookups.WithLabelValues("metrics-test", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(AssessmentCacheLookups.WithLabelValues("metrics-test", "miss")))
}
