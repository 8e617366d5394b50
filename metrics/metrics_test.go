package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpilot-ai/docpilot/pipeline"
)

func TestCollectorCountsAndGauges(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.DocumentProcessed("completed")
	c.DocumentProcessed("completed")
	c.DocumentProcessed("paused")
	c.ReviewQueued("correspondent")
	c.ReviewResolved("approved")
	c.SetQueueDepth(map[string]int{"tag": 3, "correspondent": 1})
	c.JobItemProcessed("bulk_ocr", 5, 10)
	c.JobFinished("bulk_ocr", "completed")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.documentsProcessed.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.documentsProcessed.WithLabelValues("paused")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.reviewQueued.WithLabelValues("correspondent")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.reviewQueueDepth.WithLabelValues("tag")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.jobItemsProcessed.WithLabelValues("bulk_ocr")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.jobProgress.WithLabelValues("bulk_ocr")),
		"finishing a job resets its progress gauge")
}

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	c.DocumentProcessed("completed")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "docpilot_documents_processed_total")
}

func TestReporterRecordsStepDurations(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	r := NewReporter(nil, c)

	clock := time.Unix(1000, 0)
	r.now = func() time.Time { return clock }

	require.NoError(t, r.Send(pipeline.NewStepStart(pipeline.StepNameTitle)))
	clock = clock.Add(3 * time.Second)
	require.NoError(t, r.Send(pipeline.NewStepComplete(pipeline.StepNameTitle,
		pipeline.StepOutcome{Step: pipeline.StepNameTitle, Status: pipeline.StepConfirmed})))
	require.NoError(t, r.Send(pipeline.NewPipelineComplete()))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.stepOutcomes.WithLabelValues(pipeline.StepNameTitle, "confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.documentsProcessed.WithLabelValues("completed")))
	assert.Empty(t, r.started, "a completed step releases its start timestamp")
}

func TestReporterCountsQueuedReviews(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	r := NewReporter(nil, c)

	require.NoError(t, r.Send(pipeline.NewStepStart(pipeline.StepNameCorrespondent)))
	require.NoError(t, r.Send(pipeline.NewNeedsReview(pipeline.StepNameCorrespondent,
		pipeline.StepOutcome{Step: pipeline.StepNameCorrespondent, Status: pipeline.StepNeedsReview})))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.reviewQueued.WithLabelValues(pipeline.StepNameCorrespondent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.stepOutcomes.WithLabelValues(pipeline.StepNameCorrespondent, "needs_review")))
}

func TestReporterForwardsToNext(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	next := pipeline.NewChanReporter(4)
	r := NewReporter(next, c)

	require.NoError(t, r.Send(pipeline.NewStepStart(pipeline.StepNameTags)))
	require.Len(t, next.C, 1)
}
