package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	pipelineRunsTotal            atomic.Uint64
	pipelineRunsSkippedTotal     atomic.Uint64
	recommendationsInsertedTotal atomic.Uint64
	summariesEmailedTotal        atomic.Uint64
	emailFailuresTotal           atomic.Uint64

	llmCallDuration = newHistogram([]float64{500, 1000, 2000, 5000, 10000, 30000, 60000, 120000, 300000})
)

// IncPipelineRun increments the pipeline run counter.
func IncPipelineRun() {
	pipelineRunsTotal.Add(1)
}

// IncPipelineRunSkipped increments the skipped-run counter (idempotency check hit).
func IncPipelineRunSkipped() {
	pipelineRunsSkippedTotal.Add(1)
}

// AddRecommendationsInserted adds to the inserted-rows counter.
func AddRecommendationsInserted(n int) {
	if n > 0 {
		recommendationsInsertedTotal.Add(uint64(n))
	}
}

// IncSummaryEmailed increments the emailed-summary counter.
func IncSummaryEmailed() {
	summariesEmailedTotal.Add(1)
}

// IncEmailFailure increments the email failure counter.
func IncEmailFailure() {
	emailFailuresTotal.Add(1)
}

// ObserveLLMCallDurationMs records an LLM call duration in milliseconds.
func ObserveLLMCallDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	llmCallDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "pipeline_runs_total", "Total pipeline executions", pipelineRunsTotal.Load())
	writeCounter(&buf, "pipeline_runs_skipped_total", "Total pipeline executions skipped as already processed", pipelineRunsSkippedTotal.Load())
	writeCounter(&buf, "recommendations_inserted_total", "Total recommendation rows inserted", recommendationsInsertedTotal.Load())
	writeCounter(&buf, "summaries_emailed_total", "Total summary emails sent", summariesEmailedTotal.Load())
	writeCounter(&buf, "email_failures_total", "Total summary email failures", emailFailuresTotal.Load())
	writeHistogram(&buf, "llm_call_duration_ms", "LLM call duration in milliseconds", llmCallDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
