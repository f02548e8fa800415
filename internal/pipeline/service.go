package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"kri-backend/internal/kris"
	"kri-backend/internal/llm"
	"kri-backend/internal/notify"
	"kri-backend/internal/recommendations"
	"kri-backend/internal/shared/metrics"
	"kri-backend/internal/shared/telemetry"
	"kri-backend/internal/summaries"
)

// ErrRunInProgress is returned when a pipeline run is already executing.
// Recommendation and summary runs share one lock since both read the same
// feed and write to the same reporting period.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// ErrNoData is returned when the KRI feed has no observations to process.
var ErrNoData = errors.New("kri feed is empty")

// ItemError describes one rejected candidate from a batch.
type ItemError struct {
	Index  int                          `json:"index"`
	Issues []recommendations.FieldIssue `json:"issues"`
}

// RunResult reports the outcome of one recommendation run.
type RunResult struct {
	AsOfDate        string                           `json:"asOfDate,omitempty"`
	RowsSent        int                              `json:"rowsSent"`
	Generated       int                              `json:"generated"`
	Inserted        int                              `json:"inserted"`
	Errors          []ItemError                      `json:"errors,omitempty"`
	Missing         []string                         `json:"missing,omitempty"`
	Extra           []string                         `json:"extra,omitempty"`
	Recommendations []recommendations.Recommendation `json:"recommendations,omitempty"`
}

// SummaryResult reports the outcome of one summary run.
type SummaryResult struct {
	Summary summaries.Summary `json:"summary"`
	Emailed bool              `json:"emailed"`
}

// Service orchestrates the insight pipeline: fetch KRI rows, generate and
// persist recommendations, then generate, persist and email the narrative
// summary.
type Service struct {
	KRIs         kris.Repo
	Recs         recommendations.Repo
	Summaries    summaries.Repo
	Dashboards   summaries.DashboardRepo
	LLM          llm.Client
	Mailer       notify.Sender
	Recipients   []string
	WindowMonths int

	runMu sync.Mutex
}

// LatestProcessed reports whether recommendations already cover the newest
// KRI observation date. Used as the idempotency gate on the scheduled path;
// manual triggers do not consult it.
func (s *Service) LatestProcessed(ctx context.Context) (bool, time.Time, error) {
	kriLatest, ok, err := s.KRIs.LatestAsOfDate(ctx)
	if err != nil {
		return false, time.Time{}, fmt.Errorf("latest kri date: %w", err)
	}
	if !ok {
		return false, time.Time{}, ErrNoData
	}

	recLatest, ok, err := s.Recs.LatestObservedAt(ctx)
	if err != nil {
		return false, time.Time{}, fmt.Errorf("latest recommendation date: %w", err)
	}
	if !ok {
		return false, kriLatest, nil
	}
	return !recLatest.Before(kriLatest), kriLatest, nil
}

// RunRecommendations executes one recommendation run. Manual triggers always
// execute: the already-processed check belongs to the scheduled path only.
// Invalid candidates are reported per item and dropped; the valid remainder
// is inserted.
func (s *Service) RunRecommendations(ctx context.Context) (RunResult, error) {
	if !s.runMu.TryLock() {
		return RunResult{}, ErrRunInProgress
	}
	defer s.runMu.Unlock()
	return s.runRecommendationsLocked(ctx)
}

func (s *Service) runRecommendationsLocked(ctx context.Context) (RunResult, error) {
	asOfDate, ok, err := s.KRIs.LatestAsOfDate(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("latest kri date: %w", err)
	}
	if !ok {
		return RunResult{}, ErrNoData
	}
	metrics.IncPipelineRun()

	rows, err := s.KRIs.BreachWindow(ctx, s.WindowMonths)
	if err != nil {
		return RunResult{}, fmt.Errorf("breach window: %w", err)
	}
	result := RunResult{
		AsOfDate: asOfDate.Format("2006-01-02"),
		RowsSent: len(rows),
	}
	if len(rows) == 0 {
		telemetry.Info("pipeline.run.no_breaches", map[string]any{
			"as_of_date": result.AsOfDate,
		})
		return result, nil
	}

	payload := llm.BatchPayload{
		Source: "KRI",
		Window: fmt.Sprintf("trailing_%d_months", s.WindowMonths),
		Rows:   rows,
	}
	start := time.Now()
	raw, err := s.LLM.GenerateRecommendations(ctx, payload)
	metrics.ObserveLLMCallDurationMs(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return RunResult{}, fmt.Errorf("generate recommendations: %w", err)
	}

	var candidates []recommendations.Candidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		telemetry.Error("pipeline.run.bad_candidates", map[string]any{"error": err.Error()})
		candidates = nil
	}
	result.Generated = len(candidates)

	fallbacks := observedAtByEntity(rows)
	var valid []recommendations.Recommendation
	for i, candidate := range candidates {
		if violation := recommendations.Validate(candidate); violation != nil {
			result.Errors = append(result.Errors, ItemError{Index: i, Issues: violation.Issues})
			continue
		}
		valid = append(valid, recommendations.Normalize(candidate, fallbacks[candidate.RelatedEntityID]))
	}

	result.Missing, result.Extra = reconcile(rows, candidates)
	if len(result.Missing) > 0 || len(result.Extra) > 0 {
		telemetry.Warn("pipeline.run.reconciliation_mismatch", map[string]any{
			"missing": result.Missing,
			"extra":   result.Extra,
		})
	}

	inserted, err := s.Recs.InsertBatch(ctx, valid)
	if err != nil {
		return RunResult{}, fmt.Errorf("insert recommendations: %w", err)
	}
	result.Inserted = inserted
	result.Recommendations = valid
	metrics.AddRecommendationsInserted(inserted)

	telemetry.Info("pipeline.run.completed", map[string]any{
		"as_of_date": result.AsOfDate,
		"rows_sent":  result.RowsSent,
		"generated":  result.Generated,
		"inserted":   result.Inserted,
		"rejected":   len(result.Errors),
	})
	return result, nil
}

// RunSummary generates the narrative summary for the latest as-of date,
// stores it, and emails it. The summary is stored before the email attempt;
// is_emailed is flipped only after a confirmed send. LLM failure is fatal:
// nothing is stored and nothing is emailed.
func (s *Service) RunSummary(ctx context.Context) (SummaryResult, error) {
	if !s.runMu.TryLock() {
		return SummaryResult{}, ErrRunInProgress
	}
	defer s.runMu.Unlock()
	return s.runSummaryLocked(ctx)
}

func (s *Service) runSummaryLocked(ctx context.Context) (SummaryResult, error) {
	asOfDate, ok, err := s.KRIs.LatestAsOfDate(ctx)
	if err != nil {
		return SummaryResult{}, fmt.Errorf("latest kri date: %w", err)
	}
	if !ok {
		return SummaryResult{}, ErrNoData
	}

	// Duplicate periods are refused before spending an LLM call; the unique
	// constraint on insert remains the backstop.
	sumLatest, found, err := s.Summaries.LatestAsOfDate(ctx, summaries.TypeKRI)
	if err != nil {
		return SummaryResult{}, fmt.Errorf("latest summary date: %w", err)
	}
	if found && !sumLatest.Before(asOfDate) {
		return SummaryResult{}, fmt.Errorf("summary for %s: %w", asOfDate.Format("2006-01-02"), summaries.ErrDuplicate)
	}

	snapshot, err := s.KRIs.Snapshot(ctx)
	if err != nil {
		return SummaryResult{}, fmt.Errorf("snapshot: %w", err)
	}

	content, err := json.Marshal(snapshot)
	if err != nil {
		return SummaryResult{}, fmt.Errorf("marshal snapshot: %w", err)
	}
	start := time.Now()
	text, err := s.LLM.Summarize(ctx, llm.SummaryInstruction, string(content))
	metrics.ObserveLLMCallDurationMs(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return SummaryResult{}, fmt.Errorf("summarize: %w", err)
	}

	stored, err := s.Summaries.Insert(ctx, summaries.Summary{
		SummaryType: summaries.TypeKRI,
		SummaryText: text,
		AsOfDate:    asOfDate,
	})
	if err != nil {
		return SummaryResult{}, fmt.Errorf("insert summary: %w", err)
	}

	dashName, dashURL, _, err := s.Dashboards.PublishedAddress(ctx, summaries.TypeKRI)
	if err != nil {
		telemetry.Warn("pipeline.summary.dashboard_lookup_failed", map[string]any{"error": err.Error()})
		dashName, dashURL = "", ""
	}

	body := notify.ComposeBody(text, dashName, dashURL)
	subject := notify.Subject(asOfDate)
	emailed := s.Mailer.Send(ctx, subject, body, s.Recipients)
	if emailed {
		if err := s.Summaries.MarkEmailed(ctx, summaries.TypeKRI, asOfDate); err != nil {
			telemetry.Error("pipeline.summary.mark_emailed_failed", map[string]any{"error": err.Error()})
		} else {
			stored.IsEmailed = true
		}
	}

	telemetry.Info("pipeline.summary.completed", map[string]any{
		"as_of_date": asOfDate.Format("2006-01-02"),
		"emailed":    emailed,
	})
	return SummaryResult{Summary: stored, Emailed: emailed}, nil
}

// RunScheduled executes the full scheduled cycle: recommendations, then the
// summary. Unlike manual triggers, the scheduled path is gated by the
// watermark check so an already-processed period is a no-op.
func (s *Service) RunScheduled(ctx context.Context) error {
	if !s.runMu.TryLock() {
		return ErrRunInProgress
	}
	defer s.runMu.Unlock()

	processed, asOfDate, err := s.LatestProcessed(ctx)
	if err != nil {
		return fmt.Errorf("scheduled watermark check: %w", err)
	}
	if processed {
		telemetry.Info("pipeline.scheduled.skipped", map[string]any{
			"as_of_date": asOfDate.Format("2006-01-02"),
		})
		metrics.IncPipelineRunSkipped()
		return nil
	}

	result, err := s.runRecommendationsLocked(ctx)
	if err != nil {
		return fmt.Errorf("scheduled recommendation run: %w", err)
	}

	if _, err := s.runSummaryLocked(ctx); err != nil {
		if errors.Is(err, summaries.ErrDuplicate) {
			telemetry.Info("pipeline.scheduled.summary_exists", map[string]any{
				"as_of_date": result.AsOfDate,
			})
			return nil
		}
		return fmt.Errorf("scheduled summary run: %w", err)
	}
	return nil
}

// observedAtByEntity maps each entity to the observation date of its most
// severe row, used as the normalization fallback for candidates that come
// back without a date. Rows arrive ordered by severity so the first hit wins.
func observedAtByEntity(rows []kris.Row) map[string]string {
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		if _, ok := out[row.RelatedEntityID]; !ok {
			out[row.RelatedEntityID] = row.ObservedAt
		}
	}
	return out
}

// reconcile compares the entities sent to the model against the entities it
// answered for. Order follows input order on both sides.
func reconcile(rows []kris.Row, candidates []recommendations.Candidate) (missing, extra []string) {
	sent := make(map[string]struct{}, len(rows))
	received := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		received[c.RelatedEntityID] = struct{}{}
	}
	for _, row := range rows {
		if _, ok := sent[row.RelatedEntityID]; ok {
			continue
		}
		sent[row.RelatedEntityID] = struct{}{}
		if _, ok := received[row.RelatedEntityID]; !ok {
			missing = append(missing, row.RelatedEntityID)
		}
	}
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.RelatedEntityID]; ok {
			continue
		}
		seen[c.RelatedEntityID] = struct{}{}
		if _, ok := sent[c.RelatedEntityID]; !ok {
			extra = append(extra, c.RelatedEntityID)
		}
	}
	return missing, extra
}
