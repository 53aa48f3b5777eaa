package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vlasenko/incident-analyst/internal/core/auth"
	"github.com/vlasenko/incident-analyst/internal/core/domain"
	"github.com/vlasenko/incident-analyst/internal/core/ports"
)

// SummaryDegradedPrefix marks a summary that was substituted because
// the summary sub-call failed. The record is still persisted with it.
const SummaryDegradedPrefix = "Summary generation failed: "

const processingFailedMessage = "processing failed"

type GenerateAnalysisUseCase struct {
	analyst ports.IncidentAnalyst
	repo    ports.IncidentRepository
	events  ports.EventPublisher
}

func NewGenerateAnalysisUseCase(
	analyst ports.IncidentAnalyst,
	repo ports.IncidentRepository,
	events ports.EventPublisher,
) *GenerateAnalysisUseCase {
	return &GenerateAnalysisUseCase{
		analyst: analyst,
		repo:    repo,
		events:  events,
	}
}

// Generate runs the two provider calls in order and persists the
// result. The summary step degrades to a placeholder instead of
// failing; the analysis step aborts the whole call. The asymmetry is
// inherited behavior, kept as-is.
//
// Each call inserts a fresh record: there is no idempotency key, and
// identical inputs on two calls yield two distinct ids.
func (uc *GenerateAnalysisUseCase) Generate(
	ctx context.Context,
	ac auth.Context,
	fields domain.IncidentFields,
	pdfText string,
) (domain.AnalysisResult, error) {
	user, ok := ac.User()
	if !ok {
		return domain.AnalysisResult{}, domain.WrapError(domain.ErrUnauthorized, "generate analysis", errors.New("no authenticated user"))
	}
	if err := fields.Validate(); err != nil {
		return domain.AnalysisResult{}, err
	}
	if strings.TrimSpace(pdfText) == "" {
		return domain.AnalysisResult{}, domain.WrapError(domain.ErrInvalidInput, "generate analysis", errors.New("pdf text is required"))
	}

	summary := uc.summarize(ctx, pdfText)

	analysis, err := uc.analyst.Analyze(ctx, fields)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("generate incident analysis: %w", err)
	}

	record := &domain.IncidentAnalysis{
		IncidentFields: fields,
		Summary:        summary,
		UserID:         user.ID,
	}
	if err := uc.repo.CreateAnalysis(ctx, record); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("persist incident analysis: %w", err)
	}

	uc.publishCreated(ctx, record.ID)

	return domain.AnalysisResult{
		Summary:  summary,
		Analysis: analysis,
		ID:       record.ID,
	}, nil
}

// summarize never fails: provider errors collapse into the degraded
// placeholder so record creation can still proceed.
func (uc *GenerateAnalysisUseCase) summarize(ctx context.Context, pdfText string) string {
	summary, err := uc.analyst.Summarize(ctx, pdfText)
	if err != nil {
		return SummaryDegradedPrefix + failureReason(err)
	}
	return summary
}

// publishCreated is best-effort: the record is already durable, a lost
// event must not fail the caller.
func (uc *GenerateAnalysisUseCase) publishCreated(ctx context.Context, analysisID string) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishAnalysisCreated(ctx, analysisID); err != nil {
		slog.Warn("analysis_created_publish_failed", "analysis_id", analysisID, "error", err)
	}
}

func failureReason(err error) string {
	if err == nil || strings.TrimSpace(err.Error()) == "" {
		return processingFailedMessage
	}
	return err.Error()
}
