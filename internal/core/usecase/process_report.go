package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/vlasenko/incident-analyst/internal/core/domain"
	"github.com/vlasenko/incident-analyst/internal/core/ports"
)

type ProcessReportUseCase struct {
	repo      ports.ReportRepository
	extractor ports.TextExtractor
}

func NewProcessReportUseCase(repo ports.ReportRepository, extractor ports.TextExtractor) *ProcessReportUseCase {
	return &ProcessReportUseCase{repo: repo, extractor: extractor}
}

// ProcessByID extracts the report's text and moves it to ready, or
// records the failure on the report row.
func (uc *ProcessReportUseCase) ProcessByID(ctx context.Context, reportID string) error {
	if err := uc.repo.UpdateReportStatus(ctx, reportID, domain.ReportProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.extractAndSave(ctx, reportID); err != nil {
		if failErr := uc.repo.UpdateReportStatus(ctx, reportID, domain.ReportFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.UpdateReportStatus(ctx, reportID, domain.ReportReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessReportUseCase) extractAndSave(ctx context.Context, reportID string) error {
	report, err := uc.repo.GetReportByID(ctx, reportID)
	if err != nil {
		return fmt.Errorf("fetch report by id: %w", err)
	}

	text, err := uc.extractor.Extract(ctx, report)
	if err != nil {
		return fmt.Errorf("extract report text: %w", err)
	}
	if text == "" {
		return domain.WrapError(domain.ErrInvalidInput, "extract report text", errors.New("document contains no text"))
	}

	if err := uc.repo.SaveReportText(ctx, reportID, text); err != nil {
		return fmt.Errorf("save report text: %w", err)
	}
	return nil
}
