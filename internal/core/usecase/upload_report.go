package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vlasenko/incident-analyst/internal/core/auth"
	"github.com/vlasenko/incident-analyst/internal/core/domain"
	"github.com/vlasenko/incident-analyst/internal/core/ports"
)

type UploadReportUseCase struct {
	repo    ports.ReportRepository
	storage ports.ObjectStorage
	events  ports.EventPublisher
}

func NewUploadReportUseCase(
	repo ports.ReportRepository,
	storage ports.ObjectStorage,
	events ports.EventPublisher,
) *UploadReportUseCase {
	return &UploadReportUseCase{
		repo:    repo,
		storage: storage,
		events:  events,
	}
}

// Upload stores the raw file, records the report, and hands text
// extraction to the worker via the queue.
func (uc *UploadReportUseCase) Upload(
	ctx context.Context,
	ac auth.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Report, error) {
	user, ok := ac.User()
	if !ok {
		return nil, domain.WrapError(domain.ErrUnauthorized, "upload report", errors.New("no authenticated user"))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save report file: %w", err)
	}

	report := &domain.Report{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		UserID:      user.ID,
		Status:      domain.ReportUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.CreateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("create report record: %w", err)
	}

	if err := uc.events.PublishReportUploaded(ctx, report.ID); err != nil {
		return nil, fmt.Errorf("publish report uploaded event: %w", err)
	}

	return report, nil
}

// Get returns a report only to its owner.
func (uc *UploadReportUseCase) Get(ctx context.Context, ac auth.Context, reportID string) (*domain.Report, error) {
	user, ok := ac.User()
	if !ok {
		return nil, domain.WrapError(domain.ErrUnauthorized, "get report", errors.New("no authenticated user"))
	}

	report, err := uc.repo.GetReportByID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("fetch report: %w", err)
	}
	if report.UserID != user.ID {
		return nil, domain.WrapError(domain.ErrReportNotFound, "get report", errors.New("report owned by another user"))
	}
	return report, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "report.pdf"
	}
	return base
}
