package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vlasenko/incident-analyst/internal/core/domain"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) CreateReport(ctx context.Context, report *domain.Report) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO reports (
	id, filename, mime_type, storage_path, user_id, status, pdf_text, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		report.ID, report.Filename, report.MimeType, report.StoragePath, report.UserID,
		string(report.Status), report.PDFText, report.Error, report.CreatedAt, report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *ReportRepository) GetReportByID(ctx context.Context, id string) (*domain.Report, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, mime_type, storage_path, user_id, status, pdf_text, error_message, created_at, updated_at
FROM reports
WHERE id = $1
`, id)

	var report domain.Report
	var status string
	err := row.Scan(
		&report.ID, &report.Filename, &report.MimeType, &report.StoragePath, &report.UserID,
		&status, &report.PDFText, &report.Error, &report.CreatedAt, &report.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrReportNotFound, "get report", fmt.Errorf("report %s", id))
		}
		return nil, fmt.Errorf("scan report: %w", err)
	}
	report.Status = domain.ReportStatus(status)
	return &report, nil
}

func (r *ReportRepository) UpdateReportStatus(ctx context.Context, id string, status domain.ReportStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE reports
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	return ensureRowUpdated(result, id)
}

func (r *ReportRepository) SaveReportText(ctx context.Context, id string, text string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE reports
SET pdf_text = $2, updated_at = $3
WHERE id = $1
`, id, text, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save report text: %w", err)
	}
	return ensureRowUpdated(result, id)
}

func ensureRowUpdated(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrReportNotFound, "update report", fmt.Errorf("report %s", id))
	}
	return nil
}
