package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/vlasenko/incident-analyst/internal/core/domain"
)

func newReportRepoWithMock(t *testing.T) (*ReportRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ReportRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetReportByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newReportRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, filename, mime_type, storage_path").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetReportByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateReportStatusReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newReportRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE reports").
		WithArgs("missing", string(domain.ReportProcessing), "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateReportStatus(context.Background(), "missing", domain.ReportProcessing, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveReportTextUpdatesRow(t *testing.T) {
	repo, mock, done := newReportRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE reports").
		WithArgs("report-1", "extracted text", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SaveReportText(context.Background(), "report-1", "extracted text"); err != nil {
		t.Fatalf("SaveReportText() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
