package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vlasenko/incident-analyst/internal/core/auth"
	"github.com/vlasenko/incident-analyst/internal/core/domain"
)

type historyFake struct {
	records []domain.IncidentAnalysis
	err     error
}

func (h *historyFake) List(_ context.Context, _ auth.Context) ([]domain.IncidentAnalysis, error) {
	return h.records, h.err
}

func TestExportHistoryXLSXWritesOneRowPerRecord(t *testing.T) {
	created := time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)
	history := &historyFake{records: []domain.IncidentAnalysis{
		{
			ID: "a-1",
			IncidentFields: domain.IncidentFields{
				DateOfInjury:             "2024-01-15",
				LocationOfIncident:       "Site A",
				CauseOfIncident:          "Fall",
				TypeOfIncident:           "Accident",
				StatutoryViolationsCited: []string{"OSHA 1926.451", "OSHA 1926.501"},
			},
			Summary:   "A summary.",
			CreatedAt: created,
		},
	}}

	data, err := NewService(history, nil).ExportHistoryXLSX(context.Background(), auth.Authenticated(domain.User{ID: "user-1"}))
	if err != nil {
		t.Fatalf("ExportHistoryXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Analyses")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d rows", len(rows))
	}
	if rows[0][0] != "Created At" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	got := rows[1]
	if got[1] != "2024-01-15" || got[2] != "Site A" || got[5] != "OSHA 1926.451; OSHA 1926.501" || got[6] != "A summary." {
		t.Fatalf("unexpected row: %v", got)
	}
}

func TestExportHistoryXLSXPropagatesHistoryError(t *testing.T) {
	history := &historyFake{err: domain.WrapError(domain.ErrUnauthorized, "list history", errors.New("no authenticated user"))}

	_, err := NewService(history, nil).ExportHistoryXLSX(context.Background(), auth.Anonymous())
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestExportHistoryXLSXEmptyHistory(t *testing.T) {
	data, err := NewService(&historyFake{}, nil).ExportHistoryXLSX(context.Background(), auth.Authenticated(domain.User{ID: "user-1"}))
	if err != nil {
		t.Fatalf("ExportHistoryXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Analyses")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}
