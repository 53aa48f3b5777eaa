// Package export produces XLSX workbooks from a user's analysis
// history.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vlasenko/incident-analyst/internal/core/auth"
	"github.com/vlasenko/incident-analyst/internal/core/domain"
	"github.com/vlasenko/incident-analyst/internal/core/ports"
)

// HistoryLister is the slice of the history reader the exporter needs.
type HistoryLister interface {
	List(ctx context.Context, ac auth.Context) ([]domain.IncidentAnalysis, error)
}

// Service turns the caller's history window into XLSX bytes. It reads
// through the same history use case as the JSON endpoint, so the export
// always matches what the caller would see on screen.
type Service struct {
	history HistoryLister
	logger  *slog.Logger
}

var _ ports.HistoryExporter = (*Service)(nil)

func NewService(history HistoryLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{history: history, logger: logger}
}

func (s *Service) ExportHistoryXLSX(ctx context.Context, ac auth.Context) ([]byte, error) {
	start := time.Now()

	records, err := s.history.List(ctx, ac)
	if err != nil {
		return nil, fmt.Errorf("load history for export: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Analyses"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headers := []string{
		"Created At",
		"Date Of Injury",
		"Location",
		"Cause",
		"Type",
		"Violations Cited",
		"Summary",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, record := range records {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, record.CreatedAt.UTC().Format("2006-01-02 15:04"))
		write(2, record.DateOfInjury)
		write(3, record.LocationOfIncident)
		write(4, record.CauseOfIncident)
		write(5, record.TypeOfIncident)
		write(6, strings.Join(record.StatutoryViolationsCited, "; "))
		write(7, record.Summary)
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "E", 22)
	_ = f.SetColWidth(sheet, "F", "F", 36)
	_ = f.SetColWidth(sheet, "G", "G", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("history_export_ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
