package ports

import (
	"context"
	"io"

	"github.com/vlasenko/incident-analyst/internal/core/auth"
	"github.com/vlasenko/incident-analyst/internal/core/domain"
)

// FieldExtractionService is the inbound contract for structured field
// extraction from raw report text.
type FieldExtractionService interface {
	Extract(ctx context.Context, ac auth.Context, pdfText string) (domain.ExtractedFields, error)
}

// AnalysisService is the inbound contract for summary/analysis
// generation and persistence.
type AnalysisService interface {
	Generate(ctx context.Context, ac auth.Context, fields domain.IncidentFields, pdfText string) (domain.AnalysisResult, error)
}

// HistoryService is the inbound read model for a caller's saved
// analyses.
type HistoryService interface {
	List(ctx context.Context, ac auth.Context) ([]domain.IncidentAnalysis, error)
}

// ReportIngestor is the inbound contract for report upload
// orchestration.
type ReportIngestor interface {
	Upload(ctx context.Context, ac auth.Context, filename, mimeType string, body io.Reader) (*domain.Report, error)
}

// ReportReader is the inbound read model for report state.
type ReportReader interface {
	Get(ctx context.Context, ac auth.Context, reportID string) (*domain.Report, error)
}

// ReportProcessor is the inbound contract for asynchronous text
// extraction of uploaded reports.
type ReportProcessor interface {
	ProcessByID(ctx context.Context, reportID string) error
}

// HistoryExporter renders a caller's history window as a downloadable
// workbook.
type HistoryExporter interface {
	ExportHistoryXLSX(ctx context.Context, ac auth.Context) ([]byte, error)
}
