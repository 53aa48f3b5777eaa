package ports

import (
	"context"
	"io"
	"time"

	"github.com/vlasenko/incident-analyst/internal/core/domain"
)

// IncidentRepository persists and reads analysis records.
type IncidentRepository interface {
	CreateAnalysis(ctx context.Context, record *domain.IncidentAnalysis) error
	ListAnalysesByUser(ctx context.Context, userID string, limit int) ([]domain.IncidentAnalysis, error)
}

// ReportRepository persists and reads uploaded report state.
type ReportRepository interface {
	CreateReport(ctx context.Context, report *domain.Report) error
	GetReportByID(ctx context.Context, id string) (*domain.Report, error)
	UpdateReportStatus(ctx context.Context, id string, status domain.ReportStatus, errMessage string) error
	SaveReportText(ctx context.Context, id string, text string) error
}

// FieldExtractor asks the language model for the five structured
// incident fields.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, pdfText string) (domain.ExtractedFields, error)
}

// IncidentAnalyst produces prose from incident material. Summarize and
// Analyze are independent provider calls with different prompts and
// generation settings.
type IncidentAnalyst interface {
	Summarize(ctx context.Context, pdfText string) (string, error)
	Analyze(ctx context.Context, fields domain.IncidentFields) (string, error)
}

// IdentityProvider resolves a bearer token to an opaque user.
type IdentityProvider interface {
	UserForToken(ctx context.Context, token string) (domain.User, error)
}

// ObjectStorage stores uploaded report files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// EventPublisher emits pipeline events.
type EventPublisher interface {
	PublishReportUploaded(ctx context.Context, reportID string) error
	PublishAnalysisCreated(ctx context.Context, analysisID string) error
}

// EventSubscriber feeds uploaded-report events to the worker. The
// handler's uploadedAt argument is zero when the event carried no
// publish timestamp.
type EventSubscriber interface {
	SubscribeReportUploaded(ctx context.Context, handler func(ctx context.Context, reportID string, uploadedAt time.Time) error) error
}

// TextExtractor extracts plain text from a stored report.
type TextExtractor interface {
	Extract(ctx context.Context, report *domain.Report) (string, error)
}
