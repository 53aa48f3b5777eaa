package domain

import "time"

type ReportStatus string

const (
	ReportUploaded   ReportStatus = "uploaded"
	ReportProcessing ReportStatus = "processing"
	ReportReady      ReportStatus = "ready"
	ReportFailed     ReportStatus = "failed"
)

// Report is an uploaded incident document awaiting (or holding) its
// extracted text. The analysis pipeline itself only ever sees PDFText.
type Report struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	MimeType    string       `json:"mime_type"`
	StoragePath string       `json:"storage_path"`
	UserID      string       `json:"user_id"`
	Status      ReportStatus `json:"status"`
	PDFText     string       `json:"pdf_text,omitempty"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
