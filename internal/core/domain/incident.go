package domain

import (
	"strings"
	"time"
)

// NotSpecified is the fallback value for incident fields the provider
// could not extract from the report text.
const NotSpecified = "Not specified"

// IncidentFields are the structured attributes of a workplace incident.
type IncidentFields struct {
	DateOfInjury             string   `json:"dateOfInjury"`
	LocationOfIncident       string   `json:"locationOfIncident"`
	CauseOfIncident          string   `json:"causeOfIncident"`
	TypeOfIncident           string   `json:"typeOfIncident"`
	StatutoryViolationsCited []string `json:"statutoryViolationsCited"`
}

// Validate reports whether all required incident fields are present.
func (f IncidentFields) Validate() error {
	for name, value := range map[string]string{
		"dateOfInjury":       f.DateOfInjury,
		"locationOfIncident": f.LocationOfIncident,
		"causeOfIncident":    f.CauseOfIncident,
		"typeOfIncident":     f.TypeOfIncident,
	} {
		if strings.TrimSpace(value) == "" {
			return WrapError(ErrInvalidInput, "validate incident fields", missingFieldError(name))
		}
	}
	if len(f.StatutoryViolationsCited) == 0 {
		return WrapError(ErrInvalidInput, "validate incident fields", missingFieldError("statutoryViolationsCited"))
	}
	return nil
}

// ExtractedFields is the transient result of field extraction. It is
// never persisted; callers feed it back into analysis generation.
type ExtractedFields = IncidentFields

// ApplyExtractionDefaults is the single defaulting step for extractor
// output: blank string fields become NotSpecified, an absent or empty
// violations list becomes a one-element NotSpecified list.
func ApplyExtractionDefaults(f ExtractedFields) ExtractedFields {
	for _, field := range []*string{
		&f.DateOfInjury,
		&f.LocationOfIncident,
		&f.CauseOfIncident,
		&f.TypeOfIncident,
	} {
		if strings.TrimSpace(*field) == "" {
			*field = NotSpecified
		}
	}
	if len(f.StatutoryViolationsCited) == 0 {
		f.StatutoryViolationsCited = []string{NotSpecified}
	}
	return f
}

// IncidentAnalysis is the persisted result of a successful generation.
// Records are insert-only; no update path exists in this pipeline.
type IncidentAnalysis struct {
	ID string `json:"id"`
	IncidentFields
	Summary   string    `json:"summary"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnalysisResult is returned to the caller of analysis generation. The
// analysis narrative itself is not persisted, only the summary is.
type AnalysisResult struct {
	Summary  string `json:"summary"`
	Analysis string `json:"analysis"`
	ID       string `json:"id"`
}

// User is the opaque identity resolved by the identity provider.
type User struct {
	ID string `json:"id"`
}
