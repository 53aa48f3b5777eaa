package openai

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/vlasenko/incident-analyst/internal/core/domain"
)

const (
	extractionTemperature = 0.1
	extractionMaxTokens   = 500
)

// Extractor implements ports.FieldExtractor.
type Extractor struct {
	client *Client
}

func NewExtractor(client *Client) *Extractor {
	return &Extractor{client: client}
}

func (e *Extractor) ExtractFields(ctx context.Context, pdfText string) (domain.ExtractedFields, error) {
	content, err := e.client.complete(ctx, "extract",
		[]chatMessage{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: buildExtractionPrompt(pdfText)},
		},
		extractionTemperature, extractionMaxTokens,
	)
	if err != nil {
		return domain.ExtractedFields{}, err
	}
	if content == "" {
		return domain.ExtractedFields{}, domain.WrapError(domain.ErrProvider, "extract", errors.New("no fields extracted"))
	}

	// The raw content never travels past this point: a caller seeing
	// the parse error must not see unparseable provider output.
	var payload struct {
		DateOfInjury             string          `json:"dateOfInjury"`
		LocationOfIncident       string          `json:"locationOfIncident"`
		CauseOfIncident          string          `json:"causeOfIncident"`
		TypeOfIncident           string          `json:"typeOfIncident"`
		StatutoryViolationsCited json.RawMessage `json:"statutoryViolationsCited"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(content)), &payload); err != nil {
		return domain.ExtractedFields{}, domain.WrapError(domain.ErrProvider, "extract", errors.New("failed to parse extracted fields"))
	}

	fields := domain.ExtractedFields{
		DateOfInjury:       payload.DateOfInjury,
		LocationOfIncident: payload.LocationOfIncident,
		CauseOfIncident:    payload.CauseOfIncident,
		TypeOfIncident:     payload.TypeOfIncident,
	}
	// A violations value of the wrong shape is treated as absent, not
	// as a parse failure; the defaulting step fills it in.
	var violations []string
	if len(payload.StatutoryViolationsCited) > 0 {
		if err := json.Unmarshal(payload.StatutoryViolationsCited, &violations); err != nil {
			violations = nil
		}
	}
	fields.StatutoryViolationsCited = violations

	return fields, nil
}
