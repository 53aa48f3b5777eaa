package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vlasenko/incident-analyst/internal/core/auth"
	"github.com/vlasenko/incident-analyst/internal/core/domain"
	"github.com/vlasenko/incident-analyst/internal/core/ports"
)

type ExtractFieldsUseCase struct {
	extractor ports.FieldExtractor
}

func NewExtractFieldsUseCase(extractor ports.FieldExtractor) *ExtractFieldsUseCase {
	return &ExtractFieldsUseCase{extractor: extractor}
}

// Extract asks the provider for the five structured incident fields.
// Auth and input checks happen before any outbound call; the provider
// result passes through the domain defaulting step exactly once.
func (uc *ExtractFieldsUseCase) Extract(ctx context.Context, ac auth.Context, pdfText string) (domain.ExtractedFields, error) {
	if _, ok := ac.User(); !ok {
		return domain.ExtractedFields{}, domain.WrapError(domain.ErrUnauthorized, "extract fields", errors.New("no authenticated user"))
	}
	if strings.TrimSpace(pdfText) == "" {
		return domain.ExtractedFields{}, domain.WrapError(domain.ErrInvalidInput, "extract fields", errors.New("pdf text is required"))
	}

	fields, err := uc.extractor.ExtractFields(ctx, pdfText)
	if err != nil {
		return domain.ExtractedFields{}, fmt.Errorf("extract incident fields: %w", err)
	}
	return domain.ApplyExtractionDefaults(fields), nil
}
