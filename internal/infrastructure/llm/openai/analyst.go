package openai

import (
	"context"
	"errors"

	"github.com/vlasenko/incident-analyst/internal/core/domain"
)

const (
	summaryTemperature = 0.3
	summaryMaxTokens   = 300

	analysisTemperature = 0.7
	analysisMaxTokens   = 800
)

// Analyst implements ports.IncidentAnalyst. Summarize is the
// low-temperature factual pass, Analyze the longer generative one.
type Analyst struct {
	client *Client
}

func NewAnalyst(client *Client) *Analyst {
	return &Analyst{client: client}
}

func (a *Analyst) Summarize(ctx context.Context, pdfText string) (string, error) {
	content, err := a.client.complete(ctx, "summary",
		[]chatMessage{
			{Role: "system", Content: summarySystemPrompt},
			{Role: "user", Content: buildSummaryPrompt(pdfText)},
		},
		summaryTemperature, summaryMaxTokens,
	)
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", domain.WrapError(domain.ErrProvider, "summary", errors.New("no summary generated"))
	}
	return content, nil
}

func (a *Analyst) Analyze(ctx context.Context, fields domain.IncidentFields) (string, error) {
	content, err := a.client.complete(ctx, "analysis",
		[]chatMessage{
			{Role: "system", Content: analysisSystemPrompt},
			{Role: "user", Content: buildAnalysisPrompt(fields)},
		},
		analysisTemperature, analysisMaxTokens,
	)
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", domain.WrapError(domain.ErrProvider, "analysis", errors.New("no analysis generated"))
	}
	return content, nil
}
