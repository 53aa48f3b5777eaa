package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vlasenko/incident-analyst/internal/core/auth"
	"github.com/vlasenko/incident-analyst/internal/core/domain"
)

type analystFake struct {
	summary        string
	summarizeErr   error
	analysis       string
	analyzeErr     error
	summarizeCalls int
	analyzeCalls   int
}

func (f *analystFake) Summarize(context.Context, string) (string, error) {
	f.summarizeCalls++
	if f.summarizeErr != nil {
		return "", f.summarizeErr
	}
	return f.summary, nil
}

func (f *analystFake) Analyze(context.Context, domain.IncidentFields) (string, error) {
	f.analyzeCalls++
	if f.analyzeErr != nil {
		return "", f.analyzeErr
	}
	return f.analysis, nil
}

type incidentRepoFake struct {
	created   []*domain.IncidentAnalysis
	createErr error
}

func (f *incidentRepoFake) CreateAnalysis(_ context.Context, record *domain.IncidentAnalysis) error {
	if f.createErr != nil {
		return f.createErr
	}
	record.ID = fmt.Sprintf("analysis-%d", len(f.created)+1)
	f.created = append(f.created, record)
	return nil
}

func (f *incidentRepoFake) ListAnalysesByUser(context.Context, string, int) ([]domain.IncidentAnalysis, error) {
	return nil, nil
}

type eventsFake struct {
	analysisIDs []string
	err         error
}

func (f *eventsFake) PublishReportUploaded(context.Context, string) error { return nil }

func (f *eventsFake) PublishAnalysisCreated(_ context.Context, analysisID string) error {
	if f.err != nil {
		return f.err
	}
	f.analysisIDs = append(f.analysisIDs, analysisID)
	return nil
}

func validFields() domain.IncidentFields {
	return domain.IncidentFields{
		DateOfInjury:             "2024-01-15",
		LocationOfIncident:       "Site A",
		CauseOfIncident:          "Fall",
		TypeOfIncident:           "Accident",
		StatutoryViolationsCited: []string{"OSHA 1926.451"},
	}
}

func TestGenerateSuccess(t *testing.T) {
	analyst := &analystFake{summary: "S", analysis: "A"}
	repo := &incidentRepoFake{}
	events := &eventsFake{}
	uc := NewGenerateAnalysisUseCase(analyst, repo, events)

	result, err := uc.Generate(context.Background(), authedCtx(), validFields(), "worker fell...")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Summary != "S" || result.Analysis != "A" || result.ID != "analysis-1" {
		t.Fatalf("unexpected result: %+v", result)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected one persisted record, got %d", len(repo.created))
	}
	record := repo.created[0]
	if record.Summary != "S" || record.UserID != "user-1" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.DateOfInjury != "2024-01-15" || record.TypeOfIncident != "Accident" {
		t.Fatalf("input fields not carried onto record: %+v", record)
	}
	if len(events.analysisIDs) != 1 || events.analysisIDs[0] != "analysis-1" {
		t.Fatalf("expected created event, got %v", events.analysisIDs)
	}
}

func TestGenerateCreatesDistinctRecordsPerCall(t *testing.T) {
	repo := &incidentRepoFake{}
	uc := NewGenerateAnalysisUseCase(&analystFake{summary: "S", analysis: "A"}, repo, &eventsFake{})

	first, err := uc.Generate(context.Background(), authedCtx(), validFields(), "worker fell...")
	if err != nil {
		t.Fatalf("first Generate() error = %v", err)
	}
	second, err := uc.Generate(context.Background(), authedCtx(), validFields(), "worker fell...")
	if err != nil {
		t.Fatalf("second Generate() error = %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("identical inputs must create distinct records, both got %s", first.ID)
	}
	if len(repo.created) != 2 {
		t.Fatalf("expected two persisted records, got %d", len(repo.created))
	}
}

func TestGenerateDegradesSummaryButStillPersists(t *testing.T) {
	analyst := &analystFake{
		summarizeErr: errors.New("openai summary status: 502 Bad Gateway"),
		analysis:     "A",
	}
	repo := &incidentRepoFake{}
	uc := NewGenerateAnalysisUseCase(analyst, repo, &eventsFake{})

	result, err := uc.Generate(context.Background(), authedCtx(), validFields(), "worker fell...")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.HasPrefix(result.Summary, SummaryDegradedPrefix) {
		t.Fatalf("expected degraded summary placeholder, got %q", result.Summary)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected record persisted despite degraded summary, got %d", len(repo.created))
	}
	if !strings.HasPrefix(repo.created[0].Summary, SummaryDegradedPrefix) {
		t.Fatalf("expected degraded summary persisted, got %q", repo.created[0].Summary)
	}
}

func TestGenerateAbortsOnAnalysisFailure(t *testing.T) {
	analyst := &analystFake{
		summary:    "S",
		analyzeErr: domain.WrapError(domain.ErrProvider, "analyze", errors.New("no analysis generated")),
	}
	repo := &incidentRepoFake{}
	uc := NewGenerateAnalysisUseCase(analyst, repo, &eventsFake{})

	_, err := uc.Generate(context.Background(), authedCtx(), validFields(), "worker fell...")
	if !domain.IsKind(err, domain.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no record persisted, got %d", len(repo.created))
	}
}

func TestGenerateRequiresAuthentication(t *testing.T) {
	analyst := &analystFake{summary: "S", analysis: "A"}
	repo := &incidentRepoFake{}
	uc := NewGenerateAnalysisUseCase(analyst, repo, &eventsFake{})

	_, err := uc.Generate(context.Background(), auth.Anonymous(), validFields(), "worker fell...")
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if analyst.summarizeCalls != 0 || analyst.analyzeCalls != 0 {
		t.Fatalf("expected zero provider calls")
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected zero store writes")
	}
}

func TestGenerateValidatesInputBeforeAnyCall(t *testing.T) {
	analyst := &analystFake{summary: "S", analysis: "A"}
	uc := NewGenerateAnalysisUseCase(analyst, &incidentRepoFake{}, &eventsFake{})

	missingCause := validFields()
	missingCause.CauseOfIncident = ""
	if _, err := uc.Generate(context.Background(), authedCtx(), missingCause, "text"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing cause, got %v", err)
	}

	noViolations := validFields()
	noViolations.StatutoryViolationsCited = nil
	if _, err := uc.Generate(context.Background(), authedCtx(), noViolations, "text"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty violations, got %v", err)
	}

	if _, err := uc.Generate(context.Background(), authedCtx(), validFields(), ""); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty pdf text, got %v", err)
	}

	if analyst.summarizeCalls != 0 || analyst.analyzeCalls != 0 {
		t.Fatalf("expected zero provider calls, got summarize=%d analyze=%d", analyst.summarizeCalls, analyst.analyzeCalls)
	}
}

func TestGeneratePropagatesStoreFailure(t *testing.T) {
	repo := &incidentRepoFake{createErr: errors.New("insert incident analysis: connection refused")}
	uc := NewGenerateAnalysisUseCase(&analystFake{summary: "S", analysis: "A"}, repo, &eventsFake{})

	_, err := uc.Generate(context.Background(), authedCtx(), validFields(), "worker fell...")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "persist incident analysis") {
		t.Fatalf("expected persistence context in error, got %v", err)
	}
}

func TestGenerateSucceedsWhenEventPublishFails(t *testing.T) {
	repo := &incidentRepoFake{}
	uc := NewGenerateAnalysisUseCase(
		&analystFake{summary: "S", analysis: "A"},
		repo,
		&eventsFake{err: errors.New("nats publish: no servers")},
	)

	result, err := uc.Generate(context.Background(), authedCtx(), validFields(), "worker fell...")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.ID == "" || len(repo.created) != 1 {
		t.Fatalf("expected persisted record despite publish failure")
	}
}
