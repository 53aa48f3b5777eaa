package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vlasenko/incident-analyst/internal/core/auth"
	"github.com/vlasenko/incident-analyst/internal/core/domain"
)

type historyRepoFake struct {
	records []domain.IncidentAnalysis
	err     error

	gotUserID string
	gotLimit  int
}

func (f *historyRepoFake) CreateAnalysis(context.Context, *domain.IncidentAnalysis) error {
	return nil
}

func (f *historyRepoFake) ListAnalysesByUser(_ context.Context, userID string, limit int) ([]domain.IncidentAnalysis, error) {
	f.gotUserID = userID
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func TestHistoryRequiresAuthentication(t *testing.T) {
	repo := &historyRepoFake{}
	uc := NewHistoryUseCase(repo)

	_, err := uc.List(context.Background(), auth.Anonymous())
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if repo.gotUserID != "" {
		t.Fatalf("expected no store read for anonymous caller")
	}
}

func TestHistoryScopesToCallerWithFixedWindow(t *testing.T) {
	now := time.Now().UTC()
	repo := &historyRepoFake{records: []domain.IncidentAnalysis{
		{ID: "a-2", UserID: "user-1", CreatedAt: now},
		{ID: "a-1", UserID: "user-1", CreatedAt: now.Add(-time.Hour)},
	}}
	uc := NewHistoryUseCase(repo)

	records, err := uc.List(context.Background(), authedCtx())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if repo.gotUserID != "user-1" {
		t.Fatalf("expected read scoped to user-1, got %q", repo.gotUserID)
	}
	if repo.gotLimit != HistoryLimit {
		t.Fatalf("expected limit %d, got %d", HistoryLimit, repo.gotLimit)
	}
	if len(records) != 2 || records[0].ID != "a-2" {
		t.Fatalf("expected repo order preserved, got %+v", records)
	}
}

func TestHistoryPropagatesStoreFailure(t *testing.T) {
	uc := NewHistoryUseCase(&historyRepoFake{err: errors.New("query analyses: timeout")})

	_, err := uc.List(context.Background(), authedCtx())
	if err == nil {
		t.Fatalf("expected error")
	}
}
