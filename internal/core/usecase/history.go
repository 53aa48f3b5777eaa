package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/vlasenko/incident-analyst/internal/core/auth"
	"github.com/vlasenko/incident-analyst/internal/core/domain"
	"github.com/vlasenko/incident-analyst/internal/core/ports"
)

// HistoryLimit is the fixed read window: the most recent records, no
// pagination cursor.
const HistoryLimit = 10

type HistoryUseCase struct {
	repo ports.IncidentRepository
}

func NewHistoryUseCase(repo ports.IncidentRepository) *HistoryUseCase {
	return &HistoryUseCase{repo: repo}
}

// List returns the caller's saved analyses, newest first.
func (uc *HistoryUseCase) List(ctx context.Context, ac auth.Context) ([]domain.IncidentAnalysis, error) {
	user, ok := ac.User()
	if !ok {
		return nil, domain.WrapError(domain.ErrUnauthorized, "list history", errors.New("no authenticated user"))
	}

	records, err := uc.repo.ListAnalysesByUser(ctx, user.ID, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list analysis history: %w", err)
	}
	return records, nil
}
