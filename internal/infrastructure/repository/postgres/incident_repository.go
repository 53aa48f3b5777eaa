package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vlasenko/incident-analyst/internal/core/domain"
)

type IncidentRepository struct {
	db *sql.DB
}

func NewIncidentRepository(db *sql.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

// CreateAnalysis inserts a new record, assigning identity and both
// timestamps. Records are never updated afterwards.
func (r *IncidentRepository) CreateAnalysis(ctx context.Context, record *domain.IncidentAnalysis) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	violationsJSON, err := json.Marshal(record.StatutoryViolationsCited)
	if err != nil {
		return fmt.Errorf("marshal violations: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO incident_analyses (
	id, date_of_injury, location_of_incident, cause_of_incident, type_of_incident,
	statutory_violations_cited, summary, user_id, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		record.ID, record.DateOfInjury, record.LocationOfIncident, record.CauseOfIncident,
		record.TypeOfIncident, violationsJSON, record.Summary, record.UserID,
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert incident analysis: %w", err)
	}
	return nil
}

// ListAnalysesByUser returns the caller's most recent records, newest
// first. An empty history is a valid, empty slice.
func (r *IncidentRepository) ListAnalysesByUser(ctx context.Context, userID string, limit int) ([]domain.IncidentAnalysis, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, date_of_injury, location_of_incident, cause_of_incident, type_of_incident,
	statutory_violations_cited, summary, user_id, created_at, updated_at
FROM incident_analyses
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query incident analyses: %w", err)
	}
	defer rows.Close()

	records := make([]domain.IncidentAnalysis, 0, limit)
	for rows.Next() {
		var record domain.IncidentAnalysis
		var violationsRaw []byte
		if err := rows.Scan(
			&record.ID, &record.DateOfInjury, &record.LocationOfIncident, &record.CauseOfIncident,
			&record.TypeOfIncident, &violationsRaw, &record.Summary, &record.UserID,
			&record.CreatedAt, &record.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan incident analysis: %w", err)
		}
		if err := json.Unmarshal(violationsRaw, &record.StatutoryViolationsCited); err != nil {
			return nil, fmt.Errorf("unmarshal violations: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incident analyses: %w", err)
	}
	return records, nil
}
