package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-request-api/internal/models"
)

// StatsRepository aggregates counts for the admin dashboard.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs the repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

type roleCount struct {
	Role  models.UserRole `db:"role"`
	Count int             `db:"count"`
}

type statusCount struct {
	Status models.RequestStatus `db:"status"`
	Count  int                  `db:"count"`
}

// CountUsersByRole returns a user count per role.
func (r *StatsRepository) CountUsersByRole(ctx context.Context) (map[models.UserRole]int, error) {
	var rows []roleCount
	const query = `SELECT role, COUNT(*) AS count FROM users GROUP BY role`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}
	counts := make(map[models.UserRole]int, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

// CountRequestsByStatus returns a per-status count for one request table.
// Drafts are included so the dashboard can surface in-progress forms.
func (r *StatsRepository) CountRequestsByStatus(ctx context.Context, requestType models.RequestType) (map[models.RequestStatus]int, error) {
	table, err := tableForType(requestType)
	if err != nil {
		return nil, err
	}
	var rows []statusCount
	query := fmt.Sprintf(`SELECT status, COUNT(*) AS count FROM %s GROUP BY status`, table)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count %s by status: %w", table, err)
	}
	counts := make(map[models.RequestStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func tableForType(t models.RequestType) (string, error) {
	switch t {
	case models.TypeAddSeat:
		return "add_seat_requests", nil
	case models.TypeOpenCourse:
		return "open_course_requests", nil
	case models.TypeGeneralPetition:
		return "general_petitions", nil
	}
	return "", fmt.Errorf("unknown request type %q", t)
}
