package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-request-api/internal/models"
)

const addSeatColumns = `id, semester, academic_year, date, month, year, lecturer,
       student_name, student_id, level_of_study, faculty, field_of_study, class_level,
       course_code, course_title, section, credits, day, time, room, contact_number,
       email, signature, status, instructor_comment, owner_id, created_at, updated_at`

// AddSeatRepository persists add-seat requests.
type AddSeatRepository struct {
	db *sqlx.DB
}

// NewAddSeatRepository constructs the repository.
func NewAddSeatRepository(db *sqlx.DB) *AddSeatRepository {
	return &AddSeatRepository{db: db}
}

// Create inserts a new request row.
func (r *AddSeatRepository) Create(ctx context.Context, req *models.AddSeatRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	const query = `INSERT INTO add_seat_requests
	(id, semester, academic_year, date, month, year, lecturer, student_name, student_id,
	 level_of_study, faculty, field_of_study, class_level, course_code, course_title,
	 section, credits, day, time, room, contact_number, email, signature, status,
	 instructor_comment, owner_id, created_at, updated_at)
	VALUES (:id, :semester, :academic_year, :date, :month, :year, :lecturer, :student_name, :student_id,
	 :level_of_study, :faculty, :field_of_study, :class_level, :course_code, :course_title,
	 :section, :credits, :day, :time, :room, :contact_number, :email, :signature, :status,
	 :instructor_comment, :owner_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create add-seat request: %w", err)
	}
	return nil
}

// GetByID fetches one request.
func (r *AddSeatRepository) GetByID(ctx context.Context, id string) (*models.AddSeatRequest, error) {
	query := `SELECT ` + addSeatColumns + ` FROM add_seat_requests WHERE id = $1`
	var req models.AddSeatRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListByOwner returns the owner's non-draft requests, newest first.
func (r *AddSeatRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.AddSeatRequest, error) {
	query := `SELECT ` + addSeatColumns + ` FROM add_seat_requests
	WHERE owner_id = $1 AND status <> $2 ORDER BY created_at DESC`
	var reqs []models.AddSeatRequest
	if err := r.db.SelectContext(ctx, &reqs, query, ownerID, models.StatusDraft); err != nil {
		return nil, fmt.Errorf("list add-seat requests by owner: %w", err)
	}
	return reqs, nil
}

// ListDrafts returns the owner's drafts, newest first.
func (r *AddSeatRepository) ListDrafts(ctx context.Context, ownerID string) ([]models.AddSeatRequest, error) {
	query := `SELECT ` + addSeatColumns + ` FROM add_seat_requests
	WHERE owner_id = $1 AND status = $2 ORDER BY created_at DESC`
	var reqs []models.AddSeatRequest
	if err := r.db.SelectContext(ctx, &reqs, query, ownerID, models.StatusDraft); err != nil {
		return nil, fmt.Errorf("list add-seat drafts: %w", err)
	}
	return reqs, nil
}

// CountDrafts counts the owner's drafts.
func (r *AddSeatRepository) CountDrafts(ctx context.Context, ownerID string) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM add_seat_requests WHERE owner_id = $1 AND status = $2`
	if err := r.db.GetContext(ctx, &count, query, ownerID, models.StatusDraft); err != nil {
		return 0, fmt.Errorf("count add-seat drafts: %w", err)
	}
	return count, nil
}

// ListByStatus returns the reviewer queue for a status.
func (r *AddSeatRepository) ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.AddSeatRequest, error) {
	query := `SELECT ` + addSeatColumns + ` FROM add_seat_requests WHERE status = $1 ORDER BY created_at ASC`
	var reqs []models.AddSeatRequest
	if err := r.db.SelectContext(ctx, &reqs, query, status); err != nil {
		return nil, fmt.Errorf("list add-seat requests by status: %w", err)
	}
	return reqs, nil
}

// ListAll returns every non-draft request, newest first.
func (r *AddSeatRepository) ListAll(ctx context.Context) ([]models.AddSeatRequest, error) {
	query := `SELECT ` + addSeatColumns + ` FROM add_seat_requests WHERE status <> $1 ORDER BY created_at DESC`
	var reqs []models.AddSeatRequest
	if err := r.db.SelectContext(ctx, &reqs, query, models.StatusDraft); err != nil {
		return nil, fmt.Errorf("list add-seat requests: %w", err)
	}
	return reqs, nil
}

// UpdateDraft rewrites form fields while the row is still a draft.
func (r *AddSeatRepository) UpdateDraft(ctx context.Context, req *models.AddSeatRequest) error {
	req.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf(`UPDATE add_seat_requests SET
	semester = :semester, academic_year = :academic_year, date = :date, month = :month, year = :year,
	lecturer = :lecturer, student_name = :student_name, student_id = :student_id,
	level_of_study = :level_of_study, faculty = :faculty, field_of_study = :field_of_study,
	class_level = :class_level, course_code = :course_code, course_title = :course_title,
	section = :section, credits = :credits, day = :day, time = :time, room = :room,
	contact_number = :contact_number, email = :email, signature = :signature, updated_at = :updated_at
	WHERE id = :id AND status = '%s'`, models.StatusDraft)
	result, err := r.db.NamedExecContext(ctx, query, req)
	if err != nil {
		return fmt.Errorf("update add-seat draft: %w", err)
	}
	return requireRow(result, "update add-seat draft")
}

// SetStatus moves a request along one edge, conditional on the expected
// predecessor status.
func (r *AddSeatRepository) SetStatus(ctx context.Context, id string, expected, next models.RequestStatus, at time.Time) error {
	const query = `UPDATE add_seat_requests SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, next, at, id, expected)
	if err != nil {
		return fmt.Errorf("set add-seat status: %w", err)
	}
	return requireRow(result, "set add-seat status")
}

// Decide persists the instructor decision and comment.
func (r *AddSeatRepository) Decide(ctx context.Context, params DecideParams) error {
	if params.Role != models.RoleInstructor {
		return fmt.Errorf("add-seat requests have no %s review step", params.Role)
	}
	const query = `UPDATE add_seat_requests SET status = $1, instructor_comment = $2, updated_at = $3
	WHERE id = $4 AND status = $5`
	result, err := r.db.ExecContext(ctx, query, params.Next, params.Comment, params.DecidedAt, params.ID, params.Expected)
	if err != nil {
		return fmt.Errorf("decide add-seat request: %w", err)
	}
	return requireRow(result, "decide add-seat request")
}

// Delete removes the row when its status is still in the expected set.
func (r *AddSeatRepository) Delete(ctx context.Context, id string, expected ...models.RequestStatus) error {
	query, args := deleteQuery("add_seat_requests", id, expected)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete add-seat request: %w", err)
	}
	return requireRow(result, "delete add-seat request")
}

func requireRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func deleteQuery(table, id string, expected []models.RequestStatus) (string, []interface{}) {
	args := []interface{}{id}
	placeholders := make([]string, 0, len(expected))
	for _, status := range expected {
		args = append(args, status)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND status IN (%s)", table, strings.Join(placeholders, ","))
	return query, args
}
