package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-request-api/internal/models"
)

const openCourseColumns = `id, semester, academic_year, date, month, year, dean,
       student_name, student_id, level_of_study, faculty, field_of_study,
       course_code, course_title, credits, reason, contact_number, email, signature,
       status, advisor_comment, head_comment, owner_id, created_at, updated_at`

// OpenCourseRepository persists open-course requests.
type OpenCourseRepository struct {
	db *sqlx.DB
}

// NewOpenCourseRepository constructs the repository.
func NewOpenCourseRepository(db *sqlx.DB) *OpenCourseRepository {
	return &OpenCourseRepository{db: db}
}

// Create inserts a new request row.
func (r *OpenCourseRepository) Create(ctx context.Context, req *models.OpenCourseRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	const query = `INSERT INTO open_course_requests
	(id, semester, academic_year, date, month, year, dean, student_name, student_id,
	 level_of_study, faculty, field_of_study, course_code, course_title, credits, reason,
	 contact_number, email, signature, status, advisor_comment, head_comment, owner_id,
	 created_at, updated_at)
	VALUES (:id, :semester, :academic_year, :date, :month, :year, :dean, :student_name, :student_id,
	 :level_of_study, :faculty, :field_of_study, :course_code, :course_title, :credits, :reason,
	 :contact_number, :email, :signature, :status, :advisor_comment, :head_comment, :owner_id,
	 :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create open-course request: %w", err)
	}
	return nil
}

// GetByID fetches one request.
func (r *OpenCourseRepository) GetByID(ctx context.Context, id string) (*models.OpenCourseRequest, error) {
	query := `SELECT ` + openCourseColumns + ` FROM open_course_requests WHERE id = $1`
	var req models.OpenCourseRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListByOwner returns the owner's non-draft requests, newest first.
func (r *OpenCourseRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.OpenCourseRequest, error) {
	query := `SELECT ` + openCourseColumns + ` FROM open_course_requests
	WHERE owner_id = $1 AND status <> $2 ORDER BY created_at DESC`
	var reqs []models.OpenCourseRequest
	if err := r.db.SelectContext(ctx, &reqs, query, ownerID, models.StatusDraft); err != nil {
		return nil, fmt.Errorf("list open-course requests by owner: %w", err)
	}
	return reqs, nil
}

// ListDrafts returns the owner's drafts, newest first.
func (r *OpenCourseRepository) ListDrafts(ctx context.Context, ownerID string) ([]models.OpenCourseRequest, error) {
	query := `SELECT ` + openCourseColumns + ` FROM open_course_requests
	WHERE owner_id = $1 AND status = $2 ORDER BY created_at DESC`
	var reqs []models.OpenCourseRequest
	if err := r.db.SelectContext(ctx, &reqs, query, ownerID, models.StatusDraft); err != nil {
		return nil, fmt.Errorf("list open-course drafts: %w", err)
	}
	return reqs, nil
}

// CountDrafts counts the owner's drafts.
func (r *OpenCourseRepository) CountDrafts(ctx context.Context, ownerID string) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM open_course_requests WHERE owner_id = $1 AND status = $2`
	if err := r.db.GetContext(ctx, &count, query, ownerID, models.StatusDraft); err != nil {
		return 0, fmt.Errorf("count open-course drafts: %w", err)
	}
	return count, nil
}

// ListByStatus returns the reviewer queue for a status.
func (r *OpenCourseRepository) ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.OpenCourseRequest, error) {
	query := `SELECT ` + openCourseColumns + ` FROM open_course_requests WHERE status = $1 ORDER BY created_at ASC`
	var reqs []models.OpenCourseRequest
	if err := r.db.SelectContext(ctx, &reqs, query, status); err != nil {
		return nil, fmt.Errorf("list open-course requests by status: %w", err)
	}
	return reqs, nil
}

// ListAll returns every non-draft request, newest first.
func (r *OpenCourseRepository) ListAll(ctx context.Context) ([]models.OpenCourseRequest, error) {
	query := `SELECT ` + openCourseColumns + ` FROM open_course_requests WHERE status <> $1 ORDER BY created_at DESC`
	var reqs []models.OpenCourseRequest
	if err := r.db.SelectContext(ctx, &reqs, query, models.StatusDraft); err != nil {
		return nil, fmt.Errorf("list open-course requests: %w", err)
	}
	return reqs, nil
}

// UpdateDraft rewrites form fields while the row is still a draft.
func (r *OpenCourseRepository) UpdateDraft(ctx context.Context, req *models.OpenCourseRequest) error {
	req.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf(`UPDATE open_course_requests SET
	semester = :semester, academic_year = :academic_year, date = :date, month = :month, year = :year,
	dean = :dean, student_name = :student_name, student_id = :student_id,
	level_of_study = :level_of_study, faculty = :faculty, field_of_study = :field_of_study,
	course_code = :course_code, course_title = :course_title, credits = :credits, reason = :reason,
	contact_number = :contact_number, email = :email, signature = :signature, updated_at = :updated_at
	WHERE id = :id AND status = '%s'`, models.StatusDraft)
	result, err := r.db.NamedExecContext(ctx, query, req)
	if err != nil {
		return fmt.Errorf("update open-course draft: %w", err)
	}
	return requireRow(result, "update open-course draft")
}

// SetStatus moves a request along one edge, conditional on the expected
// predecessor status.
func (r *OpenCourseRepository) SetStatus(ctx context.Context, id string, expected, next models.RequestStatus, at time.Time) error {
	const query = `UPDATE open_course_requests SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, next, at, id, expected)
	if err != nil {
		return fmt.Errorf("set open-course status: %w", err)
	}
	return requireRow(result, "set open-course status")
}

// Decide persists a reviewer decision into that step's comment column.
func (r *OpenCourseRepository) Decide(ctx context.Context, params DecideParams) error {
	var query string
	switch params.Role {
	case models.RoleAdvisor:
		query = `UPDATE open_course_requests SET status = $1, advisor_comment = $2, updated_at = $3
		WHERE id = $4 AND status = $5`
	case models.RoleHead:
		query = `UPDATE open_course_requests SET status = $1, head_comment = $2, updated_at = $3
		WHERE id = $4 AND status = $5`
	default:
		return fmt.Errorf("open-course requests have no %s review step", params.Role)
	}
	result, err := r.db.ExecContext(ctx, query, params.Next, params.Comment, params.DecidedAt, params.ID, params.Expected)
	if err != nil {
		return fmt.Errorf("decide open-course request: %w", err)
	}
	return requireRow(result, "decide open-course request")
}

// Delete removes the row when its status is still in the expected set.
func (r *OpenCourseRepository) Delete(ctx context.Context, id string, expected ...models.RequestStatus) error {
	query, args := deleteQuery("open_course_requests", id, expected)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete open-course request: %w", err)
	}
	return requireRow(result, "delete open-course request")
}
