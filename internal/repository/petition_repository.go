package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-request-api/internal/models"
)

const petitionColumns = `id, email, date, month, year, student_id, full_name, faculty,
       field_of_study, petition_type, details, contact_number, signature,
       status, advisor_comment, head_comment, owner_id, created_at, updated_at`

// PetitionRepository persists general petitions.
type PetitionRepository struct {
	db *sqlx.DB
}

// NewPetitionRepository constructs the repository.
func NewPetitionRepository(db *sqlx.DB) *PetitionRepository {
	return &PetitionRepository{db: db}
}

// Create inserts a new petition row.
func (r *PetitionRepository) Create(ctx context.Context, req *models.GeneralPetition) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	const query = `INSERT INTO general_petitions
	(id, email, date, month, year, student_id, full_name, faculty, field_of_study,
	 petition_type, details, contact_number, signature, status, advisor_comment,
	 head_comment, owner_id, created_at, updated_at)
	VALUES (:id, :email, :date, :month, :year, :student_id, :full_name, :faculty, :field_of_study,
	 :petition_type, :details, :contact_number, :signature, :status, :advisor_comment,
	 :head_comment, :owner_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create petition: %w", err)
	}
	return nil
}

// GetByID fetches one petition.
func (r *PetitionRepository) GetByID(ctx context.Context, id string) (*models.GeneralPetition, error) {
	query := `SELECT ` + petitionColumns + ` FROM general_petitions WHERE id = $1`
	var req models.GeneralPetition
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListByOwner returns the owner's non-draft petitions, newest first.
func (r *PetitionRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.GeneralPetition, error) {
	query := `SELECT ` + petitionColumns + ` FROM general_petitions
	WHERE owner_id = $1 AND status <> $2 ORDER BY created_at DESC`
	var reqs []models.GeneralPetition
	if err := r.db.SelectContext(ctx, &reqs, query, ownerID, models.StatusDraft); err != nil {
		return nil, fmt.Errorf("list petitions by owner: %w", err)
	}
	return reqs, nil
}

// ListDrafts returns the owner's drafts, newest first.
func (r *PetitionRepository) ListDrafts(ctx context.Context, ownerID string) ([]models.GeneralPetition, error) {
	query := `SELECT ` + petitionColumns + ` FROM general_petitions
	WHERE owner_id = $1 AND status = $2 ORDER BY created_at DESC`
	var reqs []models.GeneralPetition
	if err := r.db.SelectContext(ctx, &reqs, query, ownerID, models.StatusDraft); err != nil {
		return nil, fmt.Errorf("list petition drafts: %w", err)
	}
	return reqs, nil
}

// CountDrafts counts the owner's drafts.
func (r *PetitionRepository) CountDrafts(ctx context.Context, ownerID string) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM general_petitions WHERE owner_id = $1 AND status = $2`
	if err := r.db.GetContext(ctx, &count, query, ownerID, models.StatusDraft); err != nil {
		return 0, fmt.Errorf("count petition drafts: %w", err)
	}
	return count, nil
}

// ListByStatus returns the reviewer queue for a status.
func (r *PetitionRepository) ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.GeneralPetition, error) {
	query := `SELECT ` + petitionColumns + ` FROM general_petitions WHERE status = $1 ORDER BY created_at ASC`
	var reqs []models.GeneralPetition
	if err := r.db.SelectContext(ctx, &reqs, query, status); err != nil {
		return nil, fmt.Errorf("list petitions by status: %w", err)
	}
	return reqs, nil
}

// ListAll returns every non-draft petition, newest first.
func (r *PetitionRepository) ListAll(ctx context.Context) ([]models.GeneralPetition, error) {
	query := `SELECT ` + petitionColumns + ` FROM general_petitions WHERE status <> $1 ORDER BY created_at DESC`
	var reqs []models.GeneralPetition
	if err := r.db.SelectContext(ctx, &reqs, query, models.StatusDraft); err != nil {
		return nil, fmt.Errorf("list petitions: %w", err)
	}
	return reqs, nil
}

// UpdateDraft rewrites form fields while the row is still a draft.
func (r *PetitionRepository) UpdateDraft(ctx context.Context, req *models.GeneralPetition) error {
	req.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf(`UPDATE general_petitions SET
	email = :email, date = :date, month = :month, year = :year, student_id = :student_id,
	full_name = :full_name, faculty = :faculty, field_of_study = :field_of_study,
	petition_type = :petition_type, details = :details, contact_number = :contact_number,
	signature = :signature, updated_at = :updated_at
	WHERE id = :id AND status = '%s'`, models.StatusDraft)
	result, err := r.db.NamedExecContext(ctx, query, req)
	if err != nil {
		return fmt.Errorf("update petition draft: %w", err)
	}
	return requireRow(result, "update petition draft")
}

// SetStatus moves a petition along one edge, conditional on the expected
// predecessor status.
func (r *PetitionRepository) SetStatus(ctx context.Context, id string, expected, next models.RequestStatus, at time.Time) error {
	const query = `UPDATE general_petitions SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, next, at, id, expected)
	if err != nil {
		return fmt.Errorf("set petition status: %w", err)
	}
	return requireRow(result, "set petition status")
}

// Decide persists a reviewer decision into that step's comment column.
func (r *PetitionRepository) Decide(ctx context.Context, params DecideParams) error {
	var query string
	switch params.Role {
	case models.RoleAdvisor:
		query = `UPDATE general_petitions SET status = $1, advisor_comment = $2, updated_at = $3
		WHERE id = $4 AND status = $5`
	case models.RoleHead:
		query = `UPDATE general_petitions SET status = $1, head_comment = $2, updated_at = $3
		WHERE id = $4 AND status = $5`
	default:
		return fmt.Errorf("petitions have no %s review step", params.Role)
	}
	result, err := r.db.ExecContext(ctx, query, params.Next, params.Comment, params.DecidedAt, params.ID, params.Expected)
	if err != nil {
		return fmt.Errorf("decide petition: %w", err)
	}
	return requireRow(result, "decide petition")
}

// Delete removes the row when its status is still in the expected set.
func (r *PetitionRepository) Delete(ctx context.Context, id string, expected ...models.RequestStatus) error {
	query, args := deleteQuery("general_petitions", id, expected)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete petition: %w", err)
	}
	return requireRow(result, "delete petition")
}
