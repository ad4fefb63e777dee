package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-request-api/internal/models"
	appErrors "github.com/noah-isme/uni-request-api/pkg/errors"
)

type subjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id string) (*models.Subject, error)
	GetByCode(ctx context.Context, code string) (*models.Subject, error)
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error)
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
}

// SubjectService manages the course catalog used by request forms.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs the service.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = newFormValidator()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// Create adds a catalog entry. Subject codes are unique.
func (s *SubjectService) Create(ctx context.Context, subject *models.Subject) (*models.Subject, error) {
	if err := s.validator.Struct(subject); err != nil {
		return nil, invalidFormError(err)
	}

	if _, err := s.repo.GetByCode(ctx, subject.SubjectCode); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
	}

	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	return subject, nil
}

// Get returns one catalog entry.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOnNoRows(err, "subject not found")
	}
	return subject, nil
}

// List returns catalog entries matching the filter.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, total, nil
}

// Update edits a catalog entry.
func (s *SubjectService) Update(ctx context.Context, subject *models.Subject) (*models.Subject, error) {
	if err := s.validator.Struct(subject); err != nil {
		return nil, invalidFormError(err)
	}
	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, notFoundOnNoRows(err, "subject not found")
	}
	return subject, nil
}

// Delete removes a catalog entry.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOnNoRows(err, "subject not found")
	}
	return nil
}
