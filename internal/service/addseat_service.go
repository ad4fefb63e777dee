package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-request-api/internal/models"
	"github.com/noah-isme/uni-request-api/internal/pdf"
	"github.com/noah-isme/uni-request-api/internal/repository"
	"github.com/noah-isme/uni-request-api/internal/workflow"
	appErrors "github.com/noah-isme/uni-request-api/pkg/errors"
)

type addSeatRepository interface {
	Create(ctx context.Context, req *models.AddSeatRequest) error
	GetByID(ctx context.Context, id string) (*models.AddSeatRequest, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.AddSeatRequest, error)
	ListDrafts(ctx context.Context, ownerID string) ([]models.AddSeatRequest, error)
	CountDrafts(ctx context.Context, ownerID string) (int, error)
	ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.AddSeatRequest, error)
	ListAll(ctx context.Context) ([]models.AddSeatRequest, error)
	UpdateDraft(ctx context.Context, req *models.AddSeatRequest) error
	SetStatus(ctx context.Context, id string, expected, next models.RequestStatus, at time.Time) error
	Decide(ctx context.Context, params repository.DecideParams) error
	Delete(ctx context.Context, id string, expected ...models.RequestStatus) error
}

// AddSeatService manages the add-seat request lifecycle.
type AddSeatService struct {
	repo      addSeatRepository
	audit     *AuditService
	renderer  *pdf.Renderer
	validator *validator.Validate
	def       workflow.Definition
	logger    *zap.Logger
}

// NewAddSeatService constructs the service.
func NewAddSeatService(repo addSeatRepository, audit *AuditService, renderer *pdf.Renderer, logger *zap.Logger) *AddSeatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AddSeatService{
		repo:      repo,
		audit:     audit,
		renderer:  renderer,
		validator: newFormValidator(),
		def:       workflow.AddSeat(),
		logger:    logger,
	}
}

// CreateSubmitted validates the complete form and files it directly
// into the instructor's queue.
func (s *AddSeatService) CreateSubmitted(ctx context.Context, actor *models.JWTClaims, req *models.AddSeatRequest) (*models.AddSeatRequest, error) {
	if err := s.validateForm(req); err != nil {
		return nil, err
	}
	req.OwnerID = actor.UserID
	req.Status = s.def.Submitted
	req.InstructorComment = nil
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create add-seat request")
	}
	s.recordAudit(actor, models.AuditActionRequestCreate, req.ID, string(req.Status))
	return req, nil
}

// CreateDraft stores a possibly incomplete form for later submission.
func (s *AddSeatService) CreateDraft(ctx context.Context, actor *models.JWTClaims, req *models.AddSeatRequest) (*models.AddSeatRequest, error) {
	req.OwnerID = actor.UserID
	req.Status = s.def.Draft
	req.InstructorComment = nil
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create add-seat draft")
	}
	s.recordAudit(actor, models.AuditActionRequestCreate, req.ID, string(req.Status))
	return req, nil
}

// SubmitDraft moves a complete draft into the instructor's queue.
func (s *AddSeatService) SubmitDraft(ctx context.Context, actor *models.JWTClaims, id string) (*models.AddSeatRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	tr, err := s.def.Attempt(workflow.TransitionInput{
		Current: req.Status,
		Role:    actor.Role,
		Action:  workflow.ActionSubmit,
		IsOwner: req.OwnerID == actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.validateForm(req); err != nil {
		return nil, err
	}

	if err := s.repo.SetStatus(ctx, req.ID, req.Status, tr.Next, time.Now().UTC()); err != nil {
		return nil, conflictOnNoRows(err, "draft changed while submitting")
	}
	req.Status = tr.Next
	s.recordAudit(actor, models.AuditActionRequestSubmit, req.ID, string(req.Status))
	return req, nil
}

// List returns requests visible to the actor for the given scope.
func (s *AddSeatService) List(ctx context.Context, actor *models.JWTClaims, scope models.ListScope) ([]models.AddSeatRequest, error) {
	switch scope {
	case models.ScopeAll:
		if actor.Role != models.RoleAdmin {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators may list all requests")
		}
		reqs, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list add-seat requests")
		}
		return reqs, nil
	case models.ScopeMine, "":
		reqs, err := s.repo.ListByOwner(ctx, actor.UserID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list add-seat requests")
		}
		return reqs, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown scope %q", scope))
}

// ListDrafts returns the actor's drafts.
func (s *AddSeatService) ListDrafts(ctx context.Context, actor *models.JWTClaims) ([]models.AddSeatRequest, error) {
	reqs, err := s.repo.ListDrafts(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list add-seat drafts")
	}
	return reqs, nil
}

// CountDrafts returns the actor's draft count.
func (s *AddSeatService) CountDrafts(ctx context.Context, actor *models.JWTClaims) (int, error) {
	count, err := s.repo.CountDrafts(ctx, actor.UserID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count add-seat drafts")
	}
	return count, nil
}

// ListPending returns the reviewer queue for the actor's role.
func (s *AddSeatService) ListPending(ctx context.Context, actor *models.JWTClaims) ([]models.AddSeatRequest, error) {
	status, ok := s.def.PendingFor(actor.Role)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("role %s has no add-seat review queue", actor.Role))
	}
	reqs, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending add-seat requests")
	}
	return reqs, nil
}

// Get returns one request if the actor may see it.
func (s *AddSeatService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.AddSeatRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, req.OwnerID, req.Status, s.def.Draft, s.def.ReviewerRoles()) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to view this request")
	}
	return req, nil
}

// UpdateDraft rewrites the form fields of a draft.
func (s *AddSeatService) UpdateDraft(ctx context.Context, actor *models.JWTClaims, id string, update *models.AddSeatRequest) (*models.AddSeatRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.def.Attempt(workflow.TransitionInput{
		Current: req.Status,
		Role:    actor.Role,
		Action:  workflow.ActionEdit,
		IsOwner: req.OwnerID == actor.UserID,
	}); err != nil {
		return nil, err
	}

	update.ID = req.ID
	update.OwnerID = req.OwnerID
	update.Status = req.Status
	update.CreatedAt = req.CreatedAt
	if err := s.repo.UpdateDraft(ctx, update); err != nil {
		return nil, conflictOnNoRows(err, "draft changed while updating")
	}
	return update, nil
}

// DeleteDraft removes a draft permanently.
func (s *AddSeatService) DeleteDraft(ctx context.Context, actor *models.JWTClaims, id string) error {
	req, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.def.Attempt(workflow.TransitionInput{
		Current: req.Status,
		Role:    actor.Role,
		Action:  workflow.ActionDelete,
		IsOwner: req.OwnerID == actor.UserID,
	}); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, req.ID, s.def.Draft); err != nil {
		return conflictOnNoRows(err, "draft changed while deleting")
	}
	s.recordAudit(actor, models.AuditActionRequestDelete, req.ID, string(s.def.Draft))
	return nil
}

// Cancel withdraws an in-flight request. The row is removed, so a
// subsequent fetch reports not found.
func (s *AddSeatService) Cancel(ctx context.Context, actor *models.JWTClaims, id string) error {
	req, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.def.Attempt(workflow.TransitionInput{
		Current: req.Status,
		Role:    actor.Role,
		Action:  workflow.ActionCancel,
		IsOwner: req.OwnerID == actor.UserID,
	}); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, req.ID, s.def.Cancellable...); err != nil {
		return conflictOnNoRows(err, "request changed while cancelling")
	}
	s.recordAudit(actor, models.AuditActionRequestCancel, req.ID, string(req.Status))
	return nil
}

// Decide applies an instructor approval or rejection.
func (s *AddSeatService) Decide(ctx context.Context, actor *models.JWTClaims, id string, action workflow.Action, comment string) (*models.AddSeatRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	tr, err := s.def.Attempt(workflow.TransitionInput{
		Current: req.Status,
		Role:    actor.Role,
		Action:  action,
		IsOwner: req.OwnerID == actor.UserID,
		Comment: comment,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Decide(ctx, repository.DecideParams{
		ID:        req.ID,
		Expected:  req.Status,
		Next:      tr.Next,
		Role:      tr.Step.Role,
		Comment:   tr.Comment,
		DecidedAt: time.Now().UTC(),
	}); err != nil {
		return nil, conflictOnNoRows(err, "request was decided concurrently")
	}

	req.Status = tr.Next
	req.InstructorComment = commentValue(tr.Comment)
	s.recordAudit(actor, models.AuditActionRequestDecide, req.ID, string(req.Status))
	return req, nil
}

// RenderPDF produces the printable document for a fully approved
// request. Only the owner and administrators may download it.
func (s *AddSeatService) RenderPDF(ctx context.Context, actor *models.JWTClaims, id string) ([]byte, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.OwnerID != actor.UserID && actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owner may download this document")
	}
	if !s.def.CanRender(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "request is not approved yet")
	}

	decision := []pdf.Field{{Label: "Instructor decision", Value: "Approved"}}
	if req.InstructorComment != nil {
		decision = append(decision, pdf.Field{Label: "Instructor comment", Value: *req.InstructorComment})
	}

	payload, err := s.renderer.Render(pdf.Document{
		Title:     "Request to Add a Seat",
		Subtitle:  req.Faculty,
		Reference: req.ID,
		Fields: []pdf.Field{
			{Label: "Semester", Value: req.Semester + "/" + req.AcademicYear},
			{Label: "Date", Value: joinDate(req.Date, req.Month, req.Year)},
			{Label: "Lecturer", Value: req.Lecturer},
			{Label: "Student", Value: req.StudentName},
			{Label: "Student ID", Value: req.StudentID},
			{Label: "Level of study", Value: req.LevelOfStudy},
			{Label: "Field of study", Value: req.FieldOfStudy},
			{Label: "Class level", Value: req.ClassLevel},
			{Label: "Course", Value: req.CourseCode + " " + req.CourseTitle},
			{Label: "Section", Value: req.Section},
			{Label: "Credits", Value: req.Credits},
			{Label: "Schedule", Value: joinSchedule(req.Day, req.Time, req.Room)},
			{Label: "Contact", Value: req.ContactNo},
			{Label: "Email", Value: req.Email},
			{Label: "Signature", Value: req.Signature},
		},
		Decision: decision,
		IssuedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render document")
	}
	return payload, nil
}

func (s *AddSeatService) load(ctx context.Context, id string) (*models.AddSeatRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOnNoRows(err, "add-seat request not found")
	}
	return req, nil
}

func (s *AddSeatService) recordAudit(actor *models.JWTClaims, action, resourceID, status string) {
	s.audit.Record(models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "add_seat_requests",
		ResourceID: &resourceID,
		NewValues:  mustJSON(map[string]string{"status": status}),
	})
}

func (s *AddSeatService) validateForm(req *models.AddSeatRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalidFormError(err)
	}
	return nil
}
