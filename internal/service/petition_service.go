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

type petitionRepository interface {
	Create(ctx context.Context, req *models.GeneralPetition) error
	GetByID(ctx context.Context, id string) (*models.GeneralPetition, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.GeneralPetition, error)
	ListDrafts(ctx context.Context, ownerID string) ([]models.GeneralPetition, error)
	CountDrafts(ctx context.Context, ownerID string) (int, error)
	ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.GeneralPetition, error)
	ListAll(ctx context.Context) ([]models.GeneralPetition, error)
	UpdateDraft(ctx context.Context, req *models.GeneralPetition) error
	SetStatus(ctx context.Context, id string, expected, next models.RequestStatus, at time.Time) error
	Decide(ctx context.Context, params repository.DecideParams) error
	Delete(ctx context.Context, id string, expected ...models.RequestStatus) error
}

// PetitionService manages the general petition lifecycle. It shares the
// advisor-then-head chain with open-course requests.
type PetitionService struct {
	repo      petitionRepository
	audit     *AuditService
	renderer  *pdf.Renderer
	def       workflow.Definition
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPetitionService constructs the service.
func NewPetitionService(repo petitionRepository, audit *AuditService, renderer *pdf.Renderer, logger *zap.Logger) *PetitionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PetitionService{repo: repo, audit: audit, renderer: renderer, def: workflow.GeneralPetition(), validator: newFormValidator(), logger: logger}
}

// CreateSubmitted validates the complete petition and files it into the
// advisor's queue.
func (s *PetitionService) CreateSubmitted(ctx context.Context, actor *models.JWTClaims, req *models.GeneralPetition) (*models.GeneralPetition, error) {
	if err := s.validateForm(req); err != nil {
		return nil, err
	}
	req.OwnerID = actor.UserID
	req.Status = s.def.Submitted
	req.AdvisorComment = nil
	req.HeadComment = nil
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create petition")
	}
	s.recordAudit(actor, models.AuditActionRequestCreate, req.ID, string(req.Status))
	return req, nil
}

// CreateDraft stores a possibly incomplete petition for later submission.
func (s *PetitionService) CreateDraft(ctx context.Context, actor *models.JWTClaims, req *models.GeneralPetition) (*models.GeneralPetition, error) {
	if req.PetitionType != "" && !models.KnownPetitionType(req.PetitionType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown petition type %q", req.PetitionType))
	}
	req.OwnerID = actor.UserID
	req.Status = s.def.Draft
	req.AdvisorComment = nil
	req.HeadComment = nil
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create petition draft")
	}
	s.recordAudit(actor, models.AuditActionRequestCreate, req.ID, string(req.Status))
	return req, nil
}

// SubmitDraft moves a complete draft into the advisor's queue.
func (s *PetitionService) SubmitDraft(ctx context.Context, actor *models.JWTClaims, id string) (*models.GeneralPetition, error) {
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

// List returns petitions visible to the actor for the given scope.
func (s *PetitionService) List(ctx context.Context, actor *models.JWTClaims, scope models.ListScope) ([]models.GeneralPetition, error) {
	switch scope {
	case models.ScopeAll:
		if actor.Role != models.RoleAdmin {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators may list all petitions")
		}
		reqs, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list petitions")
		}
		return reqs, nil
	case models.ScopeMine, "":
		reqs, err := s.repo.ListByOwner(ctx, actor.UserID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list petitions")
		}
		return reqs, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown scope %q", scope))
}

// ListDrafts returns the actor's drafts.
func (s *PetitionService) ListDrafts(ctx context.Context, actor *models.JWTClaims) ([]models.GeneralPetition, error) {
	reqs, err := s.repo.ListDrafts(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list petition drafts")
	}
	return reqs, nil
}

// CountDrafts returns the actor's draft count.
func (s *PetitionService) CountDrafts(ctx context.Context, actor *models.JWTClaims) (int, error) {
	count, err := s.repo.CountDrafts(ctx, actor.UserID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count petition drafts")
	}
	return count, nil
}

// ListPending returns the reviewer queue for the actor's role.
func (s *PetitionService) ListPending(ctx context.Context, actor *models.JWTClaims) ([]models.GeneralPetition, error) {
	status, ok := s.def.PendingFor(actor.Role)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("role %s has no petition review queue", actor.Role))
	}
	reqs, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending petitions")
	}
	return reqs, nil
}

// Get returns one petition if the actor may see it.
func (s *PetitionService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.GeneralPetition, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, req.OwnerID, req.Status, s.def.Draft, s.def.ReviewerRoles()) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to view this petition")
	}
	return req, nil
}

// UpdateDraft rewrites the form fields of a draft.
func (s *PetitionService) UpdateDraft(ctx context.Context, actor *models.JWTClaims, id string, update *models.GeneralPetition) (*models.GeneralPetition, error) {
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
	if update.PetitionType != "" && !models.KnownPetitionType(update.PetitionType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown petition type %q", update.PetitionType))
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
func (s *PetitionService) DeleteDraft(ctx context.Context, actor *models.JWTClaims, id string) error {
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

// Cancel withdraws an in-flight petition.
func (s *PetitionService) Cancel(ctx context.Context, actor *models.JWTClaims, id string) error {
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
		return conflictOnNoRows(err, "petition changed while cancelling")
	}
	s.recordAudit(actor, models.AuditActionRequestCancel, req.ID, string(req.Status))
	return nil
}

// Decide applies an advisor or head approval or rejection.
func (s *PetitionService) Decide(ctx context.Context, actor *models.JWTClaims, id string, action workflow.Action, comment string) (*models.GeneralPetition, error) {
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
		return nil, conflictOnNoRows(err, "petition was decided concurrently")
	}

	req.Status = tr.Next
	switch tr.Step.Role {
	case models.RoleAdvisor:
		req.AdvisorComment = commentValue(tr.Comment)
	case models.RoleHead:
		req.HeadComment = commentValue(tr.Comment)
	}
	s.recordAudit(actor, models.AuditActionRequestDecide, req.ID, string(req.Status))
	return req, nil
}

// RenderPDF produces the printable document for a fully approved petition.
// Only the owner or an administrator may download it.
func (s *PetitionService) RenderPDF(ctx context.Context, actor *models.JWTClaims, id string) ([]byte, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.OwnerID != actor.UserID && actor.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owner may download this document")
	}
	if !s.def.CanRender(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "petition is not approved yet")
	}

	decision := []pdf.Field{{Label: "Advisor decision", Value: "Approved"}}
	if req.AdvisorComment != nil {
		decision = append(decision, pdf.Field{Label: "Advisor comment", Value: *req.AdvisorComment})
	}
	decision = append(decision, pdf.Field{Label: "Head decision", Value: "Approved"})
	if req.HeadComment != nil {
		decision = append(decision, pdf.Field{Label: "Head comment", Value: *req.HeadComment})
	}

	payload, err := s.renderer.Render(pdf.Document{
		Title:     "General Petition",
		Subtitle:  req.Faculty,
		Reference: req.ID,
		Fields: []pdf.Field{
			{Label: "Date", Value: joinDate(req.Date, req.Month, req.Year)},
			{Label: "Student", Value: req.FullName},
			{Label: "Student ID", Value: req.StudentID},
			{Label: "Field of study", Value: req.FieldOfStudy},
			{Label: "Petition type", Value: string(req.PetitionType)},
			{Label: "Details", Value: req.Details},
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

func (s *PetitionService) load(ctx context.Context, id string) (*models.GeneralPetition, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOnNoRows(err, "petition not found")
	}
	return req, nil
}

func (s *PetitionService) recordAudit(actor *models.JWTClaims, action, resourceID, status string) {
	s.audit.Record(models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "general_petitions",
		ResourceID: &resourceID,
		NewValues:  mustJSON(map[string]string{"status": status}),
	})
}

func (s *PetitionService) validateForm(req *models.GeneralPetition) error {
	if err := s.validator.Struct(req); err != nil {
		return invalidFormError(err)
	}
	return nil
}
