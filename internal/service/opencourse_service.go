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

type openCourseRepository interface {
	Create(ctx context.Context, req *models.OpenCourseRequest) error
	GetByID(ctx context.Context, id string) (*models.OpenCourseRequest, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.OpenCourseRequest, error)
	ListDrafts(ctx context.Context, ownerID string) ([]models.OpenCourseRequest, error)
	CountDrafts(ctx context.Context, ownerID string) (int, error)
	ListByStatus(ctx context.Context, status models.RequestStatus) ([]models.OpenCourseRequest, error)
	ListAll(ctx context.Context) ([]models.OpenCourseRequest, error)
	UpdateDraft(ctx context.Context, req *models.OpenCourseRequest) error
	SetStatus(ctx context.Context, id string, expected, next models.RequestStatus, at time.Time) error
	Decide(ctx context.Context, params repository.DecideParams) error
	Delete(ctx context.Context, id string, expected ...models.RequestStatus) error
}

// OpenCourseService manages the open-course request lifecycle: a
// two-step review by the advisor, then the department head.
type OpenCourseService struct {
	repo      openCourseRepository
	audit     *AuditService
	renderer  *pdf.Renderer
	def       workflow.Definition
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOpenCourseService constructs the service.
func NewOpenCourseService(repo openCourseRepository, audit *AuditService, renderer *pdf.Renderer, logger *zap.Logger) *OpenCourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenCourseService{repo: repo, audit: audit, renderer: renderer, def: workflow.OpenCourse(), validator: newFormValidator(), logger: logger}
}

// CreateSubmitted validates the complete form and files it into the
// advisor's queue.
func (s *OpenCourseService) CreateSubmitted(ctx context.Context, actor *models.JWTClaims, req *models.OpenCourseRequest) (*models.OpenCourseRequest, error) {
	if err := s.validateForm(req); err != nil {
		return nil, err
	}
	req.OwnerID = actor.UserID
	req.Status = s.def.Submitted
	req.AdvisorComment = nil
	req.HeadComment = nil
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create open-course request")
	}
	s.recordAudit(actor, models.AuditActionRequestCreate, req.ID, string(req.Status))
	return req, nil
}

// CreateDraft stores a possibly incomplete form for later submission.
func (s *OpenCourseService) CreateDraft(ctx context.Context, actor *models.JWTClaims, req *models.OpenCourseRequest) (*models.OpenCourseRequest, error) {
	req.OwnerID = actor.UserID
	req.Status = s.def.Draft
	req.AdvisorComment = nil
	req.HeadComment = nil
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create open-course draft")
	}
	s.recordAudit(actor, models.AuditActionRequestCreate, req.ID, string(req.Status))
	return req, nil
}

// SubmitDraft moves a complete draft into the advisor's queue.
func (s *OpenCourseService) SubmitDraft(ctx context.Context, actor *models.JWTClaims, id string) (*models.OpenCourseRequest, error) {
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
func (s *OpenCourseService) List(ctx context.Context, actor *models.JWTClaims, scope models.ListScope) ([]models.OpenCourseRequest, error) {
	switch scope {
	case models.ScopeAll:
		if actor.Role != models.RoleAdmin {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators may list all requests")
		}
		reqs, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list open-course requests")
		}
		return reqs, nil
	case models.ScopeMine, "":
		reqs, err := s.repo.ListByOwner(ctx, actor.UserID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list open-course requests")
		}
		return reqs, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown scope %q", scope))
}

// ListDrafts returns the actor's drafts.
func (s *OpenCourseService) ListDrafts(ctx context.Context, actor *models.JWTClaims) ([]models.OpenCourseRequest, error) {
	reqs, err := s.repo.ListDrafts(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list open-course drafts")
	}
	return reqs, nil
}

// CountDrafts returns the actor's draft count.
func (s *OpenCourseService) CountDrafts(ctx context.Context, actor *models.JWTClaims) (int, error) {
	count, err := s.repo.CountDrafts(ctx, actor.UserID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count open-course drafts")
	}
	return count, nil
}

// ListPending returns the reviewer queue for the actor's role: the
// advisor sees freshly submitted requests, the head sees
// advisor-approved ones.
func (s *OpenCourseService) ListPending(ctx context.Context, actor *models.JWTClaims) ([]models.OpenCourseRequest, error) {
	status, ok := s.def.PendingFor(actor.Role)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("role %s has no open-course review queue", actor.Role))
	}
	reqs, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending open-course requests")
	}
	return reqs, nil
}

// Get returns one request if the actor may see it.
func (s *OpenCourseService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.OpenCourseRequest, error) {
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
func (s *OpenCourseService) UpdateDraft(ctx context.Context, actor *models.JWTClaims, id string, update *models.OpenCourseRequest) (*models.OpenCourseRequest, error) {
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
func (s *OpenCourseService) DeleteDraft(ctx context.Context, actor *models.JWTClaims, id string) error {
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

// Cancel withdraws an in-flight request.
func (s *OpenCourseService) Cancel(ctx context.Context, actor *models.JWTClaims, id string) error {
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

// Decide applies an advisor or head approval or rejection.
func (s *OpenCourseService) Decide(ctx context.Context, actor *models.JWTClaims, id string, action workflow.Action, comment string) (*models.OpenCourseRequest, error) {
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
	switch tr.Step.Role {
	case models.RoleAdvisor:
		req.AdvisorComment = commentValue(tr.Comment)
	case models.RoleHead:
		req.HeadComment = commentValue(tr.Comment)
	}
	s.recordAudit(actor, models.AuditActionRequestDecide, req.ID, string(req.Status))
	return req, nil
}

// RenderPDF produces the printable document for a fully approved request.
// Only the owner or an administrator may download it.
func (s *OpenCourseService) RenderPDF(ctx context.Context, actor *models.JWTClaims, id string) ([]byte, error) {
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

	decision := []pdf.Field{
		{Label: "Advisor decision", Value: "Approved"},
	}
	if req.AdvisorComment != nil {
		decision = append(decision, pdf.Field{Label: "Advisor comment", Value: *req.AdvisorComment})
	}
	decision = append(decision, pdf.Field{Label: "Head decision", Value: "Approved"})
	if req.HeadComment != nil {
		decision = append(decision, pdf.Field{Label: "Head comment", Value: *req.HeadComment})
	}

	payload, err := s.renderer.Render(pdf.Document{
		Title:     "Request to Open a Course",
		Subtitle:  req.Faculty,
		Reference: req.ID,
		Fields: []pdf.Field{
			{Label: "Semester", Value: req.Semester + "/" + req.AcademicYear},
			{Label: "Date", Value: joinDate(req.Date, req.Month, req.Year)},
			{Label: "Dean", Value: req.Dean},
			{Label: "Student", Value: req.StudentName},
			{Label: "Student ID", Value: req.StudentID},
			{Label: "Level of study", Value: req.LevelOfStudy},
			{Label: "Field of study", Value: req.FieldOfStudy},
			{Label: "Course", Value: req.CourseCode + " " + req.CourseTitle},
			{Label: "Credits", Value: req.Credits},
			{Label: "Reason", Value: req.Reason},
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

func (s *OpenCourseService) load(ctx context.Context, id string) (*models.OpenCourseRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOnNoRows(err, "open-course request not found")
	}
	return req, nil
}

func (s *OpenCourseService) recordAudit(actor *models.JWTClaims, action, resourceID, status string) {
	s.audit.Record(models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "open_course_requests",
		ResourceID: &resourceID,
		NewValues:  mustJSON(map[string]string{"status": status}),
	})
}

func (s *OpenCourseService) validateForm(req *models.OpenCourseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalidFormError(err)
	}
	return nil
}
