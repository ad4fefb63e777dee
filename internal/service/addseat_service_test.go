package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-request-api/internal/models"
	"github.com/noah-isme/uni-request-api/internal/pdf"
	"github.com/noah-isme/uni-request-api/internal/repository"
	"github.com/noah-isme/uni-request-api/internal/workflow"
	appErrors "github.com/noah-isme/uni-request-api/pkg/errors"
)

type addSeatRepoMock struct {
	created    []*models.AddSeatRequest
	byID       map[string]*models.AddSeatRequest
	decided    []repository.DecideParams
	decideErr  error
	setStatus  error
	deleted    []string
	deleteErr  error
	updateErr  error
	byStatusIn models.RequestStatus
}

func (m *addSeatRepoMock) Create(_ context.Context, req *models.AddSeatRequest) error {
	req.ID = "generated"
	m.created = append(m.created, req)
	return nil
}

func (m *addSeatRepoMock) GetByID(_ context.Context, id string) (*models.AddSeatRequest, error) {
	req, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *req
	return &clone, nil
}

func (m *addSeatRepoMock) ListByOwner(_ context.Context, string1 string) ([]models.AddSeatRequest, error) {
	return nil, nil
}

func (m *addSeatRepoMock) ListDrafts(_ context.Context, string1 string) ([]models.AddSeatRequest, error) {
	return nil, nil
}

func (m *addSeatRepoMock) CountDrafts(_ context.Context, string1 string) (int, error) {
	return 2, nil
}

func (m *addSeatRepoMock) ListByStatus(_ context.Context, status models.RequestStatus) ([]models.AddSeatRequest, error) {
	m.byStatusIn = status
	return nil, nil
}

func (m *addSeatRepoMock) ListAll(_ context.Context) ([]models.AddSeatRequest, error) {
	return nil, nil
}

func (m *addSeatRepoMock) UpdateDraft(_ context.Context, req *models.AddSeatRequest) error {
	return m.updateErr
}

func (m *addSeatRepoMock) SetStatus(_ context.Context, id string, expected, next models.RequestStatus, _ time.Time) error {
	if m.setStatus != nil {
		return m.setStatus
	}
	if req, ok := m.byID[id]; ok && req.Status == expected {
		req.Status = next
		return nil
	}
	return sql.ErrNoRows
}

func (m *addSeatRepoMock) Decide(_ context.Context, params repository.DecideParams) error {
	if m.decideErr != nil {
		return m.decideErr
	}
	m.decided = append(m.decided, params)
	return nil
}

func (m *addSeatRepoMock) Delete(_ context.Context, id string, _ ...models.RequestStatus) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func studentClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleStudent, Email: id + "@rmuti.ac.th"}
}

func completeAddSeat(owner string, status models.RequestStatus) *models.AddSeatRequest {
	return &models.AddSeatRequest{
		ID:           "r1",
		Semester:     "1",
		AcademicYear: "2569",
		Date:         "15",
		Month:        "June",
		Year:         "2026",
		Lecturer:     "Asst. Prof. Prasert",
		StudentName:  "Somchai Jaidee",
		StudentID:    "65123456789-0",
		LevelOfStudy: "Bachelor",
		Faculty:      "Engineering",
		FieldOfStudy: "Civil Engineering",
		ClassLevel:   "2",
		CourseCode:   "ENG101",
		CourseTitle:  "Statics",
		Section:      "2",
		Credits:      "3",
		Day:          "Monday",
		Time:         "09:00-12:00",
		Room:         "EN-305",
		ContactNo:    "0812345678",
		Email:        "somchai@rmuti.ac.th",
		Signature:    "Somchai",
		Status:       status,
		OwnerID:      owner,
	}
}

func newAddSeatService(repo *addSeatRepoMock) *AddSeatService {
	return NewAddSeatService(repo, nil, pdf.NewRenderer("Test University"), nil)
}

func TestCreateSubmittedAddSeat(t *testing.T) {
	repo := &addSeatRepoMock{}
	svc := newAddSeatService(repo)

	req := completeAddSeat("", "")
	req.ID = ""
	out, err := svc.CreateSubmitted(context.Background(), studentClaims("u1"), req)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, out.Status)
	assert.Equal(t, "u1", out.OwnerID)
	require.Len(t, repo.created, 1)
}

func TestCreateSubmittedRejectsIncompleteForm(t *testing.T) {
	svc := newAddSeatService(&addSeatRepoMock{})

	_, err := svc.CreateSubmitted(context.Background(), studentClaims("u1"), &models.AddSeatRequest{StudentName: "Somchai"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestCreateSubmittedRequiresEveryFormField(t *testing.T) {
	svc := newAddSeatService(&addSeatRepoMock{})

	req := completeAddSeat("", "")
	req.ID = ""
	req.Faculty = ""
	req.Lecturer = ""
	req.ContactNo = ""
	_, err := svc.CreateSubmitted(context.Background(), studentClaims("u1"), req)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
	assert.Contains(t, err.Error(), "contact_number")
	assert.Contains(t, err.Error(), "faculty")
	assert.Contains(t, err.Error(), "lecturer")
}

func TestCreateDraftAllowsIncompleteForm(t *testing.T) {
	repo := &addSeatRepoMock{}
	svc := newAddSeatService(repo)

	out, err := svc.CreateDraft(context.Background(), studentClaims("u1"), &models.AddSeatRequest{CourseCode: "ENG101"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, out.Status)
}

func TestSubmitDraftHappyPath(t *testing.T) {
	repo := &addSeatRepoMock{byID: map[string]*models.AddSeatRequest{
		"r1": completeAddSeat("u1", models.StatusDraft),
	}}
	svc := newAddSeatService(repo)

	out, err := svc.SubmitDraft(context.Background(), studentClaims("u1"), "r1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, out.Status)
}

func TestSubmitDraftByNonOwnerForbidden(t *testing.T) {
	repo := &addSeatRepoMock{byID: map[string]*models.AddSeatRequest{
		"r1": completeAddSeat("u1", models.StatusDraft),
	}}
	svc := newAddSeatService(repo)

	_, err := svc.SubmitDraft(context.Background(), studentClaims("intruder"), "r1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
}

func TestDecideApproveStoresComment(t *testing.T) {
	repo := &addSeatRepoMock{byID: map[string]*models.AddSeatRequest{
		"r1": completeAddSeat("u1", models.StatusSubmitted),
	}}
	svc := newAddSeatService(repo)
	instructor := &models.JWTClaims{UserID: "i1", Role: models.RoleInstructor}

	out, err := svc.Decide(context.Background(), instructor, "r1", workflow.ActionApprove, "seat available")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInstructorApproved, out.Status)
	require.NotNil(t, out.InstructorComment)
	assert.Equal(t, "seat available", *out.InstructorComment)

	require.Len(t, repo.decided, 1)
	assert.Equal(t, models.StatusSubmitted, repo.decided[0].Expected)
	assert.Equal(t, models.RoleInstructor, repo.decided[0].Role)
}

func TestDecideRacedConcurrentlyIsConflict(t *testing.T) {
	repo := &addSeatRepoMock{
		byID:      map[string]*models.AddSeatRequest{"r1": completeAddSeat("u1", models.StatusSubmitted)},
		decideErr: sql.ErrNoRows,
	}
	svc := newAddSeatService(repo)
	instructor := &models.JWTClaims{UserID: "i1", Role: models.RoleInstructor}

	_, err := svc.Decide(context.Background(), instructor, "r1", workflow.ActionReject, "full")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
}

func TestDecideByAdvisorForbidden(t *testing.T) {
	repo := &addSeatRepoMock{byID: map[string]*models.AddSeatRequest{
		"r1": completeAddSeat("u1", models.StatusSubmitted),
	}}
	svc := newAddSeatService(repo)
	advisor := &models.JWTClaims{UserID: "a1", Role: models.RoleAdvisor}

	_, err := svc.Decide(context.Background(), advisor, "r1", workflow.ActionApprove, "")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
}

func TestDecideAlreadyDecidedIsInvalidState(t *testing.T) {
	repo := &addSeatRepoMock{byID: map[string]*models.AddSeatRequest{
		"r1": completeAddSeat("u1", models.StatusInstructorApproved),
	}}
	svc := newAddSeatService(repo)
	instructor := &models.JWTClaims{UserID: "i1", Role: models.RoleInstructor}

	_, err := svc.Decide(context.Background(), instructor, "r1", workflow.ActionApprove, "")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidState))
}

func TestCancelRemovesRequest(t *testing.T) {
	repo := &addSeatRepoMock{byID: map[string]*models.AddSeatRequest{
		"r1": completeAddSeat("u1", models.StatusInstructorApproved),
	}}
	svc := newAddSeatService(repo)

	err := svc.Cancel(context.Background(), studentClaims("u1"), "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, repo.deleted)
}

func TestCancelRejectedRequestIsInvalidState(t *testing.T) {
	repo := &addSeatRepoMock{byID: map[string]*models.AddSeatRequest{
		"r1": completeAddSeat("u1", models.StatusInstructorRejected),
	}}
	svc := newAddSeatService(repo)

	err := svc.Cancel(context.Background(), studentClaims("u1"), "r1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidState))
}

func TestGetMissingRequestIsNotFound(t *testing.T) {
	svc := newAddSeatService(&addSeatRepoMock{byID: map[string]*models.AddSeatRequest{}})

	_, err := svc.Get(context.Background(), studentClaims("u1"), "gone")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestGetDraftHiddenFromReviewers(t *testing.T) {
	repo := &addSeatRepoMock{byID: map[string]*models.AddSeatRequest{
		"r1": completeAddSeat("u1", models.StatusDraft),
	}}
	svc := newAddSeatService(repo)
	instructor := &models.JWTClaims{UserID: "i1", Role: models.RoleInstructor}

	_, err := svc.Get(context.Background(), instructor, "r1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
}

func TestListAllRequiresAdmin(t *testing.T) {
	svc := newAddSeatService(&addSeatRepoMock{})

	_, err := svc.List(context.Background(), studentClaims("u1"), models.ScopeAll)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))

	admin := &models.JWTClaims{UserID: "adm", Role: models.RoleAdmin}
	_, err = svc.List(context.Background(), admin, models.ScopeAll)
	assert.NoError(t, err)
}

func TestListPendingUsesInstructorQueue(t *testing.T) {
	repo := &addSeatRepoMock{}
	svc := newAddSeatService(repo)
	instructor := &models.JWTClaims{UserID: "i1", Role: models.RoleInstructor}

	_, err := svc.ListPending(context.Background(), instructor)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, repo.byStatusIn)

	_, err = svc.ListPending(context.Background(), studentClaims("u1"))
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
}

func TestRenderPDFOnlyWhenApproved(t *testing.T) {
	approved := completeAddSeat("u1", models.StatusInstructorApproved)
	comment := "seat available"
	approved.InstructorComment = &comment
	repo := &addSeatRepoMock{byID: map[string]*models.AddSeatRequest{
		"r1": approved,
		"r2": completeAddSeat("u1", models.StatusSubmitted),
	}}
	svc := newAddSeatService(repo)

	payload, err := svc.RenderPDF(context.Background(), studentClaims("u1"), "r1")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(payload[:4]))

	_, err = svc.RenderPDF(context.Background(), studentClaims("u1"), "r2")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidState))
}

func TestRenderPDFLimitedToOwnerAndAdmin(t *testing.T) {
	repo := &addSeatRepoMock{byID: map[string]*models.AddSeatRequest{
		"r1": completeAddSeat("u1", models.StatusInstructorApproved),
	}}
	svc := newAddSeatService(repo)

	instructor := &models.JWTClaims{UserID: "i1", Role: models.RoleInstructor}
	_, err := svc.RenderPDF(context.Background(), instructor, "r1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))

	admin := &models.JWTClaims{UserID: "adm", Role: models.RoleAdmin}
	payload, err := svc.RenderPDF(context.Background(), admin, "r1")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func TestUpdateDraftLostRaceIsConflict(t *testing.T) {
	repo := &addSeatRepoMock{
		byID:      map[string]*models.AddSeatRequest{"r1": completeAddSeat("u1", models.StatusDraft)},
		updateErr: sql.ErrNoRows,
	}
	svc := newAddSeatService(repo)

	_, err := svc.UpdateDraft(context.Background(), studentClaims("u1"), "r1", completeAddSeat("u1", models.StatusDraft))
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
}
