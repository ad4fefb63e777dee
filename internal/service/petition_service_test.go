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

type petitionRepoMock struct {
	byID       map[string]*models.GeneralPetition
	decided    []repository.DecideParams
	decideErr  error
	deleted    []string
	byStatusIn models.RequestStatus
}

func (m *petitionRepoMock) Create(_ context.Context, req *models.GeneralPetition) error {
	req.ID = "generated"
	return nil
}

func (m *petitionRepoMock) GetByID(_ context.Context, id string) (*models.GeneralPetition, error) {
	req, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *req
	return &clone, nil
}

func (m *petitionRepoMock) ListByOwner(_ context.Context, _ string) ([]models.GeneralPetition, error) {
	return nil, nil
}

func (m *petitionRepoMock) ListDrafts(_ context.Context, _ string) ([]models.GeneralPetition, error) {
	return nil, nil
}

func (m *petitionRepoMock) CountDrafts(_ context.Context, _ string) (int, error) {
	return 0, nil
}

func (m *petitionRepoMock) ListByStatus(_ context.Context, status models.RequestStatus) ([]models.GeneralPetition, error) {
	m.byStatusIn = status
	return nil, nil
}

func (m *petitionRepoMock) ListAll(_ context.Context) ([]models.GeneralPetition, error) {
	return nil, nil
}

func (m *petitionRepoMock) UpdateDraft(_ context.Context, _ *models.GeneralPetition) error {
	return nil
}

func (m *petitionRepoMock) SetStatus(_ context.Context, id string, expected, next models.RequestStatus, _ time.Time) error {
	if req, ok := m.byID[id]; ok && req.Status == expected {
		req.Status = next
		return nil
	}
	return sql.ErrNoRows
}

func (m *petitionRepoMock) Decide(_ context.Context, params repository.DecideParams) error {
	if m.decideErr != nil {
		return m.decideErr
	}
	m.decided = append(m.decided, params)
	return nil
}

func (m *petitionRepoMock) Delete(_ context.Context, id string, _ ...models.RequestStatus) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func completePetition(owner string, status models.RequestStatus) *models.GeneralPetition {
	return &models.GeneralPetition{
		ID:           "p1",
		Email:        "suda@rmuti.ac.th",
		Date:         "2",
		Month:        "July",
		Year:         "2026",
		StudentID:    "65123456789-1",
		FullName:     "Suda Meechai",
		Faculty:      "Engineering",
		FieldOfStudy: "Electrical Engineering",
		PetitionType: models.PetitionLeave,
		Details:      "leave of absence for one semester",
		ContactNo:    "0898765432",
		Signature:    "Suda",
		Status:       status,
		OwnerID:      owner,
	}
}

func newPetitionService(repo *petitionRepoMock) *PetitionService {
	return NewPetitionService(repo, nil, pdf.NewRenderer("Test University"), nil)
}

func TestPetitionSubmitEntersAdvisorQueue(t *testing.T) {
	repo := &petitionRepoMock{byID: map[string]*models.GeneralPetition{
		"p1": completePetition("u1", models.StatusDraft),
	}}
	svc := newPetitionService(repo)

	out, err := svc.SubmitDraft(context.Background(), studentClaims("u1"), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingAdvisor, out.Status)
}

func TestPetitionTwoStepDecisions(t *testing.T) {
	repo := &petitionRepoMock{byID: map[string]*models.GeneralPetition{
		"p1": completePetition("u1", models.StatusPendingAdvisor),
	}}
	svc := newPetitionService(repo)
	advisor := &models.JWTClaims{UserID: "a1", Role: models.RoleAdvisor}
	head := &models.JWTClaims{UserID: "h1", Role: models.RoleHead}

	out, err := svc.Decide(context.Background(), advisor, "p1", workflow.ActionApprove, "fine by me")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAdvisorApproved, out.Status)
	require.NotNil(t, out.AdvisorComment)
	assert.Equal(t, "fine by me", *out.AdvisorComment)

	repo.byID["p1"].Status = models.StatusAdvisorApproved
	out, err = svc.Decide(context.Background(), head, "p1", workflow.ActionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusHeadApproved, out.Status)

	require.Len(t, repo.decided, 2)
	assert.Equal(t, models.RoleAdvisor, repo.decided[0].Role)
	assert.Equal(t, models.RoleHead, repo.decided[1].Role)
}

func TestPetitionHeadCannotSkipAdvisor(t *testing.T) {
	repo := &petitionRepoMock{byID: map[string]*models.GeneralPetition{
		"p1": completePetition("u1", models.StatusPendingAdvisor),
	}}
	svc := newPetitionService(repo)
	head := &models.JWTClaims{UserID: "h1", Role: models.RoleHead}

	_, err := svc.Decide(context.Background(), head, "p1", workflow.ActionApprove, "")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidState))
}

func TestPetitionQueuesPerRole(t *testing.T) {
	repo := &petitionRepoMock{}
	svc := newPetitionService(repo)

	_, err := svc.ListPending(context.Background(), &models.JWTClaims{UserID: "a1", Role: models.RoleAdvisor})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingAdvisor, repo.byStatusIn)

	_, err = svc.ListPending(context.Background(), &models.JWTClaims{UserID: "h1", Role: models.RoleHead})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAdvisorApproved, repo.byStatusIn)
}

func TestPetitionRejectsUnknownType(t *testing.T) {
	svc := newPetitionService(&petitionRepoMock{})

	bad := completePetition("", "")
	bad.PetitionType = "request_parking"
	_, err := svc.CreateSubmitted(context.Background(), studentClaims("u1"), bad)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestPetitionContactNumberMustBeTenDigits(t *testing.T) {
	svc := newPetitionService(&petitionRepoMock{})

	bad := completePetition("", "")
	bad.ContactNo = "089876543"
	_, err := svc.CreateSubmitted(context.Background(), studentClaims("u1"), bad)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
	assert.Contains(t, err.Error(), "contact_number")

	bad.ContactNo = "08987654xy"
	_, err = svc.CreateSubmitted(context.Background(), studentClaims("u1"), bad)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestPetitionCancelWhileAdvisorApproved(t *testing.T) {
	repo := &petitionRepoMock{byID: map[string]*models.GeneralPetition{
		"p1": completePetition("u1", models.StatusAdvisorApproved),
	}}
	svc := newPetitionService(repo)

	err := svc.Cancel(context.Background(), studentClaims("u1"), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, repo.deleted)
}

func TestPetitionRenderRequiresHeadApproval(t *testing.T) {
	repo := &petitionRepoMock{byID: map[string]*models.GeneralPetition{
		"p1": completePetition("u1", models.StatusAdvisorApproved),
		"p2": completePetition("u1", models.StatusHeadApproved),
	}}
	svc := newPetitionService(repo)

	_, err := svc.RenderPDF(context.Background(), studentClaims("u1"), "p1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidState))

	payload, err := svc.RenderPDF(context.Background(), studentClaims("u1"), "p2")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(payload[:4]))
}
