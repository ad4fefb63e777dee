package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/uni-request-api/internal/models"
	appErrors "github.com/noah-isme/uni-request-api/pkg/errors"
)

type userRepoMock struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
	created []*models.User
	updated []*models.User
	deleted []string
	revoked []string
}

func (m *userRepoMock) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *userRepoMock) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (m *userRepoMock) Create(_ context.Context, user *models.User) error {
	user.ID = "generated"
	m.created = append(m.created, user)
	return nil
}

func (m *userRepoMock) Update(_ context.Context, user *models.User) error {
	m.updated = append(m.updated, user)
	return nil
}

func (m *userRepoMock) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return sql.ErrNoRows
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *userRepoMock) List(_ context.Context, _ models.UserFilter) ([]models.User, int, error) {
	return nil, 0, nil
}

func (m *userRepoMock) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	m.revoked = append(m.revoked, userID)
	return nil
}

func newUserService(repo *userRepoMock) *UserService {
	return NewUserService(repo, nil, nil, nil, "rmuti.ac.th")
}

func TestCreateUserEnforcesEmailDomain(t *testing.T) {
	svc := newUserService(&userRepoMock{byEmail: map[string]*models.User{}})

	_, err := svc.Create(context.Background(), "adm", models.CreateUserRequest{
		Email:    "someone@gmail.com",
		Password: "secret123",
		FullName: "Someone",
		Role:     models.RoleStudent,
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := &userRepoMock{byEmail: map[string]*models.User{}}
	svc := newUserService(repo)

	user, err := svc.Create(context.Background(), "adm", models.CreateUserRequest{
		Email:    "Somchai@rmuti.ac.th",
		Password: "secret123",
		FullName: "Somchai Jaidee",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)
	assert.Equal(t, "somchai@rmuti.ac.th", user.Email)
	assert.True(t, user.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func TestCreateUserDuplicateEmailConflicts(t *testing.T) {
	repo := &userRepoMock{byEmail: map[string]*models.User{
		"taken@rmuti.ac.th": {ID: "u1", Email: "taken@rmuti.ac.th"},
	}}
	svc := newUserService(repo)

	_, err := svc.Create(context.Background(), "adm", models.CreateUserRequest{
		Email:    "taken@rmuti.ac.th",
		Password: "secret123",
		FullName: "Dup",
		Role:     models.RoleStudent,
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
}

func TestChangeRoleRevokesSessions(t *testing.T) {
	repo := &userRepoMock{byID: map[string]*models.User{
		"u1": {ID: "u1", Email: "u1@rmuti.ac.th", Role: models.RoleStudent, Active: true},
	}}
	svc := newUserService(repo)

	user, err := svc.ChangeRole(context.Background(), "adm", "u1", models.ChangeRoleRequest{Role: models.RoleAdvisor})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdvisor, user.Role)
	assert.Equal(t, []string{"u1"}, repo.revoked)
}

func TestChangeRoleNoopWhenUnchanged(t *testing.T) {
	repo := &userRepoMock{byID: map[string]*models.User{
		"u1": {ID: "u1", Role: models.RoleHead, Active: true},
	}}
	svc := newUserService(repo)

	_, err := svc.ChangeRole(context.Background(), "adm", "u1", models.ChangeRoleRequest{Role: models.RoleHead})
	require.NoError(t, err)
	assert.Empty(t, repo.updated)
}

func TestDeleteOwnAccountForbidden(t *testing.T) {
	svc := newUserService(&userRepoMock{byID: map[string]*models.User{"adm": {ID: "adm"}}})

	err := svc.Delete(context.Background(), "adm", "adm")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
}

func TestDeleteMissingUserNotFound(t *testing.T) {
	svc := newUserService(&userRepoMock{byID: map[string]*models.User{}})

	err := svc.Delete(context.Background(), "adm", "ghost")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestUpdateUserPartialFields(t *testing.T) {
	repo := &userRepoMock{byID: map[string]*models.User{
		"u1": {ID: "u1", FullName: "Old Name", Active: true, CreatedAt: time.Now()},
	}}
	svc := newUserService(repo)

	newName := "New Name"
	user, err := svc.Update(context.Background(), "adm", "u1", models.UpdateUserRequest{FullName: &newName})
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.FullName)
	assert.True(t, user.Active)
}
