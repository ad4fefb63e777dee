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

type authRepoMock struct {
	users   map[string]*models.User
	tokens  map[string]*models.RefreshToken
	revoked []string
}

func newAuthRepoMock() *authRepoMock {
	return &authRepoMock{users: map[string]*models.User{}, tokens: map[string]*models.RefreshToken{}}
}

func (m *authRepoMock) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *authRepoMock) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *authRepoMock) UpdateLastLogin(_ context.Context, _ string, _ time.Time) error { return nil }

func (m *authRepoMock) UpdatePassword(_ context.Context, id, hash string, _ time.Time) error {
	if user, ok := m.users[id]; ok {
		user.PasswordHash = hash
	}
	return nil
}

func (m *authRepoMock) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	m.revoked = append(m.revoked, userID)
	return nil
}

func (m *authRepoMock) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *authRepoMock) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	stored, ok := m.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return stored, nil
}

func (m *authRepoMock) RevokeRefreshToken(_ context.Context, id string, _ time.Time) error {
	for _, token := range m.tokens {
		if token.ID == id {
			token.Revoked = true
		}
	}
	return nil
}

func newAuthService(repo *authRepoMock) *AuthService {
	return NewAuthService(repo, nil, nil, nil, AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "uni-request-api",
	})
}

func seedUser(repo *authRepoMock, role models.UserRole, active bool) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	user := &models.User{
		ID:           "u1",
		Email:        "somchai@rmuti.ac.th",
		PasswordHash: string(hash),
		FullName:     "Somchai Jaidee",
		Role:         role,
		Active:       active,
	}
	repo.users[user.ID] = user
	return user
}

func TestLoginIssuesValidatableToken(t *testing.T) {
	repo := newAuthRepoMock()
	seedUser(repo, models.RoleStudent, true)
	svc := newAuthService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "somchai@rmuti.ac.th", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleStudent, resp.User.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "uni-request-api", claims.Issuer)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newAuthRepoMock()
	seedUser(repo, models.RoleStudent, true)
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "somchai@rmuti.ac.th", Password: "nope12"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := newAuthRepoMock()
	seedUser(repo, models.RoleStudent, false)
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "somchai@rmuti.ac.th", Password: "secret123"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInactiveAccount))
}

func TestRefreshTokenRotates(t *testing.T) {
	repo := newAuthRepoMock()
	seedUser(repo, models.RoleAdvisor, true)
	svc := newAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "somchai@rmuti.ac.th", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The used token is revoked and cannot be replayed.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(newAuthRepoMock())

	_, err := svc.ValidateToken("not-a-token")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized))
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	repo := newAuthRepoMock()
	seedUser(repo, models.RoleStudent, true)
	svc := newAuthService(repo)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "newsecret",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, repo.revoked)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "somchai@rmuti.ac.th", Password: "newsecret"})
	assert.NoError(t, err)
}
