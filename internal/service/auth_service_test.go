package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/abogida/abogida-api/internal/models"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
)

type fakeAuthRepo struct {
	users   map[string]*models.User
	byEmail map[string]*models.User
	tokens  map[string]*models.RefreshToken
	audits  int
}

func newFakeAuthRepo(users ...*models.User) *fakeAuthRepo {
	repo := &fakeAuthRepo{
		users:   map[string]*models.User{},
		byEmail: map[string]*models.User{},
		tokens:  map[string]*models.RefreshToken{},
	}
	for _, user := range users {
		repo.users[user.ID] = user
		repo.byEmail[user.Email] = user
	}
	return repo
}

func (f *fakeAuthRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthRepo) UpdateLastLogin(_ context.Context, _ string, _ time.Time) error { return nil }

func (f *fakeAuthRepo) UpdatePassword(_ context.Context, id, hash string, _ time.Time) error {
	if user, ok := f.users[id]; ok {
		user.PasswordHash = hash
	}
	return nil
}

func (f *fakeAuthRepo) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	for _, token := range f.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

func (f *fakeAuthRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeAuthRepo) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	if stored, ok := f.tokens[token]; ok {
		return stored, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthRepo) RevokeRefreshToken(_ context.Context, id string, _ time.Time) error {
	for _, token := range f.tokens {
		if token.ID == id {
			token.Revoked = true
		}
	}
	return nil
}

func (f *fakeAuthRepo) CreateAuditLog(_ context.Context, _ *models.AuditLog) error {
	f.audits++
	return nil
}

func authTestConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Minute,
		RefreshTokenExpiry: time.Hour,
		Issuer:             "abogida-test",
	}
}

func activeTeacherUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		SchoolID:     "school-1",
		Email:        "teacher@example.com",
		PasswordHash: string(hash),
		FullName:     "Teacher A",
		Role:         models.RoleTeacher,
		Active:       true,
	}
}

func TestAuthServiceLogin(t *testing.T) {
	repo := newFakeAuthRepo(activeTeacherUser(t))
	svc := NewAuthService(repo, nil, nil, authTestConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "school-1", resp.User.SchoolID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	assert.Equal(t, "school-1", claims.SchoolID)
	assert.Equal(t, 1, repo.audits)
}

func TestAuthServiceLoginInvalidPassword(t *testing.T) {
	repo := newFakeAuthRepo(activeTeacherUser(t))
	svc := NewAuthService(repo, nil, nil, authTestConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := newFakeAuthRepo(activeTeacherUser(t))
	svc := NewAuthService(repo, nil, nil, authTestConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.True(t, repo.tokens[login.RefreshToken].Revoked, "used refresh token is revoked")

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePasswordRevokesSessions(t *testing.T) {
	repo := newFakeAuthRepo(activeTeacherUser(t))
	svc := NewAuthService(repo, nil, nil, authTestConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "secret123"})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{OldPassword: "secret123", NewPassword: "newsecret"})
	require.NoError(t, err)
	assert.True(t, repo.tokens[login.RefreshToken].Revoked)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "teacher@example.com", Password: "newsecret"})
	require.NoError(t, err)
}
