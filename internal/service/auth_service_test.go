package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/models"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/repository"
	appErrors "github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/errors"
)

type mockUserRepo struct {
	users          map[string]*models.User
	findByEmailErr error
	createErr      error
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.users == nil {
		m.users = make(map[string]*models.User)
	}
	m.users[user.ID] = user
	return nil
}

type mockTokenRepo struct {
	tokens   map[string]*models.RefreshToken
	sessions map[string]*models.Session
}

func (m *mockTokenRepo) CreateWithSession(ctx context.Context, token *models.RefreshToken, session *models.Session) error {
	if m.tokens == nil {
		m.tokens = make(map[string]*models.RefreshToken)
		m.sessions = make(map[string]*models.Session)
	}
	m.tokens[token.ID] = token
	m.sessions[session.RefreshTokenID] = session
	return nil
}

func (m *mockTokenRepo) FindByID(ctx context.Context, id string) (*models.RefreshToken, error) {
	t, ok := m.tokens[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (m *mockTokenRepo) RevokeWithSession(ctx context.Context, id string, revokedAt time.Time) error {
	t, ok := m.tokens[id]
	if !ok {
		return sql.ErrNoRows
	}
	if t.Revoked || !t.ExpiresAt.After(revokedAt) {
		return repository.ErrTokenRevoked
	}
	t.Revoked = true
	s := m.sessions[id]
	s.Revoked = true
	s.RevokedAt = &revokedAt
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *mockUserRepo, *mockTokenRepo) {
	t.Helper()
	users := &mockUserRepo{users: make(map[string]*models.User)}
	tokens := &mockTokenRepo{}
	svc := NewAuthService(users, tokens, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "booking-test",
	})
	return svc, users, tokens
}

func seedUser(t *testing.T, users *mockUserRepo, password string, role models.UserRole) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           "user-1",
		Email:        "customer@example.com",
		PasswordHash: string(hash),
		Name:         "Customer",
		Role:         role,
	}
	users.users[user.ID] = user
	return user
}

func TestAuthServiceSignup(t *testing.T) {
	svc, users, _ := newAuthFixture(t)

	info, err := svc.Signup(context.Background(), models.SignupRequest{
		Name:     "New Seller",
		Email:    "seller@example.com",
		Password: "password123",
		Role:     "SELLER",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, models.RoleSeller, info.Role)

	stored := users.users[info.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))
}

func TestAuthServiceSignupEmailTaken(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	seedUser(t, users, "password123", models.RoleUser)

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Name:     "Duplicate",
		Email:    "customer@example.com",
		Password: "password123",
		Role:     "USER",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrEmailTaken.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
}

func TestAuthServiceSignupRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Name:     "Admin Wannabe",
		Email:    "admin@example.com",
		Password: "password123",
		Role:     "ADMIN",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginIssuesTokenPair(t *testing.T) {
	svc, users, tokens := newAuthFixture(t)
	user := seedUser(t, users, "password123", models.RoleUser)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:     user.Email,
		Password:  "password123",
		IP:        "10.0.0.1",
		UserAgent: "test-agent",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshTokenID)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)

	stored := tokens.tokens[res.RefreshTokenID]
	require.NotNil(t, stored)
	session := tokens.sessions[res.RefreshTokenID]
	require.NotNil(t, session)
	assert.Equal(t, stored.ExpiresAt, session.ExpiresAt)
	assert.Equal(t, "10.0.0.1", session.IPAddress)
	assert.Equal(t, "test-agent", session.UserAgent)
	assert.False(t, stored.Revoked)
	assert.False(t, session.Revoked)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	seedUser(t, users, "password123", models.RoleUser)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "customer@example.com",
		Password: "not-the-password",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Equal(t, 401, appErr.Status)
}

func TestAuthServiceRefreshKeepsSameToken(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	user := seedUser(t, users, "password123", models.RoleUser)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "password123"})
	require.NoError(t, err)

	first, err := svc.RefreshAccessToken(context.Background(), login.RefreshTokenID)
	require.NoError(t, err)
	assert.NotEmpty(t, first.AccessToken)

	// The same refresh id stays valid after use.
	second, err := svc.RefreshAccessToken(context.Background(), login.RefreshTokenID)
	require.NoError(t, err)

	claims1, err := svc.ValidateToken(first.AccessToken)
	require.NoError(t, err)
	claims2, err := svc.ValidateToken(second.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, claims1.UserID, claims2.UserID)
	assert.Equal(t, claims1.Role, claims2.Role)
	assert.Equal(t, claims1.Email, claims2.Email)
}

func TestAuthServiceRefreshMissingToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.RefreshAccessToken(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenMissing.Code, appErrors.FromError(err).Code)

	_, err = svc.RefreshAccessToken(context.Background(), "unknown-id")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenMissing.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshExpiredToken(t *testing.T) {
	svc, users, tokens := newAuthFixture(t)
	user := seedUser(t, users, "password123", models.RoleUser)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "password123"})
	require.NoError(t, err)

	tokens.tokens[login.RefreshTokenID].ExpiresAt = time.Now().UTC().Add(-time.Minute)

	_, err = svc.RefreshAccessToken(context.Background(), login.RefreshTokenID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrTokenInvalid.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}

func TestAuthServiceRefreshGhostToken(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	user := seedUser(t, users, "password123", models.RoleUser)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "password123"})
	require.NoError(t, err)

	// User deleted while the refresh token row survives.
	delete(users.users, user.ID)

	_, err = svc.RefreshAccessToken(context.Background(), login.RefreshTokenID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrGhostToken.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
}

func TestAuthServiceRevoke(t *testing.T) {
	svc, users, tokens := newAuthFixture(t)
	user := seedUser(t, users, "password123", models.RoleUser)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), login.RefreshTokenID))

	stored := tokens.tokens[login.RefreshTokenID]
	session := tokens.sessions[login.RefreshTokenID]
	assert.True(t, stored.Revoked)
	assert.True(t, session.Revoked)
	require.NotNil(t, session.RevokedAt)
	assert.Equal(t, stored.Revoked, session.Revoked)

	// A revoked refresh token no longer mints access tokens.
	_, err = svc.RefreshAccessToken(context.Background(), login.RefreshTokenID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenInvalid.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRevokeTwice(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	user := seedUser(t, users, "password123", models.RoleUser)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), login.RefreshTokenID))

	err = svc.Revoke(context.Background(), login.RefreshTokenID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrTokenInvalid.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}

func TestAuthServiceRevokeExpiredToken(t *testing.T) {
	svc, users, tokens := newAuthFixture(t)
	user := seedUser(t, users, "password123", models.RoleUser)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "password123"})
	require.NoError(t, err)

	tokens.tokens[login.RefreshTokenID].ExpiresAt = time.Now().UTC().Add(-time.Minute)

	// Logging out with an expired token fails instead of revoking it.
	err = svc.Revoke(context.Background(), login.RefreshTokenID)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrTokenInvalid.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.False(t, tokens.tokens[login.RefreshTokenID].Revoked)
	assert.False(t, tokens.sessions[login.RefreshTokenID].Revoked)
}

func TestAuthServiceValidateTokenWrongSecret(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	user := seedUser(t, users, "password123", models.RoleUser)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "password123"})
	require.NoError(t, err)

	other := NewAuthService(users, &mockTokenRepo{}, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "different-secret",
		AccessTokenExpiry: time.Hour,
	})
	_, err = other.ValidateToken(login.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
