package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/models"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/repository"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/service"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/config"
)

type userRepoStub struct {
	users map[string]*models.User
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	s.users[user.ID] = user
	return nil
}

type tokenRepoStub struct {
	tokens   map[string]*models.RefreshToken
	sessions map[string]*models.Session
}

func (s *tokenRepoStub) CreateWithSession(ctx context.Context, token *models.RefreshToken, session *models.Session) error {
	s.tokens[token.ID] = token
	s.sessions[session.RefreshTokenID] = session
	return nil
}

func (s *tokenRepoStub) FindByID(ctx context.Context, id string) (*models.RefreshToken, error) {
	t, ok := s.tokens[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (s *tokenRepoStub) RevokeWithSession(ctx context.Context, id string, revokedAt time.Time) error {
	t, ok := s.tokens[id]
	if !ok {
		return sql.ErrNoRows
	}
	if t.Revoked || !t.ExpiresAt.After(revokedAt) {
		return repository.ErrTokenRevoked
	}
	t.Revoked = true
	sess := s.sessions[id]
	sess.Revoked = true
	sess.RevokedAt = &revokedAt
	return nil
}

func newAuthHandlerFixture(t *testing.T) (*AuthHandler, *userRepoStub, *tokenRepoStub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	users := &userRepoStub{users: map[string]*models.User{
		"user-1": {ID: "user-1", Email: "customer@example.com", PasswordHash: string(hash), Name: "Customer", Role: models.RoleUser},
	}}
	tokens := &tokenRepoStub{tokens: map[string]*models.RefreshToken{}, sessions: map[string]*models.Session{}}

	svc := service.NewAuthService(users, tokens, validator.New(), zap.NewNop(), service.AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "booking-test",
	})
	handler := NewAuthHandler(svc, config.CookieConfig{Name: "refreshToken"}, 86400)
	return handler, users, tokens
}

func findCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	res := w.Result()
	defer res.Body.Close()
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandlerLoginSetsRefreshCookie(t *testing.T) {
	handler, _, tokens := newAuthHandlerFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(models.LoginRequest{Email: "customer@example.com", Password: "password123"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)

	cookie := findCookie(t, w, "refreshToken")
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)
	_, exists := tokens.tokens[cookie.Value]
	assert.True(t, exists, "cookie value must be the stored token id")

	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.NotContains(t, w.Body.String(), cookie.Value, "refresh token id must not leak into the body")
}

func TestAuthHandlerRefreshWithoutCookie(t *testing.T) {
	handler, _, _ := newAuthHandlerFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/refresh", nil)
	c.Request = req

	handler.Refresh(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_MISSING")
}

func TestAuthHandlerRefreshWithCookie(t *testing.T) {
	handler, _, tokens := newAuthHandlerFixture(t)

	tokens.tokens["tok-1"] = &models.RefreshToken{ID: "tok-1", UserID: "user-1", ExpiresAt: time.Now().UTC().Add(time.Hour)}
	tokens.sessions["tok-1"] = &models.Session{RefreshTokenID: "tok-1"}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "tok-1"})
	c.Request = req

	handler.Refresh(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
}

func TestAuthHandlerLogoutRevokesAndClearsCookie(t *testing.T) {
	handler, _, tokens := newAuthHandlerFixture(t)

	tokens.tokens["tok-1"] = &models.RefreshToken{ID: "tok-1", UserID: "user-1", ExpiresAt: time.Now().UTC().Add(time.Hour)}
	tokens.sessions["tok-1"] = &models.Session{RefreshTokenID: "tok-1"}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "tok-1"})
	c.Request = req

	handler.Logout(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "logged out")
	assert.True(t, tokens.tokens["tok-1"].Revoked)
	assert.True(t, tokens.sessions["tok-1"].Revoked)

	cleared := findCookie(t, w, "refreshToken")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestAuthHandlerLogoutTwice(t *testing.T) {
	handler, _, tokens := newAuthHandlerFixture(t)

	tokens.tokens["tok-1"] = &models.RefreshToken{ID: "tok-1", UserID: "user-1", Revoked: true, ExpiresAt: time.Now().UTC().Add(time.Hour)}
	tokens.sessions["tok-1"] = &models.Session{RefreshTokenID: "tok-1", Revoked: true}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "tok-1"})
	c.Request = req

	handler.Logout(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_INVALID")
}

func TestAuthHandlerSignupInvalidBody(t *testing.T) {
	handler, _, _ := newAuthHandlerFixture(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/signup", bytes.NewReader([]byte(`not-json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Signup(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
