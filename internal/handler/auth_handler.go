package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/models"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/internal/service"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/config"
	appErrors "github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/errors"
	"github.com/PRASHANTSWAROOP001/Appointment-Booking-Microservice/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service. The refresh token
// id never appears in a JSON body; it travels only as an HTTP-only cookie.
type AuthHandler struct {
	service *service.AuthService
	cookie  config.CookieConfig
	maxAge  int
}

// NewAuthHandler creates a new handler. maxAge is the refresh cookie
// lifetime in seconds.
func NewAuthHandler(svc *service.AuthService, cookie config.CookieConfig, maxAge int) *AuthHandler {
	return &AuthHandler{service: svc, cookie: cookie, maxAge: maxAge}
}

// Signup godoc
// @Summary Register account
// @Description Create a customer or seller account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.SignupRequest true "Signup payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid signup payload"))
		return
	}

	user, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, user)
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate by email and password; sets the refresh cookie
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setRefreshCookie(c, res.RefreshTokenID)
	response.JSON(c, http.StatusOK, res, nil)
}

// Refresh godoc
// @Summary Refresh access token
// @Description Mint a new access token from the refresh cookie
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	tokenID, err := c.Cookie(h.cookie.Name)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrTokenMissing, ""))
		return
	}

	res, err := h.service.RefreshAccessToken(c.Request.Context(), tokenID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Logout current session
// @Description Revoke the refresh token and clear its cookie
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenID, err := c.Cookie(h.cookie.Name)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrTokenMissing, ""))
		return
	}

	if err := h.service.Revoke(c.Request.Context(), tokenID); err != nil {
		h.clearRefreshCookie(c)
		response.Error(c, err)
		return
	}

	h.clearRefreshCookie(c)
	response.Message(c, http.StatusOK, "logged out")
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, tokenID string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookie.Name, tokenID, h.maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)
}
