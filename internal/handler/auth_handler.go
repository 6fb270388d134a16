package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	"github.com/sanatan-blog/acharyas-gurus-api/internal/service"
	appErrors "github.com/sanatan-blog/acharyas-gurus-api/pkg/errors"
	"github.com/sanatan-blog/acharyas-gurus-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth and verification services.
type AuthHandler struct {
	auth         *service.AuthService
	verification *service.VerificationService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(auth *service.AuthService, verification *service.VerificationService) *AuthHandler {
	return &AuthHandler{auth: auth, verification: verification}
}

// Signup godoc
// @Summary Create a user account
// @Description Register a regular account and email a verification code
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.SignupRequest true "Signup payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid signup payload"))
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, gin.H{
		"id":      user.ID,
		"email":   user.Email,
		"message": "verification code sent",
	}, nil)
}

// RegisterTeacher godoc
// @Summary Register a teacher account
// @Description Register a teacher with profile details; the account awaits admin approval before it can sign in
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.TeacherRegistrationRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/register-teacher [post]
func (h *AuthHandler) RegisterTeacher(c *gin.Context) {
	var req models.TeacherRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	user, err := h.auth.RegisterTeacher(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, gin.H{
		"id":      user.ID,
		"email":   user.Email,
		"message": "registration received, awaiting approval",
	}, nil)
}

// VerifyEmail godoc
// @Summary Verify an email address
// @Description Consume the emailed one-time code
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.VerifyEmailRequest true "Verification payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req models.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid verification payload"))
		return
	}

	user, err := h.verification.Verify(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"id":              user.ID,
		"email":           user.Email,
		"isEmailVerified": user.IsEmailVerified,
	}, nil)
}

// ResendVerification godoc
// @Summary Resend a verification code
// @Description Replace the outstanding code for an unverified account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.ResendVerificationRequest true "Resend payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req models.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resend payload"))
		return
	}

	if err := h.verification.Reissue(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "verification code sent")
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate user by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Me godoc
// @Summary Get current user
// @Description Returns the authenticated user's info
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, models.UserInfo{
		ID:              user.ID,
		Email:           user.Email,
		Name:            user.Name,
		Role:            user.Role,
		IsEmailVerified: user.IsEmailVerified,
		ProfileImage:    user.ProfileImage,
	}, nil)
}
