package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jobreadyai/backend/internal/config"
	"github.com/jobreadyai/backend/internal/models"
	"github.com/jobreadyai/backend/internal/services"
	"github.com/jobreadyai/backend/pkg/httputil"
	jwtutil "github.com/jobreadyai/backend/pkg/jwt"
	log "github.com/sirupsen/logrus"
)

var validate = validator.New()

// AuthHandler handles signup, login and the password reset flow.
type AuthHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewAuthHandler creates a new instance of AuthHandler.
func NewAuthHandler(service *services.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		Service: service,
		Config:  cfg,
	}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupHandler registers a new account and issues a session token.
func (h *AuthHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, fmt.Errorf("%w: invalid request payload", httputil.ErrValidation))
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.Error(w, fmt.Errorf("%w: %v", httputil.ErrValidation, err))
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		log.WithError(err).Warn("Signup failed")
		httputil.Error(w, err)
		return
	}

	h.respondWithSession(w, http.StatusCreated, user)
}

// LoginHandler authenticates credentials and issues a session token.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, fmt.Errorf("%w: invalid request payload", httputil.ErrValidation))
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.Error(w, fmt.Errorf("%w: %v", httputil.ErrValidation, err))
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	h.respondWithSession(w, http.StatusOK, user)
}

// ForgotPasswordHandler starts the reset flow. It answers 200 whether or not
// the address belongs to an account.
func (h *AuthHandler) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, fmt.Errorf("%w: invalid request payload", httputil.ErrValidation))
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.Error(w, fmt.Errorf("%w: %v", httputil.ErrValidation, err))
		return
	}

	if err := h.Service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		log.WithError(err).Error("Password reset request failed internally")
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{
		"message": "If that email is registered, a reset link has been sent",
	})
}

// ResetPasswordHandler redeems a reset token.
func (h *AuthHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required,min=6"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, fmt.Errorf("%w: invalid request payload", httputil.ErrValidation))
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.Error(w, fmt.Errorf("%w: %v", httputil.ErrValidation, err))
		return
	}

	if err := h.Service.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, status int, user *models.User) {
	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, string(user.Plan), h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate session token")
		httputil.Error(w, fmt.Errorf("failed to generate token: %v", err))
		return
	}

	httputil.JSON(w, status, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
