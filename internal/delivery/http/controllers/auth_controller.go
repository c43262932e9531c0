package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"joinify/internal/delivery/http/helpers"
	"joinify/internal/domain"
)

type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// SignUpRequest is the request body for POST /auth/signup.
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate implements helpers.Validator.
func (req *SignUpRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Username) == "" {
		errs = append(errs, "username is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, "email is required")
	}
	if req.Password == "" {
		errs = append(errs, "password is required")
	}
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if req.Role == "" {
		errs = append(errs, "role is required")
	}
	return errs
}

// SignUp godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.SignUpRequest true "Signup details"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (username or email taken)"
// @Router /auth/signup [post]
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := c.Service.SignUp(r.Context(), req.Username, req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		case errors.Is(err, domain.ErrDuplicateUsername), errors.Is(err, domain.ErrDuplicateEmail):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "signup failed", "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate implements helpers.Validator.
func (req *LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Username) == "" {
		errs = append(errs, "username is required")
	}
	if req.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// Login godoc
// @Summary Authenticate and receive a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.LoginRequest true "Credentials"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.Service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid username or password")
			return
		}
		c.Logger.ErrorContext(r.Context(), "login failed", "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
