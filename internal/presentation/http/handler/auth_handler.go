package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/receipts-api/internal/application/service"
	"github.com/sangkips/receipts-api/internal/presentation/http/dto/request"
	"github.com/sangkips/receipts-api/internal/presentation/http/dto/response"
	"github.com/sangkips/receipts-api/pkg/apperror"
	"github.com/sangkips/receipts-api/pkg/oauth"
)

// GoogleOAuth is the part of the Google sign-in flow the handler drives
type GoogleOAuth interface {
	IsConfigured() bool
	GetAuthURL() (string, string)
	Authenticate(ctx context.Context, code, state string) (*oauth.GoogleUserInfo, error)
	FrontendSuccessURL() string
	FrontendErrorURL() string
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	google      GoogleOAuth
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, google GoogleOAuth) *AuthHandler {
	return &AuthHandler{authService: authService, google: google}
}

// Login handles user login. It accepts JSON or an OAuth2 password form.
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Login credentials"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "username and password are required")
		return
	}

	output, err := h.authService.Login(c.Request.Context(), &service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		response.Error(c, err)
		return
	}

	response.OK(c, "Login successful", tokenResponse(output))
}

// Register handles user registration
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RegisterRequest true "Registration data"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Registration successful", response.NewUserResponse(user))
}

// Me returns the current user
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "User retrieved successfully", response.NewUserResponse(user))
}

// UpdateMe updates email, full name and password of the current user
// @Summary Update current user
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.UpdateMeRequest true "Profile changes"
// @Success 200 {object} response.APIResponse
// @Router /auth/me [put]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req request.UpdateMeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	updated, err := h.authService.UpdateMe(c.Request.Context(), &service.UpdateMeInput{
		UserID:   user.ID,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "User updated successfully", response.NewUserResponse(updated))
}

// GoogleAuth redirects to the Google consent screen
// @Summary Google sign-in
// @Tags auth
// @Success 307
// @Failure 503 {object} response.APIResponse
// @Router /auth/google [get]
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	if h.google == nil || !h.google.IsConfigured() {
		response.Error(c, apperror.NewAppError(http.StatusServiceUnavailable, oauth.ErrOAuthNotConfigured.Error()))
		return
	}
	authURL, _ := h.google.GetAuthURL()
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallback completes the Google sign-in and redirects to the frontend
// with the issued token, or with an error code.
// @Summary Google sign-in callback
// @Tags auth
// @Success 307
// @Failure 503 {object} response.APIResponse
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.google == nil || !h.google.IsConfigured() {
		response.Error(c, apperror.NewAppError(http.StatusServiceUnavailable, oauth.ErrOAuthNotConfigured.Error()))
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		h.redirectError(c, errParam)
		return
	}

	info, err := h.google.Authenticate(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		log.Warn().Err(err).Msg("google sign-in failed")
		switch {
		case errors.Is(err, oauth.ErrInvalidState):
			h.redirectError(c, "invalid_state")
		case errors.Is(err, oauth.ErrUnverifiedEmail):
			h.redirectError(c, "unverified_email")
		default:
			h.redirectError(c, "oauth_failed")
		}
		return
	}

	output, err := h.authService.GoogleSignIn(c.Request.Context(), info)
	if err != nil {
		if errors.Is(err, apperror.ErrInactiveUser) {
			h.redirectError(c, "inactive_user")
			return
		}
		log.Error().Err(err).Str("email", info.Email).Msg("google sign-in could not resolve user")
		h.redirectError(c, "oauth_failed")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, withQuery(h.google.FrontendSuccessURL(), url.Values{
		"token":      {output.AccessToken},
		"token_type": {output.TokenType},
	}))
}

func (h *AuthHandler) redirectError(c *gin.Context, code string) {
	c.Redirect(http.StatusTemporaryRedirect, withQuery(h.google.FrontendErrorURL(), url.Values{"error": {code}}))
}

func withQuery(base string, values url.Values) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	for k, v := range values {
		q[k] = v
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func tokenResponse(output *service.LoginOutput) response.TokenResponse {
	return response.TokenResponse{
		AccessToken: output.AccessToken,
		TokenType:   output.TokenType,
		ExpiresIn:   output.ExpiresIn,
		User:        response.NewUserResponse(output.User),
	}
}
