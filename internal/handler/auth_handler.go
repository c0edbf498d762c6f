package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/autoimport/internal/domain"
	"github.com/prperemyshlev/autoimport/internal/dto"
	"github.com/prperemyshlev/autoimport/internal/service"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService   service.AuthService
	secureCookies bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.Response{data=dto.AuthData}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken, result.RefreshExpiresIn)
	respond(c, http.StatusCreated, "User registered successfully", dto.AuthData{
		User:   result.User,
		Tokens: result.Tokens,
	})
}

// Login handles user login
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.Response{data=dto.AuthData}
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken, result.RefreshExpiresIn)
	respond(c, http.StatusOK, "Login successful", dto.AuthData{
		User:   result.User,
		Tokens: result.Tokens,
	})
}

// Refresh rotates the refresh token and issues a new pair
// @Summary Refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest false "Refresh request"
// @Success 200 {object} dto.Response{data=dto.TokensData}
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	token := h.refreshTokenFrom(c, req.RefreshToken)

	result, err := h.authService.RefreshToken(c.Request.Context(), token)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken, result.RefreshExpiresIn)
	respond(c, http.StatusOK, "Token refreshed successfully", dto.TokensData{Tokens: result.Tokens})
}

// Logout revokes one refresh token
// @Summary Logout
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LogoutRequest false "Logout request"
// @Success 200 {object} dto.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	token := h.refreshTokenFrom(c, req.RefreshToken)

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		_ = c.Error(err)
		return
	}

	h.clearRefreshCookie(c)
	respond(c, http.StatusOK, "Logged out successfully", nil)
}

// LogoutAll revokes every refresh token of the caller
// @Summary Logout from all sessions
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.Response
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		_ = c.Error(domain.ErrNoToken)
		return
	}

	n, err := h.authService.LogoutAll(c.Request.Context(), claims.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.clearRefreshCookie(c)
	respond(c, http.StatusOK, "Logged out from all sessions", gin.H{"sessionsRevoked": n})
}

// GetMe handles getting current user profile
// @Summary Get current user profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.Response{data=dto.UserData}
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		_ = c.Error(domain.ErrNoToken)
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "", dto.UserData{User: user})
}

func (h *AuthHandler) refreshTokenFrom(c *gin.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	cookie, _ := c.Cookie(refreshCookieName)
	return cookie
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, maxAge, refreshCookiePath, "", h.secureCookies, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", h.secureCookies, true)
}

// bindOptionalJSON binds a body when one was sent
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
