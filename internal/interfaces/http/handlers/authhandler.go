package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	identitydto "github.com/shadowiq/shadowiq/internal/application/identity/dto"
	identityUsecases "github.com/shadowiq/shadowiq/internal/application/identity/usecases"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/config"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

type AuthHandler struct {
	requestLinkUseCase requestMagicLinkUseCase
	verifyLinkUseCase  verifyMagicLinkUseCase
	logoutUseCase      logoutUseCase
	sessionConfig      config.SessionConfig
	logger             logger.Interface
}

func NewAuthHandler(
	requestLinkUC requestMagicLinkUseCase,
	verifyLinkUC verifyMagicLinkUseCase,
	logoutUC logoutUseCase,
	sessionConfig config.SessionConfig,
	logger logger.Interface,
) *AuthHandler {
	return &AuthHandler{
		requestLinkUseCase: requestLinkUC,
		verifyLinkUseCase:  verifyLinkUC,
		logoutUseCase:      logoutUC,
		sessionConfig:      sessionConfig,
		logger:             logger,
	}
}

// MagicLinkRequest names an existing alias, an email, or both. A new
// identity gets a generated alias when only an email is given.
type MagicLinkRequest struct {
	Alias string `json:"alias" binding:"omitempty,min=3,max=32"`
	Email string `json:"email" binding:"omitempty,email,max=255"`
}

type MagicLinkResponse struct {
	Alias     string `json:"alias"`
	Created   bool   `json:"created"`
	Delivered bool   `json:"delivered"`
	ExpiresAt string `json:"expires_at"`
	MagicLink string `json:"magic_link,omitempty"`
}

type VerifyResponse struct {
	Identity   *identitydto.IdentityResponse `json:"identity"`
	RedirectTo string                        `json:"redirect_to"`
}

// RequestMagicLink issues a sign-in link for an alias or email.
func (h *AuthHandler) RequestMagicLink(c *gin.Context) {
	var req MagicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid magic link request", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.requestLinkUseCase.Execute(c.Request.Context(), identityUsecases.RequestMagicLinkCommand{
		Alias: req.Alias,
		Email: req.Email,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	message := "sign-in link issued"
	if result.Delivered {
		message = "sign-in link sent"
	}
	utils.SuccessResponse(c, http.StatusOK, message, MagicLinkResponse{
		Alias:     result.Alias,
		Created:   result.Created,
		Delivered: result.Delivered,
		ExpiresAt: biztime.FormatRFC3339(result.ExpiresAt),
		MagicLink: result.MagicLink,
	})
}

// Verify consumes a magic-link token and starts a session.
func (h *AuthHandler) Verify(c *gin.Context) {
	result, err := h.verifyLinkUseCase.Execute(c.Request.Context(), identityUsecases.VerifyMagicLinkCommand{
		Token: c.Query("token"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SetSessionCookie(c, h.sessionConfig, result.SessionID)
	utils.SetCSRFCookie(c, h.sessionConfig)

	utils.SuccessResponse(c, http.StatusOK, "signed in", VerifyResponse{
		Identity:   identitydto.ToIdentityResponse(result.Identity, true),
		RedirectTo: result.RedirectTo,
	})
}

// Logout ends the current session. It succeeds for anonymous callers so a
// stale cookie can always be cleared.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := utils.SessionIDFromCookie(c, h.sessionConfig.CookieName)
	if sessionID != "" {
		if err := h.logoutUseCase.Execute(c.Request.Context(), identityUsecases.LogoutCommand{SessionID: sessionID}); err != nil {
			h.logger.Warnw("logout failed", "error", err)
		}
	}

	utils.ClearSessionCookie(c, h.sessionConfig)
	utils.ClearCSRFCookie(c, h.sessionConfig)
	utils.SuccessResponse(c, http.StatusOK, "signed out", nil)
}

// Me returns the signed-in identity including its email address.
func (h *AuthHandler) Me(c *gin.Context) {
	caller, err := callerFromContext(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", identitydto.ToIdentityResponse(caller, true))
}
