package utils

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shadowiq/shadowiq/internal/shared/config"
)

const (
	CSRFTokenCookie = "csrf_token"
	CSRFTokenHeader = "X-CSRF-Token"
	csrfTokenBytes  = 32
)

// SetSessionCookie writes the opaque session id as an HttpOnly cookie.
func SetSessionCookie(c *gin.Context, cfg config.SessionConfig, sessionID string) {
	c.SetSameSite(parseSameSite(cfg.SameSite))
	c.SetCookie(cfg.CookieName, sessionID, int(cfg.TTL().Seconds()), cfg.Path, cfg.Domain, cfg.Secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, cfg config.SessionConfig) {
	c.SetSameSite(parseSameSite(cfg.SameSite))
	c.SetCookie(cfg.CookieName, "", -1, cfg.Path, cfg.Domain, cfg.Secure, true)
}

// SessionIDFromCookie returns the session id or "" when the cookie is absent.
func SessionIDFromCookie(c *gin.Context, cookieName string) string {
	sessionID, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return sessionID
}

// SetCSRFCookie sets a random token as a non-HttpOnly cookie so the frontend
// can echo it back in CSRFTokenHeader.
func SetCSRFCookie(c *gin.Context, cfg config.SessionConfig) {
	c.SetSameSite(parseSameSite(cfg.SameSite))
	c.SetCookie(CSRFTokenCookie, generateCSRFToken(), int(cfg.TTL().Seconds()), cfg.Path, cfg.Domain, cfg.Secure, false)
}

// ClearCSRFCookie removes the CSRF token cookie.
func ClearCSRFCookie(c *gin.Context, cfg config.SessionConfig) {
	c.SetSameSite(parseSameSite(cfg.SameSite))
	c.SetCookie(CSRFTokenCookie, "", -1, cfg.Path, cfg.Domain, cfg.Secure, false)
}

func generateCSRFToken() string {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic("csrf: failed to generate random token: " + err.Error())
	}
	return hex.EncodeToString(b)
}

func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
