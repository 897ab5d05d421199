package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

func TestCSRF(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		cookie     string
		header     string
		wantStatus int
	}{
		{"safe method", http.MethodGet, "/projects", "", "", http.StatusOK},
		{"matching tokens", http.MethodPost, "/projects", "tok", "tok", http.StatusOK},
		{"missing cookie", http.MethodPost, "/projects", "", "tok", http.StatusForbidden},
		{"missing header", http.MethodPost, "/projects", "tok", "", http.StatusForbidden},
		{"mismatched tokens", http.MethodPost, "/projects", "tok", "other", http.StatusForbidden},
		{"magic link request exempt", http.MethodPost, "/auth/magic-link", "", "", http.StatusOK},
		{"logout exempt", http.MethodPost, "/auth/logout", "", "", http.StatusOK},
		{"webhook exempt", http.MethodPost, "/webhooks/payments", "", "", http.StatusOK},
		{"local storage exempt", http.MethodPut, "/files/local/projects/p/a.pdf", "", "", http.StatusOK},
		{"magic link lookalike not exempt", http.MethodPost, "/auth/magic-link/extra", "", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CSRF())
			r.Any("/*path", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: utils.CSRFTokenCookie, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(utils.CSRFTokenHeader, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
