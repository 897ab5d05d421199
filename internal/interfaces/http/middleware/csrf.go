package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

// csrfExactPaths lists exact paths exempt from CSRF validation.
var csrfExactPaths = map[string]struct{}{
	// No session exists yet when a link is requested.
	"/auth/magic-link": {},
	// Logout is exempt because the CSRF cookie may have expired with the session.
	"/auth/logout":     {},
}

// csrfPrefixPaths lists path prefixes exempt from CSRF validation. These
// are authenticated by a signature or bearer token rather than the session
// cookie.
var csrfPrefixPaths = []string{
	"/webhooks/",
	"/files/local/",
	"/downloads/",
}

// CSRF validates the double-submit cookie: for mutating requests the
// csrf_token cookie must equal the X-CSRF-Token header.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) || isCSRFExempt(c.Request.URL.Path) {
			c.Next()
			return
		}

		cookieToken, err := c.Cookie(utils.CSRFTokenCookie)
		if err != nil || cookieToken == "" {
			utils.ErrorResponse(c, http.StatusForbidden, "missing CSRF token")
			c.Abort()
			return
		}

		headerToken := c.GetHeader(utils.CSRFTokenHeader)
		if headerToken == "" {
			utils.ErrorResponse(c, http.StatusForbidden, "missing CSRF token header")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(cookieToken), []byte(headerToken)) != 1 {
			utils.ErrorResponse(c, http.StatusForbidden, "invalid CSRF token")
			c.Abort()
			return
		}

		c.Next()
	}
}

func isCSRFExempt(path string) bool {
	if _, ok := csrfExactPaths[path]; ok {
		return true
	}
	for _, prefix := range csrfPrefixPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// isSafeMethod returns true for HTTP methods that do not mutate state.
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
