package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	identityUsecases "github.com/shadowiq/shadowiq/internal/application/identity/usecases"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/shared/constants"
	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

// PrincipalMiddleware resolves the session cookie on every request. It never
// rejects: unresolvable sessions become the anonymous principal and routes
// decide through the access gate.
type PrincipalMiddleware struct {
	resolver   identityUsecases.SessionResolver
	cookieName string
}

func NewPrincipalMiddleware(resolver identityUsecases.SessionResolver, cookieName string) *PrincipalMiddleware {
	return &PrincipalMiddleware{
		resolver:   resolver,
		cookieName: cookieName,
	}
}

// Resolve stores the principal in the gin context and in the request
// context together with the requester metadata used by the audit log.
func (m *PrincipalMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		client := utils.GetClientInfo(c)
		ctx = auditlog.WithRequestMeta(ctx, auditlog.RequestMeta{
			IPAddress: client.IPAddress,
			UserAgent: client.UserAgent,
			RequestID: c.GetString(constants.ContextKeyRequestID),
		})

		principal := m.resolver.Resolve(ctx, utils.SessionIDFromCookie(c, m.cookieName))
		ctx = identity.WithPrincipal(ctx, principal)

		c.Request = c.Request.WithContext(ctx)
		c.Set(constants.ContextKeyPrincipal, principal)
		if !principal.IsAnonymous() {
			c.Set(constants.ContextKeyIdentityID, principal.IdentityID())
		}

		c.Next()
	}
}

// PrincipalFrom returns the principal stored by Resolve, or anonymous.
func PrincipalFrom(c *gin.Context) identity.Principal {
	if v, ok := c.Get(constants.ContextKeyPrincipal); ok {
		if p, ok := v.(identity.Principal); ok {
			return p
		}
	}
	return identity.PrincipalFromContext(c.Request.Context())
}
