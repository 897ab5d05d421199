package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/shadowiq/shadowiq/internal/application/access"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/constants"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

// ProjectRefParam is the route parameter carrying a project id or code.
const ProjectRefParam = "ref"

// AccessGate is the subset of access.Gate the middleware uses.
type AccessGate interface {
	RequireAuthenticated(principal identity.Principal) (*identity.Identity, error)
	RequireRole(ctx context.Context, principal identity.Principal, operation string) (*identity.Identity, error)
	RequireRoleOnRef(ctx context.Context, principal identity.Principal, operation, rawRef string) (*identity.Identity, error)
	RequireProject(ctx context.Context, principal identity.Principal, rawRef string, req access.Requirement, operation string) (*identity.Identity, *project.Project, error)
	LoadProject(ctx context.Context, ref project.Ref) (*project.Project, error)
}

// AccessMiddleware turns gate decisions into route guards. Handlers read
// the authorized caller with CallerFrom and the loaded project with
// ProjectFrom.
type AccessMiddleware struct {
	gate AccessGate
}

func NewAccessMiddleware(gate AccessGate) *AccessMiddleware {
	return &AccessMiddleware{gate: gate}
}

// RequireAuth rejects anonymous callers with 401.
func (m *AccessMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := m.gate.RequireAuthenticated(PrincipalFrom(c))
		if err != nil {
			abortWithError(c, err)
			return
		}
		setCaller(c, caller)
		c.Next()
	}
}

// RequireRole guards a role-scoped operation such as audit.read.
func (m *AccessMiddleware) RequireRole(operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := m.gate.RequireRole(c.Request.Context(), PrincipalFrom(c), operation)
		if err != nil {
			abortWithError(c, err)
			return
		}
		setCaller(c, caller)
		c.Next()
	}
}

// RequireProject guards a project-scoped route with req and loads the
// project named by the :ref parameter.
func (m *AccessMiddleware) RequireProject(req access.Requirement, operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, proj, err := m.gate.RequireProject(
			c.Request.Context(), PrincipalFrom(c), c.Param(ProjectRefParam), req, operation,
		)
		if err != nil {
			abortWithError(c, err)
			return
		}
		setCaller(c, caller)
		c.Set(constants.ContextKeyProject, proj)
		c.Next()
	}
}

// RequireRoleOnProject authorizes a role-scoped operation and then loads
// the :ref project. The role check runs first so a non-admin never learns
// whether a project exists.
func (m *AccessMiddleware) RequireRoleOnProject(operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		rawRef := c.Param(ProjectRefParam)
		caller, err := m.gate.RequireRoleOnRef(ctx, PrincipalFrom(c), operation, rawRef)
		if err != nil {
			abortWithError(c, err)
			return
		}

		ref, err := project.ParseRef(rawRef)
		if err != nil {
			abortWithError(c, errors.NewValidationError("invalid project reference"))
			return
		}
		proj, err := m.gate.LoadProject(ctx, ref)
		if err != nil {
			abortWithError(c, err)
			return
		}

		setCaller(c, caller)
		c.Set(constants.ContextKeyProject, proj)
		c.Next()
	}
}

func setCaller(c *gin.Context, caller *identity.Identity) {
	c.Set(constants.ContextKeyCaller, caller)
	c.Set(constants.ContextKeyIdentityID, caller.ID())
}

// CallerFrom returns the identity authorized by an access guard.
func CallerFrom(c *gin.Context) (*identity.Identity, bool) {
	v, ok := c.Get(constants.ContextKeyCaller)
	if !ok {
		return nil, false
	}
	caller, ok := v.(*identity.Identity)
	return caller, ok && caller != nil
}

// ProjectFrom returns the project loaded by a project guard.
func ProjectFrom(c *gin.Context) (*project.Project, bool) {
	v, ok := c.Get(constants.ContextKeyProject)
	if !ok {
		return nil, false
	}
	proj, ok := v.(*project.Project)
	return proj, ok && proj != nil
}

func abortWithError(c *gin.Context, err error) {
	utils.ErrorResponseWithError(c, err)
	c.Abort()
}

var _ AccessGate = (*access.Gate)(nil)
