package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/constants"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// callerFromContext returns the identity an access guard authorized. A
// missing caller means the route was registered without a guard.
func callerFromContext(c *gin.Context, log logger.Interface) (*identity.Identity, error) {
	v, exists := c.Get(constants.ContextKeyCaller)
	if !exists {
		log.Warnw("caller not found in context", "path", c.FullPath(), "ip", c.ClientIP())
		return nil, errors.NewUnauthorizedError(constants.ErrMsgUnauthenticated)
	}
	caller, ok := v.(*identity.Identity)
	if !ok || caller == nil {
		log.Errorw("invalid caller type in context", "path", c.FullPath())
		return nil, errors.NewInternalError("invalid caller in context")
	}
	return caller, nil
}

// projectFromContext returns the project loaded by a project guard.
func projectFromContext(c *gin.Context, log logger.Interface) (*project.Project, error) {
	v, exists := c.Get(constants.ContextKeyProject)
	if !exists {
		log.Errorw("project not found in context", "path", c.FullPath())
		return nil, errors.NewInternalError("project not loaded")
	}
	proj, ok := v.(*project.Project)
	if !ok || proj == nil {
		log.Errorw("invalid project type in context", "path", c.FullPath())
		return nil, errors.NewInternalError("project not loaded")
	}
	return proj, nil
}

// callerAndProject is the common prologue of project-scoped handlers.
func callerAndProject(c *gin.Context, log logger.Interface) (*identity.Identity, *project.Project, error) {
	caller, err := callerFromContext(c, log)
	if err != nil {
		return nil, nil, err
	}
	proj, err := projectFromContext(c, log)
	if err != nil {
		return nil, nil, err
	}
	return caller, proj, nil
}
