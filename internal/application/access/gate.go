package access

import (
	"context"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/constants"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// maxRecordedRefLen bounds the caller-supplied project reference copied
// into a denial entry.
const maxRecordedRefLen = 64

// RoleAuthorizer answers role-scoped questions such as "may an analyst
// perform payment.refund".
type RoleAuthorizer interface {
	Authorize(role identity.Role, operation string) (bool, error)
	// RequiredRoles lists the lowest roles granted operation.
	RequiredRoles(operation string) []string
}

// Gate is the single choke point for authorization decisions.
type Gate struct {
	projects project.Repository
	roles    RoleAuthorizer
	recorder auditlog.Recorder
	observer DecisionObserver
	logger   logger.Interface
}

func NewGate(
	projects project.Repository,
	roles RoleAuthorizer,
	recorder auditlog.Recorder,
	observer DecisionObserver,
	logger logger.Interface,
) *Gate {
	if observer == nil {
		observer = NopObserver()
	}
	return &Gate{
		projects: projects,
		roles:    roles,
		recorder: recorder,
		observer: observer,
		logger:   logger,
	}
}

// RequireAuthenticated returns the caller's identity or Unauthenticated.
func (g *Gate) RequireAuthenticated(principal identity.Principal) (*identity.Identity, error) {
	if !Authenticated(principal) {
		return nil, errors.NewUnauthorizedError(constants.ErrMsgUnauthenticated)
	}
	return principal.Identity(), nil
}

// RequireRole authorizes a role-scoped operation. Denials are recorded as
// unauthorized_access.
func (g *Gate) RequireRole(ctx context.Context, principal identity.Principal, operation string) (*identity.Identity, error) {
	return g.requireRole(ctx, principal, operation, nil)
}

// RequireRoleOnRef authorizes a role-scoped operation aimed at a project
// before the project is loaded. A denial records the raw reference as
// supplied, so the entry never reveals whether the project exists.
func (g *Gate) RequireRoleOnRef(ctx context.Context, principal identity.Principal, operation, rawRef string) (*identity.Identity, error) {
	if len(rawRef) > maxRecordedRefLen {
		rawRef = rawRef[:maxRecordedRefLen]
	}
	return g.requireRole(ctx, principal, operation, audit.Details{"project_ref": rawRef})
}

func (g *Gate) requireRole(ctx context.Context, principal identity.Principal, operation string, extra audit.Details) (*identity.Identity, error) {
	caller, err := g.RequireAuthenticated(principal)
	if err != nil {
		g.observer.ObserveDecision(operation, OutcomeUnauthenticated)
		return nil, err
	}

	allowed, err := g.roles.Authorize(caller.Role(), operation)
	if err != nil {
		g.logger.Errorw("role authorization failed", "operation", operation, "identity_id", caller.ID(), "error", err)
		return nil, errors.NewInternalError("authorization check failed")
	}
	if allowed {
		g.observer.ObserveDecision(operation, OutcomeAllowed)
		return caller, nil
	}

	details := audit.Details{
		"operation":     operation,
		"required_role": g.roles.RequiredRoles(operation),
		"role":          caller.Role().String(),
	}
	for k, v := range extra {
		details[k] = v
	}
	g.deny(ctx, caller, nil, audit.ActionUnauthorizedAccess, details)
	g.observer.ObserveDecision(operation, OutcomeDenied)
	return nil, errors.NewForbiddenError(constants.ErrMsgForbidden)
}

// RequireProject evaluates a project-scoped requirement in order:
// authentication, reference syntax, existence, predicate. Only a failed
// predicate is audited. On success the loaded project is returned.
func (g *Gate) RequireProject(
	ctx context.Context,
	principal identity.Principal,
	rawRef string,
	req Requirement,
	operation string,
) (*identity.Identity, *project.Project, error) {
	caller, err := g.RequireAuthenticated(principal)
	if err != nil {
		g.observer.ObserveDecision(req.Name, OutcomeUnauthenticated)
		return nil, nil, err
	}

	ref, err := project.ParseRef(rawRef)
	if err != nil {
		return nil, nil, errors.NewValidationError("invalid project reference")
	}

	proj, err := g.LoadProject(ctx, ref)
	if err != nil {
		return nil, nil, err
	}

	if req.Allow(caller, proj) {
		g.observer.ObserveDecision(req.Name, OutcomeAllowed)
		return caller, proj, nil
	}

	g.deny(ctx, caller, proj, req.DenialAction, audit.Details{
		"operation":     operation,
		"required_role": req.RequiredRole,
		"requirement":   req.Name,
		"project_code":  proj.Code(),
	})
	g.observer.ObserveDecision(req.Name, OutcomeDenied)
	return nil, nil, errors.NewForbiddenError(constants.ErrMsgForbidden)
}

// LoadProject fetches a project by reference, mapping absence to NotFound.
func (g *Gate) LoadProject(ctx context.Context, ref project.Ref) (*project.Project, error) {
	var (
		proj *project.Project
		err  error
	)
	if ref.ID != "" {
		proj, err = g.projects.GetByID(ctx, ref.ID)
	} else {
		proj, err = g.projects.GetByCode(ctx, ref.Code)
	}
	if err != nil {
		g.logger.Errorw("failed to load project", "ref", ref.String(), "error", err)
		return nil, errors.NewInternalError("failed to load project")
	}
	if proj == nil {
		return nil, errors.NewNotFoundError("project not found")
	}
	return proj, nil
}

// deny writes the denial entry. A failed write is logged and counted; the
// caller still returns Forbidden.
func (g *Gate) deny(ctx context.Context, caller *identity.Identity, proj *project.Project, action audit.Action, details audit.Details) {
	event := auditlog.Event{
		Action:     action,
		IdentityID: caller.ID(),
		Details:    details,
	}
	if proj != nil {
		event.ProjectID = proj.ID()
	}

	g.logger.Warnw("access denied",
		"action", action,
		"identity_id", caller.ID(),
		"project_id", event.ProjectID,
		"operation", details["operation"],
	)

	if err := g.recorder.Record(ctx, event); err != nil {
		g.observer.ObserveAuditFailure(action.String())
		g.logger.Errorw("failed to record access denial", "action", action, "identity_id", caller.ID(), "error", err)
	}
}
