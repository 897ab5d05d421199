package access

import (
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/domain/project"
)

// Requirement is a project-scoped predicate together with how its denial is
// recorded.
type Requirement struct {
	Name         string
	RequiredRole string
	DenialAction audit.Action
	Allow        func(*identity.Identity, *project.Project) bool
}

var (
	RequireProjectAccess = Requirement{
		Name:         "project_access",
		RequiredRole: "owner, analyst or admin",
		DenialAction: audit.ActionUnauthorizedProjectAccess,
		Allow:        ProjectAccess,
	}
	RequireAnalystProjectAccess = Requirement{
		Name:         "analyst_project_access",
		RequiredRole: "assigned analyst or admin",
		DenialAction: audit.ActionUnauthorizedAnalystAccess,
		Allow:        AnalystProjectAccess,
	}
	RequireOwner = Requirement{
		Name:         "owner",
		RequiredRole: "owner",
		DenialAction: audit.ActionUnauthorizedProjectAccess,
		Allow:        OwnsProject,
	}
	RequireOwnerOrAdmin = Requirement{
		Name:         "owner_or_admin",
		RequiredRole: "owner or admin",
		DenialAction: audit.ActionUnauthorizedProjectAccess,
		Allow:        OwnerOrAdmin,
	}
)
