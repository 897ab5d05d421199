// Package access decides whether a principal may perform an operation and
// records every denial in the audit log.
package access

import (
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/domain/project"
)

// Authenticated reports whether p resolved to an identity.
func Authenticated(p identity.Principal) bool {
	return !p.IsAnonymous()
}

func IsAdmin(i *identity.Identity) bool {
	return i != nil && i.IsAdmin()
}

func IsAnalyst(i *identity.Identity) bool {
	return i != nil && i.IsAnalyst()
}

// IsClient is false for nil: an anonymous caller is not a client.
func IsClient(i *identity.Identity) bool {
	return i != nil && i.IsClient()
}

func OwnsProject(i *identity.Identity, p *project.Project) bool {
	return i != nil && p != nil && p.IsOwnedBy(i.ID())
}

func AssignedToProject(i *identity.Identity, p *project.Project) bool {
	return i != nil && p != nil && p.IsAssignedTo(i.ID())
}

// ProjectAccess is broad read access: the owner or any staff member.
func ProjectAccess(i *identity.Identity, p *project.Project) bool {
	return OwnsProject(i, p) || IsAdmin(i) || IsAnalyst(i)
}

// AnalystProjectAccess is work access: the assigned analyst or an admin.
func AnalystProjectAccess(i *identity.Identity, p *project.Project) bool {
	return AssignedToProject(i, p) || IsAdmin(i)
}

// OwnerOrAdmin restricts client actions to the owning client or an admin.
func OwnerOrAdmin(i *identity.Identity, p *project.Project) bool {
	return OwnsProject(i, p) || IsAdmin(i)
}
