// Package audit defines the append-only compliance log.
package audit

import (
	"fmt"
	"time"
)

// Action tags an audit entry.
type Action string

const (
	ActionProjectSubmitted          Action = "project_submitted"
	ActionProjectAccepted           Action = "project_accepted"
	ActionStatusChanged             Action = "status_changed"
	ActionFileUploaded              Action = "file_uploaded"
	ActionFileDownloaded            Action = "file_downloaded"
	ActionDeliverableUploaded       Action = "deliverable_uploaded"
	ActionPaymentProcessed          Action = "payment_processed"
	ActionMessageSent               Action = "message_sent"
	ActionProjectRejected           Action = "project_rejected"
	ActionDisputeFiled              Action = "dispute_filed"
	ActionDisputeResolved           Action = "dispute_resolved"
	ActionAnalystAssigned           Action = "analyst_assigned"
	ActionMagicLinkRequested        Action = "magic_link_requested"
	ActionUserLoggedIn              Action = "user_logged_in"
	ActionUserLoggedOut             Action = "user_logged_out"
	ActionPayoutReleased            Action = "payout_released"
	ActionPaymentRefunded           Action = "payment_refunded"
	ActionRolesUpdated              Action = "roles_updated"
	ActionUnauthorizedAccess        Action = "unauthorized_access"
	ActionUnauthorizedProjectAccess Action = "unauthorized_project_access"
	ActionUnauthorizedAnalystAccess Action = "unauthorized_analyst_access"
)

var validActions = map[Action]bool{
	ActionProjectSubmitted:          true,
	ActionProjectAccepted:           true,
	ActionStatusChanged:             true,
	ActionFileUploaded:              true,
	ActionFileDownloaded:            true,
	ActionDeliverableUploaded:       true,
	ActionPaymentProcessed:          true,
	ActionMessageSent:               true,
	ActionProjectRejected:           true,
	ActionDisputeFiled:              true,
	ActionDisputeResolved:           true,
	ActionAnalystAssigned:           true,
	ActionMagicLinkRequested:        true,
	ActionUserLoggedIn:              true,
	ActionUserLoggedOut:             true,
	ActionPayoutReleased:            true,
	ActionPaymentRefunded:           true,
	ActionRolesUpdated:              true,
	ActionUnauthorizedAccess:        true,
	ActionUnauthorizedProjectAccess: true,
	ActionUnauthorizedAnalystAccess: true,
}

func (a Action) IsValid() bool {
	return validActions[a]
}

// IsDenial reports whether a records a failed authorization.
func (a Action) IsDenial() bool {
	return a == ActionUnauthorizedAccess ||
		a == ActionUnauthorizedProjectAccess ||
		a == ActionUnauthorizedAnalystAccess
}

func (a Action) String() string {
	return string(a)
}

func NewAction(s string) (Action, error) {
	a := Action(s)
	if !a.IsValid() {
		return "", fmt.Errorf("invalid audit action: %s", s)
	}
	return a, nil
}

// Details holds the structured facts of an entry.
type Details map[string]any

// Entry is an immutable audit fact. It has no mutators.
type Entry struct {
	id         string
	projectID  *string
	identityID *string
	action     Action
	details    Details
	ipAddress  *string
	userAgent  *string
	createdAt  time.Time
}

// NewEntryParams describes an entry to append.
type NewEntryParams struct {
	ID         string
	ProjectID  string
	IdentityID string
	Action     Action
	Details    Details
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
}

// NewEntry validates p. Empty optional strings are stored as null.
func NewEntry(p NewEntryParams) (*Entry, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("audit entry ID is required")
	}
	if !p.Action.IsValid() {
		return nil, fmt.Errorf("invalid audit action: %s", p.Action)
	}
	if p.CreatedAt.IsZero() {
		return nil, fmt.Errorf("audit entry timestamp is required")
	}
	details := p.Details
	if details == nil {
		details = Details{}
	}

	return &Entry{
		id:         p.ID,
		projectID:  optional(p.ProjectID),
		identityID: optional(p.IdentityID),
		action:     p.Action,
		details:    details,
		ipAddress:  optional(p.IPAddress),
		userAgent:  optional(p.UserAgent),
		createdAt:  p.CreatedAt,
	}, nil
}

// ReconstructEntry rebuilds an entry read from storage.
func ReconstructEntry(id string, projectID, identityID *string, action Action, details Details, ipAddress, userAgent *string, createdAt time.Time) *Entry {
	if details == nil {
		details = Details{}
	}
	return &Entry{
		id:         id,
		projectID:  projectID,
		identityID: identityID,
		action:     action,
		details:    details,
		ipAddress:  ipAddress,
		userAgent:  userAgent,
		createdAt:  createdAt,
	}
}

func (e *Entry) ID() string {
	return e.id
}

func (e *Entry) ProjectID() *string {
	return e.projectID
}

func (e *Entry) IdentityID() *string {
	return e.identityID
}

func (e *Entry) Action() Action {
	return e.action
}

// Details returns a copy of the detail payload.
func (e *Entry) Details() Details {
	out := make(Details, len(e.details))
	for k, v := range e.details {
		out[k] = v
	}
	return out
}

func (e *Entry) IPAddress() *string {
	return e.ipAddress
}

func (e *Entry) UserAgent() *string {
	return e.userAgent
}

func (e *Entry) CreatedAt() time.Time {
	return e.createdAt
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
