package audit

import (
	"context"
	"time"
)

// Repository appends and reads audit entries. Entries are never updated
// or deleted.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter ListFilter) ([]*Entry, int64, error)
}

// ListFilter selects entries for review. Nil fields are not filtered.
type ListFilter struct {
	ProjectID  *string
	IdentityID *string
	Action     *Action
	Since      *time.Time
	Until      *time.Time
	Page       int
	PageSize   int
}
