package project

import (
	"context"

	vo "github.com/shadowiq/shadowiq/internal/domain/project/valueobjects"
)

// Repository persists projects. Lookups return (nil, nil) when no row
// matches.
type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	GetByCode(ctx context.Context, code string) (*Project, error)
	// Update writes the project if its stored version still equals
	// project.Version(), then bumps the version. A stale version yields a
	// conflict error.
	Update(ctx context.Context, project *Project) error
	List(ctx context.Context, filter ListFilter) ([]*Project, int64, error)
}

// ListFilter selects projects for dashboards. Nil fields are not filtered.
type ListFilter struct {
	ClientID  *string
	AnalystID *string
	Status    *vo.ProjectStatus
	Page      int
	PageSize  int
}

// FileRepository persists client uploads.
type FileRepository interface {
	Create(ctx context.Context, file *ProjectFile) error
	GetByID(ctx context.Context, id string) (*ProjectFile, error)
	ListByProject(ctx context.Context, projectID string) ([]*ProjectFile, error)
}

// DeliverableRepository persists analyst uploads.
type DeliverableRepository interface {
	Create(ctx context.Context, deliverable *Deliverable) error
	GetByID(ctx context.Context, id string) (*Deliverable, error)
	ListByProject(ctx context.Context, projectID string) ([]*Deliverable, error)
}

// MessageRepository persists project messages.
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	ListByProject(ctx context.Context, projectID string) ([]*Message, error)
	// MarkReadFor marks messages not sent by readerID as read.
	MarkReadFor(ctx context.Context, projectID, readerID string) (int64, error)
}
