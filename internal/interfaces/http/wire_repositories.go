package http

import (
	"gorm.io/gorm"

	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/downloadtoken"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/infrastructure/repository"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	identityRepo    identity.Repository
	projectRepo     project.Repository
	fileRepo        project.FileRepository
	deliverableRepo project.DeliverableRepository
	messageRepo     project.MessageRepository
	auditRepo       audit.Repository
	tokenRepo       downloadtoken.Repository
}

// newRepositories creates all repository instances from the database connection.
func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		identityRepo:    repository.NewIdentityRepository(db, log.Named("identity_repo")),
		projectRepo:     repository.NewProjectRepository(db, log.Named("project_repo")),
		fileRepo:        repository.NewProjectFileRepository(db),
		deliverableRepo: repository.NewDeliverableRepository(db),
		messageRepo:     repository.NewMessageRepository(db),
		auditRepo:       repository.NewAuditRepository(db),
		tokenRepo:       repository.NewDownloadTokenRepository(db),
	}
}
