package migration

import (
	"github.com/shadowiq/shadowiq/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists every persisted model in dependency order.
func AutoMigrateModels() []any {
	return []any{
		&models.IdentityModel{},
		&models.ProjectModel{},
		&models.ProjectFileModel{},
		&models.DeliverableModel{},
		&models.MessageModel{},
		&models.AuditLogModel{},
		&models.DownloadTokenModel{},
	}
}
