package models

import (
	"time"

	"github.com/shadowiq/shadowiq/internal/shared/constants"
)

type ProjectModel struct {
	ID                  string     `gorm:"primaryKey;size:36"`
	Code                string     `gorm:"uniqueIndex:idx_projects_code;size:20;not null"`
	ClientID            string     `gorm:"size:36;not null;index:idx_projects_client_id"`
	AssignedAnalystID   *string    `gorm:"size:36;index:idx_projects_assigned_analyst_id"`
	Title               string     `gorm:"size:200;not null"`
	Description         string     `gorm:"type:text;not null"`
	Stage               string     `gorm:"size:32;not null"`
	SupportType         string     `gorm:"size:32;not null"`
	ResearchArea        string     `gorm:"size:255;not null"`
	SampleSize          *string    `gorm:"size:100"`
	PreferredMethods    *string    `gorm:"type:text"`
	Deadline            *time.Time
	BudgetRange         *string `gorm:"size:50"`
	Status              string  `gorm:"size:20;not null;index:idx_projects_status"`
	StatusBeforeDispute *string `gorm:"size:20"`
	PaymentStatus       string  `gorm:"size:20;not null"`
	ConfirmsLawfulUse   bool    `gorm:"not null;default:false"`
	ConfirmsDataRights  bool    `gorm:"not null;default:false"`
	IRBApprovalProvided bool    `gorm:"column:irb_approval_provided;not null;default:false"`
	AgreedPriceCents    *int64
	PaymentIntentID     *string `gorm:"size:255;index:idx_projects_payment_intent_id"`
	PayoutTransferID    *string `gorm:"size:255"`
	Version             int     `gorm:"not null;default:1"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
	CompletedAt         *time.Time
}

func (ProjectModel) TableName() string {
	return constants.TableProjects
}

type ProjectFileModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	ProjectID   string `gorm:"size:36;not null;index:idx_project_files_project_id"`
	UploadedBy  string `gorm:"size:36;not null"`
	FileType    string `gorm:"size:20;not null"`
	FileName    string `gorm:"size:255;not null"`
	StorageKey  string `gorm:"size:512;not null"`
	SizeBytes   int64  `gorm:"not null"`
	ContentType string `gorm:"size:255"`
	CreatedAt   time.Time
}

func (ProjectFileModel) TableName() string {
	return constants.TableProjectFiles
}

type DeliverableModel struct {
	ID              string `gorm:"primaryKey;size:36"`
	ProjectID       string `gorm:"size:36;not null;index:idx_deliverables_project_id"`
	UploadedBy      string `gorm:"size:36;not null"`
	DeliverableType string `gorm:"size:20;not null"`
	Title           string `gorm:"size:255;not null"`
	FileName        string `gorm:"size:255;not null"`
	StorageKey      string `gorm:"size:512;not null"`
	SizeBytes       int64  `gorm:"not null"`
	ContentType     string `gorm:"size:255"`
	CreatedAt       time.Time
}

func (DeliverableModel) TableName() string {
	return constants.TableDeliverables
}

type MessageModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	ProjectID   string `gorm:"size:36;not null;index:idx_messages_project_id"`
	SenderID    string `gorm:"size:36;not null"`
	Content     string `gorm:"type:text;not null"`
	ContentHTML string `gorm:"column:content_html;type:text;not null"`
	IsRead      bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
}

func (MessageModel) TableName() string {
	return constants.TableMessages
}
