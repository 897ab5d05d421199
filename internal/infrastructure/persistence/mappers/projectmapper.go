package mappers

import (
	"fmt"

	"github.com/shadowiq/shadowiq/internal/domain/project"
	vo "github.com/shadowiq/shadowiq/internal/domain/project/valueobjects"
	"github.com/shadowiq/shadowiq/internal/infrastructure/persistence/models"
)

func ProjectToModel(p *project.Project) *models.ProjectModel {
	m := &models.ProjectModel{
		ID:                  p.ID(),
		Code:                p.Code(),
		ClientID:            p.ClientID(),
		AssignedAnalystID:   p.AssignedAnalystID(),
		Title:               p.Title(),
		Description:         p.Description(),
		Stage:               p.Stage().String(),
		SupportType:         p.SupportType().String(),
		ResearchArea:        p.ResearchArea(),
		SampleSize:          p.SampleSize(),
		PreferredMethods:    p.PreferredMethods(),
		Deadline:            p.Deadline(),
		BudgetRange:         p.BudgetRange(),
		Status:              p.Status().String(),
		PaymentStatus:       string(p.PaymentStatus()),
		ConfirmsLawfulUse:   p.ConfirmsLawfulUse(),
		ConfirmsDataRights:  p.ConfirmsDataRights(),
		IRBApprovalProvided: p.IRBApprovalProvided(),
		AgreedPriceCents:    p.AgreedPriceCents(),
		PaymentIntentID:     p.PaymentIntentID(),
		PayoutTransferID:    p.PayoutTransferID(),
		Version:             p.Version(),
		CreatedAt:           p.CreatedAt(),
		UpdatedAt:           p.UpdatedAt(),
		CompletedAt:         p.CompletedAt(),
	}
	if prev := p.StatusBeforeDispute(); prev != nil {
		s := prev.String()
		m.StatusBeforeDispute = &s
	}
	return m
}

func ProjectToDomain(m *models.ProjectModel) (*project.Project, error) {
	var before *vo.ProjectStatus
	if m.StatusBeforeDispute != nil {
		s := vo.ProjectStatus(*m.StatusBeforeDispute)
		before = &s
	}

	p, err := project.ReconstructProject(project.ReconstructParams{
		SubmitParams: project.SubmitParams{
			ID:                  m.ID,
			Code:                m.Code,
			ClientID:            m.ClientID,
			Title:               m.Title,
			Description:         m.Description,
			Stage:               vo.Stage(m.Stage),
			SupportType:         vo.SupportType(m.SupportType),
			ResearchArea:        m.ResearchArea,
			SampleSize:          m.SampleSize,
			PreferredMethods:    m.PreferredMethods,
			Deadline:            m.Deadline,
			BudgetRange:         m.BudgetRange,
			ConfirmsLawfulUse:   m.ConfirmsLawfulUse,
			ConfirmsDataRights:  m.ConfirmsDataRights,
			IRBApprovalProvided: m.IRBApprovalProvided,
		},
		AssignedAnalystID:   m.AssignedAnalystID,
		Status:              vo.ProjectStatus(m.Status),
		StatusBeforeDispute: before,
		PaymentStatus:       vo.PaymentStatus(m.PaymentStatus),
		AgreedPriceCents:    m.AgreedPriceCents,
		PaymentIntentID:     m.PaymentIntentID,
		PayoutTransferID:    m.PayoutTransferID,
		Version:             m.Version,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
		CompletedAt:         m.CompletedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to map project %s: %w", m.ID, err)
	}
	return p, nil
}

func ProjectsToDomain(ms []models.ProjectModel) ([]*project.Project, error) {
	out := make([]*project.Project, 0, len(ms))
	for i := range ms {
		p, err := ProjectToDomain(&ms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func ProjectFileToModel(f *project.ProjectFile) *models.ProjectFileModel {
	return &models.ProjectFileModel{
		ID:          f.ID,
		ProjectID:   f.ProjectID,
		UploadedBy:  f.UploadedBy,
		FileType:    f.FileType.String(),
		FileName:    f.FileName,
		StorageKey:  f.StorageKey,
		SizeBytes:   f.SizeBytes,
		ContentType: f.ContentType,
		CreatedAt:   f.CreatedAt,
	}
}

func ProjectFileToDomain(m *models.ProjectFileModel) *project.ProjectFile {
	return &project.ProjectFile{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		UploadedBy:  m.UploadedBy,
		FileType:    vo.FileType(m.FileType),
		FileName:    m.FileName,
		StorageKey:  m.StorageKey,
		SizeBytes:   m.SizeBytes,
		ContentType: m.ContentType,
		CreatedAt:   m.CreatedAt,
	}
}

func DeliverableToModel(d *project.Deliverable) *models.DeliverableModel {
	return &models.DeliverableModel{
		ID:              d.ID,
		ProjectID:       d.ProjectID,
		UploadedBy:      d.UploadedBy,
		DeliverableType: d.DeliverableType.String(),
		Title:           d.Title,
		FileName:        d.FileName,
		StorageKey:      d.StorageKey,
		SizeBytes:       d.SizeBytes,
		ContentType:     d.ContentType,
		CreatedAt:       d.CreatedAt,
	}
}

func DeliverableToDomain(m *models.DeliverableModel) *project.Deliverable {
	return &project.Deliverable{
		ID:              m.ID,
		ProjectID:       m.ProjectID,
		UploadedBy:      m.UploadedBy,
		DeliverableType: vo.DeliverableType(m.DeliverableType),
		Title:           m.Title,
		FileName:        m.FileName,
		StorageKey:      m.StorageKey,
		SizeBytes:       m.SizeBytes,
		ContentType:     m.ContentType,
		CreatedAt:       m.CreatedAt,
	}
}

func MessageToModel(msg *project.Message) *models.MessageModel {
	return &models.MessageModel{
		ID:          msg.ID,
		ProjectID:   msg.ProjectID,
		SenderID:    msg.SenderID,
		Content:     msg.Content,
		ContentHTML: msg.ContentHTML,
		IsRead:      msg.IsRead,
		CreatedAt:   msg.CreatedAt,
	}
}

func MessageToDomain(m *models.MessageModel) *project.Message {
	return &project.Message{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		SenderID:    m.SenderID,
		Content:     m.Content,
		ContentHTML: m.ContentHTML,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt,
	}
}
