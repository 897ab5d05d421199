package dto

import (
	identitydto "github.com/shadowiq/shadowiq/internal/application/identity/dto"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
)

// ProjectResponse is the API view of a project.
type ProjectResponse struct {
	ID                  string                       `json:"id"`
	Code                string                       `json:"code"`
	Client              *identitydto.IdentitySummary `json:"client,omitempty"`
	AssignedAnalyst     *identitydto.IdentitySummary `json:"assigned_analyst,omitempty"`
	Title               string                       `json:"title"`
	Description         string                       `json:"description"`
	Stage               string                       `json:"stage"`
	SupportType         string                       `json:"support_type"`
	ResearchArea        string                       `json:"research_area"`
	SampleSize          *string                      `json:"sample_size,omitempty"`
	PreferredMethods    *string                      `json:"preferred_methods,omitempty"`
	Deadline            *string                      `json:"deadline,omitempty"`
	BudgetRange         *string                      `json:"budget_range,omitempty"`
	Status              string                       `json:"status"`
	StatusBeforeDispute *string                      `json:"status_before_dispute,omitempty"`
	PaymentStatus       string                       `json:"payment_status"`
	ConfirmsLawfulUse   bool                         `json:"confirms_lawful_use"`
	ConfirmsDataRights  bool                         `json:"confirms_data_rights"`
	IRBApprovalProvided bool                         `json:"irb_approval_provided"`
	AgreedPriceCents    *int64                       `json:"agreed_price_cents,omitempty"`
	PayoutReleased      bool                         `json:"payout_released"`
	Version             int                          `json:"version"`
	CreatedAt           string                       `json:"created_at"`
	UpdatedAt           string                       `json:"updated_at"`
	CompletedAt         *string                      `json:"completed_at,omitempty"`
}

func ToProjectResponse(p *project.Project) *ProjectResponse {
	if p == nil {
		return nil
	}
	resp := &ProjectResponse{
		ID:                  p.ID(),
		Code:                p.Code(),
		Client:              &identitydto.IdentitySummary{ID: p.ClientID()},
		Title:               p.Title(),
		Description:         p.Description(),
		Stage:               p.Stage().String(),
		SupportType:         p.SupportType().String(),
		ResearchArea:        p.ResearchArea(),
		SampleSize:          p.SampleSize(),
		PreferredMethods:    p.PreferredMethods(),
		Deadline:            biztime.FormatRFC3339Ptr(p.Deadline()),
		BudgetRange:         p.BudgetRange(),
		Status:              p.Status().String(),
		PaymentStatus:       p.PaymentStatus().String(),
		ConfirmsLawfulUse:   p.ConfirmsLawfulUse(),
		ConfirmsDataRights:  p.ConfirmsDataRights(),
		IRBApprovalProvided: p.IRBApprovalProvided(),
		AgreedPriceCents:    p.AgreedPriceCents(),
		PayoutReleased:      p.PayoutTransferID() != nil,
		Version:             p.Version(),
		CreatedAt:           biztime.FormatRFC3339(p.CreatedAt()),
		UpdatedAt:           biztime.FormatRFC3339(p.UpdatedAt()),
		CompletedAt:         biztime.FormatRFC3339Ptr(p.CompletedAt()),
	}
	if prev := p.StatusBeforeDispute(); prev != nil {
		s := prev.String()
		resp.StatusBeforeDispute = &s
	}
	if analystID := p.AssignedAnalystID(); analystID != nil {
		resp.AssignedAnalyst = &identitydto.IdentitySummary{ID: *analystID}
	}
	return resp
}

// WithAliases fills participant aliases from a lookup of identity id to
// alias.
func (r *ProjectResponse) WithAliases(aliases map[string]string) *ProjectResponse {
	if r.Client != nil {
		r.Client.Alias = aliases[r.Client.ID]
	}
	if r.AssignedAnalyst != nil {
		r.AssignedAnalyst.Alias = aliases[r.AssignedAnalyst.ID]
	}
	return r
}

type FileResponse struct {
	ID          string `json:"id"`
	FileType    string `json:"file_type"`
	FileName    string `json:"file_name"`
	SizeBytes   int64  `json:"size_bytes"`
	ContentType string `json:"content_type"`
	UploadedBy  string `json:"uploaded_by"`
	CreatedAt   string `json:"created_at"`
}

func ToFileResponse(f *project.ProjectFile) *FileResponse {
	return &FileResponse{
		ID:          f.ID,
		FileType:    f.FileType.String(),
		FileName:    f.FileName,
		SizeBytes:   f.SizeBytes,
		ContentType: f.ContentType,
		UploadedBy:  f.UploadedBy,
		CreatedAt:   biztime.FormatRFC3339(f.CreatedAt),
	}
}

type DeliverableResponse struct {
	ID              string `json:"id"`
	DeliverableType string `json:"deliverable_type"`
	Title           string `json:"title"`
	FileName        string `json:"file_name"`
	SizeBytes       int64  `json:"size_bytes"`
	ContentType     string `json:"content_type"`
	UploadedBy      string `json:"uploaded_by"`
	CreatedAt       string `json:"created_at"`
}

func ToDeliverableResponse(d *project.Deliverable) *DeliverableResponse {
	return &DeliverableResponse{
		ID:              d.ID,
		DeliverableType: d.DeliverableType.String(),
		Title:           d.Title,
		FileName:        d.FileName,
		SizeBytes:       d.SizeBytes,
		ContentType:     d.ContentType,
		UploadedBy:      d.UploadedBy,
		CreatedAt:       biztime.FormatRFC3339(d.CreatedAt),
	}
}

// ProjectDetailResponse is a project together with its attachments.
type ProjectDetailResponse struct {
	*ProjectResponse
	Files        []*FileResponse        `json:"files"`
	Deliverables []*DeliverableResponse `json:"deliverables"`
}

type MessageResponse struct {
	ID          string `json:"id"`
	SenderID    string `json:"sender_id"`
	SenderAlias string `json:"sender_alias"`
	Content     string `json:"content"`
	ContentHTML string `json:"content_html"`
	IsRead      bool   `json:"is_read"`
	IsMine      bool   `json:"is_mine"`
	CreatedAt   string `json:"created_at"`
}

func ToMessageResponse(m *project.Message, viewerID, senderAlias string) *MessageResponse {
	return &MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		SenderAlias: senderAlias,
		Content:     m.Content,
		ContentHTML: m.ContentHTML,
		IsRead:      m.IsRead,
		IsMine:      m.SenderID == viewerID,
		CreatedAt:   biztime.FormatRFC3339(m.CreatedAt),
	}
}
