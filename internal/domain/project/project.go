// Package project contains the Project aggregate and its state machine.
package project

import (
	"fmt"
	"strings"
	"time"

	vo "github.com/shadowiq/shadowiq/internal/domain/project/valueobjects"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 10000
)

// Project is a research-support request owned by one client.
type Project struct {
	id                  string
	code                string
	clientID            string
	assignedAnalystID   *string
	title               string
	description         string
	stage               vo.Stage
	supportType         vo.SupportType
	researchArea        string
	sampleSize          *string
	preferredMethods    *string
	deadline            *time.Time
	budgetRange         *string
	status              vo.ProjectStatus
	statusBeforeDispute *vo.ProjectStatus
	paymentStatus       vo.PaymentStatus
	confirmsLawfulUse   bool
	confirmsDataRights  bool
	irbApprovalProvided bool
	agreedPriceCents    *int64
	paymentIntentID     *string
	payoutTransferID    *string
	version             int
	createdAt           time.Time
	updatedAt           time.Time
	completedAt         *time.Time
}

// SubmitParams carries the client supplied fields of a new project.
type SubmitParams struct {
	ID                  string
	Code                string
	ClientID            string
	Title               string
	Description         string
	Stage               vo.Stage
	SupportType         vo.SupportType
	ResearchArea        string
	SampleSize          *string
	PreferredMethods    *string
	Deadline            *time.Time
	BudgetRange         *string
	ConfirmsLawfulUse   bool
	ConfirmsDataRights  bool
	IRBApprovalProvided bool
}

// NewProject creates a submitted project awaiting payment.
func NewProject(p SubmitParams, now time.Time) (*Project, error) {
	if p.ID == "" || p.Code == "" {
		return nil, fmt.Errorf("project ID and code are required")
	}
	if p.ClientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, fmt.Errorf("title exceeds maximum length of %d characters", MaxTitleLength)
	}
	if strings.TrimSpace(p.Description) == "" {
		return nil, fmt.Errorf("description is required")
	}
	if len(p.Description) > MaxDescriptionLength {
		return nil, fmt.Errorf("description exceeds maximum length of %d characters", MaxDescriptionLength)
	}
	if strings.TrimSpace(p.ResearchArea) == "" {
		return nil, fmt.Errorf("research area is required")
	}
	if !p.Stage.IsValid() {
		return nil, fmt.Errorf("invalid stage: %s", p.Stage)
	}
	if !p.SupportType.IsValid() {
		return nil, fmt.Errorf("invalid support type: %s", p.SupportType)
	}
	if !p.ConfirmsLawfulUse || !p.ConfirmsDataRights {
		return nil, fmt.Errorf("lawful use and data rights must be confirmed")
	}

	return &Project{
		id:                  p.ID,
		code:                p.Code,
		clientID:            p.ClientID,
		title:               title,
		description:         p.Description,
		stage:               p.Stage,
		supportType:         p.SupportType,
		researchArea:        strings.TrimSpace(p.ResearchArea),
		sampleSize:          p.SampleSize,
		preferredMethods:    p.PreferredMethods,
		deadline:            p.Deadline,
		budgetRange:         p.BudgetRange,
		status:              vo.StatusSubmitted,
		paymentStatus:       vo.PaymentStatusPending,
		confirmsLawfulUse:   p.ConfirmsLawfulUse,
		confirmsDataRights:  p.ConfirmsDataRights,
		irbApprovalProvided: p.IRBApprovalProvided,
		version:             1,
		createdAt:           now,
		updatedAt:           now,
	}, nil
}

// ReconstructParams is the persisted state of a project.
type ReconstructParams struct {
	SubmitParams
	AssignedAnalystID   *string
	Status              vo.ProjectStatus
	StatusBeforeDispute *vo.ProjectStatus
	PaymentStatus       vo.PaymentStatus
	AgreedPriceCents    *int64
	PaymentIntentID     *string
	PayoutTransferID    *string
	Version             int
	CreatedAt           time.Time
	UpdatedAt           time.Time
	CompletedAt         *time.Time
}

// ReconstructProject rebuilds a project from persistence.
func ReconstructProject(p ReconstructParams) (*Project, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("project ID is required")
	}
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("invalid status: %s", p.Status)
	}
	if !p.PaymentStatus.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", p.PaymentStatus)
	}

	return &Project{
		id:                  p.ID,
		code:                p.Code,
		clientID:            p.ClientID,
		assignedAnalystID:   p.AssignedAnalystID,
		title:               p.Title,
		description:         p.Description,
		stage:               p.Stage,
		supportType:         p.SupportType,
		researchArea:        p.ResearchArea,
		sampleSize:          p.SampleSize,
		preferredMethods:    p.PreferredMethods,
		deadline:            p.Deadline,
		budgetRange:         p.BudgetRange,
		status:              p.Status,
		statusBeforeDispute: p.StatusBeforeDispute,
		paymentStatus:       p.PaymentStatus,
		confirmsLawfulUse:   p.ConfirmsLawfulUse,
		confirmsDataRights:  p.ConfirmsDataRights,
		irbApprovalProvided: p.IRBApprovalProvided,
		agreedPriceCents:    p.AgreedPriceCents,
		paymentIntentID:     p.PaymentIntentID,
		payoutTransferID:    p.PayoutTransferID,
		version:             p.Version,
		createdAt:           p.CreatedAt,
		updatedAt:           p.UpdatedAt,
		completedAt:         p.CompletedAt,
	}, nil
}

func (p *Project) ID() string {
	return p.id
}

func (p *Project) Code() string {
	return p.code
}

func (p *Project) ClientID() string {
	return p.clientID
}

func (p *Project) AssignedAnalystID() *string {
	return p.assignedAnalystID
}

func (p *Project) Title() string {
	return p.title
}

func (p *Project) Description() string {
	return p.description
}

func (p *Project) Stage() vo.Stage {
	return p.stage
}

func (p *Project) SupportType() vo.SupportType {
	return p.supportType
}

func (p *Project) ResearchArea() string {
	return p.researchArea
}

func (p *Project) SampleSize() *string {
	return p.sampleSize
}

func (p *Project) PreferredMethods() *string {
	return p.preferredMethods
}

func (p *Project) Deadline() *time.Time {
	return p.deadline
}

func (p *Project) BudgetRange() *string {
	return p.budgetRange
}

func (p *Project) Status() vo.ProjectStatus {
	return p.status
}

func (p *Project) PaymentStatus() vo.PaymentStatus {
	return p.paymentStatus
}

func (p *Project) StatusBeforeDispute() *vo.ProjectStatus {
	return p.statusBeforeDispute
}

func (p *Project) ConfirmsLawfulUse() bool {
	return p.confirmsLawfulUse
}

func (p *Project) ConfirmsDataRights() bool {
	return p.confirmsDataRights
}

func (p *Project) IRBApprovalProvided() bool {
	return p.irbApprovalProvided
}

func (p *Project) AgreedPriceCents() *int64 {
	return p.agreedPriceCents
}

func (p *Project) PaymentIntentID() *string {
	return p.paymentIntentID
}

func (p *Project) PayoutTransferID() *string {
	return p.payoutTransferID
}

func (p *Project) Version() int {
	return p.version
}

func (p *Project) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Project) UpdatedAt() time.Time {
	return p.updatedAt
}

func (p *Project) CompletedAt() *time.Time {
	return p.completedAt
}

// SetVersion is called by the repository after a successful optimistic update.
func (p *Project) SetVersion(version int) {
	p.version = version
}

// IsOwnedBy reports whether identityID is the submitting client.
func (p *Project) IsOwnedBy(identityID string) bool {
	return identityID != "" && p.clientID == identityID
}

// IsAssignedTo reports whether identityID is the assigned analyst.
func (p *Project) IsAssignedTo(identityID string) bool {
	return identityID != "" && p.assignedAnalystID != nil && *p.assignedAnalystID == identityID
}

// AssignAnalyst sets or replaces the assigned analyst.
func (p *Project) AssignAnalyst(analystID string, now time.Time) error {
	if analystID == "" {
		return fmt.Errorf("analyst ID is required")
	}
	if p.status.IsTerminal() {
		return fmt.Errorf("cannot assign an analyst to a %s project", p.status)
	}
	p.assignedAnalystID = &analystID
	p.updatedAt = now
	return nil
}

// ChangeStatus applies a state machine transition. completed_at is set on
// the first entry into completed.
func (p *Project) ChangeStatus(next vo.ProjectStatus, now time.Time) error {
	if !next.IsValid() {
		return fmt.Errorf("invalid status: %s", next)
	}
	if next == vo.StatusDisputed {
		return fmt.Errorf("use FileDispute to dispute a project")
	}
	if !p.status.CanTransitionTo(next) {
		return fmt.Errorf("cannot transition from %s to %s", p.status, next)
	}

	p.status = next
	p.updatedAt = now
	if next == vo.StatusCompleted && p.completedAt == nil {
		p.completedAt = &now
	}
	return nil
}

// FileDispute moves a non-terminal project into disputed, remembering the
// status it left.
func (p *Project) FileDispute(now time.Time) error {
	if !p.status.CanTransitionTo(vo.StatusDisputed) {
		return fmt.Errorf("cannot dispute a %s project", p.status)
	}
	prev := p.status
	p.statusBeforeDispute = &prev
	p.status = vo.StatusDisputed
	p.updatedAt = now
	return nil
}

// ResolveDispute restores the status held before the dispute.
func (p *Project) ResolveDispute(now time.Time) (vo.ProjectStatus, error) {
	if p.status != vo.StatusDisputed {
		return "", fmt.Errorf("project is not disputed")
	}
	restored := vo.StatusSubmitted
	if p.statusBeforeDispute != nil {
		restored = *p.statusBeforeDispute
	}
	p.status = restored
	p.statusBeforeDispute = nil
	p.updatedAt = now
	return restored, nil
}

// Reject moves a submitted or accepted project to rejected.
func (p *Project) Reject(now time.Time) error {
	return p.ChangeStatus(vo.StatusRejected, now)
}

// StartPayment records a new payment intent and moves payment to processing.
// A processing payment may be restarted with a fresh intent.
func (p *Project) StartPayment(intentID string, amount vo.Money, now time.Time) error {
	if intentID == "" {
		return fmt.Errorf("payment intent ID is required")
	}
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	if p.status != vo.StatusSubmitted {
		return fmt.Errorf("payment can only be started for a submitted project, status is %s", p.status)
	}
	if p.paymentStatus != vo.PaymentStatusProcessing && !p.paymentStatus.CanTransitionTo(vo.PaymentStatusProcessing) {
		return fmt.Errorf("cannot start payment while payment is %s", p.paymentStatus)
	}

	cents := amount.AmountInCents()
	p.agreedPriceCents = &cents
	p.paymentIntentID = &intentID
	p.paymentStatus = vo.PaymentStatusProcessing
	p.updatedAt = now
	return nil
}

// ConfirmPayment marks the payment completed and accepts the project. It
// reports false when the payment was already completed. A failed payment
// may still be confirmed: the processor reported success for its intent.
func (p *Project) ConfirmPayment(now time.Time) (bool, error) {
	if p.paymentStatus.IsCompleted() {
		return false, nil
	}
	if p.paymentStatus != vo.PaymentStatusFailed && !p.paymentStatus.CanTransitionTo(vo.PaymentStatusCompleted) {
		return false, fmt.Errorf("cannot confirm payment while payment is %s", p.paymentStatus)
	}

	p.paymentStatus = vo.PaymentStatusCompleted
	if p.status == vo.StatusSubmitted {
		p.status = vo.StatusAccepted
	}
	p.updatedAt = now
	return true, nil
}

// FailPayment marks a processing payment failed. It reports false when the
// payment was already failed.
func (p *Project) FailPayment(now time.Time) (bool, error) {
	if p.paymentStatus == vo.PaymentStatusFailed {
		return false, nil
	}
	if !p.paymentStatus.CanTransitionTo(vo.PaymentStatusFailed) {
		return false, fmt.Errorf("cannot fail payment while payment is %s", p.paymentStatus)
	}
	p.paymentStatus = vo.PaymentStatusFailed
	p.updatedAt = now
	return true, nil
}

// Refund marks a completed payment refunded and forces the project into
// rejected. It reports false when the payment was already refunded.
func (p *Project) Refund(now time.Time) (bool, error) {
	if p.paymentStatus.IsRefunded() {
		return false, nil
	}
	if !p.paymentStatus.CanTransitionTo(vo.PaymentStatusRefunded) {
		return false, fmt.Errorf("cannot refund while payment is %s", p.paymentStatus)
	}
	p.paymentStatus = vo.PaymentStatusRefunded
	p.status = vo.StatusRejected
	p.statusBeforeDispute = nil
	p.updatedAt = now
	return true, nil
}

// CanReleasePayout checks the preconditions for paying the analyst.
func (p *Project) CanReleasePayout() error {
	switch {
	case p.status != vo.StatusCompleted:
		return fmt.Errorf("project must be completed before payout, status is %s", p.status)
	case !p.paymentStatus.IsCompleted():
		return fmt.Errorf("payment must be completed before payout, payment is %s", p.paymentStatus)
	case p.assignedAnalystID == nil:
		return fmt.Errorf("project has no assigned analyst")
	case p.payoutTransferID != nil:
		return fmt.Errorf("payout already released")
	case p.agreedPriceCents == nil || *p.agreedPriceCents <= 0:
		return fmt.Errorf("project has no agreed price")
	}
	return nil
}

// RecordPayout stores the transfer reference of a released payout.
func (p *Project) RecordPayout(transferID string, now time.Time) error {
	if err := p.CanReleasePayout(); err != nil {
		return err
	}
	if transferID == "" {
		return fmt.Errorf("transfer ID is required")
	}
	p.payoutTransferID = &transferID
	p.updatedAt = now
	return nil
}
