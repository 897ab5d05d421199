package testutil

import (
	"time"

	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	vo "github.com/shadowiq/shadowiq/internal/domain/project/valueobjects"
	"github.com/shadowiq/shadowiq/internal/shared/id"
)

// BaseTime is the reference "now" used by application tests.
var BaseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// NewIdentityFixture builds a persisted-looking identity with the given
// role flags.
func NewIdentityFixture(alias string, isAdmin, isAnalyst bool) *identity.Identity {
	i, err := identity.ReconstructIdentity(
		id.NewUUID(), alias, nil, nil, nil,
		isAdmin, isAnalyst, BaseTime.Add(-48*time.Hour), nil, nil,
	)
	if err != nil {
		panic(err)
	}
	return i
}

func NewClient(alias string) *identity.Identity {
	return NewIdentityFixture(alias, false, false)
}

func NewAnalyst(alias string) *identity.Identity {
	return NewIdentityFixture(alias, false, true)
}

func NewAdmin(alias string) *identity.Identity {
	return NewIdentityFixture(alias, true, false)
}

// ProjectOption mutates reconstruct params before a fixture is built.
type ProjectOption func(*project.ReconstructParams)

func WithStatus(s vo.ProjectStatus) ProjectOption {
	return func(p *project.ReconstructParams) { p.Status = s }
}

func WithPaymentStatus(s vo.PaymentStatus) ProjectOption {
	return func(p *project.ReconstructParams) { p.PaymentStatus = s }
}

func WithAnalyst(analystID string) ProjectOption {
	return func(p *project.ReconstructParams) { p.AssignedAnalystID = &analystID }
}

func WithPrice(cents int64, intentID string) ProjectOption {
	return func(p *project.ReconstructParams) {
		p.AgreedPriceCents = &cents
		p.PaymentIntentID = &intentID
	}
}

func WithCode(code string) ProjectOption {
	return func(p *project.ReconstructParams) { p.Code = code }
}

// NewProjectFixture builds a project owned by clientID. It panics on invalid
// options, which only happens with a broken test.
func NewProjectFixture(clientID string, opts ...ProjectOption) *project.Project {
	params := project.ReconstructParams{
		SubmitParams: project.SubmitParams{
			ID:                 id.NewUUID(),
			Code:               "SIQ-TEST01",
			ClientID:           clientID,
			Title:              "Power analysis for a cohort study",
			Description:        "Need a sample size justification.",
			Stage:              vo.StageProposal,
			SupportType:        vo.SupportSampleSize,
			ResearchArea:       "epidemiology",
			ConfirmsLawfulUse:  true,
			ConfirmsDataRights: true,
		},
		Status:        vo.StatusSubmitted,
		PaymentStatus: vo.PaymentStatusPending,
		Version:       1,
		CreatedAt:     BaseTime.Add(-24 * time.Hour),
		UpdatedAt:     BaseTime.Add(-24 * time.Hour),
	}
	for _, opt := range opts {
		opt(&params)
	}
	p, err := project.ReconstructProject(params)
	if err != nil {
		panic(err)
	}
	return p
}
