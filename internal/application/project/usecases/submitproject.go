package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	vo "github.com/shadowiq/shadowiq/internal/domain/project/valueobjects"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/id"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

const codeGenerateTries = 5

type SubmitProjectCommand struct {
	ClientID            string
	Title               string
	Description         string
	Stage               string
	SupportType         string
	ResearchArea        string
	SampleSize          *string
	PreferredMethods    *string
	Deadline            *time.Time
	BudgetRange         *string
	ConfirmsLawfulUse   bool
	ConfirmsDataRights  bool
	IRBApprovalProvided bool
}

type SubmitProjectExecutor interface {
	Execute(ctx context.Context, cmd SubmitProjectCommand) (*dto.ProjectResponse, error)
}

type SubmitProjectUseCase struct {
	projects   project.Repository
	recorder   auditlog.Recorder
	tx         db.Transactor
	clock      biztime.Clock
	codePrefix string
	logger     logger.Interface
}

func NewSubmitProjectUseCase(
	projects project.Repository,
	recorder auditlog.Recorder,
	tx db.Transactor,
	clock biztime.Clock,
	codePrefix string,
	logger logger.Interface,
) *SubmitProjectUseCase {
	return &SubmitProjectUseCase{
		projects:   projects,
		recorder:   recorder,
		tx:         tx,
		clock:      clock,
		codePrefix: codePrefix,
		logger:     logger,
	}
}

func (uc *SubmitProjectUseCase) Execute(ctx context.Context, cmd SubmitProjectCommand) (*dto.ProjectResponse, error) {
	params, err := uc.validateCommand(cmd)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	if params.Deadline != nil && !params.Deadline.After(now) {
		return nil, errors.NewValidationError("deadline must be in the future")
	}

	var submitted *project.Project
	for attempt := 0; attempt < codeGenerateTries; attempt++ {
		code, err := id.NewProjectCode(uc.codePrefix)
		if err != nil {
			return nil, finish(uc.logger, err, "failed to generate project code")
		}
		params.ID = id.NewUUID()
		params.Code = code

		p, err := project.NewProject(params, now)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}

		err = uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
			if err := uc.projects.Create(txCtx, p); err != nil {
				return err
			}
			return uc.recorder.Record(txCtx, auditlog.Event{
				Action:     audit.ActionProjectSubmitted,
				ProjectID:  p.ID(),
				IdentityID: p.ClientID(),
				Details: audit.Details{
					"project_code": p.Code(),
					"title":        p.Title(),
					"support_type": p.SupportType().String(),
				},
			})
		})
		if errors.IsConflictError(err) {
			uc.logger.Warnw("project code collision, retrying", "code", code)
			continue
		}
		if err != nil {
			return nil, finish(uc.logger, fmt.Errorf("create project: %w", err), "failed to submit project", "client_id", cmd.ClientID)
		}
		submitted = p
		break
	}
	if submitted == nil {
		return nil, errors.NewConflictError("could not allocate a project code, please retry")
	}

	uc.logger.Infow("project submitted",
		"project_id", submitted.ID(),
		"code", submitted.Code(),
		"client_id", submitted.ClientID(),
	)
	return dto.ToProjectResponse(submitted), nil
}

func (uc *SubmitProjectUseCase) validateCommand(cmd SubmitProjectCommand) (project.SubmitParams, error) {
	var params project.SubmitParams
	if cmd.ClientID == "" {
		return params, errors.NewUnauthorizedError("client identity is required")
	}
	stage, err := vo.NewStage(strings.TrimSpace(cmd.Stage))
	if err != nil {
		return params, errors.NewValidationError(err.Error())
	}
	supportType, err := vo.NewSupportType(strings.TrimSpace(cmd.SupportType))
	if err != nil {
		return params, errors.NewValidationError(err.Error())
	}
	if !cmd.ConfirmsLawfulUse {
		return params, errors.NewValidationError("confirms_lawful_use must be accepted")
	}
	if !cmd.ConfirmsDataRights {
		return params, errors.NewValidationError("confirms_data_rights must be accepted")
	}

	return project.SubmitParams{
		ClientID:            cmd.ClientID,
		Title:               cmd.Title,
		Description:         cmd.Description,
		Stage:               stage,
		SupportType:         supportType,
		ResearchArea:        cmd.ResearchArea,
		SampleSize:          trimOptional(cmd.SampleSize),
		PreferredMethods:    trimOptional(cmd.PreferredMethods),
		Deadline:            cmd.Deadline,
		BudgetRange:         trimOptional(cmd.BudgetRange),
		ConfirmsLawfulUse:   cmd.ConfirmsLawfulUse,
		ConfirmsDataRights:  cmd.ConfirmsDataRights,
		IRBApprovalProvided: cmd.IRBApprovalProvided,
	}, nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
