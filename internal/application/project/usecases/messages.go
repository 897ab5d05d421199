package usecases

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/id"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
	"github.com/shadowiq/shadowiq/internal/shared/markdown"
)

type SendMessageCommand struct {
	SenderID  string
	ProjectID string
	Content   string
}

type SendMessageExecutor interface {
	Execute(ctx context.Context, cmd SendMessageCommand) (*dto.MessageResponse, error)
}

type SendMessageUseCase struct {
	messages   project.MessageRepository
	identities identity.Repository
	renderer   markdown.Renderer
	recorder   auditlog.Recorder
	tx         db.Transactor
	clock      biztime.Clock
	logger     logger.Interface
}

func NewSendMessageUseCase(
	messages project.MessageRepository,
	identities identity.Repository,
	renderer markdown.Renderer,
	recorder auditlog.Recorder,
	tx db.Transactor,
	clock biztime.Clock,
	logger logger.Interface,
) *SendMessageUseCase {
	return &SendMessageUseCase{
		messages:   messages,
		identities: identities,
		renderer:   renderer,
		recorder:   recorder,
		tx:         tx,
		clock:      clock,
		logger:     logger,
	}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, cmd SendMessageCommand) (*dto.MessageResponse, error) {
	content := strings.TrimSpace(uc.renderer.StripTags(cmd.Content))
	if content == "" {
		return nil, errors.NewValidationError("content is required")
	}
	if utf8.RuneCountInString(content) > project.MaxMessageLength {
		return nil, errors.NewValidationError("content exceeds maximum length")
	}

	html, err := uc.renderer.Render(content)
	if err != nil {
		uc.logger.Errorw("failed to render message", "project_id", cmd.ProjectID, "error", err)
		return nil, errors.NewInternalError("failed to render message")
	}

	msg := &project.Message{
		ID:          id.NewUUID(),
		ProjectID:   cmd.ProjectID,
		SenderID:    cmd.SenderID,
		Content:     content,
		ContentHTML: html,
		CreatedAt:   uc.clock.Now(),
	}

	err = uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.messages.Create(txCtx, msg); err != nil {
			return err
		}
		return uc.recorder.Record(txCtx, auditlog.Event{
			Action:     audit.ActionMessageSent,
			ProjectID:  cmd.ProjectID,
			IdentityID: cmd.SenderID,
			Details:    audit.Details{"message_id": msg.ID, "length": utf8.RuneCountInString(content)},
		})
	})
	if err != nil {
		return nil, finish(uc.logger, err, "failed to send message", "project_id", cmd.ProjectID)
	}

	aliases := aliasesFor(ctx, uc.identities, uc.logger, cmd.SenderID)
	uc.logger.Infow("message sent", "project_id", cmd.ProjectID, "message_id", msg.ID, "sender_id", cmd.SenderID)
	return dto.ToMessageResponse(msg, cmd.SenderID, aliases[cmd.SenderID]), nil
}

type ListMessagesQuery struct {
	ReaderID  string
	ProjectID string
}

type ListMessagesExecutor interface {
	Execute(ctx context.Context, query ListMessagesQuery) ([]*dto.MessageResponse, error)
}

// ListMessagesUseCase returns the project thread oldest first and marks the
// messages written by others as read.
type ListMessagesUseCase struct {
	messages   project.MessageRepository
	identities identity.Repository
	logger     logger.Interface
}

func NewListMessagesUseCase(messages project.MessageRepository, identities identity.Repository, logger logger.Interface) *ListMessagesUseCase {
	return &ListMessagesUseCase{
		messages:   messages,
		identities: identities,
		logger:     logger,
	}
}

func (uc *ListMessagesUseCase) Execute(ctx context.Context, query ListMessagesQuery) ([]*dto.MessageResponse, error) {
	items, err := uc.messages.ListByProject(ctx, query.ProjectID)
	if err != nil {
		uc.logger.Errorw("failed to list messages", "project_id", query.ProjectID, "error", err)
		return nil, errors.NewInternalError("failed to list messages")
	}

	if marked, err := uc.messages.MarkReadFor(ctx, query.ProjectID, query.ReaderID); err != nil {
		uc.logger.Warnw("failed to mark messages read", "project_id", query.ProjectID, "error", err)
	} else if marked > 0 {
		uc.logger.Debugw("messages marked read", "project_id", query.ProjectID, "count", marked)
	}

	senders := make([]string, 0, len(items))
	for _, m := range items {
		senders = append(senders, m.SenderID)
	}
	aliases := aliasesFor(ctx, uc.identities, uc.logger, senders...)

	out := make([]*dto.MessageResponse, 0, len(items))
	for _, m := range items {
		out = append(out, dto.ToMessageResponse(m, query.ReaderID, aliases[m.SenderID]))
	}
	return out, nil
}
