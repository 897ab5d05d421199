package usecases

import (
	"context"
	"strings"

	"github.com/shadowiq/shadowiq/internal/application/files/objectstorage"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	vo "github.com/shadowiq/shadowiq/internal/domain/project/valueobjects"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// RequestUploadURLCommand asks for a presigned PUT. Type is a file type for
// client uploads and a deliverable type for analyst uploads.
type RequestUploadURLCommand struct {
	ActorID     string
	Project     *project.Project
	Deliverable bool
	Type        string
	FileName    string
	ContentType string
	Size        int64
}

type RequestUploadURLExecutor interface {
	Execute(ctx context.Context, cmd RequestUploadURLCommand) (*PresignedTransfer, error)
}

type RequestUploadURLUseCase struct {
	storage objectstorage.ObjectStorage
	clock   biztime.Clock
	opts    Options
	logger  logger.Interface
}

func NewRequestUploadURLUseCase(
	storage objectstorage.ObjectStorage,
	clock biztime.Clock,
	opts Options,
	logger logger.Interface,
) *RequestUploadURLUseCase {
	return &RequestUploadURLUseCase{
		storage: storage,
		clock:   clock,
		opts:    opts.withDefaults(),
		logger:  logger,
	}
}

func (uc *RequestUploadURLUseCase) Execute(ctx context.Context, cmd RequestUploadURLCommand) (*PresignedTransfer, error) {
	if cmd.Project == nil {
		return nil, errors.NewNotFoundError("project not found")
	}
	segment, err := uploadSegment(cmd.Deliverable, cmd.Type)
	if err != nil {
		return nil, err
	}
	if cmd.Size <= 0 {
		return nil, errors.NewValidationError("size must be positive")
	}
	if cmd.Size > uc.opts.MaxUploadSize {
		return nil, errors.NewValidationError("file exceeds maximum upload size")
	}
	contentType := strings.TrimSpace(cmd.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key, err := project.ObjectKey(cmd.Project.Code(), segment, cmd.FileName, uc.clock.Now())
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	var url *objectstorage.PresignedURL
	err = callWithTimeout(ctx, uc.opts.CollaboratorTimeout, func(ctx context.Context) error {
		var err error
		url, err = uc.storage.PresignUpload(ctx, objectstorage.UploadRequest{
			Key:         key,
			ContentType: contentType,
			Size:        cmd.Size,
			TTL:         uc.opts.UploadURLTTL,
		})
		return err
	})
	if err != nil {
		return nil, upstream(uc.logger, "object_storage", err, "project_id", cmd.Project.ID(), "key", key)
	}

	uc.logger.Infow("upload url issued",
		"project_id", cmd.Project.ID(),
		"actor_id", cmd.ActorID,
		"key", key,
		"size", cmd.Size,
	)
	return &PresignedTransfer{
		Key:       key,
		URL:       url.URL,
		Method:    url.Method,
		Headers:   url.Headers,
		ExpiresAt: url.ExpiresAt,
	}, nil
}

// uploadSegment validates the upload type, which is also the key segment the
// object is stored under. File and deliverable types do not overlap.
func uploadSegment(deliverable bool, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if deliverable {
		t, err := vo.NewDeliverableType(raw)
		if err != nil {
			return "", errors.NewValidationError(err.Error())
		}
		return t.String(), nil
	}
	t, err := vo.NewFileType(raw)
	if err != nil {
		return "", errors.NewValidationError(err.Error())
	}
	return t.String(), nil
}
