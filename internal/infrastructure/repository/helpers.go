package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "github.com/shadowiq/shadowiq/internal/shared/errors"
)

// paginate applies LIMIT/OFFSET when pageSize is positive.
func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// wrapWriteError turns unique violations into conflicts and everything else
// into a wrapped error naming the operation.
func wrapWriteError(op string, err error, conflictMsg string) error {
	if apperrors.IsDuplicateError(err) {
		return apperrors.NewConflictError(conflictMsg)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
