package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFoundError reports whether err stems from a missing record.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKeyError reports whether err stems from a unique constraint violation.
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
