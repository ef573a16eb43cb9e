package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "moneymanager/internal/errors"
)

// findOwned loads the record with the given id if it belongs to userID.
// Records owned by someone else are reported as notFound so callers cannot
// test whether other users' ids exist.
func findOwned[T any](db *gorm.DB, userID, id string, notFound *apperrors.AppError) (*T, error) {
	var record T
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &record, nil
}

// internalErr wraps err as an internal error unless it already is an AppError.
func internalErr(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
