package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when a record belongs to another user.
	ErrForbidden = errors.New("forbidden")
)

type ownedRecord interface {
	OwnerID() string
}

// findOwned loads the row with id into dst and checks that userID owns it.
func findOwned(ctx context.Context, db *gorm.DB, dst ownedRecord, id uuid.UUID, userID string) error {
	if err := db.WithContext(ctx).Where("id = ?", id).First(dst).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("record %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to fetch record %s: %w", id, err)
	}
	if dst.OwnerID() != userID {
		return fmt.Errorf("record %s: %w", id, ErrForbidden)
	}
	return nil
}
