package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuthService provisions users seen in valid tokens.
type AuthService struct {
	db    *gorm.DB
	known sync.Map
}

// NewAuthService creates a new AuthService instance
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{
		db: db,
	}
}

// EnsureUser inserts the user row the first time a subject is seen.
// Existing rows are left untouched.
func (as *AuthService) EnsureUser(ctx context.Context, userID, email string) error {
	if userID == "" {
		return fmt.Errorf("user ID is empty")
	}
	if _, ok := as.known.Load(userID); ok {
		return nil
	}

	now := time.Now().UTC()
	user := User{ID: userID, Email: email, CreatedAt: now, UpdatedAt: now}
	result := as.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
	if result.Error != nil {
		return fmt.Errorf("failed to provision user: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		slog.InfoContext(ctx, "user provisioned", "user_id", userID)
	}

	as.known.Store(userID, struct{}{})
	return nil
}
