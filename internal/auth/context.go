package auth

import (
	"time"
)

// User is a locally provisioned account. The ID is the subject of the bearer token.
type User struct {
	ID        string    `gorm:"type:varchar(100);column:id;primaryKey;not null" json:"id"`
	Email     string    `gorm:"type:varchar(255);column:email" json:"email,omitempty"`
	CreatedAt time.Time `gorm:"type:timestamptz;column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:timestamptz;column:updated_at;not null" json:"updatedAt"`
}

// TableName specifies the database table name for User
func (u *User) TableName() string {
	return "users"
}

// AuthContext represents the authenticated caller of a request.
// It is injected into the request context by the auth middleware.
type AuthContext struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}
