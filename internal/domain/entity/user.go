package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/receipts-api/internal/domain/enum"
	"gorm.io/gorm"
)

// User represents an account that can sign in
type User struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	Email        string            `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username     string            `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string            `gorm:"size:255;not null" json:"-"`
	FullName     string            `gorm:"size:255" json:"full_name"`
	IsActive     bool              `gorm:"not null;default:true" json:"is_active"`
	IsSuperuser  bool              `gorm:"not null;default:false" json:"is_superuser"`
	Provider     enum.AuthProvider `gorm:"size:50;not null;default:'local'" json:"provider"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Provider == "" {
		u.Provider = enum.AuthProviderLocal
	}
	return nil
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}
