package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a staff account gating the admin API.
type User struct {
	ID                     uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email                  string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash           string     `gorm:"column:password_hash;not null"`
	FirstName              string     `gorm:"column:first_name;not null"`
	LastName               string     `gorm:"column:last_name;not null"`
	IsEmailVerified        bool       `gorm:"column:is_email_verified;not null;default:false"`
	EmailVerificationToken *string    `gorm:"column:email_verification_token"`
	PasswordResetToken     *string    `gorm:"column:password_reset_token"`
	PasswordResetExpires   *time.Time `gorm:"column:password_reset_expires"`
	LastLoginAt            *time.Time `gorm:"column:last_login_at"`
	CreatedAt              time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
