package models

import "time"

// PasswordReset is a short-lived "forgot my password" code. Only the hash is stored.
type PasswordReset struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	MemberID  int64      `gorm:"not null;index" json:"member_id"`
	TokenHash string     `gorm:"not null;index" json:"-"`
	Channel   string     `gorm:"not null;default:'notification'" json:"channel"`
	ExpiresAt *time.Time `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
