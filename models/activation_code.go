package models

import "time"

/************************************************
/**** MARK: ACTIVATION CODE STATUS ****/
/************************************************/
const ACTIVATION_STATUS_PENDING = 0
const ACTIVATION_STATUS_VALIDATED = 1
const ACTIVATION_STATUS_EXPIRED = 2

// ActivationCode confirms a freshly registered member.
type ActivationCode struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	MemberID  int64      `gorm:"not null;index" json:"member_id"`
	Code      string     `gorm:"not null;unique_index" json:"-"`
	Status    int64      `gorm:"default:0" json:"status"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func (a ActivationCode) IsExpired(now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}
