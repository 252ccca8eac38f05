package models

import "time"

// AuditLog is one authenticated API call, shown in the staff log viewer.
type AuditLog struct {
	ID            int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	AssociationID int64      `gorm:"not null;default:0;index" json:"association_id"`
	MemberID      int64      `gorm:"not null;default:0;index" json:"member_id"`
	MemberEmail   string     `gorm:"not null;default:''" json:"member_email"`
	Method        string     `gorm:"not null" json:"method"`
	Path          string     `gorm:"not null" json:"path"`
	Status        int        `gorm:"not null;default:0;index" json:"status"`
	LatencyMs     int64      `gorm:"not null;default:0" json:"latency_ms"`
	IP            string     `gorm:"default:''" json:"ip"`
	CreatedAt     *time.Time `gorm:"index" json:"created_at"`
}
