package models

import (
	"strings"
	"time"
)

const PLAN_INTERVAL_MONTHLY = "monthly"
const PLAN_INTERVAL_YEARLY = "yearly"
const PLAN_INTERVAL_ONE_TIME = "one_time"

// Plan is a membership offer of an association; subscribing grants its tier.
type Plan struct {
	ID            int64  `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	AssociationID int64  `gorm:"not null;index" json:"association_id"`
	Name          string `gorm:"not null" json:"name" form:"name"`
	Description   string `gorm:"type:text" json:"description" form:"description"`
	PriceCents    int64  `gorm:"not null;default:0" json:"price_cents" form:"price_cents"`

	Currency  string     `gorm:"not null;default:'EUR'" json:"currency" form:"currency"`
	Interval  string     `gorm:"not null;default:'monthly'" json:"interval" form:"interval"` // monthly|yearly|one_time
	Tier      string     `gorm:"not null;default:'silver'" json:"tier" form:"tier"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active" form:"is_active"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func IsValidInterval(interval string) bool {
	switch interval {
	case PLAN_INTERVAL_MONTHLY, PLAN_INTERVAL_YEARLY, PLAN_INTERVAL_ONE_TIME:
		return true
	}
	return false
}

// PeriodEnd returns the end of a billing period starting at start.
// One-time plans grant a year of membership.
func PeriodEnd(interval string, start time.Time) time.Time {
	switch strings.ToLower(interval) {
	case PLAN_INTERVAL_MONTHLY:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(1, 0, 0)
	}
}
