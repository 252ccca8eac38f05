package models

import "time"

const POINTS_REASON_REFERRAL = "referral"
const POINTS_REASON_SUBSCRIPTION = "subscription"
const POINTS_REASON_TICKET = "ticket"
const POINTS_REASON_ORDER = "order"
const POINTS_REASON_REDEEM = "redeem"
const POINTS_REASON_ADJUSTMENT = "adjustment"

// PointsTransaction is one entry of the loyalty ledger. Member.Points is the running sum.
type PointsTransaction struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	MemberID  int64      `gorm:"not null;index" json:"member_id"`
	Points    int64      `gorm:"not null" json:"points"`
	Reason    string     `gorm:"not null;index" json:"reason"`
	Reference string     `gorm:"default:''" json:"reference"`
	CreatedAt *time.Time `json:"created_at"`
}

/************************************************
/**** MARK: REFERRAL STATUS ****/
/************************************************/
const REFERRAL_STATUS_PENDING = 0
const REFERRAL_STATUS_COMPLETED = 1

// Referral records that Referrer brought Referred into the app.
type Referral struct {
	ID             int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	ReferrerID     int64      `gorm:"not null;index" json:"referrer_id"`
	ReferredID     int64      `gorm:"not null;unique_index" json:"referred_id"`
	ReferredName   string     `gorm:"not null;default:''" json:"referred_name"`
	Code           string     `gorm:"not null" json:"code"`
	Status         int64      `gorm:"default:0" json:"status"`
	ReferrerPoints int64      `gorm:"not null;default:0" json:"referrer_points"`
	ReferredPoints int64      `gorm:"not null;default:0" json:"referred_points"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}
