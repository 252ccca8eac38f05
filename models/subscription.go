package models

import "time"

/************************************************
/**** MARK: SUBSCRIPTION STATUS ****/
/************************************************/
const SUBSCRIPTION_STATUS_ACTIVE = "active"
const SUBSCRIPTION_STATUS_EXPIRED = "expired"
const SUBSCRIPTION_STATUS_CANCELLED = "cancelled"
const SUBSCRIPTION_STATUS_PENDING = "pending"

/************************************************
/**** MARK: PAYMENT TYPES ****/
/************************************************/
const PAYMENT_TYPE_CARD = "card"
const PAYMENT_TYPE_MOBILE_MONEY = "mobile_money"
const PAYMENT_TYPE_BANK_TRANSFER = "bank_transfer"
const PAYMENT_TYPE_CASH = "cash"

// Subscription ties a member/association pair to a plan, a price and a validity window.
// Status is a plain field: external callers (payment webhook, staff) may set any valid value.
type Subscription struct {
	ID               int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	MemberID         int64      `gorm:"not null;index" json:"member_id"`
	AssociationID    int64      `gorm:"not null;index" json:"association_id"`
	PlanID           int64      `gorm:"not null;default:0;index" json:"plan_id"`
	PlanName         string     `gorm:"not null" json:"plan_name"`
	Amount           int64      `gorm:"not null;default:0" json:"amount"` // minor units
	Currency         string     `gorm:"not null;default:'EUR'" json:"currency"`
	Interval         string     `gorm:"not null;default:'monthly'" json:"interval"`
	Status           string     `gorm:"not null;default:'pending';index" json:"status"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `gorm:"index" json:"end_date"`
	PaymentType      string     `gorm:"not null;default:'card'" json:"payment_type"`
	PaymentSessionID string     `gorm:"unique_index" json:"payment_session_id"`
	AutoRenew        bool       `gorm:"not null;default:true" json:"auto_renew"`
	CancelledAt      *time.Time `json:"cancelled_at"`
	CreatedAt        *time.Time `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

func (s Subscription) MissingFields() string {
	if s.MemberID == 0 {
		return "member_id"
	} else if s.AssociationID == 0 {
		return "association_id"
	} else if s.PlanName == "" {
		return "plan_name"
	} else if s.Currency == "" {
		return "currency"
	}
	return ""
}

// IsCurrent reports whether the subscription is active and inside its window.
func (s Subscription) IsCurrent(now time.Time) bool {
	if s.Status != SUBSCRIPTION_STATUS_ACTIVE {
		return false
	}
	return s.EndDate == nil || s.EndDate.After(now)
}

func IsValidSubscriptionStatus(status string) bool {
	switch status {
	case SUBSCRIPTION_STATUS_ACTIVE, SUBSCRIPTION_STATUS_EXPIRED, SUBSCRIPTION_STATUS_CANCELLED, SUBSCRIPTION_STATUS_PENDING:
		return true
	}
	return false
}

func IsValidPaymentType(paymentType string) bool {
	switch paymentType {
	case PAYMENT_TYPE_CARD, PAYMENT_TYPE_MOBILE_MONEY, PAYMENT_TYPE_BANK_TRANSFER, PAYMENT_TYPE_CASH:
		return true
	}
	return false
}
