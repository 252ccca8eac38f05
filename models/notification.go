package models

import "time"

/************************************************
/**** MARK: DELIVERY STATUS ****/
/************************************************/
const DELIVERY_STATUS_PENDING = "pending"
const DELIVERY_STATUS_PROCESSING = "processing"
const DELIVERY_STATUS_DONE = "done"
const DELIVERY_STATUS_FAILED = "failed"

const NOTIFICATION_CATEGORY_GENERAL = "general"
const NOTIFICATION_CATEGORY_ACCOUNT = "account"
const NOTIFICATION_CATEGORY_SUBSCRIPTION = "subscription"
const NOTIFICATION_CATEGORY_TICKET = "ticket"
const NOTIFICATION_CATEGORY_LOYALTY = "loyalty"
const NOTIFICATION_CATEGORY_NEWS = "news"

// Notification is an in-app message for a member. It is created "pending" and the
// dispatcher publishes it to the push fan-out exchange.
type Notification struct {
	ID             int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	MemberID       int64      `gorm:"not null;index" json:"member_id"`
	Title          string     `gorm:"not null" json:"title"`
	Body           string     `gorm:"type:text" json:"body"`
	Category       string     `gorm:"not null;default:'general';index" json:"category"`
	Data           string     `gorm:"type:text" json:"data"`
	ReadAt         *time.Time `json:"read_at"`
	DeliveryStatus string     `gorm:"not null;default:'pending';index" json:"delivery_status"`
	Attempts       int        `gorm:"not null;default:0" json:"-"`
	DeliveredAt    *time.Time `json:"delivered_at"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

const PUSH_PLATFORM_IOS = "ios"
const PUSH_PLATFORM_ANDROID = "android"
const PUSH_PLATFORM_WEB = "web"

// PushToken is a device token registered by the mobile shell.
type PushToken struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	MemberID  int64      `gorm:"not null;index" json:"member_id"`
	Token     string     `gorm:"not null;unique_index" json:"token"`
	Platform  string     `gorm:"not null;default:'web'" json:"platform"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func IsValidPushPlatform(platform string) bool {
	switch platform {
	case PUSH_PLATFORM_IOS, PUSH_PLATFORM_ANDROID, PUSH_PLATFORM_WEB:
		return true
	}
	return false
}
