package models

import (
	"strconv"
	"strings"
	"time"

	"fanhub/tools"
)

const MEMBER_GENDER_MALE = "male"
const MEMBER_GENDER_FEMALE = "female"
const MEMBER_GENDER_OTHER = "other"

/************************************************
/**** MARK: MEMBER TYPES ****/
/************************************************/
const MEMBER_TYPE_NORMAL = 0
const MEMBER_TYPE_STAFF = 1
const MEMBER_TYPE_SUPERADMIN = 2

/************************************************
/**** MARK: MEMBER STATUS ****/
/************************************************/
const MEMBER_STATUS_AVAILABLE = 0
const MEMBER_STATUS_PENDING = 1
const MEMBER_STATUS_BLOCKED = 2

/************************************************
/**** MARK: MEMBER TIERS ****/
/************************************************/
const MEMBER_TIER_BRONZE = "bronze"
const MEMBER_TIER_SILVER = "silver"
const MEMBER_TIER_GOLD = "gold"
const MEMBER_TIER_PLATINUM = "platinum"

var memberTiers = map[string]int{
	MEMBER_TIER_BRONZE:   0,
	MEMBER_TIER_SILVER:   1,
	MEMBER_TIER_GOLD:     2,
	MEMBER_TIER_PLATINUM: 3,
}

// Member is an end user of an association: profile, tier, badge and loyalty balance.
type Member struct {
	ID               int64        `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	AssociationID    int64        `gorm:"not null;index" json:"association_id" form:"association_id"`
	Association      *Association `gorm:"association_autoupdate:false;association_autocreate:false" json:"association,omitempty"`
	Name             string       `gorm:"not null" json:"name" form:"name"`
	Email            string       `gorm:"not null;unique" json:"email" form:"email"`
	Password         string       `gorm:"not null" json:"password,omitempty" form:"password"`
	Gender           string       `gorm:"default:''" json:"gender" form:"gender"`
	Birthdate        string       `gorm:"default:''" json:"birthdate" form:"birthdate"`
	Phone            string       `gorm:"column:phone" json:"phone" form:"phone"`
	City             string       `gorm:"default:''" json:"city" form:"city"`
	Country          string       `gorm:"default:''" json:"country" form:"country"`
	ProfileImageURL  string       `gorm:"column:profile_image_url" json:"profile_image_url" form:"profile_image_url"`
	Status           int          `gorm:"default:0;index" json:"status" form:"status"`
	Type             int          `gorm:"not null;default:0" json:"type" form:"type"`
	Admin            bool         `gorm:"not null;default:false" json:"admin" form:"admin"`
	Tier             string       `gorm:"not null;default:'bronze'" json:"tier" form:"tier"`
	MembershipNumber string       `gorm:"unique_index" json:"membership_number"`
	ReferralCode     string       `gorm:"unique_index" json:"referral_code"`
	Points           int64        `gorm:"not null;default:0" json:"points"`
	Platform         string       `gorm:"default:''" json:"platform" form:"platform"`
	CreatedAt        *time.Time   `json:"created_at" form:"created_at"`
	UpdatedAt        *time.Time   `json:"updated_at" form:"updated_at"`
}

func (member Member) MissingFields() string {
	if member.Name == "" {
		return "name"
	} else if member.Email == "" {
		return "email"
	} else if member.Password == "" {
		return "password"
	} else if tools.CheckPassword(member.Password) != "" {
		return tools.CheckPassword(member.Password)
	} else if member.Phone == "" {
		return "phone"
	} else if member.AssociationID == 0 {
		return "association_id"
	}
	return ""
}

// IsStaff reports whether the member manages its association.
func (member Member) IsStaff() bool {
	return member.Admin || member.Type == MEMBER_TYPE_STAFF || member.Type == MEMBER_TYPE_SUPERADMIN
}

func (member Member) IsSuperadmin() bool {
	return member.Type == MEMBER_TYPE_SUPERADMIN
}

// Sanitized returns a copy safe to serialize.
func (member Member) Sanitized() Member {
	member.Password = ""
	return member
}

func IsValidTier(tier string) bool {
	_, ok := memberTiers[strings.ToLower(tier)]
	return ok
}

// TierRank orders tiers from bronze (0) to platinum (3); unknown tiers rank as bronze.
func TierRank(tier string) int {
	return memberTiers[strings.ToLower(tier)]
}

func IsValidMemberStatus(status int) bool {
	return status == MEMBER_STATUS_AVAILABLE || status == MEMBER_STATUS_PENDING || status == MEMBER_STATUS_BLOCKED
}

var memberStatusNames = map[string]int{
	"available": MEMBER_STATUS_AVAILABLE,
	"pending":   MEMBER_STATUS_PENDING,
	"blocked":   MEMBER_STATUS_BLOCKED,
}

// ParseMemberStatus accepts a status name ("available", "pending", "blocked") or its number.
func ParseMemberStatus(value string) (int, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if status, ok := memberStatusNames[value]; ok {
		return status, true
	}
	status, err := strconv.Atoi(value)
	if err != nil || !IsValidMemberStatus(status) {
		return 0, false
	}
	return status, true
}
