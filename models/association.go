package models

import (
	"strings"
	"time"
	"unicode"
)

// Association is a tenant (club, supporters' trust or federation) managing its own members.
type Association struct {
	ID           int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Name         string     `gorm:"not null" json:"name" form:"name"`
	Slug         string     `gorm:"not null;unique_index" json:"slug" form:"slug"`
	ShortName    string     `gorm:"not null;default:''" json:"short_name" form:"short_name"`
	LogoURL      string     `gorm:"default:''" json:"logo_url" form:"logo_url"`
	PrimaryColor string     `gorm:"default:''" json:"primary_color" form:"primary_color"`
	SecondColor  string     `gorm:"default:''" json:"second_color" form:"second_color"`
	Country      string     `gorm:"default:''" json:"country" form:"country"`
	City         string     `gorm:"default:''" json:"city" form:"city"`
	Stadium      string     `gorm:"default:''" json:"stadium" form:"stadium"`
	Founded      int        `gorm:"default:0" json:"founded" form:"founded"`
	Website      string     `gorm:"default:''" json:"website" form:"website"`
	ContactEmail string     `gorm:"default:''" json:"contact_email" form:"contact_email"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active" form:"is_active"`
	CreatedAt    *time.Time `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

func (a Association) MissingFields() string {
	if strings.TrimSpace(a.Name) == "" {
		return "name"
	}
	return ""
}

// Slugify lower-cases s and joins its alphanumeric runs with "-".
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteRune('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// BadgePrefix is the membership-number prefix: the short name, or the first letters of the slug.
func (a Association) BadgePrefix() string {
	if p := strings.ToUpper(strings.TrimSpace(a.ShortName)); p != "" {
		return p
	}
	var b strings.Builder
	for _, part := range strings.Split(a.Slug, "-") {
		if part != "" {
			b.WriteString(strings.ToUpper(part[:1]))
		}
	}
	if b.Len() == 0 {
		return "FAN"
	}
	return b.String()
}
