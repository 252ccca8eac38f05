package models

import (
	"strings"
	"time"
)

// Product is an item of the association's fan shop.
type Product struct {
	ID            int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	AssociationID int64      `gorm:"not null;index" json:"association_id"`
	Name          string     `gorm:"not null" json:"name" form:"name"`
	Description   string     `gorm:"type:text" json:"description" form:"description"`
	PriceCents    int64      `gorm:"not null;default:0" json:"price_cents" form:"price_cents"`
	Currency      string     `gorm:"not null;default:'EUR'" json:"currency" form:"currency"`
	Stock         int64      `gorm:"not null;default:0" json:"stock" form:"stock"`
	ImageURL      string     `gorm:"default:''" json:"image_url" form:"image_url"`
	Category      string     `gorm:"not null;default:'general';index" json:"category" form:"category"`
	IsActive      bool       `gorm:"not null;default:true" json:"is_active" form:"is_active"`
	CreatedAt     *time.Time `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

func (p Product) MissingFields() string {
	if strings.TrimSpace(p.Name) == "" {
		return "name"
	} else if p.PriceCents <= 0 {
		return "price_cents"
	}
	return ""
}
