package models

import "time"

/************************************************
/**** MARK: TICKET STATUS ****/
/************************************************/
const TICKET_STATUS_VALID = "valid"
const TICKET_STATUS_USED = "used"
const TICKET_STATUS_CANCELLED = "cancelled"

// Ticket is a seat for a match. Code is the QR payload scanned at the gate.
type Ticket struct {
	ID            int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	MatchID       int64      `gorm:"not null;index" json:"match_id"`
	Match         *Match     `gorm:"association_autoupdate:false;association_autocreate:false" json:"match,omitempty"`
	MemberID      int64      `gorm:"not null;index" json:"member_id"`
	AssociationID int64      `gorm:"not null;index" json:"association_id"`
	Code          string     `gorm:"not null;unique_index" json:"code"`
	Seat          string     `gorm:"not null;default:''" json:"seat"`
	PriceCents    int64      `gorm:"not null;default:0" json:"price_cents"`
	Currency      string     `gorm:"not null;default:'EUR'" json:"currency"`
	Status        string     `gorm:"not null;default:'valid';index" json:"status"`
	UsedAt        *time.Time `json:"used_at"`
	ScannedByID   int64      `gorm:"not null;default:0" json:"scanned_by_id"`
	CreatedAt     *time.Time `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}
