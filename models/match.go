package models

import (
	"strings"
	"time"
)

/************************************************
/**** MARK: MATCH STATUS ****/
/************************************************/
const MATCH_STATUS_SCHEDULED = "scheduled"
const MATCH_STATUS_LIVE = "live"
const MATCH_STATUS_FINISHED = "finished"
const MATCH_STATUS_POSTPONED = "postponed"

type Match struct {
	ID               int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	AssociationID    int64      `gorm:"not null;index" json:"association_id"`
	HomeTeam         string     `gorm:"not null" json:"home_team" form:"home_team"`
	AwayTeam         string     `gorm:"not null" json:"away_team" form:"away_team"`
	Competition      string     `gorm:"default:''" json:"competition" form:"competition"`
	Venue            string     `gorm:"default:''" json:"venue" form:"venue"`
	KickoffAt        *time.Time `gorm:"index" json:"kickoff_at" form:"kickoff_at"`
	Status           string     `gorm:"not null;default:'scheduled';index" json:"status" form:"status"`
	HomeScore        int        `gorm:"not null;default:0" json:"home_score" form:"home_score"`
	AwayScore        int        `gorm:"not null;default:0" json:"away_score" form:"away_score"`
	TicketPriceCents int64      `gorm:"not null;default:0" json:"ticket_price_cents" form:"ticket_price_cents"`
	Currency         string     `gorm:"not null;default:'EUR'" json:"currency" form:"currency"`
	Capacity         int64      `gorm:"not null;default:0" json:"capacity" form:"capacity"`
	TicketsSold      int64      `gorm:"not null;default:0" json:"tickets_sold"`
	// SeatsIssued only grows; cancelled seats are not handed out again.
	SeatsIssued int64      `gorm:"not null;default:0" json:"-"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

func (m Match) MissingFields() string {
	if strings.TrimSpace(m.HomeTeam) == "" {
		return "home_team"
	} else if strings.TrimSpace(m.AwayTeam) == "" {
		return "away_team"
	} else if m.KickoffAt == nil {
		return "kickoff_at"
	}
	return ""
}

// TicketsAvailable is the remaining capacity; zero capacity means tickets are not sold.
func (m Match) TicketsAvailable() int64 {
	left := m.Capacity - m.TicketsSold
	if left < 0 {
		return 0
	}
	return left
}

func IsValidMatchStatus(status string) bool {
	switch status {
	case MATCH_STATUS_SCHEDULED, MATCH_STATUS_LIVE, MATCH_STATUS_FINISHED, MATCH_STATUS_POSTPONED:
		return true
	}
	return false
}
