package models

import (
	"strings"
	"time"
)

const POSITION_GK = "GK"
const POSITION_DEF = "DEF"
const POSITION_MID = "MID"
const POSITION_FWD = "FWD"

// Player is a footballer selectable in fantasy teams.
type Player struct {
	ID            int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	AssociationID int64      `gorm:"not null;index" json:"association_id"`
	Name          string     `gorm:"not null" json:"name" form:"name"`
	Position      string     `gorm:"not null;index" json:"position" form:"position"`
	Club          string     `gorm:"not null;default:''" json:"club" form:"club"`
	Cost          int64      `gorm:"not null;default:0" json:"cost" form:"cost"`
	Points        int64      `gorm:"not null;default:0" json:"points" form:"points"`
	IsActive      bool       `gorm:"not null;default:true" json:"is_active" form:"is_active"`
	CreatedAt     *time.Time `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

func (p Player) MissingFields() string {
	if strings.TrimSpace(p.Name) == "" {
		return "name"
	} else if !IsValidPosition(p.Position) {
		return "position"
	}
	return ""
}

func IsValidPosition(position string) bool {
	switch position {
	case POSITION_GK, POSITION_DEF, POSITION_MID, POSITION_FWD:
		return true
	}
	return false
}

// FantasyTeam is a member's fantasy squad (one per member).
type FantasyTeam struct {
	ID            int64         `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	MemberID      int64         `gorm:"not null;unique_index" json:"member_id"`
	AssociationID int64         `gorm:"not null;index" json:"association_id"`
	Name          string        `gorm:"not null" json:"name"`
	Picks         []FantasyPick `gorm:"foreignkey:TeamID;association_autoupdate:false;association_autocreate:false" json:"picks"`
	CreatedAt     *time.Time    `json:"created_at"`
	UpdatedAt     *time.Time    `json:"updated_at"`
}

// FantasyPick links a player to a team (unique per team).
type FantasyPick struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	TeamID    int64      `gorm:"not null;index;unique_index:ux_team_player" json:"team_id"`
	PlayerID  int64      `gorm:"not null;index;unique_index:ux_team_player" json:"player_id"`
	IsCaptain bool       `gorm:"not null;default:false" json:"is_captain"`
	CreatedAt *time.Time `json:"created_at"`
}
