package services

import (
	"errors"
	"fmt"

	"fanhub/models"
)

var (
	ErrSquadTooLarge      = errors.New("squad is full")
	ErrOverBudget         = errors.New("squad cost exceeds budget")
	ErrTooManyFromClub    = errors.New("too many players from the same club")
	ErrTooManyGoalkeepers = errors.New("only one goalkeeper allowed")
	ErrCaptainRequired    = errors.New("captain must be one of the picks")
	ErrDuplicatePlayer    = errors.New("player picked twice")
	ErrPlayerUnavailable  = errors.New("player not available")
)

type SquadRules struct {
	Budget     int64
	SquadSize  int
	MaxPerClub int
}

// ValidateSquad checks a full squad selection. players must be the loaded picks in order.
func ValidateSquad(players []models.Player, captainID int64, rules SquadRules) error {
	if len(players) > rules.SquadSize {
		return fmt.Errorf("%w: max %d players", ErrSquadTooLarge, rules.SquadSize)
	}

	seen := map[int64]bool{}
	perClub := map[string]int{}
	var cost int64
	goalkeepers := 0
	captainFound := false

	for _, p := range players {
		if !p.IsActive {
			return fmt.Errorf("%w: %s", ErrPlayerUnavailable, p.Name)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.Name)
		}
		seen[p.ID] = true

		cost += p.Cost
		if p.Position == models.POSITION_GK {
			goalkeepers++
		}
		if p.Club != "" {
			perClub[p.Club]++
			if perClub[p.Club] > rules.MaxPerClub {
				return fmt.Errorf("%w: %s", ErrTooManyFromClub, p.Club)
			}
		}
		if p.ID == captainID {
			captainFound = true
		}
	}

	if goalkeepers > 1 {
		return ErrTooManyGoalkeepers
	}
	if cost > rules.Budget {
		return fmt.Errorf("%w: %d > %d", ErrOverBudget, cost, rules.Budget)
	}
	if len(players) > 0 && !captainFound {
		return ErrCaptainRequired
	}
	return nil
}

// TeamPoints sums player points; the captain scores double.
func TeamPoints(players []models.Player, captainID int64) int64 {
	var total int64
	for _, p := range players {
		total += p.Points
		if p.ID == captainID {
			total += p.Points
		}
	}
	return total
}

func SquadCost(players []models.Player) int64 {
	var total int64
	for _, p := range players {
		total += p.Cost
	}
	return total
}
