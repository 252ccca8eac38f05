package services

import (
	"fmt"

	"fanhub/models"
)

// MembershipNumber is the badge number printed on the member card, e.g. "FCP-000042".
func MembershipNumber(association models.Association, memberID int64) string {
	return fmt.Sprintf("%s-%06d", association.BadgePrefix(), memberID)
}

// Badge is the digital membership card shown in the app.
type Badge struct {
	MembershipNumber string `json:"membership_number"`
	Name             string `json:"name"`
	Tier             string `json:"tier"`
	MemberSince      string `json:"member_since"`
	Association      string `json:"association"`
	LogoURL          string `json:"logo_url"`
	PrimaryColor     string `json:"primary_color"`
	SecondColor      string `json:"second_color"`
	Active           bool   `json:"active"`
	ValidUntil       string `json:"valid_until,omitempty"`
}

func BuildBadge(member models.Member, association models.Association, current *models.Subscription) Badge {
	b := Badge{
		MembershipNumber: member.MembershipNumber,
		Name:             member.Name,
		Tier:             member.Tier,
		Association:      association.Name,
		LogoURL:          association.LogoURL,
		PrimaryColor:     association.PrimaryColor,
		SecondColor:      association.SecondColor,
	}
	if member.CreatedAt != nil {
		b.MemberSince = member.CreatedAt.Format("2006-01-02")
	}
	if current != nil {
		b.Active = true
		if current.EndDate != nil {
			b.ValidUntil = current.EndDate.Format("2006-01-02")
		}
	}
	return b
}
