package controllers

import (
	"time"

	"fanhub/config"
	"fanhub/services"
)

var conf = config.Default()

// SetConfigurations replaces the settings used by the handlers.
func SetConfigurations(configuration config.Configuration) {
	conf = configuration
}

func accessTokenTTL() time.Duration {
	return time.Duration(conf.Security.AccessTokenTTLMinutes) * time.Minute
}

func refreshTokenTTL() time.Duration {
	return time.Duration(conf.Security.RefreshCodeMaxValid) * 24 * time.Hour
}

func rewards() services.Rewards {
	return services.Rewards{
		ReferrerPoints: conf.Loyalty.ReferrerPoints,
		ReferredPoints: conf.Loyalty.ReferredPoints,
		TicketPoints:   conf.Loyalty.TicketPoints,
	}
}

func squadRules() services.SquadRules {
	return services.SquadRules{
		Budget:     conf.Fantasy.Budget,
		SquadSize:  conf.Fantasy.SquadSize,
		MaxPerClub: conf.Fantasy.MaxPerClub,
	}
}

func insightTTL() time.Duration {
	return time.Duration(conf.AI.CacheTTLMinutes) * time.Minute
}
