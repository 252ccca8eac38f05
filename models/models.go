package models

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&Association{},
		&Member{},
		&ActivationCode{},
		&RefreshToken{},
		&PasswordReset{},
		&Plan{},
		&Subscription{},
		&NewsArticle{},
		&Comment{},
		&Match{},
		&Ticket{},
		&Product{},
		&Order{},
		&OrderItem{},
		&Player{},
		&FantasyTeam{},
		&FantasyPick{},
		&PointsTransaction{},
		&Referral{},
		&Notification{},
		&PushToken{},
		&AuditLog{},
	}
}
