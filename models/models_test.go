package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "fc-porto", Slugify("  FC Porto "))
	assert.Equal(t, "sporting-cp-1906", Slugify("Sporting C.P. -- 1906!"))
	assert.Equal(t, "", Slugify("***"))
}

func TestBadgePrefix(t *testing.T) {
	assert.Equal(t, "FCP", Association{ShortName: "fcp", Slug: "futebol-clube-porto"}.BadgePrefix())
	assert.Equal(t, "FCDP", Association{Slug: "futebol-clube-do-porto"}.BadgePrefix())
	assert.Equal(t, "FAN", Association{}.BadgePrefix())
}

func TestPeriodEnd(t *testing.T) {
	start := time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), PeriodEnd(PLAN_INTERVAL_MONTHLY, start))
	assert.Equal(t, time.Date(2027, 1, 31, 10, 0, 0, 0, time.UTC), PeriodEnd(PLAN_INTERVAL_YEARLY, start))
	assert.Equal(t, time.Date(2027, 1, 31, 10, 0, 0, 0, time.UTC), PeriodEnd(PLAN_INTERVAL_ONE_TIME, start))
}

func TestSubscriptionIsCurrent(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, Subscription{Status: SUBSCRIPTION_STATUS_ACTIVE}.IsCurrent(now))
	assert.True(t, Subscription{Status: SUBSCRIPTION_STATUS_ACTIVE, EndDate: &future}.IsCurrent(now))
	assert.False(t, Subscription{Status: SUBSCRIPTION_STATUS_ACTIVE, EndDate: &past}.IsCurrent(now))
	assert.False(t, Subscription{Status: SUBSCRIPTION_STATUS_PENDING, EndDate: &future}.IsCurrent(now))
}

func TestSubscriptionEnums(t *testing.T) {
	for _, s := range []string{"active", "expired", "cancelled", "pending"} {
		assert.True(t, IsValidSubscriptionStatus(s), s)
	}
	assert.False(t, IsValidSubscriptionStatus("paid"))
	assert.True(t, IsValidPaymentType(PAYMENT_TYPE_MOBILE_MONEY))
	assert.False(t, IsValidPaymentType("crypto"))
	assert.Equal(t, "currency", Subscription{MemberID: 1, AssociationID: 1, PlanName: "Gold"}.MissingFields())
}

func TestMemberRoles(t *testing.T) {
	assert.False(t, Member{}.IsStaff())
	assert.True(t, Member{Admin: true}.IsStaff())
	assert.True(t, Member{Type: MEMBER_TYPE_STAFF}.IsStaff())
	assert.True(t, Member{Type: MEMBER_TYPE_SUPERADMIN}.IsSuperadmin())
	assert.Empty(t, Member{Password: "hash"}.Sanitized().Password)
}

func TestTiers(t *testing.T) {
	assert.True(t, IsValidTier("Gold"))
	assert.False(t, IsValidTier("diamond"))
	assert.Less(t, TierRank(MEMBER_TIER_SILVER), TierRank(MEMBER_TIER_PLATINUM))
	assert.Equal(t, 0, TierRank("unknown"))
}

func TestTicketsAvailable(t *testing.T) {
	assert.Equal(t, int64(5), Match{Capacity: 10, TicketsSold: 5}.TicketsAvailable())
	assert.Equal(t, int64(0), Match{Capacity: 10, TicketsSold: 12}.TicketsAvailable())
}

func TestRefreshTokenState(t *testing.T) {
	now := time.Now()
	expired := now.Add(-time.Minute)
	assert.True(t, RefreshToken{ExpiresAt: &expired}.IsExpired(now))
	assert.False(t, RefreshToken{}.IsExpired(now))
	assert.True(t, RefreshToken{RevokedAt: &now}.IsRevoked())
}

func TestParseMemberStatus(t *testing.T) {
	for in, want := range map[string]int{"available": MEMBER_STATUS_AVAILABLE, " Blocked ": MEMBER_STATUS_BLOCKED, "1": MEMBER_STATUS_PENDING} {
		got, ok := ParseMemberStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "banned", "3", "-1"} {
		_, ok := ParseMemberStatus(in)
		assert.False(t, ok, in)
	}
}
