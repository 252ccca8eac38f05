package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fanhub/controllers"
	"fanhub/models"
	"fanhub/tools"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testServer) webhook(payload any, secret string) *httptest.ResponseRecorder {
	s.t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(s.t, err)
	return s.raw(http.MethodPost, "/api/subscriptions/webhook", "", body, map[string]string{
		controllers.SignatureHeader: tools.SignBody(secret, body),
	})
}

type checkoutResponse struct {
	Subscription     models.Subscription `json:"subscription"`
	PaymentSessionID string              `json:"payment_session_id"`
}

func TestCheckoutAndWebhook(t *testing.T) {
	s := newTestServer(t)
	admin := s.staff("staff@porto.pt")
	fan := s.register("fan@porto.pt")

	w := s.do(http.MethodPost, "/api/plans", admin.AccessToken, gin.H{
		"name": "Gold", "price_cents": 2500, "currency": "eur", "interval": "monthly", "tier": "gold",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Plan models.Plan `json:"plan"`
	}
	decode(t, w, &created)

	w = s.do(http.MethodPost, "/api/subscriptions/checkout", fan.AccessToken, gin.H{"plan_id": created.Plan.ID, "payment_type": "card"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var checkout checkoutResponse
	decode(t, w, &checkout)
	assert.Equal(t, models.SUBSCRIPTION_STATUS_PENDING, checkout.Subscription.Status)
	assert.Equal(t, int64(2500), checkout.Subscription.Amount)
	assert.Equal(t, "EUR", checkout.Subscription.Currency)
	assert.True(t, checkout.Subscription.AutoRenew)
	require.NotEmpty(t, checkout.PaymentSessionID)

	paid := gin.H{"payment_session_id": checkout.PaymentSessionID, "status": "paid"}

	t.Run("rejects bad signatures", func(t *testing.T) {
		w := s.webhook(paid, "wrong-secret")
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.raw(http.MethodPost, "/api/subscriptions/webhook", "", []byte(`{}`), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("paid activates", func(t *testing.T) {
		w := s.webhook(paid, webhookSecret)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"status":"processed"`)

		var sub models.Subscription
		require.NoError(t, s.db.First(&sub, checkout.Subscription.ID).Error)
		assert.Equal(t, models.SUBSCRIPTION_STATUS_ACTIVE, sub.Status)
		require.NotNil(t, sub.StartDate)
		require.NotNil(t, sub.EndDate)
		assert.True(t, sub.EndDate.After(*sub.StartDate))

		member := s.reloadMember(fan.Member.ID)
		assert.Equal(t, models.MEMBER_TIER_GOLD, member.Tier)
		assert.Equal(t, int64(25), member.Points)
	})

	t.Run("replays are ignored", func(t *testing.T) {
		w := s.webhook(gin.H{"payment_session_id": checkout.PaymentSessionID, "status": "cancelled"}, webhookSecret)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ignored"`)
		assert.Equal(t, int64(25), s.reloadMember(fan.Member.ID).Points)
	})

	t.Run("unknown session and status", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, s.webhook(gin.H{"payment_session_id": "nope", "status": "paid"}, webhookSecret).Code)
		assert.Equal(t, http.StatusBadRequest, s.webhook(gin.H{"payment_session_id": "nope", "status": "refunded"}, webhookSecret).Code)
	})

	t.Run("second checkout is refused while active", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/subscriptions/checkout", fan.AccessToken, gin.H{"plan_id": created.Plan.ID})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("member views and badge", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/subscriptions/me", fan.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var mine struct {
			Subscriptions []models.Subscription `json:"subscriptions"`
			Active        *models.Subscription  `json:"active"`
		}
		decode(t, w, &mine)
		assert.Len(t, mine.Subscriptions, 1)
		require.NotNil(t, mine.Active)
		assert.Equal(t, checkout.Subscription.ID, mine.Active.ID)

		w = s.do(http.MethodGet, "/api/me/badge", fan.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "FCP-0000")
		assert.Contains(t, w.Body.String(), `"tier":"gold"`)
	})

	t.Run("auto renew and cancel", func(t *testing.T) {
		path := "/api/subscriptions/" + itoa(checkout.Subscription.ID)
		w := s.do(http.MethodPut, path+"/auto-renew", fan.AccessToken, gin.H{"auto_renew": false})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		other := s.register("other@porto.pt")
		w = s.do(http.MethodPost, path+"/cancel", other.AccessToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, "only the owner can cancel")

		w = s.do(http.MethodPost, path+"/cancel", fan.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var sub models.Subscription
		require.NoError(t, s.db.First(&sub, checkout.Subscription.ID).Error)
		assert.Equal(t, models.SUBSCRIPTION_STATUS_CANCELLED, sub.Status)
		assert.False(t, sub.AutoRenew)
	})

	t.Run("admin sets any status", func(t *testing.T) {
		path := "/api/admin/subscriptions/" + itoa(checkout.Subscription.ID) + "/status"
		w := s.do(http.MethodPut, path, admin.AccessToken, gin.H{"status": "expired"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		w = s.do(http.MethodPut, path, admin.AccessToken, gin.H{"status": "bogus"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(http.MethodGet, "/api/admin/subscriptions?status=expired", admin.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), checkout.PaymentSessionID)
	})
}

func TestFreePlanActivatesAtCheckout(t *testing.T) {
	s := newTestServer(t)
	fan := s.register("free@porto.pt")

	plan := models.Plan{AssociationID: s.assoc.ID, Name: "Supporter", PriceCents: 0, Currency: "EUR",
		Interval: models.PLAN_INTERVAL_ONE_TIME, Tier: models.MEMBER_TIER_SILVER, IsActive: true}
	require.NoError(t, s.db.Create(&plan).Error)

	w := s.do(http.MethodPost, "/api/subscriptions/checkout", fan.AccessToken, gin.H{"plan_id": plan.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var checkout checkoutResponse
	decode(t, w, &checkout)
	assert.Equal(t, models.SUBSCRIPTION_STATUS_ACTIVE, checkout.Subscription.Status)
	assert.False(t, checkout.Subscription.AutoRenew)
	assert.Equal(t, models.MEMBER_TIER_SILVER, s.reloadMember(fan.Member.ID).Tier)
}

// goldMember checks out a gold plan and confirms the payment.
func (s *testServer) goldMember(admin controllers.TokenResponse, email string) (controllers.TokenResponse, checkoutResponse) {
	s.t.Helper()
	fan := s.register(email)
	w := s.do(http.MethodPost, "/api/plans", admin.AccessToken, gin.H{
		"name": "Gold " + email, "price_cents": 2500, "interval": "monthly", "tier": "gold",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Plan models.Plan `json:"plan"`
	}
	decode(s.t, w, &created)

	w = s.do(http.MethodPost, "/api/subscriptions/checkout", fan.AccessToken, gin.H{"plan_id": created.Plan.ID})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var checkout checkoutResponse
	decode(s.t, w, &checkout)

	w = s.webhook(gin.H{"payment_session_id": checkout.PaymentSessionID, "status": "paid"}, webhookSecret)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(s.t, models.MEMBER_TIER_GOLD, s.reloadMember(fan.Member.ID).Tier)
	return fan, checkout
}

func TestEndingSubscriptionDropsTier(t *testing.T) {
	s := newTestServer(t)
	admin := s.staff("staff@porto.pt")

	t.Run("member cancels", func(t *testing.T) {
		fan, checkout := s.goldMember(admin, "cancel@porto.pt")
		w := s.do(http.MethodPost, "/api/subscriptions/"+itoa(checkout.Subscription.ID)+"/cancel", fan.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, models.MEMBER_TIER_BRONZE, s.reloadMember(fan.Member.ID).Tier)
	})

	for _, status := range []string{models.SUBSCRIPTION_STATUS_CANCELLED, models.SUBSCRIPTION_STATUS_EXPIRED} {
		t.Run("admin sets "+status, func(t *testing.T) {
			fan, checkout := s.goldMember(admin, status+"@porto.pt")
			path := "/api/admin/subscriptions/" + itoa(checkout.Subscription.ID) + "/status"
			w := s.do(http.MethodPut, path, admin.AccessToken, gin.H{"status": status})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, models.MEMBER_TIER_BRONZE, s.reloadMember(fan.Member.ID).Tier)
		})
	}
}

func TestRepeatedWebhookChangesNothing(t *testing.T) {
	s := newTestServer(t)
	admin := s.staff("staff@porto.pt")
	fan, checkout := s.goldMember(admin, "fan@porto.pt")

	countNotifications := func() int {
		var n int
		require.NoError(t, s.db.Model(&models.Notification{}).Where("member_id = ?", fan.Member.ID).Count(&n).Error)
		return n
	}
	points := s.reloadMember(fan.Member.ID).Points
	notifications := countNotifications()
	require.NotZero(t, notifications)

	var before models.Subscription
	require.NoError(t, s.db.First(&before, checkout.Subscription.ID).Error)

	for _, status := range []string{"paid", "paid", "cancelled"} {
		w := s.webhook(gin.H{"payment_session_id": checkout.PaymentSessionID, "status": status}, webhookSecret)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"status":"ignored"`)
	}

	member := s.reloadMember(fan.Member.ID)
	assert.Equal(t, points, member.Points)
	assert.Equal(t, models.MEMBER_TIER_GOLD, member.Tier)
	assert.Equal(t, notifications, countNotifications())

	var after models.Subscription
	require.NoError(t, s.db.First(&after, checkout.Subscription.ID).Error)
	assert.Equal(t, models.SUBSCRIPTION_STATUS_ACTIVE, after.Status)
	require.NotNil(t, after.EndDate)
	assert.True(t, before.EndDate.Equal(*after.EndDate))
}
