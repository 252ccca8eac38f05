package router

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"fanhub/controllers"
	"fanhub/models"
	"fanhub/tools"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu     sync.Mutex
	calls  int
	inputs []string
	err    error
}

func (g *fakeGenerator) Generate(_ context.Context, _ string, input string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.inputs = append(g.inputs, input)
	if g.err != nil {
		return "", g.err
	}
	return "insight #" + itoa(int64(g.calls)), nil
}

func TestNewsCommentsAndNotifications(t *testing.T) {
	s := newTestServer(t)
	editor := s.staff("editor@porto.pt")
	fan := s.register("fan@porto.pt")

	w := s.do(http.MethodPost, "/api/news", fan.AccessToken, gin.H{"title": "x", "body": "y"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/news", editor.AccessToken, gin.H{"title": "Derby Day Tickets", "summary": "Sale opens", "body": "Full story"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		News models.NewsArticle `json:"news"`
	}
	decode(t, w, &created)
	assert.Equal(t, "derby-day-tickets", created.News.Slug)
	assert.False(t, created.News.Published)

	newsPath := "/api/news/" + itoa(created.News.ID)

	t.Run("drafts are hidden from members", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, newsPath, fan.AccessToken, nil).Code)
		w := s.do(http.MethodPost, "/api/comments", fan.AccessToken, gin.H{"news_id": created.News.ID, "body": "first"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("publish notifies members", func(t *testing.T) {
		w := s.do(http.MethodPost, newsPath+"/publish", editor.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var published struct {
			News     models.NewsArticle `json:"news"`
			Notified int                `json:"notified"`
		}
		decode(t, w, &published)
		assert.True(t, published.News.Published)
		assert.NotNil(t, published.News.PublishedAt)
		assert.Equal(t, 2, published.Notified)

		w = s.do(http.MethodPost, newsPath+"/publish", editor.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"notified":0`)
	})

	t.Run("comments", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/comments", fan.AccessToken, gin.H{"news_id": created.News.ID, "body": "  Let's go!  "})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var comment struct {
			Comment models.Comment `json:"comment"`
		}
		decode(t, w, &comment)
		assert.Equal(t, "Let's go!", comment.Comment.Body)

		long := strings.Repeat("a", models.COMMENT_MAX_LEN+1)
		w = s.do(http.MethodPost, "/api/comments", fan.AccessToken, gin.H{"news_id": created.News.ID, "body": long})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(http.MethodGet, "/api/comments?news_id="+itoa(created.News.ID), fan.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var list struct {
			Comments []models.Comment `json:"comments"`
		}
		decode(t, w, &list)
		require.Len(t, list.Comments, 1)

		w = s.do(http.MethodGet, newsPath, fan.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Derby Day Tickets")

		other := s.register("other@porto.pt")
		commentPath := "/api/comments/" + itoa(comment.Comment.ID)
		assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, commentPath, other.AccessToken, nil).Code)
		assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, commentPath, editor.AccessToken, nil).Code)
	})

	t.Run("inbox", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/notifications?unread=true", fan.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var inbox struct {
			Notifications []models.Notification `json:"notifications"`
			Unread        int64                 `json:"unread"`
		}
		decode(t, w, &inbox)
		require.NotEmpty(t, inbox.Notifications)
		assert.Equal(t, int64(len(inbox.Notifications)), inbox.Unread)
		assert.Equal(t, "Derby Day Tickets", inbox.Notifications[0].Title)

		w = s.do(http.MethodPost, "/api/notifications/"+itoa(inbox.Notifications[0].ID)+"/read", fan.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = s.do(http.MethodPost, "/api/notifications/read-all", fan.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = s.do(http.MethodGet, "/api/notifications", fan.AccessToken, nil)
		decode(t, w, &inbox)
		assert.Zero(t, inbox.Unread)
	})

	t.Run("push tokens and broadcast", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/push/register", fan.AccessToken, gin.H{"token": "device-1", "platform": "android"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"status":"registered"`)

		w = s.do(http.MethodPost, "/api/push/register", fan.AccessToken, gin.H{"token": "device-2", "platform": "fax"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.do(http.MethodPost, "/api/push/register", editor.AccessToken, gin.H{"token": "device-1", "platform": "ios"})
		require.Equal(t, http.StatusOK, w.Code)
		var count int
		require.NoError(t, s.db.Model(&models.PushToken{}).Where("token = ?", "device-1").Count(&count).Error)
		assert.Equal(t, 1, count)

		w = s.do(http.MethodPost, "/api/admin/notifications/broadcast", editor.AccessToken, gin.H{"title": "Gates open", "body": "Gates open at 18:00"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"status":"queued"`)
		assert.Contains(t, w.Body.String(), `"notified":3`)

		w = s.do(http.MethodPost, "/api/admin/notifications/broadcast", editor.AccessToken, gin.H{"title": "", "body": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDashboardLogsAndExports(t *testing.T) {
	s := newTestServer(t)
	admin := s.staff("admin@porto.pt")
	fan := s.register("fan@porto.pt")

	yearly := models.Plan{AssociationID: s.assoc.ID, Name: "Season", PriceCents: 12000, Currency: "EUR",
		Interval: models.PLAN_INTERVAL_YEARLY, Tier: models.MEMBER_TIER_GOLD, IsActive: true}
	require.NoError(t, s.db.Create(&yearly).Error)
	w := s.do(http.MethodPost, "/api/subscriptions/checkout", fan.AccessToken, gin.H{"plan_id": yearly.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var checkout checkoutResponse
	decode(t, w, &checkout)
	require.Equal(t, http.StatusOK, s.webhook(gin.H{"payment_session_id": checkout.PaymentSessionID, "status": "paid"}, webhookSecret).Code)

	match := s.seedMatch(time.Now().Add(24*time.Hour), 100)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/tickets", fan.AccessToken, gin.H{"match_id": match.ID, "quantity": 3}).Code)

	t.Run("stats", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/admin/dashboard/stats", fan.AccessToken, nil).Code)

		w := s.do(http.MethodGet, "/api/admin/dashboard/stats", admin.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var stats controllers.DashboardStats
		decode(t, w, &stats)
		assert.Equal(t, int64(2), stats.Members.Total)
		assert.Equal(t, int64(2), stats.Members.Active)
		assert.Equal(t, int64(1), stats.Members.ByTier[models.MEMBER_TIER_GOLD])
		assert.Equal(t, int64(1), stats.Subscriptions[models.SUBSCRIPTION_STATUS_ACTIVE])
		assert.Equal(t, int64(1000), stats.RecurringMonthly["EUR"])
		assert.Equal(t, int64(3), stats.TicketsSold)
		assert.Equal(t, int64(1), stats.UpcomingMatches)
	})

	t.Run("signups per day", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/admin/dashboard/signups-per-day", admin.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var out struct {
			From   string `json:"from"`
			To     string `json:"to"`
			Series []struct {
				Day   string `json:"day"`
				Count int64  `json:"count"`
			} `json:"series"`
		}
		decode(t, w, &out)
		require.Len(t, out.Series, 7)
		last := out.Series[len(out.Series)-1]
		assert.Equal(t, time.Now().Format("2006-01-02"), last.Day)
		assert.Equal(t, int64(2), last.Count)

		w = s.do(http.MethodGet, "/api/admin/dashboard/signups-per-day?from=2026-02-10&to=2026-01-01", admin.AccessToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("audit logs", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/admin/logs?method=post&limit=1000", admin.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var out struct {
			Total int64             `json:"total"`
			Limit int               `json:"limit"`
			Logs  []models.AuditLog `json:"logs"`
		}
		decode(t, w, &out)
		assert.Equal(t, 500, out.Limit)
		require.NotZero(t, out.Total)
		for _, l := range out.Logs {
			assert.Equal(t, http.MethodPost, l.Method)
		}

		w = s.do(http.MethodGet, "/api/admin/logs?q=fan@porto", admin.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		decode(t, w, &out)
		require.NotEmpty(t, out.Logs)
		assert.Equal(t, "fan@porto.pt", out.Logs[0].MemberEmail)
	})

	t.Run("exports", func(t *testing.T) {
		for _, path := range []string{"/api/admin/exports/subscriptions.xlsx", "/api/admin/exports/members.xlsx"} {
			w := s.do(http.MethodGet, path, admin.AccessToken, nil)
			require.Equal(t, http.StatusOK, w.Code, path)
			assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
			assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
			assert.True(t, strings.HasPrefix(w.Body.String(), "PK"), "xlsx is a zip archive")
		}
	})
}

func TestMatchInsights(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestServer(t, withInsights(gen))
	admin := s.staff("admin@porto.pt")
	fan := s.register("fan@porto.pt")
	match := s.seedMatch(time.Now().Add(2*time.Hour), 100)
	path := "/api/ai/insights/match/" + itoa(match.ID)

	get := func(token, p string) controllers.InsightResponse {
		t.Helper()
		w := s.do(http.MethodGet, p, token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var out controllers.InsightResponse
		decode(t, w, &out)
		return out
	}

	first := get(fan.AccessToken, path)
	assert.False(t, first.Cached)
	assert.Equal(t, "insight #1", first.Insight)
	assert.Equal(t, match.ID, first.MatchID)
	assert.Contains(t, gen.inputs[0], "Home team: FC Porto")
	assert.NotContains(t, gen.inputs[0], "Score:")

	second := get(fan.AccessToken, path)
	assert.True(t, second.Cached)
	assert.Equal(t, "insight #1", second.Insight)
	assert.Equal(t, 1, gen.calls)

	w := s.do(http.MethodGet, path+"?refresh=true", fan.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	refreshed := get(admin.AccessToken, path+"?refresh=true")
	assert.False(t, refreshed.Cached)
	assert.Equal(t, "insight #2", refreshed.Insight)

	w = s.do(http.MethodPut, "/api/matches/"+itoa(match.ID)+"/score", admin.AccessToken, gin.H{"home_score": 1, "away_score": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"live"`)

	live := get(fan.AccessToken, path)
	assert.False(t, live.Cached, "a new score is a new cache entry")
	assert.Equal(t, "insight #3", live.Insight)
	assert.Contains(t, gen.inputs[2], "Score: 1-0")

	gen.err = errors.New("upstream timeout")
	w = s.do(http.MethodGet, path+"?refresh=true", admin.AccessToken, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	gen.err = tools.ErrAIDisabled
	w = s.do(http.MethodGet, path+"?refresh=true", admin.AccessToken, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/ai/insights/match/9999", fan.AccessToken, nil).Code)
}

func TestInsightsWithoutGenerator(t *testing.T) {
	s := newTestServer(t)
	fan := s.register("fan@porto.pt")
	match := s.seedMatch(time.Now().Add(time.Hour), 10)

	w := s.do(http.MethodGet, "/api/ai/insights/match/"+itoa(match.ID), fan.AccessToken, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
