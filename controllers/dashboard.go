package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"fanhub/models"

	"github.com/gin-gonic/gin"
)

type memberStats struct {
	Total   int64            `json:"total"`
	Active  int64            `json:"active"`
	Pending int64            `json:"pending"`
	Blocked int64            `json:"blocked"`
	ByTier  map[string]int64 `json:"by_tier"`
}

type orderStats struct {
	Count        int64 `json:"count"`
	RevenueCents int64 `json:"revenue_cents"`
}

type DashboardStats struct {
	Members          memberStats      `json:"members"`
	Subscriptions    map[string]int64 `json:"subscriptions"`
	RecurringMonthly map[string]int64 `json:"recurring_monthly_cents"`
	TicketsSold      int64            `json:"tickets_sold"`
	UpcomingMatches  int64            `json:"upcoming_matches"`
	Orders           orderStats       `json:"orders"`
	NewsPublished    int64            `json:"news_published"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

type groupCount struct {
	Name  string
	Count int64
}

// GET /api/admin/dashboard/stats
// Polled by the staff dashboard; every figure is a single aggregate query.
func GetDashboardStats(c *gin.Context) {
	admin, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	assoc := admin.AssociationID
	now := time.Now()

	stats := DashboardStats{
		Members:          memberStats{ByTier: map[string]int64{}},
		Subscriptions:    map[string]int64{},
		RecurringMonthly: map[string]int64{},
		GeneratedAt:      now.UTC(),
	}

	var byStatus []struct {
		Status int
		Count  int64
	}
	if err := db.Model(&models.Member{}).Select("status, count(*) as count").
		Where("association_id = ?", assoc).Group("status").Scan(&byStatus).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, r := range byStatus {
		stats.Members.Total += r.Count
		switch r.Status {
		case models.MEMBER_STATUS_AVAILABLE:
			stats.Members.Active = r.Count
		case models.MEMBER_STATUS_PENDING:
			stats.Members.Pending = r.Count
		case models.MEMBER_STATUS_BLOCKED:
			stats.Members.Blocked = r.Count
		}
	}

	var byTier []groupCount
	if err := db.Model(&models.Member{}).Select("tier as name, count(*) as count").
		Where("association_id = ?", assoc).Group("tier").Scan(&byTier).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, r := range byTier {
		stats.Members.ByTier[r.Name] = r.Count
	}

	var subs []groupCount
	if err := db.Model(&models.Subscription{}).Select("status as name, count(*) as count").
		Where("association_id = ?", assoc).Group("status").Scan(&subs).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, r := range subs {
		stats.Subscriptions[r.Name] = r.Count
	}

	var revenue []struct {
		Currency     string
		PlanInterval string
		Total        int64
	}
	if err := db.Model(&models.Subscription{}).Select(`currency, "interval" as plan_interval, sum(amount) as total`).
		Where("association_id = ? AND status = ?", assoc, models.SUBSCRIPTION_STATUS_ACTIVE).
		Group(`currency, "interval"`).Scan(&revenue).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, r := range revenue {
		switch r.PlanInterval {
		case models.PLAN_INTERVAL_MONTHLY:
			stats.RecurringMonthly[r.Currency] += r.Total
		case models.PLAN_INTERVAL_YEARLY:
			stats.RecurringMonthly[r.Currency] += r.Total / 12
		}
	}

	if err := db.Model(&models.Ticket{}).
		Where("association_id = ? AND status <> ?", assoc, models.TICKET_STATUS_CANCELLED).
		Count(&stats.TicketsSold).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := db.Model(&models.Match{}).
		Where("association_id = ? AND status = ? AND kickoff_at > ?", assoc, models.MATCH_STATUS_SCHEDULED, now).
		Count(&stats.UpcomingMatches).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	var orders struct {
		Count int64
		Total int64
	}
	if err := db.Model(&models.Order{}).Select("count(*) as count, coalesce(sum(total_cents), 0) as total").
		Where("association_id = ? AND status <> ?", assoc, models.ORDER_STATUS_CANCELLED).
		Scan(&orders).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	stats.Orders = orderStats{Count: orders.Count, RevenueCents: orders.Total}

	if err := db.Model(&models.NewsArticle{}).
		Where("association_id = ? AND published = ?", assoc, true).
		Count(&stats.NewsPublished).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, stats)
}

// GET /api/admin/dashboard/signups-per-day
// Query params: from=YYYY-MM-DD (default today-6), to=YYYY-MM-DD (default today).
// Days without signups are returned with 0.
func GetSignupsPerDay(c *gin.Context) {
	admin, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	from, to, ok := parseDateRange(c)
	if !ok {
		return
	}

	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.Local)
	toInclusive := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.Local)
	toExclusive := toInclusive.AddDate(0, 0, 1)

	var rows []dailyCount
	if err := db.Model(&models.Member{}).
		Select(fmt.Sprintf("%s as day, count(*) as count", dayExpr(db, "created_at"))).
		Where("association_id = ? AND created_at >= ? AND created_at < ?", admin.AssociationID, from, toExclusive).
		Group("day").
		Order("day asc").
		Scan(&rows).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{
		"from":   from.Format("2006-01-02"),
		"to":     toInclusive.Format("2006-01-02"),
		"series": fillDailySeries(from, toInclusive, rows),
	})
}

// GET /api/admin/logs
// Query params:
// - method=GET|POST|... (optional)
// - status=<http status> (optional)
// - q=text (optional) -> path or member email
// - sort_by=created_at|latency_ms|status|id (default created_at)
// - order=asc|desc (default desc)
// - limit (default 100, max 500), offset
func GetAuditLogs(c *gin.Context) {
	admin, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	sortBy := strings.TrimSpace(c.DefaultQuery("sort_by", "created_at"))
	order := strings.ToLower(strings.TrimSpace(c.DefaultQuery("order", "desc")))
	limit, offset := pagination(c, 100, 500)

	switch sortBy {
	case "created_at", "latency_ms", "status", "id":
	default:
		sortBy = "created_at"
	}
	if order != "asc" {
		order = "desc"
	}

	query := db.Model(&models.AuditLog{}).Where("association_id = ?", admin.AssociationID)
	if method := strings.ToUpper(strings.TrimSpace(c.Query("method"))); method != "" {
		query = query.Where("method = ?", method)
	}
	if status := queryInt(c, "status", 0); status > 0 {
		query = query.Where("status = ?", status)
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := likePattern(q)
		query = query.Where("lower(path) LIKE ? OR lower(member_email) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	logs := []models.AuditLog{}
	if err := query.Order(fmt.Sprintf("%s %s, id %s", sortBy, order, order)).
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"logs":   logs,
	})
}
