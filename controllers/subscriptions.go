package controllers

import (
	"net/http"
	"strings"
	"time"

	"fanhub/models"
	"fanhub/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CheckoutRequest struct {
	PlanID      int64  `json:"plan_id" form:"plan_id"`
	PaymentType string `json:"payment_type" form:"payment_type"`
}

// POST /api/subscriptions/checkout
// Creates a pending subscription; the payment provider confirms it through the webhook.
// Free plans are activated right away.
func Checkout(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.PlanID <= 0 {
		RespondError(c, "plan_id is required", http.StatusBadRequest)
		return
	}
	req.PaymentType = strings.ToLower(strings.TrimSpace(req.PaymentType))
	if req.PaymentType == "" {
		req.PaymentType = models.PAYMENT_TYPE_CARD
	}
	if !models.IsValidPaymentType(req.PaymentType) {
		RespondError(c, "invalid payment_type", http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}

	var plan models.Plan
	if err := db.Where("id = ? AND association_id = ? AND is_active = ?", req.PlanID, member.AssociationID, true).
		First(&plan).Error; err != nil {
		RespondError(c, "plan not found", http.StatusNotFound)
		return
	}

	now := time.Now()
	current, err := services.FindCurrentSubscription(db, member.ID, now)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if current != nil {
		RespondError(c, services.ErrAlreadySubscribed.Error(), http.StatusConflict)
		return
	}

	sub := models.Subscription{
		MemberID:         member.ID,
		AssociationID:    member.AssociationID,
		PlanID:           plan.ID,
		PlanName:         plan.Name,
		Amount:           plan.PriceCents,
		Currency:         plan.Currency,
		Interval:         plan.Interval,
		Status:           models.SUBSCRIPTION_STATUS_PENDING,
		PaymentType:      req.PaymentType,
		PaymentSessionID: uuid.NewString(),
		AutoRenew:        plan.Interval != models.PLAN_INTERVAL_ONE_TIME,
	}
	if missing := sub.MissingFields(); missing != "" {
		RespondError(c, "missing field "+missing, http.StatusBadRequest)
		return
	}

	tx := db.Begin()
	if err := createWithFlags(tx, &sub, map[string]bool{"auto_renew": sub.AutoRenew}); err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if plan.PriceCents == 0 {
		if err := services.ActivateSubscription(tx, &sub, now); err != nil {
			tx.Rollback()
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondCreated(c, gin.H{
		"subscription":       sub,
		"payment_session_id": sub.PaymentSessionID,
	})
}

// GET /api/subscriptions/me
func GetMySubscriptions(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	var subs []models.Subscription
	if err := db.Where("member_id = ?", member.ID).Order("id desc").Find(&subs).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var active *models.Subscription
	now := time.Now()
	for i := range subs {
		if subs[i].IsCurrent(now) {
			active = &subs[i]
			break
		}
	}

	RespondSuccess(c, gin.H{"subscriptions": subs, "active": active})
}

func findOwnSubscription(c *gin.Context, member models.Member) (*models.Subscription, bool) {
	id, ok := ParamID(c, "id")
	if !ok {
		return nil, false
	}
	db, ok := database(c)
	if !ok {
		return nil, false
	}
	var sub models.Subscription
	if err := db.Where("id = ? AND member_id = ?", id, member.ID).First(&sub).Error; err != nil {
		RespondError(c, "subscription not found", http.StatusNotFound)
		return nil, false
	}
	return &sub, true
}

// POST /api/subscriptions/:id/cancel
func CancelMySubscription(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	sub, ok := findOwnSubscription(c, member)
	if !ok {
		return
	}
	if sub.Status != models.SUBSCRIPTION_STATUS_ACTIVE && sub.Status != models.SUBSCRIPTION_STATUS_PENDING {
		RespondError(c, "subscription is already "+sub.Status, http.StatusConflict)
		return
	}

	db, _ := database(c)
	tx := db.Begin()
	if err := services.CancelSubscription(tx, sub, time.Now()); err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"subscription": sub})
}

// PUT /api/subscriptions/:id/auto-renew  {auto_renew: bool}
func SetAutoRenew(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req struct {
		AutoRenew *bool `json:"auto_renew"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.AutoRenew == nil {
		RespondError(c, "auto_renew is required", http.StatusBadRequest)
		return
	}
	sub, ok := findOwnSubscription(c, member)
	if !ok {
		return
	}
	if sub.Status != models.SUBSCRIPTION_STATUS_ACTIVE {
		RespondError(c, "only active subscriptions renew", http.StatusConflict)
		return
	}
	if *req.AutoRenew && sub.Interval == models.PLAN_INTERVAL_ONE_TIME {
		RespondError(c, "one-time plans do not renew", http.StatusBadRequest)
		return
	}

	db, _ := database(c)
	if err := db.Model(sub).UpdateColumn("auto_renew", *req.AutoRenew).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"subscription": sub})
}

// GET /api/admin/subscriptions
// Query params: status, member_id, limit (default 50, max 200), offset.
func GetSubscriptions(c *gin.Context) {
	admin, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	limit, offset := pagination(c, 50, 200)
	query := db.Model(&models.Subscription{}).Where("association_id = ?", admin.AssociationID)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}
	if memberID := queryInt(c, "member_id", 0); memberID > 0 {
		query = query.Where("member_id = ?", memberID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	var subs []models.Subscription
	if err := query.Order("id desc").Limit(limit).Offset(offset).Find(&subs).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{
		"total":         total,
		"limit":         limit,
		"offset":        offset,
		"subscriptions": subs,
	})
}

// PUT /api/admin/subscriptions/:id/status  {status}
// Any valid status is accepted; an activation without a window gets one from now.
func UpdateSubscriptionStatus(c *gin.Context) {
	admin, ok := loggedMember(c)
	if !ok {
		return
	}
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if !models.IsValidSubscriptionStatus(req.Status) {
		RespondError(c, "invalid status", http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}
	var sub models.Subscription
	if err := db.Where("id = ? AND association_id = ?", id, admin.AssociationID).First(&sub).Error; err != nil {
		RespondError(c, "subscription not found", http.StatusNotFound)
		return
	}

	now := time.Now()
	wasActive := sub.Status == models.SUBSCRIPTION_STATUS_ACTIVE
	sub.Status = req.Status
	switch req.Status {
	case models.SUBSCRIPTION_STATUS_ACTIVE:
		if sub.StartDate == nil {
			end := models.PeriodEnd(sub.Interval, now)
			sub.StartDate = &now
			sub.EndDate = &end
		}
	case models.SUBSCRIPTION_STATUS_CANCELLED:
		sub.AutoRenew = false
		if sub.CancelledAt == nil {
			sub.CancelledAt = &now
		}
	}
	tx := db.Begin()
	if err := tx.Save(&sub).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if wasActive && req.Status != models.SUBSCRIPTION_STATUS_ACTIVE {
		if err := services.DropTierIfLapsed(tx, sub.MemberID, now); err != nil {
			tx.Rollback()
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"subscription": sub})
}
