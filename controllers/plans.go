package controllers

import (
	"net/http"
	"strings"

	"fanhub/models"

	"github.com/gin-gonic/gin"
)

type planRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents"`
	Currency    *string `json:"currency"`
	Interval    *string `json:"interval"`
	Tier        *string `json:"tier"`
	IsActive    *bool   `json:"is_active"`
}

// apply copies present fields and validates the result.
func (r planRequest) apply(plan *models.Plan) string {
	if r.Name != nil {
		plan.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		plan.Description = *r.Description
	}
	if r.PriceCents != nil {
		plan.PriceCents = *r.PriceCents
	}
	if r.Currency != nil {
		plan.Currency = strings.ToUpper(strings.TrimSpace(*r.Currency))
	}
	if r.Interval != nil {
		plan.Interval = strings.ToLower(strings.TrimSpace(*r.Interval))
	}
	if r.Tier != nil {
		plan.Tier = strings.ToLower(strings.TrimSpace(*r.Tier))
	}
	if r.IsActive != nil {
		plan.IsActive = *r.IsActive
	}

	if plan.Name == "" {
		return "name is required"
	}
	if plan.PriceCents < 0 {
		return "price_cents must not be negative"
	}
	if !models.IsValidInterval(plan.Interval) {
		return "invalid interval"
	}
	if !models.IsValidTier(plan.Tier) {
		return "invalid tier"
	}
	return ""
}

// GET /api/plans
// Staff also see inactive plans with ?all=true.
func GetPlans(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	query := db.Where("association_id = ?", member.AssociationID)
	if !(member.IsStaff() && queryBool(c, "all")) {
		query = query.Where("is_active = ?", true)
	}

	var plans []models.Plan
	if err := query.Order("price_cents asc, id asc").Find(&plans).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"plans": plans})
}

// GET /api/plans/:id
func GetPlanByID(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	var plan models.Plan
	if err := db.Where("id = ? AND association_id = ?", id, member.AssociationID).First(&plan).Error; err != nil {
		RespondError(c, "plan not found", http.StatusNotFound)
		return
	}
	RespondSuccess(c, gin.H{"plan": plan})
}

// POST /api/plans (admin)
func CreatePlan(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	plan := models.Plan{
		AssociationID: member.AssociationID,
		Currency:      conf.Payments.DefaultCurrency,
		Interval:      models.PLAN_INTERVAL_MONTHLY,
		Tier:          models.MEMBER_TIER_SILVER,
		IsActive:      true,
	}
	if msg := req.apply(&plan); msg != "" {
		RespondError(c, msg, http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}
	if err := createWithFlags(db, &plan, map[string]bool{"is_active": plan.IsActive}); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondCreated(c, gin.H{"plan": plan})
}

// PUT /api/plans/:id (admin)
func UpdatePlan(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	var plan models.Plan
	if err := db.Where("id = ? AND association_id = ?", id, member.AssociationID).First(&plan).Error; err != nil {
		RespondError(c, "plan not found", http.StatusNotFound)
		return
	}
	if msg := req.apply(&plan); msg != "" {
		RespondError(c, msg, http.StatusBadRequest)
		return
	}
	if err := db.Save(&plan).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"plan": plan})
}

// DELETE /api/plans/:id (admin)
// Plans with subscriptions are deactivated instead of deleted.
func DeletePlan(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	var plan models.Plan
	if err := db.Where("id = ? AND association_id = ?", id, member.AssociationID).First(&plan).Error; err != nil {
		RespondError(c, "plan not found", http.StatusNotFound)
		return
	}

	var used int64
	db.Model(&models.Subscription{}).Where("plan_id = ?", plan.ID).Count(&used)
	if used > 0 {
		if err := db.Model(&plan).UpdateColumn("is_active", false).Error; err != nil {
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
		RespondSuccess(c, gin.H{"status": "deactivated"})
		return
	}

	if err := db.Delete(&plan).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"status": "deleted"})
}
