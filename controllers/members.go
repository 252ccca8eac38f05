package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"fanhub/models"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/members
// Query params: q (name/email/membership number), status, tier, limit (default 50, max 200), offset.
func GetMembers(c *gin.Context) {
	admin, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	limit, offset := pagination(c, 50, 200)
	query := db.Model(&models.Member{}).Where("association_id = ?", admin.AssociationID)

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := likePattern(q)
		query = query.Where("lower(name) LIKE ? OR lower(email) LIKE ? OR lower(membership_number) LIKE ?", like, like, like)
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", queryInt(c, "status", -1))
	}
	if tier := strings.ToLower(strings.TrimSpace(c.Query("tier"))); tier != "" {
		query = query.Where("tier = ?", tier)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var members []models.Member
	if err := query.Order("id desc").Limit(limit).Offset(offset).Find(&members).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	for i := range members {
		members[i] = members[i].Sanitized()
	}

	RespondSuccess(c, gin.H{
		"total":   total,
		"limit":   limit,
		"offset":  offset,
		"members": members,
	})
}

// findAssociationMember loads a member of the admin's association or answers 404.
func findAssociationMember(c *gin.Context, admin models.Member) (*models.Member, bool) {
	id, ok := ParamID(c, "id")
	if !ok {
		return nil, false
	}
	db, ok := database(c)
	if !ok {
		return nil, false
	}
	var member models.Member
	if err := db.Where("id = ? AND association_id = ?", id, admin.AssociationID).First(&member).Error; err != nil {
		RespondError(c, "member not found", http.StatusNotFound)
		return nil, false
	}
	return &member, true
}

// PUT /api/admin/members/:id/status  {status: "available"|"pending"|"blocked" or 0|1|2}
func UpdateMemberStatus(c *gin.Context) {
	admin, ok := loggedMember(c)
	if !ok {
		return
	}
	var req struct {
		Status json.RawMessage `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Status) == 0 || string(req.Status) == "null" {
		RespondError(c, "status is required", http.StatusBadRequest)
		return
	}
	status, valid := models.ParseMemberStatus(strings.Trim(string(req.Status), `"`))
	if !valid {
		RespondError(c, "invalid status", http.StatusBadRequest)
		return
	}

	member, ok := findAssociationMember(c, admin)
	if !ok {
		return
	}
	if member.ID == admin.ID {
		RespondError(c, "cannot change your own status", http.StatusBadRequest)
		return
	}

	db, _ := database(c)
	if err := db.Model(member).UpdateColumn("status", status).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if status == models.MEMBER_STATUS_BLOCKED {
		_ = db.Model(&models.RefreshToken{}).
			Where("member_id = ? AND revoked_at IS NULL", member.ID).
			UpdateColumn("revoked_at", gormNow()).Error
	}
	RespondSuccess(c, member.Sanitized())
}

// PUT /api/admin/members/:id/tier  {tier}
func UpdateMemberTier(c *gin.Context) {
	admin, ok := loggedMember(c)
	if !ok {
		return
	}
	var req struct {
		Tier string `json:"tier"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	req.Tier = strings.ToLower(strings.TrimSpace(req.Tier))
	if !models.IsValidTier(req.Tier) {
		RespondError(c, "invalid tier", http.StatusBadRequest)
		return
	}

	member, ok := findAssociationMember(c, admin)
	if !ok {
		return
	}
	db, _ := database(c)
	if err := db.Model(member).UpdateColumn("tier", req.Tier).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, member.Sanitized())
}
