package controllers

import (
	"net/http"
	"strings"
	"time"

	"fanhub/models"
	"fanhub/services"
	"fanhub/tools"

	"github.com/gin-gonic/gin"
)

// keys a member cannot change through PUT /api/me
var meForbiddenKeys = map[string]struct{}{
	"id":                {},
	"email":             {},
	"password":          {},
	"admin":             {},
	"type":              {},
	"tier":              {},
	"points":            {},
	"status":            {},
	"association_id":    {},
	"association":       {},
	"referral_code":     {},
	"membership_number": {},
	"created_at":        {},
	"updated_at":        {},
}

// profile columns accepted from PUT /api/me
var meAllowedKeys = map[string]struct{}{
	"name":              {},
	"gender":            {},
	"birthdate":         {},
	"phone":             {},
	"city":              {},
	"country":           {},
	"profile_image_url": {},
	"platform":          {},
}

// GET /api/me
func Me(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	var association models.Association
	if err := db.First(&association, member.AssociationID).Error; err == nil {
		member.Association = &association
	}

	current, err := services.FindCurrentSubscription(db, member.ID, time.Now())
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{"member": member.Sanitized(), "subscription": current})
}

// UpdateMe updates the logged member's profile.
// Route: PUT /api/me
func UpdateMe(c *gin.Context) {
	logged, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	updates := map[string]any{}
	for k, v := range payload {
		key := strings.ToLower(k)
		if _, forbidden := meForbiddenKeys[key]; forbidden {
			continue
		}
		if _, allowed := meAllowedKeys[key]; !allowed {
			continue
		}
		updates[key] = v
	}

	if raw, ok := updates["name"]; ok {
		name, _ := raw.(string)
		if strings.TrimSpace(name) == "" {
			RespondError(c, "name cannot be empty", http.StatusBadRequest)
			return
		}
	}
	if raw, ok := updates["phone"]; ok {
		s, _ := raw.(string)
		phone, err := tools.NormalizePhone(s)
		if err != nil {
			RespondError(c, "invalid phone", http.StatusBadRequest)
			return
		}
		updates["phone"] = phone
	}

	if len(updates) == 0 {
		RespondSuccess(c, logged.Sanitized())
		return
	}

	if err := db.Model(&models.Member{}).
		Where("id = ?", logged.ID).
		Updates(updates).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var updated models.Member
	if err := db.Where("id = ?", logged.ID).First(&updated).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, updated.Sanitized())
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PUT /api/me/password
func ChangePassword(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if !tools.PasswordMatches(member.Password, req.CurrentPassword) {
		RespondError(c, "current password is wrong", http.StatusUnauthorized)
		return
	}
	if tools.CheckPassword(req.NewPassword) != "" {
		RespondError(c, "new password must have at least 6 characters", http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}
	hash, err := tools.HashPassword(req.NewPassword)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := db.Model(&member).UpdateColumn("password", hash).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, true)
}

// GET /api/me/badge
func GetBadge(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}

	var association models.Association
	if err := db.First(&association, member.AssociationID).Error; err != nil {
		RespondError(c, "association not found", http.StatusNotFound)
		return
	}
	current, err := services.FindCurrentSubscription(db, member.ID, time.Now())
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, services.BuildBadge(member, association, current))
}
