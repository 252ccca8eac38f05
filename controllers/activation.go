package controllers

import (
	"net/http"
	"time"

	"fanhub/models"
	"fanhub/services"
	"fanhub/tools"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

const activationCodeTTL = 24 * time.Hour

// createActivationCode stores a numeric code and delivers it as an account notification.
func createActivationCode(tx *gorm.DB, member models.Member, now time.Time) (*models.ActivationCode, error) {
	exp := now.Add(activationCodeTTL)
	code := models.ActivationCode{
		MemberID:  member.ID,
		Code:      tools.RandomNumbers(conf.Security.ActivationCodeLen),
		Status:    models.ACTIVATION_STATUS_PENDING,
		ExpiresAt: &exp,
	}
	if err := tx.Create(&code).Error; err != nil {
		return nil, err
	}
	if _, err := services.Notify(tx, member.ID, "Activate your account", activationMessage(code.Code),
		models.NOTIFICATION_CATEGORY_ACCOUNT, nil); err != nil {
		return nil, err
	}
	return &code, nil
}

// POST /api/auth/activate/:code
func ActivateMemberByCode(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	code := c.Param("code")
	if code == "" {
		RespondError(c, "code is required", http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}

	var activation models.ActivationCode
	if err := db.Where("code = ? AND member_id = ?", code, member.ID).First(&activation).Error; err != nil {
		RespondError(c, "invalid code", http.StatusNotFound)
		return
	}

	now := time.Now()
	if activation.Status == models.ACTIVATION_STATUS_VALIDATED {
		RespondSuccess(c, gin.H{"status": "already_validated"})
		return
	}
	if activation.Status == models.ACTIVATION_STATUS_EXPIRED || activation.IsExpired(now) {
		_ = db.Model(&activation).UpdateColumn("status", models.ACTIVATION_STATUS_EXPIRED).Error
		RespondError(c, "code expired", http.StatusForbidden)
		return
	}

	tx := db.Begin()
	if err := tx.Model(&activation).UpdateColumn("status", models.ACTIVATION_STATUS_VALIDATED).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if member.Status == models.MEMBER_STATUS_PENDING {
		if err := tx.Model(&member).UpdateColumn("status", models.MEMBER_STATUS_AVAILABLE).Error; err != nil {
			tx.Rollback()
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if _, err := services.CompleteReferral(tx, member.ID, rewards(), now); err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var fresh models.Member
	if err := db.First(&fresh, member.ID).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"status": "activated", "member": fresh.Sanitized()})
}

// ResendActivationCode replaces the pending code of the logged member.
// The code is delivered as a notification, never in the payload.
// Route: POST /api/auth/resend-code
func ResendActivationCode(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}

	if member.Status == models.MEMBER_STATUS_AVAILABLE {
		RespondSuccess(c, gin.H{"status": "already_active"})
		return
	}
	if member.Status == models.MEMBER_STATUS_BLOCKED {
		RespondError(c, "account blocked", http.StatusForbidden)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}

	now := time.Now()
	tx := db.Begin()
	if err := tx.Model(&models.ActivationCode{}).
		Where("member_id = ? AND status = ?", member.ID, models.ACTIVATION_STATUS_PENDING).
		UpdateColumn("status", models.ACTIVATION_STATUS_EXPIRED).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := createActivationCode(tx, member, now); err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"status": "sent"})
}
