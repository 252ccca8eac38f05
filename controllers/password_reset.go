package controllers

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fanhub/models"
	"fanhub/services"
	"fanhub/tools"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

const passwordResetTTL = 15 * time.Minute

type resetRequest struct {
	Email       string `json:"email" form:"email"`
	Token       string `json:"token" form:"token"`
	NewPassword string `json:"new_password" form:"new_password"`
}

// POST /api/password/forgot (public)
// Body: { "email": "..." }
// Always answers true so emails cannot be enumerated.
func ForgotPasswordSendCode(c *gin.Context) {
	var req resetRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		RespondSuccess(c, true)
		return
	}

	db := tryDatabase(c)
	if db == nil {
		RespondSuccess(c, true)
		return
	}

	var member models.Member
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&member).Error; err != nil {
		RespondSuccess(c, true)
		return
	}

	tokenText := tools.RandomNumbers(6)
	exp := time.Now().Add(passwordResetTTL)
	reset := models.PasswordReset{
		MemberID:  member.ID,
		TokenHash: tools.EncryptTextSHA512(tokenText),
		Channel:   "notification",
		ExpiresAt: &exp,
	}

	tx := db.Begin()
	// one live code per member
	if err := tx.Where("member_id = ? AND used_at IS NULL", member.ID).Delete(&models.PasswordReset{}).Error; err != nil {
		tx.Rollback()
		slog.Warn("forgot password: cleanup failed", "member_id", member.ID, "error", err)
		RespondSuccess(c, true)
		return
	}
	if err := tx.Create(&reset).Error; err != nil {
		tx.Rollback()
		slog.Warn("forgot password: create failed", "member_id", member.ID, "error", err)
		RespondSuccess(c, true)
		return
	}
	msg := fmt.Sprintf("Your password recovery code is %s. Our staff will never ask you for it.", tokenText)
	if _, err := services.Notify(tx, member.ID, "Password recovery", msg, models.NOTIFICATION_CATEGORY_ACCOUNT, nil); err != nil {
		tx.Rollback()
		slog.Warn("forgot password: notify failed", "member_id", member.ID, "error", err)
		RespondSuccess(c, true)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
	}

	RespondSuccess(c, true)
}

// findLiveReset returns the member and the unused, unexpired reset matching email and token.
func findLiveReset(db *gorm.DB, email, token string) (*models.Member, *models.PasswordReset, bool) {
	var member models.Member
	if err := db.Where("email = ?", strings.ToLower(email)).First(&member).Error; err != nil {
		return nil, nil, false
	}
	var reset models.PasswordReset
	err := db.
		Where("member_id = ? AND token_hash = ? AND used_at IS NULL AND expires_at > ?",
			member.ID, tools.EncryptTextSHA512(token), time.Now()).
		Order("id desc").
		First(&reset).Error
	if err != nil {
		return nil, nil, false
	}
	return &member, &reset, true
}

// POST /api/password/check-token (public)
// Body: { "email": "...", "token": "123456" }. Does not consume the token.
func CheckResetToken(c *gin.Context) {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		RespondSuccess(c, false)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Token = strings.TrimSpace(req.Token)
	if req.Email == "" || req.Token == "" {
		RespondSuccess(c, false)
		return
	}

	db := tryDatabase(c)
	if db == nil {
		RespondSuccess(c, false)
		return
	}

	_, _, ok := findLiveReset(db, req.Email, req.Token)
	RespondSuccess(c, ok)
}

// POST /api/password/reset (public)
// Body: { "email": "...", "token": "123456", "new_password": "..." }
// Consumes the token and revokes the member's refresh tokens.
func ResetPassword(c *gin.Context) {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		RespondSuccess(c, false)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Token = strings.TrimSpace(req.Token)
	req.NewPassword = strings.TrimSpace(req.NewPassword)

	if req.Email == "" || req.Token == "" || tools.CheckPassword(req.NewPassword) != "" {
		RespondSuccess(c, false)
		return
	}

	db := tryDatabase(c)
	if db == nil {
		RespondSuccess(c, false)
		return
	}

	member, reset, ok := findLiveReset(db, req.Email, req.Token)
	if !ok {
		RespondSuccess(c, false)
		return
	}

	hash, err := tools.HashPassword(req.NewPassword)
	if err != nil {
		RespondSuccess(c, false)
		return
	}

	now := time.Now()
	tx := db.Begin()
	if err := tx.Model(member).UpdateColumn("password", hash).Error; err != nil {
		tx.Rollback()
		RespondSuccess(c, false)
		return
	}
	if err := tx.Model(reset).UpdateColumn("used_at", &now).Error; err != nil {
		tx.Rollback()
		RespondSuccess(c, false)
		return
	}
	if err := revokeAllMemberRefreshTokens(tx, member.ID, now); err != nil {
		tx.Rollback()
		RespondSuccess(c, false)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondSuccess(c, false)
		return
	}

	RespondSuccess(c, true)
}
