package controllers

import (
	"net/http"
	"time"

	"fanhub/models"
	"fanhub/tools"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

type RefreshResponse struct {
	AccessToken        string `json:"access_token"`
	AccessExpiresAt    int64  `json:"access_expires_at"`     // unix seconds
	AccessExpiresAtISO string `json:"access_expires_at_iso"` // RFC3339
	RefreshToken       string `json:"refresh_token"`
}

// issueRefreshToken stores the hash of a new random token and returns the plain token.
func issueRefreshToken(db *gorm.DB, memberID int64, now time.Time) (string, error) {
	plain := tools.RandomString(conf.Security.RefreshCodeLen)
	exp := now.Add(refreshTokenTTL())
	rt := models.RefreshToken{
		MemberID:  memberID,
		TokenHash: tools.EncryptTextSHA512(plain),
		ExpiresAt: &exp,
	}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return plain, nil
}

func revokeAllMemberRefreshTokens(db *gorm.DB, memberID int64, now time.Time) error {
	return db.Model(&models.RefreshToken{}).
		Where("member_id = ? AND revoked_at IS NULL", memberID).
		UpdateColumn("revoked_at", &now).Error
}

// Refresh swaps a valid refresh token for a new pair.
// Only hashes are stored. Using a token revokes every active token of the member.
func Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.RefreshToken == "" {
		RespondError(c, "refresh_token is required", http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}

	now := time.Now()
	hash := tools.EncryptTextSHA512(req.RefreshToken)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ?", hash).First(&stored).Error; err != nil {
		RespondError(c, "invalid refresh token", http.StatusUnauthorized)
		return
	}
	if stored.IsRevoked() || stored.IsExpired(now) {
		RespondError(c, "refresh token expired", http.StatusUnauthorized)
		return
	}

	var member models.Member
	if err := db.First(&member, stored.MemberID).Error; err != nil {
		RespondError(c, "member not found", http.StatusUnauthorized)
		return
	}
	if member.Status == models.MEMBER_STATUS_BLOCKED {
		RespondError(c, "account blocked", http.StatusForbidden)
		return
	}

	tx := db.Begin()
	if err := revokeAllMemberRefreshTokens(tx, member.ID, now); err != nil {
		tx.Rollback()
		RespondError(c, "could not revoke previous sessions", http.StatusInternalServerError)
		return
	}
	newRefresh, err := issueRefreshToken(tx, member.ID, now)
	if err != nil {
		tx.Rollback()
		RespondError(c, "could not issue refresh token", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	accessToken, exp, err := signAccessToken(member.ID, member.Email, now)
	if err != nil {
		RespondError(c, "could not sign token", http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, RefreshResponse{
		AccessToken:        accessToken,
		AccessExpiresAt:    exp.Unix(),
		AccessExpiresAtISO: exp.UTC().Format(time.RFC3339),
		RefreshToken:       newRefresh,
	})
}

// POST /api/auth/logout
func Logout(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	if err := revokeAllMemberRefreshTokens(db, member.ID, time.Now()); err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	RespondSuccess(c, gin.H{"status": "logged_out"})
}
