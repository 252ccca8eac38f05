package controllers

import (
	"errors"
	"net/http"
	"strings"

	"fanhub/models"
	"fanhub/services"

	"github.com/gin-gonic/gin"
)

// GET /api/loyalty/points
func GetPoints(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	limit, offset := pagination(c, 20, 100)

	var fresh models.Member
	if err := db.Select("id, points, tier").First(&fresh, member.ID).Error; err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	transactions := []models.PointsTransaction{}
	if err := db.Where("member_id = ?", member.ID).Order("id desc").Limit(limit).Offset(offset).
		Find(&transactions).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{
		"balance":      fresh.Points,
		"tier":         fresh.Tier,
		"transactions": transactions,
	})
}

type RedeemRequest struct {
	Points int64  `json:"points"`
	Reward string `json:"reward"`
}

// POST /api/loyalty/redeem  {points, reward}
func RedeemPoints(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	req.Reward = strings.TrimSpace(req.Reward)
	if req.Reward == "" {
		RespondError(c, "reward is required", http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}
	tx := db.Begin()
	if err := services.RedeemPoints(tx, member.ID, req.Points, req.Reward); err != nil {
		tx.Rollback()
		if errors.Is(err, services.ErrInsufficientPoints) || errors.Is(err, services.ErrInvalidPoints) {
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	var fresh models.Member
	db.Select("id, points").First(&fresh, member.ID)
	RespondSuccess(c, gin.H{"status": "redeemed", "reward": req.Reward, "balance": fresh.Points})
}

// GET /api/referrals/me
func GetMyReferrals(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	referrals := []models.Referral{}
	if err := db.Where("referrer_id = ?", member.ID).Order("id desc").Find(&referrals).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	var earned int64
	completed := 0
	for _, r := range referrals {
		if r.Status == models.REFERRAL_STATUS_COMPLETED {
			completed++
			earned += r.ReferrerPoints
		}
	}
	RespondSuccess(c, gin.H{
		"referral_code": member.ReferralCode,
		"referrals":     referrals,
		"completed":     completed,
		"points_earned": earned,
	})
}
