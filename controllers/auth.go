package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"fanhub/models"
	"fanhub/services"
	"fanhub/tools"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

type RegisterRequest struct {
	Name          string `json:"name" form:"name"`
	Email         string `json:"email" form:"email"`
	Password      string `json:"password" form:"password"`
	Phone         string `json:"phone" form:"phone"`
	AssociationID int64  `json:"association_id" form:"association_id"`
	ReferralCode  string `json:"referral_code" form:"referral_code"`
	Gender        string `json:"gender" form:"gender"`
	Birthdate     string `json:"birthdate" form:"birthdate"`
	City          string `json:"city" form:"city"`
	Country       string `json:"country" form:"country"`
	Platform      string `json:"platform" form:"platform"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type TokenResponse struct {
	AccessToken        string        `json:"access_token"`
	AccessExpiresAt    int64         `json:"access_expires_at"`
	AccessExpiresAtISO string        `json:"access_expires_at_iso"`
	RefreshToken       string        `json:"refresh_token"`
	Member             models.Member `json:"member"`
}

func CheckMemberExists(db *gorm.DB, email string) (bool, *models.Member, error) {
	var member models.Member
	err := db.Where("email = ?", email).First(&member).Error
	if gorm.IsRecordNotFoundError(err) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	return true, &member, nil
}

// POST /api/auth/register
// The response carries a token pair so a pending member can activate the account.
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	member := models.Member{
		AssociationID: req.AssociationID,
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Password:      req.Password,
		Phone:         strings.TrimSpace(req.Phone),
		Gender:        req.Gender,
		Birthdate:     req.Birthdate,
		City:          req.City,
		Country:       req.Country,
		Platform:      req.Platform,
	}

	if missing := member.MissingFields(); missing != "" {
		RespondError(c, "missing field "+missing, http.StatusBadRequest)
		return
	}
	if !tools.ValidateEmail(member.Email) {
		RespondError(c, "invalid email", http.StatusBadRequest)
		return
	}
	phone, err := tools.NormalizePhone(member.Phone)
	if err != nil {
		RespondError(c, "invalid phone", http.StatusBadRequest)
		return
	}
	member.Phone = phone

	db, ok := database(c)
	if !ok {
		return
	}

	var association models.Association
	if err := db.Where("id = ? AND is_active = ?", member.AssociationID, true).First(&association).Error; err != nil {
		RespondError(c, "association not found", http.StatusBadRequest)
		return
	}

	exists, _, err := CheckMemberExists(db, member.Email)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	} else if exists {
		RespondError(c, "member already exists", http.StatusConflict)
		return
	}

	var referrer *models.Member
	if code := strings.ToUpper(strings.TrimSpace(req.ReferralCode)); code != "" {
		var r models.Member
		if err := db.Where("referral_code = ?", code).First(&r).Error; err != nil {
			RespondError(c, "invalid referral code", http.StatusBadRequest)
			return
		}
		referrer = &r
	}

	hash, err := tools.HashPassword(member.Password)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	member.Password = hash
	member.Admin = false
	member.Type = models.MEMBER_TYPE_NORMAL
	member.Tier = models.MEMBER_TIER_BRONZE
	member.Status = models.MEMBER_STATUS_AVAILABLE
	if conf.Security.RequireActivation {
		member.Status = models.MEMBER_STATUS_PENDING
	}
	member.ReferralCode = tools.RandomCode(8)
	// placeholder until the id is known
	member.MembershipNumber = uuid.NewString()

	now := time.Now()
	tx := db.Begin()
	if err := tx.Create(&member).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	member.MembershipNumber = services.MembershipNumber(association, member.ID)
	if err := tx.Model(&member).UpdateColumn("membership_number", member.MembershipNumber).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	if member.Status == models.MEMBER_STATUS_PENDING {
		if _, err := createActivationCode(tx, member, now); err != nil {
			tx.Rollback()
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if referrer != nil {
		referral := models.Referral{
			ReferrerID:   referrer.ID,
			ReferredID:   member.ID,
			ReferredName: member.Name,
			Code:         referrer.ReferralCode,
			Status:       models.REFERRAL_STATUS_PENDING,
		}
		if err := tx.Create(&referral).Error; err != nil {
			tx.Rollback()
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
		if member.Status == models.MEMBER_STATUS_AVAILABLE {
			if _, err := services.CompleteReferral(tx, member.ID, rewards(), now); err != nil {
				tx.Rollback()
				RespondError(c, err.Error(), http.StatusBadRequest)
				return
			}
			member.Points += conf.Loyalty.ReferredPoints
		}
	}

	refresh, err := issueRefreshToken(tx, member.ID, now)
	if err != nil {
		tx.Rollback()
		RespondError(c, "could not issue refresh token", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	access, exp, err := signAccessToken(member.ID, member.Email, now)
	if err != nil {
		RespondError(c, "could not sign token", http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, TokenResponse{
		AccessToken:        access,
		AccessExpiresAt:    exp.Unix(),
		AccessExpiresAtISO: exp.UTC().Format(time.RFC3339),
		RefreshToken:       refresh,
		Member:             member.Sanitized(),
	})
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		RespondError(c, "email and password are required", http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}

	var member models.Member
	if err := db.Where("email = ?", req.Email).First(&member).Error; err != nil {
		RespondError(c, "invalid email or password", http.StatusUnauthorized)
		return
	}
	if !tools.PasswordMatches(member.Password, req.Password) {
		RespondError(c, "invalid email or password", http.StatusUnauthorized)
		return
	}

	if member.Status == models.MEMBER_STATUS_PENDING {
		RespondError(c, "account pending activation", http.StatusForbidden)
		return
	}
	if member.Status == models.MEMBER_STATUS_BLOCKED {
		RespondError(c, "account blocked", http.StatusForbidden)
		return
	}

	now := time.Now()
	access, exp, err := signAccessToken(member.ID, member.Email, now)
	if err != nil {
		RespondError(c, "could not sign token", http.StatusInternalServerError)
		return
	}
	refresh, err := issueRefreshToken(db, member.ID, now)
	if err != nil {
		RespondError(c, "could not issue refresh token", http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, TokenResponse{
		AccessToken:        access,
		AccessExpiresAt:    exp.Unix(),
		AccessExpiresAtISO: exp.UTC().Format(time.RFC3339),
		RefreshToken:       refresh,
		Member:             member.Sanitized(),
	})
}

func activationMessage(code string) string {
	return fmt.Sprintf("Your activation code is %s. It expires in 24 hours.", code)
}
