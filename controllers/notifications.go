package controllers

import (
	"net/http"
	"strings"
	"time"

	"fanhub/models"
	"fanhub/services"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

// broadcast notifies every active member of an association and returns how many were notified.
func broadcast(tx *gorm.DB, associationID int64, title, body, category string, data map[string]string) (int, error) {
	var ids []int64
	if err := tx.Model(&models.Member{}).
		Where("association_id = ? AND status = ?", associationID, models.MEMBER_STATUS_AVAILABLE).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	for _, id := range ids {
		if _, err := services.Notify(tx, id, title, body, category, data); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

// GET /api/notifications?unread=true&limit=&offset=
func GetNotifications(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	limit, offset := pagination(c, 30, 100)

	query := db.Model(&models.Notification{}).Where("member_id = ?", member.ID)
	if queryBool(c, "unread") {
		query = query.Where("read_at IS NULL")
	}

	var unread int64
	if err := db.Model(&models.Notification{}).Where("member_id = ? AND read_at IS NULL", member.ID).
		Count(&unread).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	notifications := []models.Notification{}
	if err := query.Order("id desc").Limit(limit).Offset(offset).Find(&notifications).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"notifications": notifications, "unread": unread})
}

// POST /api/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
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
	var n models.Notification
	if err := db.Where("id = ? AND member_id = ?", id, member.ID).First(&n).Error; err != nil {
		RespondError(c, "notification not found", http.StatusNotFound)
		return
	}
	if n.ReadAt == nil {
		now := time.Now()
		if err := db.Model(&n).UpdateColumn("read_at", &now).Error; err != nil {
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
		n.ReadAt = &now
	}
	RespondSuccess(c, gin.H{"notification": n})
}

// POST /api/notifications/read-all
func MarkAllNotificationsRead(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	res := db.Model(&models.Notification{}).
		Where("member_id = ? AND read_at IS NULL", member.ID).
		UpdateColumn("read_at", gormNow())
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"updated": res.RowsAffected})
}

type PushRegisterRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// POST /api/push/register  {token, platform}
// A token belongs to one member; registering it again moves it to the caller.
func RegisterPushToken(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req PushRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	req.Token = strings.TrimSpace(req.Token)
	req.Platform = strings.ToLower(strings.TrimSpace(req.Platform))
	if req.Token == "" {
		RespondError(c, "token is required", http.StatusBadRequest)
		return
	}
	if req.Platform == "" {
		req.Platform = models.PUSH_PLATFORM_WEB
	}
	if !models.IsValidPushPlatform(req.Platform) {
		RespondError(c, "invalid platform", http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}
	var token models.PushToken
	err := db.Where("token = ?", req.Token).First(&token).Error
	switch {
	case gorm.IsRecordNotFoundError(err):
		token = models.PushToken{MemberID: member.ID, Token: req.Token, Platform: req.Platform}
		err = db.Create(&token).Error
	case err == nil:
		token.MemberID = member.ID
		token.Platform = req.Platform
		err = db.Save(&token).Error
	}
	if err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"status": "registered", "push_token": token})
}

// POST /api/push/unregister  {token}
func UnregisterPushToken(c *gin.Context) {
	member, ok := loggedMember(c)
	if !ok {
		return
	}
	var req PushRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		RespondError(c, "token is required", http.StatusBadRequest)
		return
	}
	db, ok := database(c)
	if !ok {
		return
	}
	res := db.Where("token = ? AND member_id = ?", strings.TrimSpace(req.Token), member.ID).Delete(&models.PushToken{})
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"status": "unregistered", "removed": res.RowsAffected})
}

type BroadcastRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

// POST /api/admin/notifications/broadcast
func BroadcastNotification(c *gin.Context) {
	admin, ok := loggedMember(c)
	if !ok {
		return
	}
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Body = strings.TrimSpace(req.Body)
	if req.Title == "" || req.Body == "" {
		RespondError(c, "title and body are required", http.StatusBadRequest)
		return
	}
	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		category = models.NOTIFICATION_CATEGORY_GENERAL
	}

	db, ok := database(c)
	if !ok {
		return
	}
	tx := db.Begin()
	count, err := broadcast(tx, admin.AssociationID, req.Title, req.Body, category, nil)
	if err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	RespondSuccess(c, gin.H{"status": "queued", "notified": count})
}
