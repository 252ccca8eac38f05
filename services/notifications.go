package services

import (
	"encoding/json"

	"fanhub/models"

	"github.com/jinzhu/gorm"
)

// Notify stores an in-app notification; the dispatcher worker publishes it later.
func Notify(tx *gorm.DB, memberID int64, title string, body string, category string, data map[string]string) (*models.Notification, error) {
	if category == "" {
		category = models.NOTIFICATION_CATEGORY_GENERAL
	}
	n := models.Notification{
		MemberID:       memberID,
		Title:          title,
		Body:           body,
		Category:       category,
		DeliveryStatus: models.DELIVERY_STATUS_PENDING,
	}
	if len(data) > 0 {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		n.Data = string(b)
	}
	if err := tx.Create(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// DecodeData parses the notification data column; invalid JSON yields nil.
func DecodeData(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
