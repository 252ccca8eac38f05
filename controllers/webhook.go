package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fanhub/models"
	"fanhub/services"
	"fanhub/tools"

	"github.com/gin-gonic/gin"
)

const SignatureHeader = "X-Signature-256"

const (
	paymentStatusPaid      = "paid"
	paymentStatusFailed    = "failed"
	paymentStatusCancelled = "cancelled"
)

type PaymentWebhookPayload struct {
	PaymentSessionID string `json:"payment_session_id"`
	Status           string `json:"status"`
	PaymentType      string `json:"payment_type"`
}

// POST /api/subscriptions/webhook
// Signed by the payment provider: X-Signature-256: sha256=<hex hmac of the raw body>.
// Only pending subscriptions change; replays answer 200 with the stored state.
func PaymentWebhook(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		RespondError(c, "failed to read body", http.StatusBadRequest)
		return
	}
	if ok, reason := tools.VerifySignature(conf.Payments.WebhookSecret, c.GetHeader(SignatureHeader), raw); !ok {
		RespondError(c, "forbidden: "+reason, http.StatusForbidden)
		return
	}

	var payload PaymentWebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		RespondError(c, "invalid json", http.StatusBadRequest)
		return
	}
	payload.PaymentSessionID = strings.TrimSpace(payload.PaymentSessionID)
	payload.Status = strings.ToLower(strings.TrimSpace(payload.Status))
	if payload.PaymentSessionID == "" {
		RespondError(c, "payment_session_id is required", http.StatusBadRequest)
		return
	}
	switch payload.Status {
	case paymentStatusPaid, paymentStatusFailed, paymentStatusCancelled:
	default:
		RespondError(c, "invalid status", http.StatusBadRequest)
		return
	}

	db, ok := database(c)
	if !ok {
		return
	}

	var sub models.Subscription
	if err := db.Where("payment_session_id = ?", payload.PaymentSessionID).First(&sub).Error; err != nil {
		RespondError(c, "subscription not found", http.StatusNotFound)
		return
	}

	if sub.Status != models.SUBSCRIPTION_STATUS_PENDING {
		RespondSuccess(c, gin.H{"status": "ignored", "subscription": sub})
		return
	}

	if pt := strings.ToLower(strings.TrimSpace(payload.PaymentType)); models.IsValidPaymentType(pt) {
		sub.PaymentType = pt
	}

	target := models.SUBSCRIPTION_STATUS_CANCELLED
	if payload.Status == paymentStatusPaid {
		target = models.SUBSCRIPTION_STATUS_ACTIVE
	}

	now := time.Now()
	tx := db.Begin()
	// Concurrent deliveries of the same event race here; only one moves the row out of pending.
	claim := tx.Model(&models.Subscription{}).
		Where("id = ? AND status = ?", sub.ID, models.SUBSCRIPTION_STATUS_PENDING).
		UpdateColumn("status", target)
	if claim.Error != nil {
		tx.Rollback()
		RespondError(c, claim.Error.Error(), http.StatusInternalServerError)
		return
	}
	if claim.RowsAffected == 0 {
		tx.Rollback()
		db.First(&sub, sub.ID)
		RespondSuccess(c, gin.H{"status": "ignored", "subscription": sub})
		return
	}
	if payload.Status == paymentStatusPaid {
		err = services.ActivateSubscription(tx, &sub, now)
	} else {
		err = services.CancelSubscription(tx, &sub, now)
	}
	if err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("payment webhook applied",
		"subscription_id", sub.ID,
		"member_id", sub.MemberID,
		"payment_status", payload.Status,
		"status", sub.Status,
	)
	RespondSuccess(c, gin.H{"status": "processed", "subscription": sub})
}
