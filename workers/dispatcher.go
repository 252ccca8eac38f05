package workers

import (
	"context"
	"log/slog"
	"time"

	"fanhub/metrics"
	"fanhub/models"
	"fanhub/notify"
	"fanhub/services"

	"github.com/jinzhu/gorm"
)

const dispatchBatchSize = 100

// A failed notification is retried until it has been claimed this many times.
const dispatchMaxAttempts = 5

// Claims older than this are treated as abandoned by a crashed worker.
const dispatchStaleAfter = 5 * time.Minute

// Dispatcher publishes pending notifications to the push exchange.
type Dispatcher struct {
	DB          *gorm.DB
	Publisher   notify.Publisher
	Logger      *slog.Logger
	Interval    time.Duration
	MaxAttempts int
	StaleAfter  time.Duration
}

// Start runs the dispatch loop until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	interval := d.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := d.RequeueStale(time.Now()); err != nil {
					d.Logger.Error("notification requeue failed", "error", err)
				}
				if _, err := d.DispatchPending(ctx); err != nil {
					d.Logger.Error("notification dispatch failed", "error", err)
				}
			}
		}
	}()
}

func (d *Dispatcher) maxAttempts() int {
	if d.MaxAttempts > 0 {
		return d.MaxAttempts
	}
	return dispatchMaxAttempts
}

// RequeueStale puts notifications stuck in processing since before now-StaleAfter back to pending.
func (d *Dispatcher) RequeueStale(now time.Time) (int64, error) {
	staleAfter := d.StaleAfter
	if staleAfter <= 0 {
		staleAfter = dispatchStaleAfter
	}
	res := d.DB.Model(&models.Notification{}).
		Where("delivery_status = ? AND updated_at < ?", models.DELIVERY_STATUS_PROCESSING, now.Add(-staleAfter)).
		UpdateColumns(map[string]any{
			"delivery_status": models.DELIVERY_STATUS_PENDING,
			"updated_at":      now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		d.Logger.Warn("stale notification claims requeued", "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

// DispatchPending publishes one batch of pending notifications, plus failed ones that
// still have attempts left, and returns how many were sent.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	var pending []models.Notification
	if err := d.DB.
		Where("delivery_status = ? OR (delivery_status = ? AND attempts < ?)",
			models.DELIVERY_STATUS_PENDING, models.DELIVERY_STATUS_FAILED, d.maxAttempts()).
		Order("id asc").
		Limit(dispatchBatchSize).
		Find(&pending).Error; err != nil {
		return 0, err
	}

	sent := 0
	for _, n := range pending {
		// optimistic claim: only the worker that moves it out of its current status publishes it
		res := d.DB.Model(&models.Notification{}).
			Where("id = ? AND delivery_status = ?", n.ID, n.DeliveryStatus).
			UpdateColumns(map[string]any{
				"delivery_status": models.DELIVERY_STATUS_PROCESSING,
				"attempts":        gorm.Expr("attempts + 1"),
				"updated_at":      time.Now(),
			})
		if res.Error != nil {
			d.Logger.Warn("notification claim failed", "notification_id", n.ID, "error", res.Error)
			continue
		}
		if res.RowsAffected == 0 {
			continue
		}

		if err := d.publish(ctx, n); err != nil {
			metrics.NotificationsPublished.WithLabelValues("failed").Inc()
			d.Logger.Warn("notification not published", "notification_id", n.ID, "attempt", n.Attempts+1, "error", err)
			d.mark(n.ID, map[string]any{"delivery_status": models.DELIVERY_STATUS_FAILED})
			continue
		}

		now := time.Now()
		d.mark(n.ID, map[string]any{
			"delivery_status": models.DELIVERY_STATUS_DONE,
			"delivered_at":    &now,
		})
		metrics.NotificationsPublished.WithLabelValues("done").Inc()
		sent++
	}
	return sent, nil
}

// mark records the outcome of a claimed notification. A row left in processing is
// picked up again by RequeueStale.
func (d *Dispatcher) mark(id int64, columns map[string]any) {
	columns["updated_at"] = time.Now()
	if err := d.DB.Model(&models.Notification{}).Where("id = ?", id).UpdateColumns(columns).Error; err != nil {
		d.Logger.Error("notification status not saved", "notification_id", id, "status", columns["delivery_status"], "error", err)
	}
}

func (d *Dispatcher) publish(ctx context.Context, n models.Notification) error {
	var tokens []models.PushToken
	if err := d.DB.Where("member_id = ?", n.MemberID).Order("id asc").Find(&tokens).Error; err != nil {
		return err
	}

	msg := notify.PushMessage{
		NotificationID: n.ID,
		MemberID:       n.MemberID,
		Title:          n.Title,
		Body:           n.Body,
		Category:       n.Category,
		Data:           services.DecodeData(n.Data),
		Tokens:         make([]notify.PushTarget, 0, len(tokens)),
	}
	for _, t := range tokens {
		msg.Tokens = append(msg.Tokens, notify.PushTarget{Token: t.Token, Platform: t.Platform})
	}

	pubCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return d.Publisher.Publish(pubCtx, notify.RoutingKey(n.Category), msg)
}
