package workers

import (
	"log/slog"
	"time"

	"fanhub/models"
	"fanhub/services"

	"github.com/jinzhu/gorm"
)

const expireBatchSize = 200

// ExpireResult counts what one expire-subscriptions pass did.
type ExpireResult struct {
	Renewed int `json:"renewed"`
	Expired int `json:"expired"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// ExpireSubscriptions renews (auto_renew) or expires active subscriptions whose end_date passed.
// Each subscription is handled in its own transaction.
func ExpireSubscriptions(db *gorm.DB, now time.Time, logger *slog.Logger) (ExpireResult, error) {
	var result ExpireResult

	var due []models.Subscription
	if err := db.
		Where("status = ? AND end_date IS NOT NULL AND end_date <= ?", models.SUBSCRIPTION_STATUS_ACTIVE, now).
		Order("end_date asc, id asc").
		Limit(expireBatchSize).
		Find(&due).Error; err != nil {
		return result, err
	}

	for _, candidate := range due {
		outcome, err := expireOne(db, candidate.ID, now)
		if err != nil {
			result.Failed++
			logger.Error("subscription expiry failed", "subscription_id", candidate.ID, "error", err)
			continue
		}
		switch outcome {
		case outcomeRenewed:
			result.Renewed++
		case outcomeExpired:
			result.Expired++
		default:
			result.Skipped++
		}
	}
	return result, nil
}

const (
	outcomeRenewed = "renewed"
	outcomeExpired = "expired"
	outcomeSkipped = "skipped"
)

func expireOne(db *gorm.DB, id int64, now time.Time) (string, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return "", tx.Error
	}

	// re-read inside the tx: a webhook or admin may have changed it meanwhile
	var sub models.Subscription
	if err := tx.Where("id = ? AND status = ?", id, models.SUBSCRIPTION_STATUS_ACTIVE).First(&sub).Error; err != nil {
		tx.Rollback()
		if gorm.IsRecordNotFoundError(err) {
			return outcomeSkipped, nil
		}
		return "", err
	}

	renew := sub.AutoRenew && sub.Interval != models.PLAN_INTERVAL_ONE_TIME
	var err error
	if renew {
		err = services.RenewSubscription(tx, &sub, now)
	} else {
		err = services.ExpireSubscription(tx, &sub, now)
	}
	if err != nil {
		tx.Rollback()
		return "", err
	}
	if err := tx.Commit().Error; err != nil {
		return "", err
	}
	if renew {
		return outcomeRenewed, nil
	}
	return outcomeExpired, nil
}
