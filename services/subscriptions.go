package services

import (
	"errors"
	"fmt"
	"time"

	"fanhub/models"

	"github.com/jinzhu/gorm"
)

var ErrAlreadySubscribed = errors.New("member already has an active subscription")

// FindCurrentSubscription returns the member's subscription that is active now, or nil.
func FindCurrentSubscription(db *gorm.DB, memberID int64, now time.Time) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.
		Where("member_id = ? AND status = ? AND (end_date IS NULL OR end_date > ?)", memberID, models.SUBSCRIPTION_STATUS_ACTIVE, now).
		Order("end_date desc").
		First(&sub).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func planTier(tx *gorm.DB, planID int64) string {
	var plan models.Plan
	if planID > 0 && tx.First(&plan, planID).Error == nil && models.IsValidTier(plan.Tier) {
		return plan.Tier
	}
	return models.MEMBER_TIER_SILVER
}

// ActivateSubscription starts a paid subscription: window, tier, points and a notification.
func ActivateSubscription(tx *gorm.DB, sub *models.Subscription, now time.Time) error {
	start := now
	end := models.PeriodEnd(sub.Interval, start)
	sub.Status = models.SUBSCRIPTION_STATUS_ACTIVE
	sub.StartDate = &start
	sub.EndDate = &end
	sub.CancelledAt = nil
	if err := tx.Save(sub).Error; err != nil {
		return err
	}

	if err := tx.Model(&models.Member{}).Where("id = ?", sub.MemberID).
		UpdateColumn("tier", planTier(tx, sub.PlanID)).Error; err != nil {
		return err
	}

	reference := fmt.Sprintf("subscription:%d", sub.ID)
	if err := AwardPoints(tx, sub.MemberID, PointsForAmount(sub.Amount), models.POINTS_REASON_SUBSCRIPTION, reference); err != nil {
		return err
	}

	_, err := Notify(tx, sub.MemberID,
		"Membership active",
		fmt.Sprintf("Your %s membership is active until %s.", sub.PlanName, end.Format("2006-01-02")),
		models.NOTIFICATION_CATEGORY_SUBSCRIPTION,
		map[string]string{"subscription_id": fmt.Sprint(sub.ID)},
	)
	return err
}

// RenewSubscription extends an auto-renewing subscription by one interval. The new
// period starts at the previous end, or now when the previous end is a full period behind.
func RenewSubscription(tx *gorm.DB, sub *models.Subscription, now time.Time) error {
	start := now
	if sub.EndDate != nil {
		start = *sub.EndDate
	}
	end := models.PeriodEnd(sub.Interval, start)
	if !end.After(now) {
		start = now
		end = models.PeriodEnd(sub.Interval, start)
	}
	sub.EndDate = &end
	if err := tx.Save(sub).Error; err != nil {
		return err
	}

	reference := fmt.Sprintf("subscription:%d:renewal:%s", sub.ID, start.Format("20060102"))
	if err := AwardPoints(tx, sub.MemberID, PointsForAmount(sub.Amount), models.POINTS_REASON_SUBSCRIPTION, reference); err != nil {
		return err
	}

	_, err := Notify(tx, sub.MemberID,
		"Membership renewed",
		fmt.Sprintf("Your %s membership was renewed until %s.", sub.PlanName, end.Format("2006-01-02")),
		models.NOTIFICATION_CATEGORY_SUBSCRIPTION,
		map[string]string{"subscription_id": fmt.Sprint(sub.ID)},
	)
	return err
}

// ExpireSubscription closes a lapsed subscription and drops the member back to bronze
// unless another subscription is still current.
func ExpireSubscription(tx *gorm.DB, sub *models.Subscription, now time.Time) error {
	sub.Status = models.SUBSCRIPTION_STATUS_EXPIRED
	if err := tx.Save(sub).Error; err != nil {
		return err
	}

	if err := DropTierIfLapsed(tx, sub.MemberID, now); err != nil {
		return err
	}

	_, err := Notify(tx, sub.MemberID,
		"Membership expired",
		fmt.Sprintf("Your %s membership has expired. Renew it to keep your benefits.", sub.PlanName),
		models.NOTIFICATION_CATEGORY_SUBSCRIPTION,
		map[string]string{"subscription_id": fmt.Sprint(sub.ID)},
	)
	return err
}

// CancelSubscription stops a subscription immediately and disables renewal. Cancelling an
// active subscription drops the member back to bronze unless another one is still current.
func CancelSubscription(tx *gorm.DB, sub *models.Subscription, now time.Time) error {
	wasActive := sub.Status == models.SUBSCRIPTION_STATUS_ACTIVE
	sub.Status = models.SUBSCRIPTION_STATUS_CANCELLED
	sub.AutoRenew = false
	sub.CancelledAt = &now
	if err := tx.Save(sub).Error; err != nil {
		return err
	}
	if !wasActive {
		return nil
	}
	return DropTierIfLapsed(tx, sub.MemberID, now)
}

// DropTierIfLapsed resets the member tier to bronze when no subscription is current.
func DropTierIfLapsed(tx *gorm.DB, memberID int64, now time.Time) error {
	current, err := FindCurrentSubscription(tx, memberID, now)
	if err != nil {
		return err
	}
	if current != nil {
		return nil
	}
	return tx.Model(&models.Member{}).Where("id = ?", memberID).
		UpdateColumn("tier", models.MEMBER_TIER_BRONZE).Error
}
