package services

import (
	"errors"
	"fmt"
	"time"

	"fanhub/models"

	"github.com/jinzhu/gorm"
)

var ErrInsufficientPoints = errors.New("insufficient points")
var ErrInvalidPoints = errors.New("points must be positive")

// Rewards holds the configured loyalty amounts.
type Rewards struct {
	ReferrerPoints int64
	ReferredPoints int64
	TicketPoints   int64
}

// AwardPoints appends a ledger entry and moves the member balance in the same transaction.
func AwardPoints(tx *gorm.DB, memberID int64, points int64, reason string, reference string) error {
	if points == 0 {
		return nil
	}
	entry := models.PointsTransaction{
		MemberID:  memberID,
		Points:    points,
		Reason:    reason,
		Reference: reference,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}
	return tx.Model(&models.Member{}).
		Where("id = ?", memberID).
		UpdateColumn("points", gorm.Expr("points + ?", points)).Error
}

// RedeemPoints spends points; the balance never goes negative.
func RedeemPoints(tx *gorm.DB, memberID int64, points int64, reward string) error {
	if points <= 0 {
		return ErrInvalidPoints
	}
	res := tx.Model(&models.Member{}).
		Where("id = ? AND points >= ?", memberID, points).
		UpdateColumn("points", gorm.Expr("points - ?", points))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientPoints
	}
	entry := models.PointsTransaction{
		MemberID:  memberID,
		Points:    -points,
		Reason:    models.POINTS_REASON_REDEEM,
		Reference: reward,
	}
	return tx.Create(&entry).Error
}

// PointsForAmount converts a price in minor units into loyalty points (1 per currency unit).
func PointsForAmount(amountCents int64) int64 {
	if amountCents <= 0 {
		return 0
	}
	return amountCents / 100
}

// CompleteReferral rewards both sides of the pending referral of referredID.
// It returns nil when the member was not referred or the referral is already completed.
func CompleteReferral(tx *gorm.DB, referredID int64, rewards Rewards, now time.Time) (*models.Referral, error) {
	var ref models.Referral
	err := tx.Where("referred_id = ? AND status = ?", referredID, models.REFERRAL_STATUS_PENDING).First(&ref).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ref.Status = models.REFERRAL_STATUS_COMPLETED
	ref.ReferrerPoints = rewards.ReferrerPoints
	ref.ReferredPoints = rewards.ReferredPoints
	ref.CompletedAt = &now
	if err := tx.Save(&ref).Error; err != nil {
		return nil, err
	}

	reference := fmt.Sprintf("referral:%d", ref.ID)
	if err := AwardPoints(tx, ref.ReferrerID, rewards.ReferrerPoints, models.POINTS_REASON_REFERRAL, reference); err != nil {
		return nil, err
	}
	if err := AwardPoints(tx, ref.ReferredID, rewards.ReferredPoints, models.POINTS_REASON_REFERRAL, reference); err != nil {
		return nil, err
	}

	_, err = Notify(tx, ref.ReferrerID,
		"Referral completed",
		fmt.Sprintf("%s joined with your code. You earned %d points.", ref.ReferredName, rewards.ReferrerPoints),
		models.NOTIFICATION_CATEGORY_LOYALTY,
		map[string]string{"referral_id": fmt.Sprint(ref.ID)},
	)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// RevokePoints takes back up to points from the balance, never below zero,
// and returns how many were taken.
func RevokePoints(tx *gorm.DB, memberID int64, points int64, reason string, reference string) (int64, error) {
	if points <= 0 {
		return 0, nil
	}
	var member models.Member
	if err := tx.Select("id, points").First(&member, memberID).Error; err != nil {
		return 0, err
	}
	if member.Points < points {
		points = member.Points
	}
	if points == 0 {
		return 0, nil
	}
	return points, AwardPoints(tx, memberID, -points, reason, reference)
}
