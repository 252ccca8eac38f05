package workers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	dbpkg "fanhub/db"
	"fanhub/models"
	"fanhub/notify"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dbpkg.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func seedMember(t *testing.T, db *gorm.DB) models.Member {
	t.Helper()
	assoc := models.Association{Name: "FC Workers", Slug: "fc-workers", IsActive: true}
	require.NoError(t, db.Create(&assoc).Error)
	member := models.Member{
		AssociationID: assoc.ID, Name: "Fan", Email: "fan@workers.com", Password: "x", Phone: "912345678",
		Tier: models.MEMBER_TIER_GOLD, MembershipNumber: "FW-000001", ReferralCode: "WORKERS1",
	}
	require.NoError(t, db.Create(&member).Error)
	return member
}

type recordedMessage struct {
	routingKey string
	body       notify.PushMessage
}

type fakePublisher struct {
	messages []recordedMessage
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, routingKey string, body any) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, recordedMessage{routingKey: routingKey, body: body.(notify.PushMessage)})
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func TestExpireSubscriptionsQuery(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open("postgres", sqlDB)
	require.NoError(t, err)

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("selects lapsed active subscriptions in batches", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "subscriptions".*status = \$1 AND end_date IS NOT NULL AND end_date <= \$2.*ORDER BY end_date asc, id asc LIMIT 200`).
			WithArgs(models.SUBSCRIPTION_STATUS_ACTIVE, now).
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))

		res, err := ExpireSubscriptions(db, now, quietLogger)
		require.NoError(t, err)
		assert.Equal(t, ExpireResult{}, res)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns query errors", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "subscriptions"`).WillReturnError(errors.New("connection reset"))

		_, err := ExpireSubscriptions(db, now, quietLogger)
		assert.EqualError(t, err, "connection reset")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestExpireSubscriptions(t *testing.T) {
	db := newTestDB(t)
	member := seedMember(t, db)
	now := time.Now()
	lapsed := now.Add(-time.Hour)
	future := now.AddDate(0, 0, 10)

	renewing := models.Subscription{MemberID: member.ID, AssociationID: member.AssociationID, PlanName: "Gold",
		Amount: 1000, Currency: "EUR", Interval: models.PLAN_INTERVAL_MONTHLY, Status: models.SUBSCRIPTION_STATUS_ACTIVE,
		EndDate: &lapsed, PaymentSessionID: "s-renew", AutoRenew: true}
	ending := models.Subscription{MemberID: member.ID, AssociationID: member.AssociationID, PlanName: "Gold",
		Amount: 1000, Currency: "EUR", Interval: models.PLAN_INTERVAL_YEARLY, Status: models.SUBSCRIPTION_STATUS_ACTIVE,
		EndDate: &lapsed, PaymentSessionID: "s-end", AutoRenew: true}
	untouched := models.Subscription{MemberID: member.ID, AssociationID: member.AssociationID, PlanName: "Gold",
		Currency: "EUR", Status: models.SUBSCRIPTION_STATUS_ACTIVE, EndDate: &future, PaymentSessionID: "s-ok", AutoRenew: true}
	require.NoError(t, db.Create(&renewing).Error)
	require.NoError(t, db.Create(&ending).Error)
	require.NoError(t, db.Create(&untouched).Error)
	require.NoError(t, db.Model(&ending).UpdateColumn("auto_renew", false).Error)

	res, err := ExpireSubscriptions(db, now, quietLogger)
	require.NoError(t, err)
	assert.Equal(t, ExpireResult{Renewed: 1, Expired: 1}, res)

	var stored models.Subscription
	require.NoError(t, db.First(&stored, renewing.ID).Error)
	assert.Equal(t, models.SUBSCRIPTION_STATUS_ACTIVE, stored.Status)
	assert.True(t, stored.EndDate.After(now))

	var expired models.Subscription
	require.NoError(t, db.First(&expired, ending.ID).Error)
	assert.Equal(t, models.SUBSCRIPTION_STATUS_EXPIRED, expired.Status)

	var m models.Member
	require.NoError(t, db.First(&m, member.ID).Error)
	assert.Equal(t, models.MEMBER_TIER_GOLD, m.Tier, "another subscription is still current")

	again, err := ExpireSubscriptions(db, now, quietLogger)
	require.NoError(t, err)
	assert.Equal(t, ExpireResult{}, again)
}

func TestDispatcher(t *testing.T) {
	db := newTestDB(t)
	member := seedMember(t, db)
	require.NoError(t, db.Create(&models.PushToken{MemberID: member.ID, Token: "tok-1", Platform: models.PUSH_PLATFORM_IOS}).Error)

	first := models.Notification{MemberID: member.ID, Title: "Kickoff", Body: "Doors open", Category: models.NOTIFICATION_CATEGORY_TICKET,
		Data: `{"match_id":"3"}`, DeliveryStatus: models.DELIVERY_STATUS_PENDING}
	require.NoError(t, db.Create(&first).Error)

	pub := &fakePublisher{}
	d := Dispatcher{DB: db, Publisher: pub, Logger: quietLogger}

	sent, err := d.DispatchPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, pub.messages, 1)
	assert.Equal(t, "notification.ticket", pub.messages[0].routingKey)
	assert.Equal(t, first.ID, pub.messages[0].body.NotificationID)
	assert.Equal(t, map[string]string{"match_id": "3"}, pub.messages[0].body.Data)
	assert.Equal(t, []notify.PushTarget{{Token: "tok-1", Platform: "ios"}}, pub.messages[0].body.Tokens)

	var stored models.Notification
	require.NoError(t, db.First(&stored, first.ID).Error)
	assert.Equal(t, models.DELIVERY_STATUS_DONE, stored.DeliveryStatus)
	assert.NotNil(t, stored.DeliveredAt)

	t.Run("nothing left to send", func(t *testing.T) {
		sent, err := d.DispatchPending(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, sent)
	})

	t.Run("publish failures are marked failed", func(t *testing.T) {
		second := models.Notification{MemberID: member.ID, Title: "News", Category: models.NOTIFICATION_CATEGORY_NEWS,
			DeliveryStatus: models.DELIVERY_STATUS_PENDING}
		require.NoError(t, db.Create(&second).Error)

		failing := Dispatcher{DB: db, Publisher: &fakePublisher{err: errors.New("broker down")}, Logger: quietLogger}
		sent, err := failing.DispatchPending(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, sent)

		var stored models.Notification
		require.NoError(t, db.First(&stored, second.ID).Error)
		assert.Equal(t, models.DELIVERY_STATUS_FAILED, stored.DeliveryStatus)
		assert.Nil(t, stored.DeliveredAt)
	})
}

func TestJobsRun(t *testing.T) {
	db := newTestDB(t)
	jobs := &Jobs{DB: db, Publisher: &fakePublisher{}, Logger: quietLogger}

	assert.NoError(t, jobs.Run(context.Background(), JobExpireSubscriptions))
	assert.NoError(t, jobs.Run(context.Background(), JobDispatchNotifications))
	assert.EqualError(t, jobs.Run(context.Background(), "reindex"), `unknown job "reindex"`)
	assert.Equal(t, []string{JobDispatchNotifications, JobExpireSubscriptions}, jobs.Names())
}

func TestScheduler(t *testing.T) {
	s := NewScheduler(&Jobs{Logger: quietLogger}, quietLogger)
	assert.NoError(t, s.Schedule("@every 1h", JobExpireSubscriptions))
	assert.Error(t, s.Schedule("not a schedule", JobExpireSubscriptions))
	s.Start()
	<-s.Stop().Done()
}

func TestDispatcherRetriesAndRequeues(t *testing.T) {
	db := newTestDB(t)
	member := seedMember(t, db)

	n := models.Notification{MemberID: member.ID, Title: "Renewal", Category: models.NOTIFICATION_CATEGORY_SUBSCRIPTION,
		DeliveryStatus: models.DELIVERY_STATUS_PENDING}
	require.NoError(t, db.Create(&n).Error)

	reload := func(id int64) models.Notification {
		var stored models.Notification
		require.NoError(t, db.First(&stored, id).Error)
		return stored
	}

	failing := Dispatcher{DB: db, Publisher: &fakePublisher{err: errors.New("broker down")}, Logger: quietLogger, MaxAttempts: 2}
	for i := 0; i < 3; i++ {
		_, err := failing.DispatchPending(context.Background())
		require.NoError(t, err)
	}
	stored := reload(n.ID)
	assert.Equal(t, models.DELIVERY_STATUS_FAILED, stored.DeliveryStatus)
	assert.Equal(t, 2, stored.Attempts, "no claims past the attempt cap")

	t.Run("failed rows with attempts left are retried", func(t *testing.T) {
		require.NoError(t, db.Model(&models.Notification{}).Where("id = ?", n.ID).UpdateColumn("attempts", 1).Error)
		pub := &fakePublisher{}
		d := Dispatcher{DB: db, Publisher: pub, Logger: quietLogger, MaxAttempts: 2}
		sent, err := d.DispatchPending(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		require.Len(t, pub.messages, 1)

		stored := reload(n.ID)
		assert.Equal(t, models.DELIVERY_STATUS_DONE, stored.DeliveryStatus)
		assert.Equal(t, 2, stored.Attempts)
		assert.NotNil(t, stored.DeliveredAt)
	})

	t.Run("abandoned claims go back to pending", func(t *testing.T) {
		now := time.Now()
		stuck := models.Notification{MemberID: member.ID, Title: "Stuck", DeliveryStatus: models.DELIVERY_STATUS_PENDING}
		fresh := models.Notification{MemberID: member.ID, Title: "Fresh", DeliveryStatus: models.DELIVERY_STATUS_PENDING}
		require.NoError(t, db.Create(&stuck).Error)
		require.NoError(t, db.Create(&fresh).Error)
		require.NoError(t, db.Model(&models.Notification{}).Where("id = ?", stuck.ID).UpdateColumns(map[string]any{
			"delivery_status": models.DELIVERY_STATUS_PROCESSING, "updated_at": now.Add(-time.Hour),
		}).Error)
		require.NoError(t, db.Model(&models.Notification{}).Where("id = ?", fresh.ID).UpdateColumns(map[string]any{
			"delivery_status": models.DELIVERY_STATUS_PROCESSING, "updated_at": now,
		}).Error)

		d := Dispatcher{DB: db, Publisher: &fakePublisher{}, Logger: quietLogger}
		requeued, err := d.RequeueStale(now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), requeued)
		assert.Equal(t, models.DELIVERY_STATUS_PENDING, reload(stuck.ID).DeliveryStatus)
		assert.Equal(t, models.DELIVERY_STATUS_PROCESSING, reload(fresh.ID).DeliveryStatus)

		sent, err := d.DispatchPending(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, models.DELIVERY_STATUS_DONE, reload(stuck.ID).DeliveryStatus)
	})
}
