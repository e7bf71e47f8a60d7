package services

import (
	"context"
	"errors"
	"testing"

	"github.com/arnold/civic-tasks-api/internal/apperr"
	"github.com/arnold/civic-tasks-api/internal/models"
	"github.com/arnold/civic-tasks-api/internal/services/mock"
	"go.uber.org/mock/gomock"
)

func motivational() models.NotificationInput {
	return models.NotificationInput{
		Title:    MotivationTitle,
		Message:  "Torna a partecipare!",
		Type:     models.NotificationMotivational,
		Channels: []models.Channel{models.ChannelInApp, models.ChannelEmail},
	}
}

func countNotifications(t *testing.T, env *testEnv) int64 {
	t.Helper()
	var n int64
	if err := env.db.Model(&models.Notification{}).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func TestCreateNotification_Suppressed(t *testing.T) {
	// no EXPECT: any email send fails the test
	email := mock.NewMockEmailSender(gomock.NewController(t))
	env := newTestEnv(t, email)
	user := seedUser(t, env.db, nil, func(u *models.User) { u.Preferences.Motivational = false })

	n, err := env.notifier.CreateNotification(context.Background(), user.ID, motivational())
	if err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}
	if n != nil {
		t.Errorf("CreateNotification() = %+v, want nil", n)
	}
	if got := countNotifications(t, env); got != 0 {
		t.Errorf("persisted %d notifications, want 0", got)
	}
}

func TestCreateNotification_DeliversEmailOnce(t *testing.T) {
	email := mock.NewMockEmailSender(gomock.NewController(t))
	env := newTestEnv(t, email)
	user := seedUser(t, env.db, nil)

	email.EXPECT().Send(user.Email, MotivationTitle, gomock.Any()).Return(nil).Times(1)

	n, err := env.notifier.CreateNotification(context.Background(), user.ID, motivational())
	if err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}
	if n == nil || n.UserID != user.ID || n.IsRead {
		t.Fatalf("CreateNotification() = %+v", n)
	}
	if got := countNotifications(t, env); got != 1 {
		t.Errorf("persisted %d notifications, want 1", got)
	}
}

func TestCreateNotification_EmailFailureTolerated(t *testing.T) {
	email := mock.NewMockEmailSender(gomock.NewController(t))
	env := newTestEnv(t, email)
	user := seedUser(t, env.db, nil)

	email.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

	n, err := env.notifier.CreateNotification(context.Background(), user.ID, motivational())
	if err != nil || n == nil {
		t.Fatalf("CreateNotification() = %v, %v; want a notification despite the email failure", n, err)
	}
}

func TestCreateNotification_EmailPreferenceOff(t *testing.T) {
	email := mock.NewMockEmailSender(gomock.NewController(t))
	env := newTestEnv(t, email)
	user := seedUser(t, env.db, nil, func(u *models.User) { u.Preferences.Email = false })

	n, err := env.notifier.CreateNotification(context.Background(), user.ID, motivational())
	if err != nil || n == nil {
		t.Fatalf("CreateNotification() = %v, %v", n, err)
	}
}

func TestCreateNotification_PushDelivery(t *testing.T) {
	ctrl := gomock.NewController(t)
	push := mock.NewMockPushSender(ctrl)
	env := newTestEnv(t, nil)
	env.notifier.push = push
	user := seedUser(t, env.db, nil, func(u *models.User) { u.FCMToken = "device-1" })

	push.EXPECT().Send(gomock.Any(), "device-1", "Sfida completata!", gomock.Any(), gomock.Any()).Return(nil)

	task := &models.Task{Title: "Bici al lavoro"}
	if _, err := env.notifier.NotifyProgress(context.Background(), user.ID, task, 30); err != nil {
		t.Fatal(err)
	}
}

func TestAllowed(t *testing.T) {
	prefs := models.NotificationPreferences{Informational: true}
	tests := []struct {
		typ  models.NotificationType
		want bool
	}{
		{models.NotificationInfo, true},
		{models.NotificationFeedback, false},
		{models.NotificationMotivational, false},
		{models.NotificationSystem, true},
	}
	for _, tt := range tests {
		got, err := Allowed(prefs, tt.typ)
		if err != nil {
			t.Fatalf("Allowed(%s) error = %v", tt.typ, err)
		}
		if got != tt.want {
			t.Errorf("Allowed(%s) = %v, want %v", tt.typ, got, tt.want)
		}
	}

	_, err := Allowed(prefs, "marketing")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("Allowed(marketing) error = %v, want ValidationError", err)
	}
}

func TestNotifyNeighborhoodEvent(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	here := seedNeighborhood(t, env.db, "Navigli", 0, 0)
	there := seedNeighborhood(t, env.db, "Lambrate", 0, 0)
	seedUser(t, env.db, &here.ID)
	seedUser(t, env.db, &here.ID, func(u *models.User) { u.Preferences.Informational = false })
	seedUser(t, env.db, &there.ID)

	in := models.NotificationInput{
		Title:    "Pulizia parco",
		Message:  "Sabato alle 10",
		Type:     models.NotificationInfo,
		Metadata: map[string]any{"eventId": "e1"},
	}
	sent, err := env.notifier.NotifyNeighborhoodEvent(ctx, here.ID, in)
	if err != nil {
		t.Fatalf("NotifyNeighborhoodEvent() error = %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(sent))
	}
	if sent[0].Metadata["neighborhoodId"] != here.ID.String() || sent[0].Metadata["eventId"] != "e1" {
		t.Errorf("metadata = %v", sent[0].Metadata)
	}
	if _, ok := in.Metadata["neighborhoodId"]; ok || len(in.Metadata) != 1 {
		t.Errorf("caller metadata was modified: %v", in.Metadata)
	}

	all, err := env.notifier.NotifyAllUsers(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("NotifyAllUsers sent %d, want 2", len(all))
	}
	for _, n := range all {
		if _, ok := n.Metadata["neighborhoodId"]; ok {
			t.Errorf("global notification carries neighborhood metadata: %v", n.Metadata)
		}
	}
}

func TestSendDailyMotivation(t *testing.T) {
	env := newTestEnv(t, nil)
	idle := seedUser(t, env.db, nil, lastActive(testNow.AddDate(0, 0, -5)))
	seedUser(t, env.db, nil, lastActive(testNow.AddDate(0, 0, -1)))
	seedUser(t, env.db, nil) // never active
	seedUser(t, env.db, nil, lastActive(testNow.AddDate(0, 0, -10)), func(u *models.User) { u.Preferences.Motivational = false })

	sum := env.notifier.SendDailyMotivation(context.Background())
	if sum.Processed != 1 || sum.Created != 1 || len(sum.Errors) != 0 {
		t.Fatalf("summary = %+v, want 1 processed and created", sum)
	}

	var n models.Notification
	if err := env.db.First(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n.UserID != idle.ID || n.Title != MotivationTitle || n.Type != models.NotificationMotivational {
		t.Errorf("notification = %+v", n)
	}
}

func TestCleanupOldNotifications(t *testing.T) {
	env := newTestEnv(t, nil)
	user := seedUser(t, env.db, nil)
	old := models.Notification{UserID: user.ID, Type: models.NotificationInfo, Title: "vecchia", CreatedAt: testNow.AddDate(0, 0, -31)}
	recent := models.Notification{UserID: user.ID, Type: models.NotificationInfo, Title: "recente", CreatedAt: testNow.AddDate(0, 0, -2)}
	if err := env.db.Create(&old).Error; err != nil {
		t.Fatal(err)
	}
	if err := env.db.Create(&recent).Error; err != nil {
		t.Fatal(err)
	}

	deleted, err := env.notifier.CleanupOldNotifications(context.Background())
	if err != nil {
		t.Fatalf("CleanupOldNotifications() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if got := countNotifications(t, env); got != 1 {
		t.Errorf("remaining = %d, want 1", got)
	}
}

func TestMarkRead(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	user := seedUser(t, env.db, nil)
	other := seedUser(t, env.db, nil)

	in := models.NotificationInput{Title: "Avviso", Type: models.NotificationSystem}
	n1, _ := env.notifier.CreateNotification(ctx, user.ID, in)
	if _, err := env.notifier.CreateNotification(ctx, user.ID, in); err != nil {
		t.Fatal(err)
	}

	if err := env.notifier.MarkRead(ctx, other.ID, n1.ID); err == nil {
		t.Error("MarkRead() by another user succeeded")
	}
	if err := env.notifier.MarkRead(ctx, user.ID, n1.ID); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}

	_, total, unread, err := env.notifier.List(ctx, user.ID, 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || unread != 1 {
		t.Errorf("total = %d, unread = %d; want 2, 1", total, unread)
	}

	updated, err := env.notifier.MarkAllRead(ctx, user.ID)
	if err != nil || updated != 1 {
		t.Errorf("MarkAllRead() = %d, %v; want 1", updated, err)
	}
}

func TestUpdatePreferences(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	user := seedUser(t, env.db, nil)

	off := false
	prefs, err := env.notifier.UpdatePreferences(ctx, user.ID, models.UpdatePreferencesRequest{Motivational: &off})
	if err != nil {
		t.Fatalf("UpdatePreferences() error = %v", err)
	}
	if prefs.Motivational || !prefs.Email {
		t.Errorf("prefs = %+v", prefs)
	}

	var stored models.User
	if err := env.db.First(&stored, "id = ?", user.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Preferences.Motivational {
		t.Error("motivational flag not persisted")
	}
}
