package services

import (
	"testing"
	"time"

	"github.com/arnold/civic-tasks-api/internal/database"
	"github.com/arnold/civic-tasks-api/internal/models"
	"github.com/arnold/civic-tasks-api/internal/verification"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type testEnv struct {
	db          *gorm.DB
	notifier    *NotificationService
	badges      *BadgeService
	leaderboard *LeaderboardService
	tasks       *TaskService
	templates   *TemplateService
}

func newTestEnv(t *testing.T, email EmailSender) *testEnv {
	t.Helper()
	return newTestEnvWithDB(t, database.OpenTest(t), email)
}

func newTestEnvWithDB(t *testing.T, db *gorm.DB, email EmailSender) *testEnv {
	t.Helper()
	verifier := verification.NewDispatcher()

	notifier := NewNotificationService(db, email, nil)
	notifier.Now = fixedClock
	notifier.SyncDelivery = true

	badges := NewBadgeService(db)
	badges.Now = fixedClock

	leaderboard := NewLeaderboardService(db, time.Minute)
	leaderboard.Now = fixedClock

	tasks := NewTaskService(db, verifier, badges, notifier, leaderboard)
	tasks.Now = fixedClock

	return &testEnv{
		db:          db,
		notifier:    notifier,
		badges:      badges,
		leaderboard: leaderboard,
		tasks:       tasks,
		templates:   NewTemplateService(db, verifier, notifier),
	}
}

func seedNeighborhood(t *testing.T, db *gorm.DB, name string, score int, aqi float64) *models.Neighborhood {
	t.Helper()
	n := &models.Neighborhood{Name: name, City: "Milano", TotalScore: score, AirQualityIndex: aqi}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("seed neighborhood: %v", err)
	}
	return n
}

func seedUser(t *testing.T, db *gorm.DB, neighborhoodID *uuid.UUID, opts ...func(*models.User)) *models.User {
	t.Helper()
	u := &models.User{
		Email:          uuid.NewString() + "@example.com",
		Name:           "Test User",
		NeighborhoodID: neighborhoodID,
		Preferences:    models.DefaultNotificationPreferences(),
	}
	for _, opt := range opts {
		opt(u)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func lastActive(at time.Time) func(*models.User) {
	return func(u *models.User) { u.LastActivityDate = &at }
}

func seedTask(t *testing.T, db *gorm.DB, title string, freq models.Frequency, method models.VerificationMethod, points int, criteria models.VerificationCriteria, opts ...func(*models.Task)) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:                title,
		Category:             "mobility",
		Frequency:            freq,
		BasePoints:           points,
		VerificationMethod:   method,
		VerificationCriteria: datatypes.NewJSONType(criteria),
		IsActive:             true,
	}
	for _, opt := range opts {
		opt(task)
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}

func seedAssignment(t *testing.T, db *gorm.DB, userID uuid.UUID, task *models.Task, expiresAt *time.Time) *models.UserTask {
	t.Helper()
	ut := &models.UserTask{
		UserID:    userID,
		TaskID:    task.ID,
		Frequency: task.Frequency,
		Status:    models.StatusAssigned,
		ExpiresAt: expiresAt,
	}
	if err := db.Create(ut).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	return ut
}

func ptr[T any](v T) *T { return &v }
