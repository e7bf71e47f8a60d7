package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/arnold/civic-tasks-api/internal/apperr"
	"github.com/arnold/civic-tasks-api/internal/metrics"
	"github.com/arnold/civic-tasks-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// preferenceFlags maps every notification type to the preference that
// governs it. System notifications cannot be turned off.
var preferenceFlags = map[models.NotificationType]func(models.NotificationPreferences) bool{
	models.NotificationMotivational: func(p models.NotificationPreferences) bool { return p.Motivational },
	models.NotificationFeedback:     func(p models.NotificationPreferences) bool { return p.PositiveReinforcement },
	models.NotificationInfo:         func(p models.NotificationPreferences) bool { return p.Informational },
	models.NotificationSystem:       func(models.NotificationPreferences) bool { return true },
}

// Allowed reports whether prefs let a notification of type typ through.
func Allowed(prefs models.NotificationPreferences, typ models.NotificationType) (bool, error) {
	flag, ok := preferenceFlags[typ]
	if !ok {
		return false, apperr.Validation("Unknown notification type: %s", typ)
	}
	return flag(prefs), nil
}

// MotivationTitle is the fixed title of the daily motivation ping.
const MotivationTitle = "Ci manchi!"

type NotificationService struct {
	db    *gorm.DB
	email EmailSender
	push  PushSender
	Now   func() time.Time

	// SyncDelivery makes email/push happen before CreateNotification
	// returns instead of on a goroutine.
	SyncDelivery bool

	InactivityDays int
	RetentionDays  int
}

func NewNotificationService(db *gorm.DB, email EmailSender, push PushSender) *NotificationService {
	return &NotificationService{
		db:             db,
		email:          email,
		push:           push,
		Now:            func() time.Time { return time.Now().UTC() },
		InactivityDays: 4,
		RetentionDays:  30,
	}
}

// CreateNotification runs the gate for one user. A suppressed notification
// returns (nil, nil) and writes nothing.
func (s *NotificationService) CreateNotification(ctx context.Context, userID uuid.UUID, in models.NotificationInput) (*models.Notification, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User", userID.String())
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return s.createFor(ctx, &user, in)
}

func (s *NotificationService) createFor(ctx context.Context, user *models.User, in models.NotificationInput) (*models.Notification, error) {
	allowed, err := Allowed(user.Preferences, in.Type)
	if err != nil {
		return nil, err
	}
	if !allowed {
		metrics.Notifications.WithLabelValues(string(in.Type), "suppressed").Inc()
		return nil, nil
	}

	notif := models.Notification{
		UserID:    user.ID,
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		Metadata:  in.Metadata,
		CreatedAt: s.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&notif).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	metrics.Notifications.WithLabelValues(string(in.Type), "created").Inc()

	s.deliver(ctx, user, in)
	return &notif, nil
}

// deliver sends the external channels. Failures are logged and counted,
// never returned: the notification row already exists.
func (s *NotificationService) deliver(ctx context.Context, user *models.User, in models.NotificationInput) {
	sendEmail := slices.Contains(in.Channels, models.ChannelEmail) && user.Preferences.Email && user.Email != "" && s.email != nil
	sendPush := slices.Contains(in.Channels, models.ChannelPush) && user.Preferences.Push && user.FCMToken != "" && s.push != nil
	if !sendEmail && !sendPush {
		return
	}

	to, token, userID := user.Email, user.FCMToken, user.ID
	run := func() {
		if sendEmail {
			if err := s.email.Send(to, in.Title, in.Message); err != nil {
				metrics.DeliveryFailures.WithLabelValues(string(models.ChannelEmail)).Inc()
				slog.Warn("Email delivery failed", slog.String("user_id", userID.String()), slog.Any("error", err))
			}
		}
		if sendPush {
			data := map[string]string{"type": string(in.Type)}
			for k, v := range in.Metadata {
				data[k] = fmt.Sprintf("%v", v)
			}
			if err := s.push.Send(context.WithoutCancel(ctx), token, in.Title, in.Message, data); err != nil {
				metrics.DeliveryFailures.WithLabelValues(string(models.ChannelPush)).Inc()
				slog.Warn("Push delivery failed", slog.String("user_id", userID.String()), slog.Any("error", err))
			}
		}
	}

	if s.SyncDelivery {
		run()
		return
	}
	go run()
}

func (s *NotificationService) NotifyNewChallenge(ctx context.Context, userID uuid.UUID, task *models.Task) (*models.Notification, error) {
	return s.CreateNotification(ctx, userID, models.NotificationInput{
		Title:    "Nuova sfida disponibile",
		Message:  fmt.Sprintf("%s: guadagna fino a %d punti!", task.Title, task.BasePoints),
		Type:     models.NotificationInfo,
		Channels: []models.Channel{models.ChannelInApp, models.ChannelPush},
		Metadata: map[string]any{"taskId": task.ID.String()},
	})
}

func (s *NotificationService) NotifyProgress(ctx context.Context, userID uuid.UUID, task *models.Task, points int) (*models.Notification, error) {
	return s.CreateNotification(ctx, userID, models.NotificationInput{
		Title:    "Sfida completata!",
		Message:  fmt.Sprintf("Hai completato \"%s\" e guadagnato %d punti.", task.Title, points),
		Type:     models.NotificationFeedback,
		Channels: []models.Channel{models.ChannelInApp, models.ChannelPush},
		Metadata: map[string]any{"taskId": task.ID.String(), "points": points},
	})
}

func (s *NotificationService) NotifyNewBadge(ctx context.Context, userID uuid.UUID, badge *models.Badge) (*models.Notification, error) {
	return s.CreateNotification(ctx, userID, models.NotificationInput{
		Title:    "Nuovo badge!",
		Message:  fmt.Sprintf("Hai ottenuto il badge \"%s\".", badge.Name),
		Type:     models.NotificationFeedback,
		Channels: []models.Channel{models.ChannelInApp, models.ChannelEmail, models.ChannelPush},
		Metadata: map[string]any{"badgeId": badge.ID.String()},
	})
}

func (s *NotificationService) NotifyStreakAtRisk(ctx context.Context, userID uuid.UUID, streak int) (*models.Notification, error) {
	return s.CreateNotification(ctx, userID, models.NotificationInput{
		Title:    "La tua serie è a rischio",
		Message:  fmt.Sprintf("Completa una sfida oggi per non perdere la serie di %d giorni.", streak),
		Type:     models.NotificationMotivational,
		Channels: []models.Channel{models.ChannelInApp, models.ChannelPush},
		Metadata: map[string]any{"streak": streak},
	})
}

// NotifyAllUsers fans a notification out to every user and returns the ones
// that passed the gate. A failure for one user does not stop the others.
func (s *NotificationService) NotifyAllUsers(ctx context.Context, in models.NotificationInput) ([]*models.Notification, error) {
	return s.fanOut(ctx, s.db.WithContext(ctx).Model(&models.User{}), in)
}

func (s *NotificationService) NotifyNeighborhoodEvent(ctx context.Context, neighborhoodID uuid.UUID, in models.NotificationInput) ([]*models.Notification, error) {
	meta := maps.Clone(in.Metadata)
	if meta == nil {
		meta = map[string]any{}
	}
	meta["neighborhoodId"] = neighborhoodID.String()
	in.Metadata = meta
	return s.fanOut(ctx, s.db.WithContext(ctx).Model(&models.User{}).Where("neighborhood_id = ?", neighborhoodID), in)
}

func (s *NotificationService) fanOut(ctx context.Context, query *gorm.DB, in models.NotificationInput) ([]*models.Notification, error) {
	var created []*models.Notification
	var users []models.User
	result := query.FindInBatches(&users, 200, func(tx *gorm.DB, batch int) error {
		for i := range users {
			n, err := s.createFor(ctx, &users[i], in)
			if err != nil {
				slog.Warn("Notification fan-out failed for user",
					slog.String("user_id", users[i].ID.String()), slog.Any("error", err))
				continue
			}
			if n != nil {
				created = append(created, n)
			}
		}
		return nil
	})
	if result.Error != nil {
		return created, fmt.Errorf("load recipients: %w", result.Error)
	}
	return created, nil
}

// JobSummary is what the scheduled jobs report.
type JobSummary struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Errors    []string `json:"errors"`
}

// SendDailyMotivation pings every user idle for InactivityDays or more who
// accepts motivational notifications. Users who never completed a task are
// left to onboarding.
func (s *NotificationService) SendDailyMotivation(ctx context.Context) JobSummary {
	summary := JobSummary{Errors: []string{}}
	now := s.Now()
	cutoff := now.AddDate(0, 0, -s.InactivityDays)

	var users []models.User
	err := s.db.WithContext(ctx).
		Where("pref_motivational = ? AND last_activity_date IS NOT NULL AND last_activity_date <= ?", true, cutoff).
		Find(&users).Error
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("load users: %v", err))
		return summary
	}

	for i := range users {
		summary.Processed++
		days := int(now.Sub(*users[i].LastActivityDate).Hours() / 24)
		n, err := s.createFor(ctx, &users[i], models.NotificationInput{
			Title:    MotivationTitle,
			Message:  fmt.Sprintf("Sono passati %d giorni dalla tua ultima attività. Completa una sfida oggi!", days),
			Type:     models.NotificationMotivational,
			Channels: []models.Channel{models.ChannelInApp, models.ChannelEmail, models.ChannelPush},
			Metadata: map[string]any{"inactiveDays": days},
		})
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("user %s: %v", users[i].ID, err))
			continue
		}
		if n != nil {
			summary.Created++
		}
	}
	return summary
}

// CleanupOldNotifications hard-deletes notifications past the retention window.
func (s *NotificationService) CleanupOldNotifications(ctx context.Context) (int64, error) {
	cutoff := s.Now().AddDate(0, 0, -s.RetentionDays)
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

// List returns one page of the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Notification, int64, int64, error) {
	offset := (page - 1) * limit

	var notifications []models.Notification
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, 0, err
	}

	var total, unread int64
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&unread).Error; err != nil {
		return nil, 0, 0, err
	}
	return notifications, total, unread, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Notification", notificationID.String())
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (s *NotificationService) UpdatePreferences(ctx context.Context, userID uuid.UUID, req models.UpdatePreferencesRequest) (models.NotificationPreferences, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NotificationPreferences{}, apperr.NotFound("User", userID.String())
		}
		return models.NotificationPreferences{}, err
	}

	prefs := user.Preferences
	if req.Email != nil {
		prefs.Email = *req.Email
	}
	if req.Push != nil {
		prefs.Push = *req.Push
	}
	if req.Motivational != nil {
		prefs.Motivational = *req.Motivational
	}
	if req.PositiveReinforcement != nil {
		prefs.PositiveReinforcement = *req.PositiveReinforcement
	}
	if req.Informational != nil {
		prefs.Informational = *req.Informational
	}

	// map form so false values are written
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"pref_email":                  prefs.Email,
		"pref_push":                   prefs.Push,
		"pref_motivational":           prefs.Motivational,
		"pref_positive_reinforcement": prefs.PositiveReinforcement,
		"pref_informational":          prefs.Informational,
	}).Error
	return prefs, err
}

func (s *NotificationService) RegisterDeviceToken(ctx context.Context, userID uuid.UUID, token string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("fcm_token", token).Error
}
