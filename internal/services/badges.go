package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnold/civic-tasks-api/internal/apperr"
	"github.com/arnold/civic-tasks-api/internal/metrics"
	"github.com/arnold/civic-tasks-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeService struct {
	db  *gorm.DB
	Now func() time.Time
}

func NewBadgeService(db *gorm.DB) *BadgeService {
	return &BadgeService{db: db, Now: func() time.Time { return time.Now().UTC() }}
}

// Satisfies applies every present requirement with AND semantics.
func Satisfies(req models.BadgeRequirements, stats models.UserStats) bool {
	if req.MinStreak != nil && stats.Streak < *req.MinStreak {
		return false
	}
	if req.MinPoints != nil && stats.Points < *req.MinPoints {
		return false
	}
	if req.MinCo2Saved != nil && stats.Co2Saved < *req.MinCo2Saved {
		return false
	}
	if req.MinTasksCompleted != nil && stats.TasksCompleted < *req.MinTasksCompleted {
		return false
	}
	return true
}

// Stats derives the snapshot badges are checked against. CO2 and completion
// counts come from approved submissions, not from the cached user columns.
func (s *BadgeService) Stats(ctx context.Context, user *models.User) (models.UserStats, error) {
	var agg struct {
		Co2   float64
		Count int
	}
	err := s.db.WithContext(ctx).Model(&models.Submission{}).
		Select("COALESCE(SUM(co2_saved), 0) AS co2, COUNT(*) AS count").
		Where("user_id = ? AND status = ?", user.ID, models.StatusApproved).
		Scan(&agg).Error
	if err != nil {
		return models.UserStats{}, fmt.Errorf("aggregate submissions: %w", err)
	}
	return models.UserStats{
		Points:         user.Points,
		Streak:         user.Streak,
		Co2Saved:       agg.Co2,
		TasksCompleted: agg.Count,
	}, nil
}

func (s *BadgeService) earnedIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.UserBadge{}).Where("user_id = ?", userID).Pluck("badge_id", &ids).Error; err != nil {
		return nil, err
	}
	earned := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		earned[id] = true
	}
	return earned, nil
}

func (s *BadgeService) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User", userID.String())
		}
		return nil, err
	}
	return &user, nil
}

// CheckAndAwardBadges awards every badge the user now qualifies for and
// returns only the ones awarded by this call. Awards are never revoked.
func (s *BadgeService) CheckAndAwardBadges(ctx context.Context, userID uuid.UUID) ([]models.Badge, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.Stats(ctx, user)
	if err != nil {
		return nil, err
	}

	earned, err := s.earnedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load earned badges: %w", err)
	}

	var badges []models.Badge
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}

	awarded := []models.Badge{}
	var rows []models.UserBadge
	now := s.Now()
	for _, b := range badges {
		if earned[b.ID] {
			continue
		}
		if Satisfies(b.Requirements.Data(), stats) {
			awarded = append(awarded, b)
			rows = append(rows, models.UserBadge{UserID: userID, BadgeID: b.ID, EarnedAt: now})
		}
	}

	if len(rows) == 0 {
		return awarded, nil
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("award badges: %w", err)
	}
	metrics.BadgesAwarded.Add(float64(len(rows)))
	return awarded, nil
}

// GetAllBadgesWithStatus lists every badge with the user's earned flag.
// Read-only.
func (s *BadgeService) GetAllBadgesWithStatus(ctx context.Context, userID uuid.UUID) ([]models.BadgeWithStatus, error) {
	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}

	earned, err := s.earnedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	var badges []models.Badge
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&badges).Error; err != nil {
		return nil, err
	}

	out := make([]models.BadgeWithStatus, len(badges))
	for i, b := range badges {
		out[i] = models.BadgeWithStatus{Badge: b, Earned: earned[b.ID]}
	}
	return out, nil
}

// BadgeIDs returns the ids of the badges a user holds.
func (s *BadgeService) BadgeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := s.db.WithContext(ctx).Model(&models.UserBadge{}).
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Pluck("badge_id", &ids).Error
	return ids, err
}

func (s *BadgeService) CreateBadge(ctx context.Context, badge *models.Badge) error {
	if badge.Name == "" {
		return apperr.Validation("Required field missing: name")
	}
	return s.db.WithContext(ctx).Create(badge).Error
}
