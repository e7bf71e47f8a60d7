package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/arnold/civic-tasks-api/internal/apperr"
	"github.com/arnold/civic-tasks-api/internal/models"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodAll     Period = "all"
)

// Scoring constants.
const (
	// MaxParticipationBonus is the extra multiplier at 100% participation.
	MaxParticipationBonus = 0.5
	DeltaWeight           = 0.1
	AQIThreshold          = 50.0
	AQIBonusFactor        = 2.0
)

func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case "":
		return PeriodMonthly, nil
	case PeriodWeekly, PeriodMonthly, PeriodYearly, PeriodAll:
		return Period(raw), nil
	}
	return "", apperr.Validation("Invalid period: %s", raw)
}

// Since is the start of the lookback window; nil means unbounded.
func (p Period) Since(now time.Time) *time.Time {
	var since time.Time
	switch p {
	case PeriodWeekly:
		since = now.AddDate(0, 0, -7)
	case PeriodMonthly:
		since = now.AddDate(0, 0, -30)
	case PeriodYearly:
		since = now.AddDate(0, 0, -365)
	default:
		return nil
	}
	return &since
}

// ParticipationMultiplier scales a score by up to 1.5x.
func ParticipationMultiplier(rate int) float64 {
	return 1 + (float64(rate)/100)*MaxParticipationBonus
}

// EnvironmentalBonus rewards neighborhoods with worse air, floored at zero.
func EnvironmentalBonus(aqi float64) float64 {
	return math.Max(0, (aqi-AQIThreshold)*AQIBonusFactor)
}

// ParticipationRate is the integer percentage of active users.
func ParticipationRate(active, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(active) / float64(total) * 100))
}

type rankingCacheEntry struct {
	at      time.Time
	entries []models.RankingEntry
}

type LeaderboardService struct {
	db       *gorm.DB
	cache    *lru.Cache
	CacheTTL time.Duration
	Now      func() time.Time
}

func NewLeaderboardService(db *gorm.DB, cacheTTL time.Duration) *LeaderboardService {
	cache, _ := lru.New(8) // only errors on a non-positive size
	return &LeaderboardService{
		db:       db,
		cache:    cache,
		CacheTTL: cacheTTL,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// Invalidate drops cached rankings; called whenever a score changes.
func (s *LeaderboardService) Invalidate() {
	s.cache.Purge()
}

func (s *LeaderboardService) CalculateNormalizedScore(ctx context.Context, neighborhoodID uuid.UUID, period Period) (models.NormalizedScore, error) {
	var n models.Neighborhood
	if err := s.db.WithContext(ctx).First(&n, "id = ?", neighborhoodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NormalizedScore{}, apperr.NotFound("Neighborhood", neighborhoodID.String())
		}
		return models.NormalizedScore{}, err
	}
	return s.score(ctx, &n, period.Since(s.Now()))
}

func (s *LeaderboardService) score(ctx context.Context, n *models.Neighborhood, since *time.Time) (models.NormalizedScore, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Where("neighborhood_id = ?", n.ID).Count(&total).Error; err != nil {
		return models.NormalizedScore{}, fmt.Errorf("count users: %w", err)
	}

	activeQ := db.Model(&models.User{}).Where("neighborhood_id = ? AND last_activity_date IS NOT NULL", n.ID)
	if since != nil {
		activeQ = activeQ.Where("last_activity_date >= ?", *since)
	}
	var active int64
	if err := activeQ.Count(&active).Error; err != nil {
		return models.NormalizedScore{}, fmt.Errorf("count active users: %w", err)
	}

	recentQ := db.Model(&models.Submission{}).
		Select("COALESCE(SUM(points_awarded), 0)").
		Where("neighborhood_id = ? AND status = ?", n.ID, models.StatusApproved)
	if since != nil {
		recentQ = recentQ.Where("completed_at >= ?", *since)
	}
	var recentPoints int64
	if err := recentQ.Scan(&recentPoints).Error; err != nil {
		return models.NormalizedScore{}, fmt.Errorf("sum recent points: %w", err)
	}

	rate := ParticipationRate(active, total)
	multiplier := ParticipationMultiplier(rate)
	delta := float64(recentPoints) * DeltaWeight
	bonus := EnvironmentalBonus(n.AirQualityIndex)

	return models.NormalizedScore{
		NeighborhoodID:     n.ID,
		Base:               n.TotalScore,
		ParticipationRate:  rate,
		Multiplier:         multiplier,
		Delta:              round2(delta),
		EnvironmentalBonus: round2(bonus),
		Total:              round2(float64(n.TotalScore)*multiplier + delta + bonus),
	}, nil
}

// Ranking scores every neighborhood and orders them by total, descending.
// Ties keep creation order. The computed positions are written back to
// ranking_position.
func (s *LeaderboardService) Ranking(ctx context.Context, period Period) ([]models.RankingEntry, error) {
	now := s.Now()
	if cached, ok := s.cache.Get(period); ok {
		entry := cached.(rankingCacheEntry)
		if now.Sub(entry.at) < s.CacheTTL {
			return append([]models.RankingEntry(nil), entry.entries...), nil
		}
	}

	var neighborhoods []models.Neighborhood
	if err := s.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&neighborhoods).Error; err != nil {
		return nil, fmt.Errorf("load neighborhoods: %w", err)
	}

	since := period.Since(now)
	entries := make([]models.RankingEntry, len(neighborhoods))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range neighborhoods {
		g.Go(func() error {
			sc, err := s.score(gctx, &neighborhoods[i], since)
			if err != nil {
				return fmt.Errorf("score %s: %w", neighborhoods[i].ID, err)
			}
			entries[i] = models.RankingEntry{Neighborhood: neighborhoods[i], Score: sc}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Score.Total > entries[b].Score.Total
	})

	for i := range entries {
		pos := i + 1
		entries[i].Position = pos
		entries[i].Neighborhood.RankingPosition = pos
		err := s.db.WithContext(ctx).Model(&models.Neighborhood{}).
			Where("id = ?", entries[i].Neighborhood.ID).
			UpdateColumn("ranking_position", pos).Error
		if err != nil {
			return nil, fmt.Errorf("store ranking position: %w", err)
		}
	}

	s.cache.Add(period, rankingCacheEntry{at: now, entries: entries})
	return append([]models.RankingEntry(nil), entries...), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
