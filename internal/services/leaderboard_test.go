package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arnold/civic-tasks-api/internal/apperr"
	"github.com/arnold/civic-tasks-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func seedApproved(t *testing.T, db *gorm.DB, userID uuid.UUID, neighborhoodID *uuid.UUID, points int, daysAgo int) {
	t.Helper()
	sub := &models.Submission{
		UserID:         userID,
		TaskID:         uuid.New(),
		UserTaskID:     uuid.New(),
		NeighborhoodID: neighborhoodID,
		Status:         models.StatusApproved,
		PointsAwarded:  points,
		CompletedAt:    testNow.AddDate(0, 0, -daysAgo),
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("seed submission: %v", err)
	}
}

// two neighborhoods: one small and fully engaged with poor air, one large
// with a higher raw score and little recent activity
func seedLeaderboard(t *testing.T, env *testEnv) (engaged, large *models.Neighborhood) {
	engaged = seedNeighborhood(t, env.db, "Isola", 500, 80)
	u1 := seedUser(t, env.db, &engaged.ID, lastActive(testNow.AddDate(0, 0, -2)))
	seedUser(t, env.db, &engaged.ID, lastActive(testNow.AddDate(0, 0, -5)))
	seedApproved(t, env.db, u1.ID, &engaged.ID, 100, 1)

	large = seedNeighborhood(t, env.db, "Brera", 1000, 20)
	seedUser(t, env.db, &large.ID, lastActive(testNow.AddDate(0, 0, -1)))
	for i := 0; i < 9; i++ {
		seedUser(t, env.db, &large.ID, lastActive(testNow.AddDate(0, 0, -90)))
	}
	// outside the monthly window
	seedApproved(t, env.db, u1.ID, &large.ID, 300, 45)
	return engaged, large
}

func TestCalculateNormalizedScore(t *testing.T) {
	env := newTestEnv(t, nil)
	engaged, large := seedLeaderboard(t, env)
	ctx := context.Background()

	got, err := env.leaderboard.CalculateNormalizedScore(ctx, engaged.ID, PeriodMonthly)
	if err != nil {
		t.Fatalf("CalculateNormalizedScore() error = %v", err)
	}
	if got.ParticipationRate != 100 || got.Delta != 10 || got.EnvironmentalBonus != 60 || got.Total != 820 {
		t.Errorf("engaged score = %+v, want rate 100, delta 10, bonus 60, total 820", got)
	}

	got, err = env.leaderboard.CalculateNormalizedScore(ctx, large.ID, PeriodMonthly)
	if err != nil {
		t.Fatalf("CalculateNormalizedScore() error = %v", err)
	}
	if got.ParticipationRate != 10 || got.Delta != 0 || got.EnvironmentalBonus != 0 || got.Total != 1050 {
		t.Errorf("large score = %+v, want rate 10, delta 0, bonus 0, total 1050", got)
	}

	got, err = env.leaderboard.CalculateNormalizedScore(ctx, large.ID, PeriodAll)
	if err != nil {
		t.Fatalf("CalculateNormalizedScore() error = %v", err)
	}
	// unbounded: every user with any activity counts and the old points too
	if got.ParticipationRate != 100 || got.Delta != 30 {
		t.Errorf("all-time score = %+v, want rate 100, delta 30", got)
	}
}

func TestCalculateNormalizedScore_Empty(t *testing.T) {
	env := newTestEnv(t, nil)
	n := seedNeighborhood(t, env.db, "Vuoto", 0, 0)

	got, err := env.leaderboard.CalculateNormalizedScore(context.Background(), n.ID, PeriodWeekly)
	if err != nil {
		t.Fatalf("CalculateNormalizedScore() error = %v", err)
	}
	if got.ParticipationRate != 0 || got.Multiplier != 1 || got.Total != 0 {
		t.Errorf("empty neighborhood score = %+v", got)
	}
}

func TestCalculateNormalizedScore_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.leaderboard.CalculateNormalizedScore(context.Background(), uuid.New(), PeriodMonthly)
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
}

func TestRanking(t *testing.T) {
	env := newTestEnv(t, nil)
	engaged, large := seedLeaderboard(t, env)
	ctx := context.Background()

	ranking, err := env.leaderboard.Ranking(ctx, PeriodMonthly)
	if err != nil {
		t.Fatalf("Ranking() error = %v", err)
	}
	if len(ranking) != 2 {
		t.Fatalf("len(ranking) = %d, want 2", len(ranking))
	}
	if ranking[0].Neighborhood.ID != large.ID || ranking[0].Position != 1 {
		t.Errorf("first = %s at %d, want %s at 1", ranking[0].Neighborhood.Name, ranking[0].Position, large.Name)
	}
	if ranking[1].Neighborhood.ID != engaged.ID || ranking[1].Position != 2 {
		t.Errorf("second = %s at %d, want %s at 2", ranking[1].Neighborhood.Name, ranking[1].Position, engaged.Name)
	}

	var stored models.Neighborhood
	if err := env.db.First(&stored, "id = ?", engaged.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.RankingPosition != 2 {
		t.Errorf("stored ranking_position = %d, want 2", stored.RankingPosition)
	}
}

func TestRanking_TiesKeepCreationOrder(t *testing.T) {
	env := newTestEnv(t, nil)
	names := []string{"Niguarda", "Baggio", "Città Studi"}
	for i, name := range names {
		n := &models.Neighborhood{
			Name:       name,
			City:       "Milano",
			TotalScore: 300,
			CreatedAt:  testNow.Add(time.Duration(i) * time.Minute),
		}
		if err := env.db.Create(n).Error; err != nil {
			t.Fatal(err)
		}
	}

	ranking, err := env.leaderboard.Ranking(context.Background(), PeriodMonthly)
	if err != nil {
		t.Fatalf("Ranking() error = %v", err)
	}
	if len(ranking) != len(names) {
		t.Fatalf("len(ranking) = %d, want %d", len(ranking), len(names))
	}
	for i, entry := range ranking {
		if entry.Neighborhood.Name != names[i] || entry.Position != i+1 {
			t.Errorf("position %d = %s (%d), want %s", i+1, entry.Neighborhood.Name, entry.Position, names[i])
		}
	}
}

func TestRanking_CacheInvalidation(t *testing.T) {
	env := newTestEnv(t, nil)
	engaged, _ := seedLeaderboard(t, env)
	ctx := context.Background()

	if _, err := env.leaderboard.Ranking(ctx, PeriodMonthly); err != nil {
		t.Fatal(err)
	}
	if err := env.db.Model(&models.Neighborhood{}).Where("id = ?", engaged.ID).
		Update("total_score", 5000).Error; err != nil {
		t.Fatal(err)
	}

	cached, err := env.leaderboard.Ranking(ctx, PeriodMonthly)
	if err != nil {
		t.Fatal(err)
	}
	if cached[0].Neighborhood.ID == engaged.ID {
		t.Fatal("ranking recomputed before invalidation")
	}

	env.leaderboard.Invalidate()
	fresh, err := env.leaderboard.Ranking(ctx, PeriodMonthly)
	if err != nil {
		t.Fatal(err)
	}
	if fresh[0].Neighborhood.ID != engaged.ID {
		t.Errorf("first after invalidation = %s, want %s", fresh[0].Neighborhood.Name, engaged.Name)
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		raw     string
		want    Period
		wantErr bool
	}{
		{"", PeriodMonthly, false},
		{"weekly", PeriodWeekly, false},
		{"all", PeriodAll, false},
		{"daily", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePeriod(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePeriod(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePeriod(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEnvironmentalBonus(t *testing.T) {
	if got := EnvironmentalBonus(30); got != 0 {
		t.Errorf("EnvironmentalBonus(30) = %v, want 0", got)
	}
	if got := EnvironmentalBonus(80); got != 60 {
		t.Errorf("EnvironmentalBonus(80) = %v, want 60", got)
	}
}
