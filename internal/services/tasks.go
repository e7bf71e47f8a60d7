package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/arnold/civic-tasks-api/internal/apperr"
	"github.com/arnold/civic-tasks-api/internal/metrics"
	"github.com/arnold/civic-tasks-api/internal/models"
	"github.com/arnold/civic-tasks-api/internal/verification"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaskService owns the assignment lifecycle:
// ASSIGNED -> APPROVED | REJECTED (verification) and ASSIGNED -> EXPIRED (sweep).
type TaskService struct {
	db          *gorm.DB
	verifier    *verification.Dispatcher
	badges      *BadgeService
	notifier    *NotificationService
	leaderboard *LeaderboardService

	Now func() time.Time
	// MaxRejections closes an assignment as REJECTED after this many
	// rejected submissions. Zero allows resubmitting until expiry.
	MaxRejections int
	// pick chooses among replacement candidates.
	pick func(n int) int
}

func NewTaskService(db *gorm.DB, verifier *verification.Dispatcher, badges *BadgeService, notifier *NotificationService, leaderboard *LeaderboardService) *TaskService {
	return &TaskService{
		db:          db,
		verifier:    verifier,
		badges:      badges,
		notifier:    notifier,
		leaderboard: leaderboard,
		Now:         func() time.Time { return time.Now().UTC() },
		pick:        rand.IntN,
	}
}

// NextStreak counts consecutive active days. A second completion on the same
// day keeps the streak, a gap of more than one day restarts it.
func NextStreak(current int, last *time.Time, now time.Time) int {
	if last == nil {
		return 1
	}
	today := now.Truncate(24 * time.Hour)
	lastDay := last.UTC().Truncate(24 * time.Hour)
	daysSince := int(today.Sub(lastDay).Hours() / 24)
	switch {
	case daysSince <= 0:
		if current == 0 {
			return 1
		}
		return current
	case daysSince == 1:
		return current + 1
	default:
		return 1
	}
}

func expiryFor(freq models.Frequency, now time.Time) *time.Time {
	lifetime, ok := freq.Lifetime()
	if !ok {
		return nil
	}
	t := now.Add(lifetime)
	return &t
}

func loadUser(db *gorm.DB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User", userID.String())
		}
		return nil, err
	}
	return &user, nil
}

// scopedToUser limits a task query to global tasks and the user's own
// neighborhood.
func scopedToUser(q *gorm.DB, user *models.User) *gorm.DB {
	if user.NeighborhoodID == nil {
		return q.Where("neighborhood_id IS NULL")
	}
	return q.Where("neighborhood_id IS NULL OR neighborhood_id = ?", *user.NeighborhoodID)
}

// pickTask returns a random active task of the given frequency the user does
// not currently hold, or nil when there is none.
func (s *TaskService) pickTask(tx *gorm.DB, user *models.User, freq models.Frequency, exclude ...uuid.UUID) (*models.Task, error) {
	held := tx.Model(&models.UserTask{}).
		Select("task_id").
		Where("user_id = ? AND status = ?", user.ID, models.StatusAssigned)

	q := tx.Model(&models.Task{}).
		Where("is_active = ? AND frequency = ?", true, freq).
		Where("id NOT IN (?)", held)
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	q = scopedToUser(q, user)

	var candidates []models.Task
	if err := q.Order("created_at ASC").Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return &candidates[s.pick(len(candidates))], nil
}

func hasOpenSlot(tx *gorm.DB, userID uuid.UUID, freq models.Frequency) (bool, error) {
	var count int64
	err := tx.Model(&models.UserTask{}).
		Where("user_id = ? AND frequency = ? AND status = ?", userID, freq, models.StatusAssigned).
		Count(&count).Error
	return count == 0, err
}

// AssignTask gives a user a specific task. Recurring tasks respect the one
// open assignment per frequency rule; on-demand tasks only need to not be
// held already.
func (s *TaskService) AssignTask(ctx context.Context, userID, taskID uuid.UUID) (*models.UserTask, error) {
	var ut *models.UserTask
	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		if err := tx.First(&task, "id = ? AND is_active = ?", taskID, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Task", taskID.String())
			}
			return err
		}
		if task.NeighborhoodID != nil && (user.NeighborhoodID == nil || *user.NeighborhoodID != *task.NeighborhoodID) {
			return &apperr.ForbiddenError{Message: "Task is not available in your neighborhood"}
		}

		var held int64
		if err := tx.Model(&models.UserTask{}).
			Where("user_id = ? AND task_id = ? AND status = ?", userID, taskID, models.StatusAssigned).
			Count(&held).Error; err != nil {
			return err
		}
		if held > 0 {
			return apperr.Validation("Task already assigned")
		}
		if task.Frequency != models.FrequencyOnDemand {
			open, err := hasOpenSlot(tx, userID, task.Frequency)
			if err != nil {
				return err
			}
			if !open {
				return apperr.Validation("A %s task is already assigned", task.Frequency)
			}
		}

		ut = &models.UserTask{
			UserID:    userID,
			TaskID:    taskID,
			Frequency: task.Frequency,
			Status:    models.StatusAssigned,
			ExpiresAt: expiryFor(task.Frequency, s.Now()),
		}
		return tx.Create(ut).Error
	})
	if err != nil {
		return nil, err
	}

	ut.Task = task
	if _, err := s.notifier.NotifyNewChallenge(ctx, userID, &task); err != nil {
		slog.Warn("New challenge notification failed", slog.String("user_id", userID.String()), slog.Any("error", err))
	}
	return ut, nil
}

// AssignInitialTasks fills the user's empty daily and weekly slots.
func (s *TaskService) AssignInitialTasks(ctx context.Context, userID uuid.UUID) ([]models.UserTask, error) {
	assigned := []models.UserTask{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		for _, freq := range []models.Frequency{models.FrequencyDaily, models.FrequencyWeekly} {
			open, err := hasOpenSlot(tx, userID, freq)
			if err != nil {
				return err
			}
			if !open {
				continue
			}
			task, err := s.pickTask(tx, user, freq)
			if err != nil {
				return err
			}
			if task == nil {
				continue
			}
			ut := models.UserTask{
				UserID:    userID,
				TaskID:    task.ID,
				Frequency: freq,
				Status:    models.StatusAssigned,
				ExpiresAt: expiryFor(freq, s.Now()),
			}
			if err := tx.Create(&ut).Error; err != nil {
				return err
			}
			ut.Task = *task
			assigned = append(assigned, ut)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assigned, nil
}

// ListTasksForUser returns the active tasks visible to the user with the
// state of the user's latest assignment of each.
func (s *TaskService) ListTasksForUser(ctx context.Context, userID uuid.UUID) ([]models.TaskWithStatus, error) {
	db := s.db.WithContext(ctx)
	user, err := loadUser(db, userID)
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	if err := scopedToUser(db.Where("is_active = ?", true), user).Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	var assignments []models.UserTask
	if err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	latest := make(map[uuid.UUID]models.UserTask, len(assignments))
	for _, a := range assignments {
		latest[a.TaskID] = a
	}

	out := make([]models.TaskWithStatus, len(tasks))
	for i, t := range tasks {
		out[i] = models.TaskWithStatus{Task: t}
		if a, ok := latest[t.ID]; ok {
			status := a.Status
			out[i].AssignmentStatus = &status
			out[i].ExpiresAt = a.ExpiresAt
		}
	}
	return out, nil
}

func (s *TaskService) openAssignment(db *gorm.DB, userID, taskID uuid.UUID) (*models.UserTask, error) {
	var ut models.UserTask
	err := db.Preload("Task").
		Where("user_id = ? AND task_id = ? AND status = ?", userID, taskID, models.StatusAssigned).
		Order("created_at DESC").
		First(&ut).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.AssignmentNotFoundError{UserID: userID.String(), TaskID: taskID.String()}
		}
		return nil, err
	}
	return &ut, nil
}

// Submit verifies proof for the user's open assignment of taskID.
// Verification errors are returned as-is (400 class); a proof that is too far
// away is also recorded as a rejected submission.
func (s *TaskService) Submit(ctx context.Context, userID, taskID uuid.UUID, proof models.Proof) (*models.SubmitResponse, error) {
	db := s.db.WithContext(ctx)
	ut, err := s.openAssignment(db, userID, taskID)
	if err != nil {
		return nil, err
	}
	var waiting int64
	if err := db.Model(&models.Submission{}).
		Where("user_task_id = ? AND status = ?", ut.ID, models.StatusPending).
		Count(&waiting).Error; err != nil {
		return nil, fmt.Errorf("check pending submissions: %w", err)
	}
	if waiting > 0 {
		return nil, apperr.Validation("Submission already awaiting review")
	}
	user, err := loadUser(db, userID)
	if err != nil {
		return nil, err
	}

	result, verr := s.verifier.Verify(&ut.Task, proof)
	if verr != nil {
		var exceeded *apperr.DistanceExceededError
		if errors.As(verr, &exceeded) {
			if _, err := s.reject(ctx, user, ut, nil, proof, verr.Error(), nil); err != nil {
				return nil, err
			}
		}
		return nil, verr
	}

	switch result.Status {
	case models.StatusApproved:
		return s.approve(ctx, user, ut, nil, proof, result.Detail, nil)
	case models.StatusRejected:
		return s.reject(ctx, user, ut, nil, proof, result.Detail, nil)
	case models.StatusPending:
		sub := models.Submission{
			UserID:         userID,
			TaskID:         taskID,
			UserTaskID:     ut.ID,
			NeighborhoodID: user.NeighborhoodID,
			Status:         models.StatusPending,
			Detail:         result.Detail,
			Proof:          datatypes.NewJSONType(proof),
			CompletedAt:    s.Now(),
		}
		if err := db.Create(&sub).Error; err != nil {
			return nil, fmt.Errorf("record submission: %w", err)
		}
		metrics.Submissions.WithLabelValues(string(models.StatusPending)).Inc()
		return &models.SubmitResponse{
			SubmissionStatus: models.StatusPending,
			NewBadges:        []models.Badge{},
			Detail:           result.Detail,
		}, nil
	}
	return nil, fmt.Errorf("unexpected verification status %q", result.Status)
}

// approve closes the assignment and applies the points. Counters are moved
// with SQL increments so concurrent approvals never lose an update.
func (s *TaskService) approve(ctx context.Context, user *models.User, ut *models.UserTask, pending *models.Submission, proof models.Proof, detail string, reviewer *uuid.UUID) (*models.SubmitResponse, error) {
	now := s.Now()
	points := ut.Task.BasePoints
	co2 := ut.Task.Co2Impact

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.UserTask{}).
			Where("id = ? AND status = ?", ut.ID, models.StatusAssigned).
			Updates(map[string]any{
				"status":         models.StatusApproved,
				"completed_at":   now,
				"points_awarded": points,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &apperr.AssignmentNotFoundError{UserID: user.ID.String(), TaskID: ut.TaskID.String()}
		}

		if pending != nil {
			res := tx.Model(&models.Submission{}).
				Where("id = ? AND status = ?", pending.ID, models.StatusPending).
				Updates(map[string]any{
					"status":         models.StatusApproved,
					"points_awarded": points,
					"co2_saved":      co2,
					"detail":         detail,
					"reviewed_by":    reviewer,
					"completed_at":   now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperr.NotFound("Pending submission", pending.ID.String())
			}
		} else {
			sub := models.Submission{
				UserID:         user.ID,
				TaskID:         ut.TaskID,
				UserTaskID:     ut.ID,
				NeighborhoodID: user.NeighborhoodID,
				Status:         models.StatusApproved,
				PointsAwarded:  points,
				Co2Saved:       co2,
				Detail:         detail,
				Proof:          datatypes.NewJSONType(proof),
				CompletedAt:    now,
			}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}
		}

		if err := closePending(tx, ut.ID, now); err != nil {
			return err
		}

		err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]any{
			"points":             gorm.Expr("points + ?", points),
			"co2_saved":          gorm.Expr("co2_saved + ?", co2),
			"streak":             NextStreak(user.Streak, user.LastActivityDate, now),
			"last_activity_date": now,
		}).Error
		if err != nil {
			return err
		}

		if user.NeighborhoodID != nil {
			err := tx.Model(&models.Neighborhood{}).Where("id = ?", *user.NeighborhoodID).
				UpdateColumn("total_score", gorm.Expr("total_score + ?", points)).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Submissions.WithLabelValues(string(models.StatusApproved)).Inc()
	metrics.PointsAwarded.Add(float64(points))
	s.leaderboard.Invalidate()

	// The approval is committed; badge and notification failures are logged.
	newBadges, err := s.badges.CheckAndAwardBadges(ctx, user.ID)
	if err != nil {
		slog.Error("Badge evaluation failed", slog.String("user_id", user.ID.String()), slog.Any("error", err))
		newBadges = []models.Badge{}
	}
	if _, err := s.notifier.NotifyProgress(ctx, user.ID, &ut.Task, points); err != nil {
		slog.Warn("Progress notification failed", slog.String("user_id", user.ID.String()), slog.Any("error", err))
	}
	for i := range newBadges {
		if _, err := s.notifier.NotifyNewBadge(ctx, user.ID, &newBadges[i]); err != nil {
			slog.Warn("Badge notification failed", slog.String("user_id", user.ID.String()), slog.Any("error", err))
		}
	}

	return &models.SubmitResponse{
		SubmissionStatus: models.StatusApproved,
		PointsEarned:     points,
		NewBadges:        newBadges,
		Detail:           detail,
	}, nil
}

// reject records a zero-point submission. The assignment stays open unless
// MaxRejections is reached.
func (s *TaskService) reject(ctx context.Context, user *models.User, ut *models.UserTask, pending *models.Submission, proof models.Proof, detail string, reviewer *uuid.UUID) (*models.SubmitResponse, error) {
	now := s.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if pending != nil {
			res := tx.Model(&models.Submission{}).
				Where("id = ? AND status = ?", pending.ID, models.StatusPending).
				Updates(map[string]any{
					"status":       models.StatusRejected,
					"detail":       detail,
					"reviewed_by":  reviewer,
					"completed_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperr.NotFound("Pending submission", pending.ID.String())
			}
		} else {
			sub := models.Submission{
				UserID:         user.ID,
				TaskID:         ut.TaskID,
				UserTaskID:     ut.ID,
				NeighborhoodID: user.NeighborhoodID,
				Status:         models.StatusRejected,
				Detail:         detail,
				Proof:          datatypes.NewJSONType(proof),
				CompletedAt:    now,
			}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.UserTask{}).Where("id = ?", ut.ID).
			UpdateColumn("rejections", gorm.Expr("rejections + 1")).Error; err != nil {
			return err
		}
		if s.MaxRejections > 0 {
			res := tx.Model(&models.UserTask{}).
				Where("id = ? AND status = ? AND rejections >= ?", ut.ID, models.StatusAssigned, s.MaxRejections).
				Updates(map[string]any{"status": models.StatusRejected, "completed_at": now})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				return closePending(tx, ut.ID, now)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Submissions.WithLabelValues(string(models.StatusRejected)).Inc()
	return &models.SubmitResponse{
		SubmissionStatus: models.StatusRejected,
		NewBadges:        []models.Badge{},
		Detail:           detail,
	}, nil
}

// closePending rejects submissions still waiting on an assignment that has
// just left ASSIGNED, so the review queue never holds unreviewable rows.
func closePending(tx *gorm.DB, userTaskID uuid.UUID, now time.Time) error {
	return tx.Model(&models.Submission{}).
		Where("user_task_id = ? AND status = ?", userTaskID, models.StatusPending).
		Updates(map[string]any{
			"status":       models.StatusRejected,
			"detail":       "Assignment closed",
			"completed_at": now,
		}).Error
}

// ReviewSubmission settles a PENDING submission. Approval goes through the
// same award path as an automatic approval.
func (s *TaskService) ReviewSubmission(ctx context.Context, submissionID, operatorID uuid.UUID, req models.ReviewRequest) (*models.SubmitResponse, error) {
	db := s.db.WithContext(ctx)

	var sub models.Submission
	if err := db.First(&sub, "id = ? AND status = ?", submissionID, models.StatusPending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Pending submission", submissionID.String())
		}
		return nil, err
	}

	var ut models.UserTask
	if err := db.Preload("Task").First(&ut, "id = ? AND status = ?", sub.UserTaskID, models.StatusAssigned).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.AssignmentNotFoundError{UserID: sub.UserID.String(), TaskID: sub.TaskID.String()}
		}
		return nil, err
	}

	user, err := loadUser(db, sub.UserID)
	if err != nil {
		return nil, err
	}

	detail := req.Note
	if req.Approve {
		if detail == "" {
			detail = "Approved by operator"
		}
		return s.approve(ctx, user, &ut, &sub, sub.Proof.Data(), detail, &operatorID)
	}
	if detail == "" {
		detail = "Rejected by operator"
	}
	return s.reject(ctx, user, &ut, &sub, sub.Proof.Data(), detail, &operatorID)
}

// SweepResult summarizes one expiry sweep.
type SweepResult struct {
	Processed int      `json:"processed"`
	Replaced  int      `json:"replaced"`
	Errors    []string `json:"errors"`
}

// ReplaceExpiredTasksForAllUsers expires every overdue assignment and gives
// the user a different task of the same frequency when one is available.
// Each row is handled on its own; a failure is recorded and the sweep goes on.
func (s *TaskService) ReplaceExpiredTasksForAllUsers(ctx context.Context) SweepResult {
	result := SweepResult{Errors: []string{}}
	now := s.Now()

	var expired []models.UserTask
	err := s.db.WithContext(ctx).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.StatusAssigned, now).
		Order("expires_at ASC").
		Find(&expired).Error
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("load expired assignments: %v", err))
		return result
	}

	for i := range expired {
		result.Processed++
		replacement, err := s.expireAndReplace(ctx, &expired[i], now)
		if err != nil {
			metrics.SweepErrors.Inc()
			result.Errors = append(result.Errors, fmt.Sprintf("user %s: %v", expired[i].UserID, err))
			continue
		}
		if replacement == nil {
			continue
		}
		result.Replaced++
		if _, err := s.notifier.NotifyNewChallenge(ctx, expired[i].UserID, replacement); err != nil {
			slog.Warn("New challenge notification failed",
				slog.String("user_id", expired[i].UserID.String()), slog.Any("error", err))
		}
	}

	metrics.SweepReplaced.Add(float64(result.Replaced))
	slog.Info("Expiry sweep finished",
		slog.Int("processed", result.Processed),
		slog.Int("replaced", result.Replaced),
		slog.Int("errors", len(result.Errors)))
	return result
}

func (s *TaskService) expireAndReplace(ctx context.Context, ut *models.UserTask, now time.Time) (*models.Task, error) {
	var replacement *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.UserTask{}).
			Where("id = ? AND status = ?", ut.ID, models.StatusAssigned).
			Update("status", models.StatusExpired)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// settled by a submission since the sweep loaded it
			return nil
		}
		metrics.SweepExpired.Inc()
		if err := closePending(tx, ut.ID, now); err != nil {
			return err
		}

		if ut.Frequency == models.FrequencyOnDemand {
			return nil
		}
		open, err := hasOpenSlot(tx, ut.UserID, ut.Frequency)
		if err != nil {
			return err
		}
		if !open {
			return nil
		}

		user, err := loadUser(tx, ut.UserID)
		if err != nil {
			return err
		}
		task, err := s.pickTask(tx, user, ut.Frequency, ut.TaskID)
		if err != nil {
			return err
		}
		if task == nil {
			return nil
		}

		next := models.UserTask{
			UserID:    ut.UserID,
			TaskID:    task.ID,
			Frequency: ut.Frequency,
			Status:    models.StatusAssigned,
			ExpiresAt: expiryFor(ut.Frequency, now),
		}
		if err := tx.Create(&next).Error; err != nil {
			return err
		}
		replacement = task
		return nil
	})
	return replacement, err
}

// CreateTask adds an ad-hoc task.
func (s *TaskService) CreateTask(ctx context.Context, task *models.Task, operatorID uuid.UUID) error {
	if err := s.validateTask(task); err != nil {
		return err
	}
	task.IsActive = true
	task.CreatedBy = &operatorID
	return s.db.WithContext(ctx).Create(task).Error
}

func (s *TaskService) validateTask(task *models.Task) error {
	switch {
	case task.Title == "":
		return apperr.Validation("Required field missing: title")
	case task.Category == "":
		return apperr.Validation("Required field missing: category")
	case !task.Frequency.Valid():
		return apperr.Validation("Invalid frequency: %s", task.Frequency)
	case !s.verifier.Supports(task.VerificationMethod):
		return apperr.Validation("Unsupported verification method: %s", task.VerificationMethod)
	case task.BasePoints < models.MinBasePoints || task.BasePoints > models.MaxBasePoints:
		return apperr.Validation("Points must be between %d and %d", models.MinBasePoints, models.MaxBasePoints)
	}
	return nil
}

// DeactivateTask is the only change allowed on a task once it exists.
// Open assignments keep running until they expire or are settled.
func (s *TaskService) DeactivateTask(ctx context.Context, taskID uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", taskID).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Task", taskID.String())
	}
	return nil
}

// PendingSubmissions is the operator review queue, oldest first.
func (s *TaskService) PendingSubmissions(ctx context.Context, limit int) ([]models.Submission, error) {
	subs := []models.Submission{}
	err := s.db.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}
