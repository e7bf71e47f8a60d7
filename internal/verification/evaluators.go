package verification

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/arnold/civic-tasks-api/internal/apperr"
	"github.com/arnold/civic-tasks-api/internal/geo"
	"github.com/arnold/civic-tasks-api/internal/models"
)

// DefaultMaxDistanceMeters applies when a GPS task sets no min_distance_meters.
const DefaultMaxDistanceMeters = 100.0

type GPSEvaluator struct{}

func (GPSEvaluator) Evaluate(criteria models.VerificationCriteria, proof models.Proof) (Result, error) {
	if len(criteria.TargetLocation) != 2 {
		return Result{}, &apperr.MissingDataError{Field: "target_location"}
	}
	if len(proof.GPSLocation) != 2 {
		return Result{}, &apperr.MissingDataError{Field: "gps_location"}
	}

	limit := DefaultMaxDistanceMeters
	if criteria.MinDistanceMeters != nil {
		limit = *criteria.MinDistanceMeters
	}

	distance := geo.Distance(
		criteria.TargetLocation[0], criteria.TargetLocation[1],
		proof.GPSLocation[0], proof.GPSLocation[1],
	)
	if distance > limit {
		return Result{}, &apperr.DistanceExceededError{Distance: distance, Limit: limit}
	}

	return Result{
		Status: models.StatusApproved,
		Detail: fmt.Sprintf("Location verified (%dm from target)", int(math.Round(distance))),
	}, nil
}

// QuizEvaluator requires every answer in the key to match exactly.
type QuizEvaluator struct{}

func (QuizEvaluator) Evaluate(criteria models.VerificationCriteria, proof models.Proof) (Result, error) {
	if len(criteria.Answers) == 0 {
		return Result{}, &apperr.MissingDataError{Field: "answers key"}
	}
	if len(proof.Answers) == 0 {
		return Result{}, &apperr.MissingDataError{Field: "answers"}
	}

	var wrong []string
	for question, expected := range criteria.Answers {
		given, ok := proof.Answers[question]
		if !ok || given != expected {
			wrong = append(wrong, question)
		}
	}

	if len(wrong) > 0 {
		sort.Strings(wrong)
		return Result{
			Status: models.StatusRejected,
			Detail: fmt.Sprintf("%d of %d answers incorrect: %s",
				len(wrong), len(criteria.Answers), strings.Join(wrong, ", ")),
		}, nil
	}

	return Result{Status: models.StatusApproved, Detail: "All answers correct"}, nil
}

// ManualEvaluator covers the methods a human has to look at. It only checks
// that the evidence is there and leaves the submission PENDING.
type ManualEvaluator struct {
	RequireReport bool
	RequirePhoto  bool
}

func (e ManualEvaluator) Evaluate(_ models.VerificationCriteria, proof models.Proof) (Result, error) {
	if e.RequireReport && strings.TrimSpace(proof.Report) == "" {
		return Result{}, &apperr.MissingDataError{Field: "report"}
	}
	if e.RequirePhoto && strings.TrimSpace(proof.PhotoURL) == "" {
		return Result{}, &apperr.MissingDataError{Field: "photo_url"}
	}
	return Result{Status: models.StatusPending, Detail: "Awaiting operator review"}, nil
}
