// Package verification adjudicates submitted proof. It is pure: evaluators
// only look at the task criteria and the proof, and never touch storage.
package verification

import (
	"github.com/arnold/civic-tasks-api/internal/apperr"
	"github.com/arnold/civic-tasks-api/internal/models"
)

type Result struct {
	Status models.AssignmentStatus `json:"status"`
	Detail string                  `json:"detail"`
}

type Evaluator interface {
	Evaluate(criteria models.VerificationCriteria, proof models.Proof) (Result, error)
}

// Dispatcher routes a proof to the evaluator registered for the task's
// verification method.
type Dispatcher struct {
	evaluators map[models.VerificationMethod]Evaluator
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		evaluators: map[models.VerificationMethod]Evaluator{
			models.VerificationGPS:          GPSEvaluator{},
			models.VerificationQuiz:         QuizEvaluator{},
			models.VerificationManualReport: ManualEvaluator{RequireReport: true},
			models.VerificationPhoto:        ManualEvaluator{RequirePhoto: true},
		},
	}
}

// Supports reports whether a method has an evaluator.
func (d *Dispatcher) Supports(method models.VerificationMethod) bool {
	_, ok := d.evaluators[method]
	return ok
}

func (d *Dispatcher) Verify(task *models.Task, proof models.Proof) (Result, error) {
	ev, ok := d.evaluators[task.VerificationMethod]
	if !ok {
		return Result{}, apperr.Validation("Unsupported verification method: %s", task.VerificationMethod)
	}
	return ev.Evaluate(task.Criteria(), proof)
}
