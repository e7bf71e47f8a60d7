// Package apperr holds the errors the core returns to callers and their
// mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"math"

	"github.com/gofiber/fiber/v2"
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// MissingDataError means the proof or the task criteria lack a value the
// verification method needs.
type MissingDataError struct {
	Field string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("Missing verification data: %s", e.Field)
}

type DistanceExceededError struct {
	Distance float64
	Limit    float64
}

func (e *DistanceExceededError) Error() string {
	return fmt.Sprintf("Distance %dm exceeds the allowed %dm",
		int(math.Round(e.Distance)), int(math.Round(e.Limit)))
}

type AssignmentNotFoundError struct {
	UserID string
	TaskID string
}

func (e *AssignmentNotFoundError) Error() string {
	return fmt.Sprintf("No active assignment for task %s", e.TaskID)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// HTTPStatus maps an error returned by the core onto a status code.
// Anything unclassified is a 500.
func HTTPStatus(err error) int {
	var (
		validation *ValidationError
		missing    *MissingDataError
		distance   *DistanceExceededError
		assignment *AssignmentNotFoundError
		notFound   *NotFoundError
		forbidden  *ForbiddenError
	)
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.As(err, &validation),
		errors.As(err, &missing),
		errors.As(err, &distance),
		errors.As(err, &assignment):
		return fiber.StatusBadRequest
	case errors.As(err, &notFound):
		return fiber.StatusNotFound
	case errors.As(err, &forbidden):
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}
