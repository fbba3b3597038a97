package serrors

import (
	"errors"
	"fmt"
)

// BaseError is a coded error. Services return these so callers can branch on
// Code without string-matching messages.
type BaseError struct {
	Code    string
	Message string
}

func (e *BaseError) Error() string {
	return e.Message
}

// Is matches any BaseError carrying the same code, so
// errors.Is(err, serrors.NewError("TASK_NOT_FOUND", ...)) works across values.
func (e *BaseError) Is(target error) bool {
	var other *BaseError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

func NewError(code, message string) *BaseError {
	return &BaseError{Code: code, Message: message}
}

// NotFoundError: a referenced entity does not exist.
type NotFoundError struct {
	BaseError
	Entity string
	ID     uint
}

func NewNotFoundError(entity string, id uint) *NotFoundError {
	return &NotFoundError{
		BaseError: BaseError{
			Code:    "NOT_FOUND",
			Message: fmt.Sprintf("%s %d not found", entity, id),
		},
		Entity: entity,
		ID:     id,
	}
}

// ForbiddenError: an authorization decision denied the operation. Carries the
// category/level triple that failed so the caller can surface it verbatim.
type ForbiddenError struct {
	BaseError
	Category    string
	MinLevel    int
	ActualLevel int
}

func NewForbiddenError(category string, minLevel, actualLevel int) *ForbiddenError {
	return &ForbiddenError{
		BaseError: BaseError{
			Code:    "FORBIDDEN",
			Message: fmt.Sprintf("requires %s level %d, actor has %d", category, minLevel, actualLevel),
		},
		Category:    category,
		MinLevel:    minLevel,
		ActualLevel: actualLevel,
	}
}

// NewScopeError is the department-scope variant of Forbidden: the actor holds
// the level but the target department is outside their reach.
func NewScopeError(departmentID uint) *ForbiddenError {
	return &ForbiddenError{
		BaseError: BaseError{
			Code:    "FORBIDDEN",
			Message: fmt.Sprintf("department %d is outside the actor's scope", departmentID),
		},
	}
}

// InvalidTransitionError: a task status change not permitted for the caller's
// level/relationship, or blocked by the temporal guard.
type InvalidTransitionError struct {
	BaseError
	From string
	To   string
}

func NewInvalidTransitionError(from, to, reason string) *InvalidTransitionError {
	return &InvalidTransitionError{
		BaseError: BaseError{
			Code:    "INVALID_TRANSITION",
			Message: fmt.Sprintf("cannot move task from %q to %q: %s", from, to, reason),
		},
		From: from,
		To:   to,
	}
}

// ConstraintViolationError: the mutation would break a structural invariant
// (cyclic department parent, assignee outside department, and so on). Details
// carries enough context for the caller to correct the input.
type ConstraintViolationError struct {
	BaseError
	Constraint string
	Details    map[string]any
}

func NewConstraintViolationError(constraint, message string, details map[string]any) *ConstraintViolationError {
	return &ConstraintViolationError{
		BaseError: BaseError{
			Code:    "CONSTRAINT_VIOLATION",
			Message: message,
		},
		Constraint: constraint,
		Details:    details,
	}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}

func IsInvalidTransition(err error) bool {
	var te *InvalidTransitionError
	return errors.As(err, &te)
}

func IsConstraintViolation(err error) bool {
	var ce *ConstraintViolationError
	return errors.As(err, &ce)
}
