package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input rejected before any state was touched.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a reference to a personnel id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCorruptState marks a stored snapshot that does not match the entity schemas.
	ErrCorruptState = errors.New("corrupt state")
)

// Field names reported by ValidationError. They match the persisted document keys.
const (
	FieldID           = "id"
	FieldName         = "nome"
	FieldRegistration = "matr"
	FieldRank         = "grad"
	FieldRole         = "role"
	FieldVacation     = "saldoFerias"
	FieldSpecialLeave = "saldoAbono"
	FieldPersonnelID  = "personnel_id"
	FieldLeaveType    = "type"
	FieldStartDate    = "startDate"
	FieldEndDate      = "endDate"
	FieldCreatedAt    = "createdAt"
)

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError reports a missing entity of the given kind.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// CorruptStateError wraps the decode or schema failure found while loading a snapshot.
type CorruptStateError struct {
	Source string
	Err    error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt state in %s: %v", e.Source, e.Err)
}

func (e *CorruptStateError) Unwrap() []error {
	return []error{ErrCorruptState, e.Err}
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsCorruptState(err error) bool {
	return errors.Is(err, ErrCorruptState)
}
