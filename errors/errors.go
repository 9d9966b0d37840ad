/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches lookups of a registration, search document or
	// patron that is not stored.
	ErrNotFound = errors.New("item not found")

	// ErrAlreadyExists matches a registration or search document written
	// under a key that is already taken, such as a second sign-up with the
	// same e-mail hash.
	ErrAlreadyExists = errors.New("item already exists")

	// ErrInvalidInput matches a rejected registration form or a
	// configuration value that fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed matches a conditional write whose precondition no
	// longer holds, such as marking a card retrieved twice.
	ErrConditionFailed = errors.New("condition check failed")

	// ErrNoIndexMap matches a store asked to write a type that never
	// registered its key templates.
	ErrNoIndexMap = errors.New("no index map registered for type")

	// ErrMalformedInput matches raw record input that does not fit the
	// shape declared for a field.
	ErrMalformedInput = errors.New("malformed record input")
)

// NotFoundError names the stored type and key that a lookup missed.
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError names the stored type and the key a create collided on.
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError reports the form or config field that was rejected. An
// empty Field means the input as a whole was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConditionFailedError reports a store operation refused by its condition
// expression.
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// MalformedInputError reports raw input that cannot be coerced into the
// shape declared for a record field. Type is the record type name.
type MalformedInputError struct {
	Type   string
	Field  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input for %s.%s: %s", e.Type, e.Field, e.Reason)
}

func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

func NewNotFoundError(itemType, key string) error {
	return &NotFoundError{Type: itemType, Key: key}
}

func NewAlreadyExistsError(itemType, key string) error {
	return &AlreadyExistsError{Type: itemType, Key: key}
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

func NewMalformedInputError(recordType, field, reason string) error {
	return &MalformedInputError{Type: recordType, Field: field, Reason: reason}
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err is or wraps an AlreadyExistsError.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed reports whether err is or wraps a ConditionFailedError.
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// IsMalformedInput reports whether err is or wraps a MalformedInputError.
func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}
