/*
Package errors provides semantic error types for cardreg.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound        = errors.New("item not found")
	    ErrAlreadyExists   = errors.New("item already exists")
	    ErrInvalidInput    = errors.New("invalid input")
	    ErrConditionFailed = errors.New("condition check failed")
	    ErrNoIndexMap      = errors.New("no index map registered for type")
	    ErrMalformedInput  = errors.New("malformed record input")
	)

Usage:

	// A map-shaped record field only accepts mapping input
	err := patron.Set("fixedFields", "not a map")
	if errors.IsMalformedInput(err) {
	    // the field was left untouched
	}

	// A second registration with the same e-mail
	err = tracker.CheckEmail(ctx, "jane@example.org")
	if errors.IsAlreadyExists(err) {
	    return fmt.Errorf("e-mail already registered: %w", err)
	}

	// Create typed errors
	err := errors.NewNotFoundError("Registration", "123")
	err := errors.NewValidationError("email", "invalid format")
	err := errors.NewMalformedInputError("Patron", "fixedFields", "expected a mapping")

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
