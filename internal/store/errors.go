package store

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError rejects bad input shape or enum values before any write.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// ReferentialIntegrityError reports a write that references a missing row.
type ReferentialIntegrityError struct {
	Message string
	Err     error
}

func (e ReferentialIntegrityError) Error() string {
	return e.Message
}

func (e ReferentialIntegrityError) Unwrap() error {
	return e.Err
}

// StorageError wraps any other persistence failure. This layer never retries;
// retry policy, if any, belongs to the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e StorageError) Unwrap() error {
	return e.Err
}

func errValidation(format string, args ...any) error {
	return ValidationError{Message: fmt.Sprintf(format, args...)}
}

// wrap classifies a driver error into the store taxonomy. Foreign key
// violations look different across pgx and the sqlite test driver, so both
// spellings are checked.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var validation ValidationError
	if errors.As(err, &validation) {
		return err
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "foreign key") || strings.Contains(msg, "sqlstate 23503") {
		return ReferentialIntegrityError{Message: op + ": referenced row does not exist", Err: err}
	}
	return StorageError{Op: op, Err: err}
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
