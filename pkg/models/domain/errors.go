package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrMissingField      = errors.New("missing required field")
	ErrSourceUnavailable = errors.New("problem source unavailable")
	ErrPersistFailure    = errors.New("failed to persist report")
)

type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// SourceError carries a non-success response (StatusCode > 0) or a transport failure.
type SourceError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *SourceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("Failed to fetch data. Status code: %d, Response: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: %v", ErrSourceUnavailable, e.Err)
}

func (e *SourceError) Is(target error) bool { return target == ErrSourceUnavailable }

func (e *SourceError) Unwrap() error { return e.Err }

type PersistError struct {
	Destination string
	Err         error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s to %s: %v", ErrPersistFailure, e.Destination, e.Err)
}

func (e *PersistError) Is(target error) bool { return target == ErrPersistFailure }

func (e *PersistError) Unwrap() error { return e.Err }

// Message turns any pipeline error into the single line shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var srcErr *SourceError
	if errors.As(err, &srcErr) && srcErr.StatusCode > 0 {
		return srcErr.Error()
	}
	return fmt.Sprintf("An error occurred: %v", err)
}
