package config

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when no candidate configuration file exists.
	ErrNotFound = errors.New("configuration file not found")
	// ErrParse is returned when the configuration file is not valid JSON.
	ErrParse = errors.New("invalid JSON in configuration")
	// ErrMissingFields is returned when required keys are absent.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidValue is returned when a present key holds a value of the
	// wrong JSON type.
	ErrInvalidValue = errors.New("invalid value in configuration")
)

// MissingFieldsError names every required field absent from the document.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return ErrMissingFields.Error() + ": " + strings.Join(e.Fields, ", ")
}

// Is reports ErrMissingFields as the error's class.
func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrMissingFields
}
