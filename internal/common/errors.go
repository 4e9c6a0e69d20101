// Package common defines shared constants and sentinel errors used across
// storypin components. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOffline means the connectivity probe could not reach the story API.
	ErrOffline = errors.New("no network connection, check your connection")

	// ErrAuthRequired means a protected operation was attempted without a session.
	ErrAuthRequired = errors.New("authentication required")

	// HTTP status mapping for protected reads.
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// ErrEmptyResult means a read succeeded but yielded zero usable records
	// where at least one was expected.
	ErrEmptyResult = errors.New("no stories available")

	// ErrStorage marks local persistence failures. These are non-fatal: readers
	// degrade to empty results instead of propagating the failure.
	ErrStorage = errors.New("local storage failure")

	// ErrValidation and ErrSubmission are the sentinels behind ValidationError
	// and SubmissionError.
	ErrValidation = errors.New("validation failed")
	ErrSubmission = errors.New("submission rejected")
)

// ValidationError carries every client-side input problem found in one pass.
// Problems are collected, not short-circuited.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// SubmissionError is a server-side rejection of a write, carrying the server
// message when the response envelope had one.
type SubmissionError struct {
	Message    string
	StatusCode int
}

func (e *SubmissionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("submission rejected (HTTP %d)", e.StatusCode)
}

func (e *SubmissionError) Unwrap() error { return ErrSubmission }
