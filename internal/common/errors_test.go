package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_JoinsProblems(t *testing.T) {
	err := &ValidationError{Problems: []string{
		"description must be at least 10 characters",
		"a photo is required",
	}}

	assert.Equal(t, "description must be at least 10 characters, a photo is required", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmissionError_PrefersServerMessage(t *testing.T) {
	withMsg := &SubmissionError{Message: "description is required", StatusCode: 400}
	assert.Equal(t, "description is required", withMsg.Error())

	withoutMsg := &SubmissionError{StatusCode: 500}
	assert.Equal(t, "submission rejected (HTTP 500)", withoutMsg.Error())
	assert.ErrorIs(t, withoutMsg, ErrSubmission)
}

func TestSentinels_SurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading stories: %w", ErrOffline)
	assert.ErrorIs(t, wrapped, ErrOffline)
	assert.False(t, errors.Is(wrapped, ErrStorage))
}
