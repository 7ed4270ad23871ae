package domain

import "errors"

// Error kinds surfaced to callers. Operations wrap one of these with %w.
var (
	// ErrBadRequest marks missing or malformed input.
	ErrBadRequest = errors.New("bad request")
	// ErrNotFound marks an empty result, an absent record or an exhausted quiz pool.
	ErrNotFound = errors.New("resource not found")
	// ErrUnprocessable marks a well-formed request the store refused to persist.
	ErrUnprocessable = errors.New("unprocessable")
)

var (
	// ErrQuestionNotFound is returned by stores when no question has the requested id.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrCategoryNotFound is returned by category repositories for unknown ids.
	ErrCategoryNotFound = errors.New("category not found")
)
