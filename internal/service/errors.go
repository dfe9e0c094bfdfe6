package service

import (
	"errors"
	"fmt"
)

// ErrEmptyIngredients is returned when a request has nothing to cook with.
var ErrEmptyIngredients = errors.New("ingredients are required")

// UpstreamError wraps a failed call to the generative model: network,
// quota, safety block or timeout.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("model call failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ParseError means the model answered, but not with a usable recipe.
// Raw keeps the untouched model output for logging.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid recipe from model: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
