// Package domain provides the core types and canonical error taxonomy for
// the rewrite pipeline.
package domain

import (
	"fmt"
	"net/http"
)

// ErrorType represents the category of a pipeline error.
type ErrorType string

const (
	// ErrorTypeValidation indicates missing or malformed caller input.
	ErrorTypeValidation ErrorType = "validation"

	// ErrorTypeInsufficientCredits indicates the credit precondition failed.
	ErrorTypeInsufficientCredits ErrorType = "insufficient_credits"

	// ErrorTypeGeneration indicates the variation stage could not produce
	// all three outputs.
	ErrorTypeGeneration ErrorType = "generation_failed"

	// ErrorTypeServer indicates an internal failure.
	ErrorTypeServer ErrorType = "server"
)

// PipelineError is the caller-visible error for a failed run. It carries a
// category and message only; upstream transport details never cross this
// boundary.
type PipelineError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`

	// Param is the input field that caused a validation error, if any.
	Param string `json:"param,omitempty"`
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s (%s): %s", e.Type, e.Param, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// HTTPStatusCode returns the HTTP status the error maps to.
func (e *PipelineError) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeInsufficientCredits:
		return http.StatusPaymentRequired
	case ErrorTypeGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithParam attaches the offending input field name.
func (e *PipelineError) WithParam(param string) *PipelineError {
	e.Param = param
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(message string) *PipelineError {
	return &PipelineError{Type: ErrorTypeValidation, Message: message}
}

// ErrInsufficientCredits creates an insufficient-credits error.
func ErrInsufficientCredits(message string) *PipelineError {
	return &PipelineError{Type: ErrorTypeInsufficientCredits, Message: message}
}

// ErrGeneration creates a generation-failed error.
func ErrGeneration(message string) *PipelineError {
	return &PipelineError{Type: ErrorTypeGeneration, Message: message}
}

// ErrServer creates an internal server error.
func ErrServer(message string) *PipelineError {
	return &PipelineError{Type: ErrorTypeServer, Message: message}
}
