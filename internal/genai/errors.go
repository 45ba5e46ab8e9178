package genai

import (
	"errors"
	"fmt"
	"time"
)

// FailureClass categorizes an upstream failure for retry decisions.
type FailureClass string

const (
	// ClassRateLimited means the service returned 429; wait and retry.
	ClassRateLimited FailureClass = "rate_limited"

	// ClassTransient means a 5xx, network failure, or empty completion;
	// retry a few times with a short backoff.
	ClassTransient FailureClass = "transient"

	// ClassFatal means a non-429 4xx (bad request, bad credentials); no
	// retry budget is spent on these.
	ClassFatal FailureClass = "fatal"
)

// UpstreamError is the classified outcome of a failed generation attempt.
type UpstreamError struct {
	Class      FailureClass
	StatusCode int
	Message    string

	// RetryAfter is the server-provided wait hint for rate limiting.
	// Zero when the server sent none.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s (status %d): %s", e.Class, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream %s: %s", e.Class, e.Message)
}

// Retryable reports whether the retry controller may spend an attempt on
// this failure.
func (e *UpstreamError) Retryable() bool {
	return e.Class == ClassRateLimited || e.Class == ClassTransient
}

// ClassOf extracts the failure class from an error chain. Unclassified
// errors (programmer errors, context cancellation) report ClassFatal so
// callers stop immediately.
func ClassOf(err error) FailureClass {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Class
	}
	return ClassFatal
}
