// Package errors defines the application error taxonomy and central handling.
// Expected gameplay failures live in internal/economy; this package covers
// collaborator and infrastructure failures that may be fatal or retryable.
package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     msg,
		UserMessage: fmt.Sprintf("Invalid input. %s", msg),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

func NewDatabaseError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("Database error: %s", underlyingMsg),
		UserMessage: "Temporary problem, please try again later",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

func NewQueueError(cause error) *AppError {
	return &AppError{
		Code:        "E300",
		Message:     "Task queue error",
		UserMessage: "Service temporarily unavailable",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

func NewNotFoundError(what string) *AppError {
	return &AppError{
		Code:        "E404",
		Message:     fmt.Sprintf("%s not found", what),
		UserMessage: fmt.Sprintf("%s not found", what),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

func NewStateError(msg string) *AppError {
	return &AppError{
		Code:        "E400",
		Message:     msg,
		UserMessage: "This action is not available right now",
		Severity:    SeverityMedium,
		Retryable:   false,
		cause:       nil,
	}
}

func NewRateLimitError(retryAfter int) *AppError {
	return &AppError{
		Code:        "E500",
		Message:     fmt.Sprintf("Rate limit exceeded: retry after %d seconds", retryAfter),
		UserMessage: fmt.Sprintf("Too many taps! Try again in %d seconds", retryAfter),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}
