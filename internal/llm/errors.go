package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorClass groups gateway failures by how callers should react
type ErrorClass string

const (
	ClassRateLimited  ErrorClass = "rate_limited"
	ClassUnauthorized ErrorClass = "unauthorized"
	ClassTransient    ErrorClass = "transient"
	ClassMalformed    ErrorClass = "malformed"
)

// UnavailableError is returned when no AI credential is configured
type UnavailableError struct {
	Message string
}

func (e *UnavailableError) Error() string {
	if e.Message == "" {
		return "AI service is not configured"
	}
	return e.Message
}

// RateLimitError is returned immediately, without retry, when the provider throttles us
type RateLimitError struct {
	Message string
	Cause   error
}

func (e *RateLimitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return e.Cause
}

// UnauthorizedError is returned immediately, without retry, on credential failures
type UnauthorizedError struct {
	Message string
	Cause   error
}

func (e *UnauthorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *UnauthorizedError) Unwrap() error {
	return e.Cause
}

// CallError is a transient failure that survived every retry attempt
type CallError struct {
	Message  string
	Attempts int
	Cause    error
}

func (e *CallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s after %d attempt(s): %v", e.Message, e.Attempts, e.Cause)
	}
	return fmt.Sprintf("%s after %d attempt(s)", e.Message, e.Attempts)
}

func (e *CallError) Unwrap() error {
	return e.Cause
}

// DecodeError means a response could not be turned into the expected structure. It is never
// retried.
type DecodeError struct {
	Message string
	Excerpt string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Classify maps a provider error to an error class
func Classify(err error) ErrorClass {
	if err == nil {
		return ""
	}

	var rl *RateLimitError
	if errors.As(err, &rl) {
		return ClassRateLimited
	}
	var ua *UnauthorizedError
	if errors.As(err, &ua) {
		return ClassUnauthorized
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return ClassMalformed
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return ClassRateLimited
		case http.StatusUnauthorized, http.StatusForbidden:
			return ClassUnauthorized
		}
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted:
			return ClassRateLimited
		case codes.Unauthenticated, codes.PermissionDenied:
			return ClassUnauthorized
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"), strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "quota"), strings.Contains(msg, "resource_exhausted"):
		return ClassRateLimited
	case strings.Contains(msg, "api key not valid"), strings.Contains(msg, "api_key_invalid"),
		strings.Contains(msg, "unauthenticated"), strings.Contains(msg, "permission_denied"):
		return ClassUnauthorized
	}
	return ClassTransient
}

// User-facing messages per error class
const (
	MsgUnavailable  = "AI service is currently unavailable. Please try again later."
	MsgRateLimited  = "The AI service is receiving too many requests. Please try again later."
	MsgUnauthorized = "The AI service rejected our credentials. Please check the configuration."
	MsgMalformed    = "AI response could not be parsed. Please try again."
	MsgTransient    = "The AI service failed to respond. Please try again."
	MsgCancelled    = "The request was cancelled."
)

// UserMessage returns the message shown to end users for a gateway error
func UserMessage(err error) string {
	var un *UnavailableError
	if errors.As(err, &un) {
		return MsgUnavailable
	}
	var ce *CallError
	if errors.As(err, &ce) {
		return MsgTransient
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return MsgCancelled
	}
	switch Classify(err) {
	case ClassRateLimited:
		return MsgRateLimited
	case ClassUnauthorized:
		return MsgUnauthorized
	case ClassMalformed:
		return MsgMalformed
	default:
		return MsgTransient
	}
}

// IsAIFailure reports whether err came from the AI gateway rather than the caller
func IsAIFailure(err error) bool {
	var (
		un *UnavailableError
		rl *RateLimitError
		ua *UnauthorizedError
		ce *CallError
		de *DecodeError
	)
	return errors.As(err, &un) || errors.As(err, &rl) || errors.As(err, &ua) ||
		errors.As(err, &ce) || errors.As(err, &de)
}
