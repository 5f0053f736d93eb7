package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/prompt-optimizer/internal/types"
)

// ValidationError is returned when a prompt is rejected or a request is malformed. Message is
// safe to show to the user.
type ValidationError struct {
	Message string
	Issues  []string
	Cause   error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NotFoundError is returned when a record is missing or owned by another user,
// or, for a build, when no record for the prompt is awaiting one. Status is set when a record
// for the key exists but has already moved past questions_ready.
type NotFoundError struct {
	ID     uuid.UUID
	Key    *types.Key
	Status types.Status
}

func (e *NotFoundError) Error() string {
	if e.Key != nil {
		if e.Status != "" {
			return fmt.Sprintf("%s optimization for this prompt is %s, not awaiting build", e.Key.OptimizationType, e.Status)
		}
		return fmt.Sprintf("no %s optimization awaiting build for this prompt", e.Key.OptimizationType)
	}
	return fmt.Sprintf("optimization %s not found", e.ID)
}

// ErrNoPublisher is returned by Apply when no publishing collaborator is configured
var ErrNoPublisher = errors.New("publishing is not configured")

// requestError converts a request Validate error into a ValidationError
func requestError(err error) *ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Message: err.Error(), Cause: err}
	}
	issues := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, describeField(fe))
	}
	return &ValidationError{
		Message: "Invalid request: " + strings.Join(issues, "; "),
		Issues:  issues,
		Cause:   err,
	}
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
