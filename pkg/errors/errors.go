package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeCharacter represents character store errors
	ErrorTypeCharacter ErrorType = "character"
	// ErrorTypeNormalize represents ingestion normalization errors
	ErrorTypeNormalize ErrorType = "normalize"
	// ErrorTypeLLM represents language-model errors
	ErrorTypeLLM ErrorType = "llm"
	// ErrorTypeScheduler represents background refresh errors
	ErrorTypeScheduler ErrorType = "scheduler"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Character Errors

// ErrCharacterNotFound is returned when a character cannot be resolved by
// id or by name. Ref carries the identifier the caller used; Side names
// which side of a pairwise query failed ("a" or "b") when applicable.
type ErrCharacterNotFound struct {
	*BaseError
	Ref  string
	Side string
}

func NewCharacterNotFound(ref string) *ErrCharacterNotFound {
	return &ErrCharacterNotFound{
		BaseError: NewBaseError(ErrorTypeCharacter, fmt.Sprintf("character not found: %s", ref), nil),
		Ref:       ref,
	}
}

func NewCharacterNotFoundSide(ref, side string) *ErrCharacterNotFound {
	return &ErrCharacterNotFound{
		BaseError: NewBaseError(ErrorTypeCharacter, fmt.Sprintf("character not found (%s): %s", side, ref), nil),
		Ref:       ref,
		Side:      side,
	}
}

// ErrCharacterInvalidRole is returned when a conversation entry carries an
// unknown role
type ErrCharacterInvalidRole struct {
	*BaseError
	Role string
}

func NewCharacterInvalidRole(role string) *ErrCharacterInvalidRole {
	return &ErrCharacterInvalidRole{
		BaseError: NewBaseError(ErrorTypeCharacter, fmt.Sprintf("invalid conversation role: %s", role), nil),
		Role:      role,
	}
}

// LLM Errors

// ErrLLMFailed is returned when an LLM request fails after retries
type ErrLLMFailed struct {
	*BaseError
	Model    string
	Attempts int
}

func NewLLMFailed(model string, attempts int, err error) *ErrLLMFailed {
	return &ErrLLMFailed{
		BaseError: NewBaseError(ErrorTypeLLM, fmt.Sprintf("LLM request failed after %d attempts", attempts), err),
		Model:     model,
		Attempts:  attempts,
	}
}

// ErrLLMNoResponse is returned when the LLM returns no choices
var ErrLLMNoResponse = NewBaseError(ErrorTypeLLM, "no response from LLM", nil)

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if baseErr, ok := err.(*BaseError); ok {
		return baseErr.Type == errType
	}
	if wrapped, ok := err.(interface{ Unwrap() error }); ok {
		if inner := wrapped.Unwrap(); inner != nil {
			return IsErrorType(inner, errType)
		}
	}
	return false
}

// IsNotFound reports whether err is a character-not-found error anywhere in
// its chain
func IsNotFound(err error) bool {
	for err != nil {
		if _, ok := err.(*ErrCharacterNotFound); ok {
			return true
		}
		wrapped, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = wrapped.Unwrap()
	}
	return false
}
