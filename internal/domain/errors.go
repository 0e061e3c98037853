package domain

import (
	"errors"
	"fmt"
)

// Category sentinels. Wrap these with NewDomainError or WrapOp to add context.
var (
	ErrNotFound      = fmt.Errorf("not found")
	ErrDuplicate     = fmt.Errorf("duplicate")
	ErrTimeout       = fmt.Errorf("operation timed out")
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrRateLimited   = fmt.Errorf("rate limit exceeded")
	ErrEngineFailure = fmt.Errorf("engine failure")
)

// Sentinel errors for the domain layer.
var (
	ErrToolNotFound  = fmt.Errorf("tool not found")
	ErrEngineFailing = fmt.Errorf("engine marked failing")
	ErrConfigLoad    = fmt.Errorf("failed to load configuration")
	ErrAuthInvalid   = fmt.Errorf("authentication failed")
	ErrEmptyQuery    = fmt.Errorf("empty query: %w", ErrInvalidInput)
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Client.Resolve")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsRetryableError reports whether err is a transient error that may succeed on retry.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrEngineFailure)
}

// ErrorCode is a machine-parseable error category for monitoring and alerting.
type ErrorCode string

const (
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeDuplicate     ErrorCode = "DUPLICATE"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeInvalidInput  ErrorCode = "INVALID_INPUT"
	CodeRateLimited   ErrorCode = "RATE_LIMITED"
	CodeEngineFailure ErrorCode = "ENGINE_FAILURE"
	CodeEngineFailing ErrorCode = "ENGINE_FAILING"
	CodeToolNotFound  ErrorCode = "TOOL_NOT_FOUND"
	CodeConfigLoad    ErrorCode = "CONFIG_LOAD"
	CodeAuthInvalid   ErrorCode = "AUTH_INVALID"
)

// errorCodes maps sentinel errors to their machine-parseable codes.
// Order matters for ErrorCodeOf's chain walk: more specific sentinels first.
var errorCodes = []struct {
	sentinel error
	code     ErrorCode
}{
	{ErrToolNotFound, CodeToolNotFound},
	{ErrEngineFailing, CodeEngineFailing},
	{ErrConfigLoad, CodeConfigLoad},
	{ErrAuthInvalid, CodeAuthInvalid},
	{ErrNotFound, CodeNotFound},
	{ErrDuplicate, CodeDuplicate},
	{ErrTimeout, CodeTimeout},
	{ErrInvalidInput, CodeInvalidInput},
	{ErrRateLimited, CodeRateLimited},
	{ErrEngineFailure, CodeEngineFailure},
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// It walks the error chain with errors.Is, so wrapped sentinels resolve.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.sentinel) {
			return ec.code
		}
	}
	return CodeUnknown
}

// Code returns the ErrorCode for this DomainError's underlying sentinel.
func (e *DomainError) Code() ErrorCode {
	return ErrorCodeOf(e.Err)
}
