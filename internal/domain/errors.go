package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeSchema       = "SCHEMA_ERROR"
	ErrCodeInvalidQuery = "INVALID_QUERY"
	ErrCodeEmptyKB      = "EMPTY_KNOWLEDGE_BASE"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// Knowledge base load errors. Schema errors are fatal at startup: the router
// cannot serve without at least the general tier present.
var (
	ErrMissingQuestionColumn = NewDomainError(ErrCodeSchema, "knowledge base source must contain a 'Question' column")
	ErrMissingAnswerColumn   = NewDomainError(ErrCodeSchema, "knowledge base source must contain an 'Answer' column")
	ErrEmptyQuestion         = NewDomainError(ErrCodeSchema, "knowledge base entry has empty question text")
	ErrEmptyKnowledgeBase    = NewDomainError(ErrCodeEmptyKB, "knowledge base has no entries")
)

// Per-query errors. These are recoverable: the resolver boundary downgrades
// them to a no-match outcome instead of failing the request.
var (
	ErrInvalidQuery = NewDomainError(ErrCodeInvalidQuery, "query must be non-empty text")
	ErrUnknownTier  = NewDomainError(ErrCodeValidation, "unknown knowledge tier")
)

// Authorization errors
var (
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)
