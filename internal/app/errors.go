package app

import "fmt"

// ErrorType is the coarse classification carried on every error response.
type ErrorType string

const (
	ErrorTypeBadRequest  ErrorType = "bad_request"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
)

type DomainError struct {
	Status  int
	Type    ErrorType
	Message string
	// Slug is echoed on not-found responses so the client can show what
	// it asked for.
	Slug string
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func domainError(status int, errorType ErrorType, message string) *DomainError {
	return &DomainError{
		Status:  status,
		Type:    errorType,
		Message: message,
	}
}

func notFoundError(message, slug string) *DomainError {
	return &DomainError{
		Status:  404,
		Type:    ErrorTypeNotFound,
		Message: message,
		Slug:    slug,
	}
}
