package app

import (
	"fmt"
	"net/http"
	"strings"
)

// DomainError is an error the HTTP and form layers render as-is.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{Status: status, Code: code, Message: message, Details: details}
}

var errUnauthorized = domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Sign in first", nil)

// required trims value and rejects it when nothing is left.
func required(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", field+" is required",
			map[string]any{"field": field})
	}
	return trimmed, nil
}
