// Package tasks holds the client-side task rules: input validation, the
// rendered list state, filtering, sorting and stats.
package tasks

import (
	"strings"
	"unicode/utf8"
)

// Field limits enforced before any request is sent.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MinPasswordLength    = 8
	MaxChatMessageLength = 4000
)

// ValidationError is a client-side rejection. No request was issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// ValidateTitle checks a task title. Whitespace-only titles are rejected.
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return invalid("title", "Title is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxTitleLength {
		return invalid("title", "Title must be 200 characters or less")
	}
	return nil
}

// ValidateDescription checks an optional description.
func ValidateDescription(desc string) error {
	if utf8.RuneCountInString(strings.TrimSpace(desc)) > MaxDescriptionLength {
		return invalid("description", "Description must be 1000 characters or less")
	}
	return nil
}

// ValidateEmail does the minimal shape check a login form needs.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email", "Email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return invalid("email", "Please enter a valid email address")
	}
	return nil
}

// ValidatePassword checks password length.
func ValidatePassword(password string) error {
	if password == "" {
		return invalid("password", "Password is required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return invalid("password", "Password must be at least 8 characters")
	}
	return nil
}

// ValidateChatMessage checks an assistant message.
func ValidateChatMessage(msg string) error {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		return invalid("message", "Message is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxChatMessageLength {
		return invalid("message", "Message must be 4000 characters or less")
	}
	return nil
}
