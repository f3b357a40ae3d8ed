// Package service defines the backend-agnostic interface for task and chat
// operations. Commands and the dashboard never talk HTTP directly.
package service

import (
	"context"
	"errors"
)

var (
	// ErrUnauthorized is returned when the backend rejects the stored token.
	// Stored credentials have already been cleared when this is returned.
	ErrUnauthorized = errors.New("session expired (run: taskpad login)")

	// ErrNotLoggedIn is returned when no usable credentials are stored.
	ErrNotLoggedIn = errors.New("not logged in (run: taskpad login)")

	// ErrNotFound is returned for missing tasks or conversations.
	ErrNotFound = errors.New("not found")
)

// StatusCode returns the HTTP status carried by err, or 0 when err did not
// come from a backend response.
func StatusCode(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}

// AuthService covers account endpoints. They do not need a token.
type AuthService interface {
	// Register creates an account and returns its access token.
	Register(ctx context.Context, creds Credentials) (AuthResult, error)

	// Login exchanges email and password for an access token.
	Login(ctx context.Context, creds Credentials) (AuthResult, error)
}

// TaskService covers the task endpoints.
type TaskService interface {
	// ListTasks returns every task of the current user in backend order.
	ListTasks(ctx context.Context) ([]Task, error)

	// GetTask returns one task.
	GetTask(ctx context.Context, id int) (Task, error)

	// CreateTask creates a task and returns it as stored.
	CreateTask(ctx context.Context, req CreateTaskRequest) (Task, error)

	// UpdateTask changes title and/or description.
	UpdateTask(ctx context.Context, id int, req UpdateTaskRequest) (Task, error)

	// ToggleTask flips the completion flag and returns the updated task.
	ToggleTask(ctx context.Context, id int) (Task, error)

	// DeleteTask removes a task.
	DeleteTask(ctx context.Context, id int) error
}

// ChatService covers the assistant and conversation endpoints.
type ChatService interface {
	// SendMessage posts a user message and returns the assistant reply.
	SendMessage(ctx context.Context, req ChatRequest) (ChatResponse, error)

	// ListConversations returns the user's conversations.
	ListConversations(ctx context.Context) (ConversationList, error)

	// GetConversation returns a conversation with its messages.
	GetConversation(ctx context.Context, id int) (ConversationHistory, error)

	// DeleteConversation removes a conversation and its messages.
	DeleteConversation(ctx context.Context, id int) error

	// RenameConversation sets a conversation title.
	RenameConversation(ctx context.Context, id int, title string) (Conversation, error)

	// ChatHealth reports assistant availability.
	ChatHealth(ctx context.Context) (Health, error)
}

// Service is the full backend surface.
type Service interface {
	AuthService
	TaskService
	ChatService
}
