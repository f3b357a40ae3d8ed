package tui

import (
	"taskpad/internal/chat"
	"taskpad/internal/service"
)

// Screen is the active top-level screen.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenDashboard
)

// String returns the display name for a screen.
func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "Login"
	case ScreenRegister:
		return "Register"
	case ScreenDashboard:
		return "Dashboard"
	default:
		return "Unknown"
	}
}

// Messages for inter-component communication

// AuthDoneMsg carries the outcome of a login or register call.
type AuthDoneMsg struct {
	Result service.AuthResult
	Email  string
	Err    error
}

// TasksLoadedMsg contains the full task list.
type TasksLoadedMsg struct {
	Tasks []service.Task
	Err   error
}

// TaskCreatedMsg indicates a task was created.
type TaskCreatedMsg struct {
	Task service.Task
	Err  error
}

// TaskUpdatedMsg indicates a task was edited or toggled.
type TaskUpdatedMsg struct {
	Task service.Task
	Err  error
}

// TaskDeletedMsg indicates a task was deleted.
type TaskDeletedMsg struct {
	TaskID int
	Err    error
}

// ChatReplyMsg carries the outcome of a chat send.
type ChatReplyMsg struct {
	Pending  chat.Pending
	Response service.ChatResponse
	Err      error
}

// ConversationLoadedMsg reports that a stored conversation was loaded into
// the chat session.
type ConversationLoadedMsg struct {
	ID  int
	Err error
}
