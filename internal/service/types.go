package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Timestamp accepts the backend's ISO-8601 datetimes, which may or may not
// carry a zone offset. Values without one are UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Task represents a single task item.
type Task struct {
	ID          int       `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// CreateTaskRequest is the body of POST /tasks/.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// UpdateTaskRequest is the body of PUT /tasks/{id}. Nil fields are left
// unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Credentials is the body of POST /auth/login and /auth/register.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by login and register.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
}

// ToolCall records one tool the assistant invoked while answering.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	Result    map[string]any `json:"result"`
}

// Succeeded reports whether the result carries success=true.
func (tc ToolCall) Succeeded() bool {
	ok, _ := tc.Result["success"].(bool)
	return ok
}

// Error returns the result's error string, if any.
func (tc ToolCall) Error() string {
	s, _ := tc.Result["error"].(string)
	return s
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID *int   `json:"conversation_id,omitempty"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	ConversationID int        `json:"conversation_id"`
	MessageID      int        `json:"message_id"`
	Content        string     `json:"content"`
	ToolCalls      []ToolCall `json:"tool_calls,omitempty"`
}

// Conversation is a chat thread summary.
type Conversation struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    Timestamp `json:"created_at"`
	UpdatedAt    Timestamp `json:"updated_at"`
	MessageCount *int      `json:"message_count,omitempty"`
}

// ConversationList is the body of GET /api/conversations.
type ConversationList struct {
	Conversations []Conversation `json:"conversations"`
	Total         int            `json:"total"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a stored conversation.
type Message struct {
	ID        int        `json:"id"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	CreatedAt Timestamp  `json:"created_at"`
}

// ConversationHistory is the body of GET /api/conversations/{id}.
type ConversationHistory struct {
	ConversationID int       `json:"conversation_id"`
	Title          string    `json:"title"`
	Messages       []Message `json:"messages"`
	Total          int       `json:"total"`
}

// Health is the body of GET /api/chat/health.
type Health struct {
	Status           string `json:"status"`
	GeminiConfigured bool   `json:"gemini_configured"`
	OpenAIConfigured bool   `json:"openai_configured"`
	Model            string `json:"model"`
}
