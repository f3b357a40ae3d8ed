// Package chat drives a conversation with the task assistant.
//
// A send appends the user's message locally before the request goes out.
// On failure exactly that message is removed and an inline error is kept; on
// success the assistant reply is appended and, when the assistant used any
// tool, the caller is told to refetch the task list.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"taskpad/internal/logging"
	"taskpad/internal/service"
	"taskpad/internal/tasks"
)

var (
	// ErrBusy is returned when a send is already in flight.
	ErrBusy = errors.New("a message is already being sent")

	// ErrRateLimited is returned by Begin when sends come too fast.
	ErrRateLimited = errors.New("sending too fast, wait a moment")
)

// Default send throttle.
const (
	DefaultInterval = 2 * time.Second
	DefaultBurst    = 3
)

// Message is one transcript entry. Key is unique within a session; ID is
// the server id and stays 0 until the server has acknowledged the message.
type Message struct {
	Key       string
	ID        int
	Role      string
	Content   string
	ToolCalls []service.ToolCall
	CreatedAt time.Time
	Pending   bool
}

// Pending identifies an optimistic send between Begin and Complete.
type Pending struct {
	Key     string
	Request service.ChatRequest
	gen     int
}

// Session holds one conversation transcript.
type Session struct {
	mu       sync.Mutex
	svc      service.ChatService
	limiter  *rate.Limiter
	onTools  func(ctx context.Context)
	now      func() time.Time
	convID   int
	messages []Message
	errText  string
	sending  bool
	gen      int
}

// Option configures a Session.
type Option func(*Session)

// WithLimiter replaces the default send throttle.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Session) { s.limiter = l }
}

// WithTasksChanged registers the callback Send runs after the assistant used
// a tool. It should refetch the whole task list.
func WithTasksChanged(fn func(ctx context.Context)) Option {
	return func(s *Session) { s.onTools = fn }
}

// WithConversation continues an existing conversation.
func WithConversation(id int) Option {
	return func(s *Session) { s.convID = id }
}

// NewSession creates an empty session.
func NewSession(svc service.ChatService, opts ...Option) *Session {
	s := &Session{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Every(DefaultInterval), DefaultBurst),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send validates text, appends it optimistically, posts it and applies the
// outcome. It blocks on the throttle rather than failing.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	if err := tasks.ValidateChatMessage(text); err != nil {
		return Message{}, err
	}
	if s.Sending() {
		return Message{}, ErrBusy
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return Message{}, err
	}

	p, err := s.begin(text, false)
	if err != nil {
		return Message{}, err
	}

	resp, err := s.svc.SendMessage(ctx, p.Request)
	reply, toolsUsed, err := s.Complete(p, resp, err)
	if err != nil {
		return Message{}, err
	}
	if toolsUsed && s.onTools != nil {
		s.onTools(ctx)
	}
	return reply, nil
}

// Begin validates text and appends the optimistic user message. The caller
// must post p.Request and hand the outcome to Complete. Begin never blocks;
// it returns ErrRateLimited when the throttle has no tokens.
func (s *Session) Begin(text string) (Pending, error) {
	if err := tasks.ValidateChatMessage(text); err != nil {
		return Pending{}, err
	}
	return s.begin(text, true)
}

func (s *Session) begin(text string, throttle bool) (Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sending {
		return Pending{}, ErrBusy
	}
	if throttle && !s.limiter.Allow() {
		return Pending{}, ErrRateLimited
	}

	text = strings.TrimSpace(text)
	key := uuid.NewString()
	s.messages = append(s.messages, Message{
		Key:       key,
		Role:      service.RoleUser,
		Content:   text,
		CreatedAt: s.now(),
		Pending:   true,
	})
	s.sending = true
	s.errText = ""

	req := service.ChatRequest{Message: text}
	if s.convID != 0 {
		id := s.convID
		req.ConversationID = &id
	}
	return Pending{Key: key, Request: req, gen: s.gen}, nil
}

// Complete applies the result of the request started by Begin. On error only
// the optimistic message is removed. It reports whether the assistant used
// any tool. Results for a conversation that was reset meanwhile are dropped.
func (s *Session) Complete(p Pending, resp service.ChatResponse, sendErr error) (Message, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.gen != s.gen {
		logging.Logger().Debug("dropping chat response for reset conversation", "key", p.Key)
		return Message{}, false, sendErr
	}
	s.sending = false

	if sendErr != nil {
		s.removeLocked(p.Key)
		s.errText = sendErr.Error()
		return Message{}, false, sendErr
	}

	for i := range s.messages {
		if s.messages[i].Key == p.Key {
			s.messages[i].Pending = false
		}
	}
	s.convID = resp.ConversationID

	reply := Message{
		Key:       uuid.NewString(),
		ID:        resp.MessageID,
		Role:      service.RoleAssistant,
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
		CreatedAt: s.now(),
	}
	s.messages = append(s.messages, reply)
	s.errText = ""
	return reply, len(resp.ToolCalls) > 0, nil
}

func (s *Session) removeLocked(key string) {
	for i := range s.messages {
		if s.messages[i].Key == key {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return
		}
	}
}

// NewConversation clears the transcript, conversation id and error.
func (s *Session) NewConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.convID = 0
	s.errText = ""
	s.sending = false
	s.gen++
}

// Load replaces the transcript with the stored history of conversation id.
func (s *Session) Load(ctx context.Context, id int) error {
	history, err := s.svc.GetConversation(ctx, id)
	if err != nil {
		return err
	}

	msgs := make([]Message, 0, len(history.Messages))
	for _, m := range history.Messages {
		msgs = append(msgs, Message{
			Key:       uuid.NewString(),
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			ToolCalls: m.ToolCalls,
			CreatedAt: m.CreatedAt.Time,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.messages = msgs
	s.convID = history.ConversationID
	if s.convID == 0 {
		s.convID = id
	}
	s.errText = ""
	s.sending = false
	return nil
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// ConversationID returns the server conversation id, or 0 before the first
// reply.
func (s *Session) ConversationID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convID
}

// Err returns the inline error of the last failed send.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errText
}

// Sending reports whether a send is in flight.
func (s *Session) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// ToolSummary renders a tool call for display: underscores become spaces,
// then a check mark on success or the error text in parentheses.
func ToolSummary(tc service.ToolCall) string {
	var b strings.Builder
	b.WriteString(strings.ReplaceAll(tc.Name, "_", " "))
	if tc.Succeeded() {
		b.WriteString(" ✓")
	} else if e := tc.Error(); e != "" {
		b.WriteString(" (" + e + ")")
	}
	return b.String()
}
