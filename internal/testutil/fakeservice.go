// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"taskpad/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu            sync.RWMutex
	tasks         []service.Task
	nextID        int
	conversations []service.Conversation
	history       map[int][]service.Message
	chatReplies   []service.ChatResponse
	calls         map[string]int

	// LastChat is the most recent chat request.
	LastChat service.ChatRequest

	// LastCreate is the most recent create request.
	LastCreate service.CreateTaskRequest

	// LastUpdate is the most recent update request.
	LastUpdate service.UpdateTaskRequest

	// Error injection for testing
	LoginErr              error
	RegisterErr           error
	ListTasksErr          error
	GetTaskErr            error
	CreateTaskErr         error
	UpdateTaskErr         error
	ToggleTaskErr         error
	DeleteTaskErr         error
	SendMessageErr        error
	ListConversationsErr  error
	GetConversationErr    error
	DeleteConversationErr error
	RenameErr             error
	HealthErr             error

	// AuthResult is returned by Login and Register.
	AuthResult service.AuthResult

	// Health is returned by ChatHealth.
	Health service.Health
}

var _ service.Service = (*FakeService)(nil)

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID:  1,
		history: make(map[int][]service.Message),
		calls:   make(map[string]int),
		AuthResult: service.AuthResult{
			AccessToken: "fake-token",
			TokenType:   "bearer",
			UserID:      "user-1",
		},
		Health: service.Health{Status: "ok", GeminiConfigured: true, Model: "fake-model"},
	}
}

// AddTask seeds a task and returns it. Tasks are created one minute apart.
func (f *FakeService) AddTask(title string, completed bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(f.nextID) * time.Minute)
	task := service.Task{
		ID:        f.nextID,
		UserID:    "user-1",
		Title:     title,
		Completed: completed,
		CreatedAt: service.Timestamp{Time: created},
		UpdatedAt: service.Timestamp{Time: created},
	}
	f.nextID++
	f.tasks = append(f.tasks, task)
	return task
}

// AddConversation seeds a conversation with messages.
func (f *FakeService) AddConversation(id int, title string, messages ...service.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(messages)
	f.conversations = append(f.conversations, service.Conversation{
		ID:           id,
		Title:        title,
		CreatedAt:    service.Timestamp{Time: time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)},
		UpdatedAt:    service.Timestamp{Time: time.Date(2025, 1, 2, 11, 0, 0, 0, time.UTC)},
		MessageCount: &n,
	})
	f.history[id] = messages
}

// QueueReply queues a chat response. Without queued replies the fake echoes,
// creating a conversation on the first turn.
func (f *FakeService) QueueReply(resp service.ChatResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatReplies = append(f.chatReplies, resp)
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Calls returns how many times the named method ran.
func (f *FakeService) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

// TotalCalls returns how many service methods ran.
func (f *FakeService) TotalCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *FakeService) count(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

func (f *FakeService) indexLocked(id int) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, creds service.Credentials) (service.AuthResult, error) {
	f.count("Register")
	if f.RegisterErr != nil {
		return service.AuthResult{}, f.RegisterErr
	}
	return f.AuthResult, nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, creds service.Credentials) (service.AuthResult, error) {
	f.count("Login")
	if f.LoginErr != nil {
		return service.AuthResult{}, f.LoginErr
	}
	return f.AuthResult, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.count("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Tasks(), nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id int) (service.Task, error) {
	f.count("GetTask")
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	i := f.indexLocked(id)
	if i < 0 {
		return service.Task{}, fmt.Errorf("%w: task %d", service.ErrNotFound, id)
	}
	return f.tasks[i], nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, req service.CreateTaskRequest) (service.Task, error) {
	f.count("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	f.LastCreate = req
	f.mu.Unlock()

	task := f.AddTask(req.Title, false)
	if req.Description != nil {
		f.mu.Lock()
		f.tasks[f.indexLocked(task.ID)].Description = *req.Description
		task.Description = *req.Description
		f.mu.Unlock()
	}
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id int, req service.UpdateTaskRequest) (service.Task, error) {
	f.count("UpdateTask")
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastUpdate = req
	i := f.indexLocked(id)
	if i < 0 {
		return service.Task{}, fmt.Errorf("%w: task %d", service.ErrNotFound, id)
	}
	if req.Title != nil {
		f.tasks[i].Title = *req.Title
	}
	if req.Description != nil {
		f.tasks[i].Description = *req.Description
	}
	return f.tasks[i], nil
}

// ToggleTask implements service.Service.
func (f *FakeService) ToggleTask(ctx context.Context, id int) (service.Task, error) {
	f.count("ToggleTask")
	if f.ToggleTaskErr != nil {
		return service.Task{}, f.ToggleTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(id)
	if i < 0 {
		return service.Task{}, fmt.Errorf("%w: task %d", service.ErrNotFound, id)
	}
	f.tasks[i].Completed = !f.tasks[i].Completed
	return f.tasks[i], nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int) error {
	f.count("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: task %d", service.ErrNotFound, id)
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

// SendMessage implements service.Service.
func (f *FakeService) SendMessage(ctx context.Context, req service.ChatRequest) (service.ChatResponse, error) {
	f.count("SendMessage")
	f.mu.Lock()
	f.LastChat = req
	f.mu.Unlock()
	if f.SendMessageErr != nil {
		return service.ChatResponse{}, f.SendMessageErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.chatReplies) > 0 {
		resp := f.chatReplies[0]
		f.chatReplies = f.chatReplies[1:]
		return resp, nil
	}
	// Echo replies keep a conversation record so later turns can find it.
	var convID int
	if req.ConversationID != nil {
		convID = *req.ConversationID
		if !f.hasConversationLocked(convID) {
			return service.ChatResponse{}, fmt.Errorf("%w: conversation %d", service.ErrNotFound, convID)
		}
	} else {
		for _, c := range f.conversations {
			convID = max(convID, c.ID)
		}
		convID++
		f.conversations = append(f.conversations, service.Conversation{ID: convID, Title: strings.TrimSpace(req.Message)})
	}
	return service.ChatResponse{
		ConversationID: convID,
		MessageID:      100,
		Content:        "You said: " + strings.TrimSpace(req.Message),
	}, nil
}

func (f *FakeService) hasConversationLocked(id int) bool {
	for _, c := range f.conversations {
		if c.ID == id {
			return true
		}
	}
	return false
}

// ListConversations implements service.Service.
func (f *FakeService) ListConversations(ctx context.Context) (service.ConversationList, error) {
	f.count("ListConversations")
	if f.ListConversationsErr != nil {
		return service.ConversationList{}, f.ListConversationsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Conversation, len(f.conversations))
	copy(out, f.conversations)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return service.ConversationList{Conversations: out, Total: len(out)}, nil
}

// GetConversation implements service.Service.
func (f *FakeService) GetConversation(ctx context.Context, id int) (service.ConversationHistory, error) {
	f.count("GetConversation")
	if f.GetConversationErr != nil {
		return service.ConversationHistory{}, f.GetConversationErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, c := range f.conversations {
		if c.ID == id {
			msgs := f.history[id]
			return service.ConversationHistory{
				ConversationID: id,
				Title:          c.Title,
				Messages:       msgs,
				Total:          len(msgs),
			}, nil
		}
	}
	return service.ConversationHistory{}, fmt.Errorf("%w: conversation %d", service.ErrNotFound, id)
}

// DeleteConversation implements service.Service.
func (f *FakeService) DeleteConversation(ctx context.Context, id int) error {
	f.count("DeleteConversation")
	if f.DeleteConversationErr != nil {
		return f.DeleteConversationErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.conversations {
		if c.ID == id {
			f.conversations = append(f.conversations[:i], f.conversations[i+1:]...)
			delete(f.history, id)
			return nil
		}
	}
	return fmt.Errorf("%w: conversation %d", service.ErrNotFound, id)
}

// RenameConversation implements service.Service.
func (f *FakeService) RenameConversation(ctx context.Context, id int, title string) (service.Conversation, error) {
	f.count("RenameConversation")
	if f.RenameErr != nil {
		return service.Conversation{}, f.RenameErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.conversations {
		if c.ID == id {
			f.conversations[i].Title = title
			return f.conversations[i], nil
		}
	}
	return service.Conversation{}, fmt.Errorf("%w: conversation %d", service.ErrNotFound, id)
}

// ChatHealth implements service.Service.
func (f *FakeService) ChatHealth(ctx context.Context) (service.Health, error) {
	f.count("ChatHealth")
	if f.HealthErr != nil {
		return service.Health{}, f.HealthErr
	}
	return f.Health, nil
}
