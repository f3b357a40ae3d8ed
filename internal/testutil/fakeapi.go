package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"taskpad/internal/service"
	"taskpad/internal/session"
)

// RecordedRequest is what the fake API saw for one request.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type fakeConversation struct {
	conv     service.Conversation
	messages []service.Message
}

// FakeAPI is an in-process HTTP backend speaking the task REST contract.
//
// The assistant understands two commands so tests can exercise tool calls:
// "add <title>" creates a task and "delete <id>" removes one. Anything else
// gets an echo reply without tool calls.
type FakeAPI struct {
	Server *httptest.Server

	// Token is the only bearer token the fake accepts.
	Token string

	// UserID is returned by login and register.
	UserID string

	mu            sync.Mutex
	tasks         []service.Task
	nextTaskID    int
	conversations map[int]*fakeConversation
	nextConvID    int
	nextMsgID     int
	requests      []RecordedRequest
	chatStatus    int
	taskStatus    int
}

// NewFakeAPI starts a fake backend that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeAPI{
		Token:         SignToken(t, "user-1", time.Now().Add(time.Hour)),
		UserID:        "user-1",
		nextTaskID:    1,
		nextConvID:    1,
		nextMsgID:     1,
		conversations: make(map[int]*fakeConversation),
	}
	f.Server = httptest.NewServer(f.routes())
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake.
func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// Login stores the fake's accepted token in store.
func (f *FakeAPI) Login(t *testing.T, store *session.Store) {
	t.Helper()
	if err := store.Save(session.NewCredentials(f.Token, "bearer", f.UserID, "user@example.com")); err != nil {
		t.Fatalf("failed to save credentials: %v", err)
	}
}

// FailChat makes POST /api/chat respond with status. Zero restores normal
// replies.
func (f *FakeAPI) FailChat(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatStatus = status
}

// FailTasks makes task mutations respond with status. Zero restores them.
func (f *FakeAPI) FailTasks(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taskStatus = status
}

// AddTask seeds a task and returns it.
func (f *FakeAPI) AddTask(title string, completed bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addTaskLocked(title, "", completed)
}

// Tasks returns a copy of the stored tasks.
func (f *FakeAPI) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Requests returns the requests seen so far.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// CountRequests counts requests matching method and path.
func (f *FakeAPI) CountRequests(method, path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeAPI) routes() *gin.Engine {
	r := gin.New()
	r.Use(f.record)

	r.POST("/auth/register", f.authenticate)
	r.POST("/auth/login", f.authenticate)
	r.GET("/api/chat/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, service.Health{Status: "ok", GeminiConfigured: true, Model: "fake-model"})
	})

	authed := r.Group("/", f.requireToken)
	authed.GET("/tasks/", f.listTasks)
	authed.POST("/tasks/", f.createTask)
	authed.GET("/tasks/:id", f.getTask)
	authed.PUT("/tasks/:id", f.updateTask)
	authed.DELETE("/tasks/:id", f.deleteTask)
	authed.PATCH("/tasks/:id/toggle", f.toggleTask)

	authed.POST("/api/chat", f.chat)
	authed.GET("/api/conversations", f.listConversations)
	authed.GET("/api/conversations/:id", f.getConversation)
	authed.DELETE("/api/conversations/:id", f.deleteConversation)
	authed.PATCH("/api/conversations/:id/title", f.renameConversation)
	return r
}

func (f *FakeAPI) record(c *gin.Context) {
	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		Authorization: c.GetHeader("Authorization"),
		RequestID:     c.GetHeader("X-Request-ID"),
	})
	f.mu.Unlock()
	c.Next()
}

func (f *FakeAPI) requireToken(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+f.Token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
		return
	}
	c.Next()
}

func (f *FakeAPI) authenticate(c *gin.Context) {
	var req service.Credentials
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{
			{"loc": []string{"body", "email"}, "msg": "field required"},
		}})
		return
	}
	c.JSON(http.StatusOK, service.AuthResult{AccessToken: f.Token, TokenType: "bearer", UserID: f.UserID})
}

func (f *FakeAPI) addTaskLocked(title, description string, completed bool) service.Task {
	now := service.Timestamp{Time: time.Now().UTC().Add(time.Duration(f.nextTaskID) * time.Second)}
	task := service.Task{
		ID:          f.nextTaskID,
		UserID:      f.UserID,
		Title:       title,
		Description: description,
		Completed:   completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.nextTaskID++
	f.tasks = append(f.tasks, task)
	return task
}

func (f *FakeAPI) findTaskLocked(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "value is not a valid integer"}}})
		return 0, false
	}
	for i, t := range f.tasks {
		if t.ID == id {
			return i, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Task not found"})
	return 0, false
}

func (f *FakeAPI) failTask(c *gin.Context) bool {
	if f.taskStatus == 0 {
		return false
	}
	c.JSON(f.taskStatus, gin.H{"detail": "Task service unavailable"})
	return true
}

func (f *FakeAPI) listTasks(c *gin.Context) {
	c.JSON(http.StatusOK, f.Tasks())
}

func (f *FakeAPI) getTask(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.findTaskLocked(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, f.tasks[i])
}

func (f *FakeAPI) createTask(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTask(c) {
		return
	}
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Title is required"})
		return
	}
	desc := ""
	if req.Description != nil {
		desc = *req.Description
	}
	c.JSON(http.StatusCreated, f.addTaskLocked(req.Title, desc, false))
}

func (f *FakeAPI) updateTask(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTask(c) {
		return
	}
	i, ok := f.findTaskLocked(c)
	if !ok {
		return
	}
	var req service.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if req.Title != nil {
		f.tasks[i].Title = *req.Title
	}
	if req.Description != nil {
		f.tasks[i].Description = *req.Description
	}
	f.tasks[i].UpdatedAt = service.Timestamp{Time: time.Now().UTC()}
	c.JSON(http.StatusOK, f.tasks[i])
}

func (f *FakeAPI) toggleTask(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTask(c) {
		return
	}
	i, ok := f.findTaskLocked(c)
	if !ok {
		return
	}
	f.tasks[i].Completed = !f.tasks[i].Completed
	c.JSON(http.StatusOK, f.tasks[i])
}

func (f *FakeAPI) deleteTask(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTask(c) {
		return
	}
	i, ok := f.findTaskLocked(c)
	if !ok {
		return
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	c.Status(http.StatusNoContent)
}

func (f *FakeAPI) chat(c *gin.Context) {
	var req service.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "message must not be empty"}}})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.chatStatus != 0 {
		c.JSON(f.chatStatus, gin.H{"detail": "AI service unavailable"})
		return
	}

	now := service.Timestamp{Time: time.Now().UTC()}
	var conv *fakeConversation
	if req.ConversationID != nil {
		conv = f.conversations[*req.ConversationID]
		if conv == nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("Conversation %d not found", *req.ConversationID)})
			return
		}
	} else {
		conv = &fakeConversation{conv: service.Conversation{
			ID:        f.nextConvID,
			Title:     truncateTitle(req.Message),
			CreatedAt: now,
			UpdatedAt: now,
		}}
		f.conversations[conv.conv.ID] = conv
		f.nextConvID++
	}

	conv.messages = append(conv.messages, service.Message{
		ID: f.nextMsgID, Role: service.RoleUser, Content: req.Message, CreatedAt: now,
	})
	f.nextMsgID++

	content, calls := f.assistantLocked(req.Message)
	reply := service.Message{
		ID: f.nextMsgID, Role: service.RoleAssistant, Content: content, ToolCalls: calls, CreatedAt: now,
	}
	f.nextMsgID++
	conv.messages = append(conv.messages, reply)
	conv.conv.UpdatedAt = now

	c.JSON(http.StatusOK, service.ChatResponse{
		ConversationID: conv.conv.ID,
		MessageID:      reply.ID,
		Content:        content,
		ToolCalls:      calls,
	})
}

func (f *FakeAPI) assistantLocked(message string) (string, []service.ToolCall) {
	msg := strings.TrimSpace(message)
	switch {
	case strings.HasPrefix(msg, "add "):
		title := strings.TrimSpace(strings.TrimPrefix(msg, "add "))
		task := f.addTaskLocked(title, "", false)
		return fmt.Sprintf("Added **%s**.", title), []service.ToolCall{{
			Name:      "add_task",
			Arguments: map[string]any{"title": title},
			Result:    map[string]any{"success": true, "task_id": float64(task.ID)},
		}}
	case strings.HasPrefix(msg, "delete "):
		id, _ := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(msg, "delete ")))
		for i, t := range f.tasks {
			if t.ID == id {
				f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
				return fmt.Sprintf("Deleted task %d.", id), []service.ToolCall{{
					Name:      "delete_task",
					Arguments: map[string]any{"task_id": float64(id)},
					Result:    map[string]any{"success": true},
				}}
			}
		}
		return "I couldn't find that task.", []service.ToolCall{{
			Name:      "delete_task",
			Arguments: map[string]any{"task_id": float64(id)},
			Result:    map[string]any{"success": false, "error": "Task not found"},
		}}
	}
	return "You said: " + msg, nil
}

func truncateTitle(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 50 {
		return s[:50] + "..."
	}
	return s
}

func (f *FakeAPI) findConversationLocked(c *gin.Context) (*fakeConversation, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err == nil {
		if conv := f.conversations[id]; conv != nil {
			return conv, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("Conversation %s not found", c.Param("id"))})
	return nil, false
}

func (f *FakeAPI) listConversations(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := service.ConversationList{Conversations: []service.Conversation{}}
	for _, conv := range f.conversations {
		summary := conv.conv
		n := len(conv.messages)
		summary.MessageCount = &n
		list.Conversations = append(list.Conversations, summary)
	}
	sort.Slice(list.Conversations, func(i, j int) bool {
		return list.Conversations[i].ID > list.Conversations[j].ID
	})
	list.Total = len(list.Conversations)
	c.JSON(http.StatusOK, list)
}

func (f *FakeAPI) getConversation(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.findConversationLocked(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, service.ConversationHistory{
		ConversationID: conv.conv.ID,
		Title:          conv.conv.Title,
		Messages:       conv.messages,
		Total:          len(conv.messages),
	})
}

func (f *FakeAPI) deleteConversation(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.findConversationLocked(c)
	if !ok {
		return
	}
	delete(f.conversations, conv.conv.ID)
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Conversation %d deleted successfully", conv.conv.ID)})
}

func (f *FakeAPI) renameConversation(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.findConversationLocked(c)
	if !ok {
		return
	}
	title := c.Query("title")
	if title == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "field required"}}})
		return
	}
	conv.conv.Title = title
	c.JSON(http.StatusOK, conv.conv)
}
