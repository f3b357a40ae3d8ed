package output_test

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"taskpad/internal/output"
	"taskpad/internal/service"
	"taskpad/internal/tasks"
	"taskpad/internal/testutil"
)

func TestMain(m *testing.M) {
	time.Local = time.UTC
	os.Exit(m.Run())
}

func ts(min int) service.Timestamp {
	return service.Timestamp{Time: time.Date(2025, 1, 1, 9, min, 0, 0, time.UTC)}
}

func TestTasks_Golden(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf)

	p.Tasks([]service.Task{
		{ID: 1, Title: "Buy milk"},
		{ID: 2, Title: "Call mom", Completed: true},
		{ID: 10, Title: "   "},
		{ID: 11, Title: "line one\nline two"},
	})

	testutil.Golden(t, "task_list", buf.Bytes())
}

func TestTasks_Empty(t *testing.T) {
	var buf bytes.Buffer
	output.NewPrinter(&buf).Tasks(nil)
	if buf.String() != "no tasks found\n" {
		t.Errorf("expected %q, got %q", "no tasks found\n", buf.String())
	}
}

func TestTask_TruncatesLongTitle(t *testing.T) {
	var buf bytes.Buffer
	output.NewPrinter(&buf).Task(service.Task{ID: 1, Title: strings.Repeat("a", 150)})

	line := strings.TrimSuffix(buf.String(), "\n")
	if !strings.HasSuffix(line, "…") {
		t.Errorf("expected ellipsis, got %q", line)
	}
	title := strings.TrimPrefix(line, "   1  [ ] ")
	if n := len([]rune(title)); n != output.TitleWidth {
		t.Errorf("expected %d cells, got %d", output.TitleWidth, n)
	}
}

func TestTaskDetail(t *testing.T) {
	var buf bytes.Buffer
	output.NewPrinter(&buf).TaskDetail(service.Task{
		ID:          7,
		Title:       "Write report",
		Description: "Q1 numbers\nand charts",
		Completed:   true,
		CreatedAt:   ts(5),
		UpdatedAt:   ts(30),
	})

	expected := "id:          7\n" +
		"title:       Write report\n" +
		"description: Q1 numbers\n" +
		"             and charts\n" +
		"status:      completed\n" +
		"created:     2025-01-01 09:05\n" +
		"updated:     2025-01-01 09:30\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestStats(t *testing.T) {
	var buf bytes.Buffer
	output.NewPrinter(&buf).Stats(tasks.Stats{Total: 4, Completed: 1, Incomplete: 3, Percentage: 25})

	expected := "total:       4\n" +
		"completed:   1\n" +
		"incomplete:  3\n" +
		"progress:    [#####---------------] 25%\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestProgressBar_Bounds(t *testing.T) {
	if got := output.ProgressBar(0, 4); got != "[----]" {
		t.Errorf("got %q", got)
	}
	if got := output.ProgressBar(100, 4); got != "[####]" {
		t.Errorf("got %q", got)
	}
	if got := output.ProgressBar(150, 4); got != "[####]" {
		t.Errorf("got %q", got)
	}
}

func TestConversations(t *testing.T) {
	var buf bytes.Buffer
	n := 4
	output.NewPrinter(&buf).Conversations(service.ConversationList{
		Conversations: []service.Conversation{
			{ID: 3, Title: "Groceries", UpdatedAt: ts(10), MessageCount: &n},
			{ID: 1, Title: "Old", UpdatedAt: ts(0)},
		},
		Total: 2,
	})

	expected := "   3  Groceries  (4 messages, updated 2025-01-01 09:10)\n" +
		"   1  Old  (updated 2025-01-01 09:00)\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestTranscript_Golden(t *testing.T) {
	var buf bytes.Buffer
	output.NewPrinter(&buf).Transcript(service.ConversationHistory{
		ConversationID: 3,
		Title:          "Groceries",
		Messages: []service.Message{
			{ID: 1, Role: service.RoleUser, Content: "add milk"},
			{ID: 2, Role: service.RoleAssistant, Content: "Added **milk**.",
				ToolCalls: []service.ToolCall{{Name: "add_task", Result: map[string]any{"success": true}}}},
			{ID: 3, Role: service.RoleUser, Content: "delete 9"},
			{ID: 4, Role: service.RoleAssistant, Content: "I couldn't find that task.",
				ToolCalls: []service.ToolCall{{Name: "delete_task", Result: map[string]any{"error": "Task not found"}}}},
		},
	})

	testutil.Golden(t, "transcript", buf.Bytes())
}

func TestHealth(t *testing.T) {
	var buf bytes.Buffer
	output.NewPrinter(&buf).Health(service.Health{Status: "degraded", Model: "gemini-pro"})

	expected := "status:  degraded\nmodel:   gemini-pro\ngemini:  false\nopenai:  false\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}
