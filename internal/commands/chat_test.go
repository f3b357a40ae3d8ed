package commands_test

import (
	"strings"
	"testing"

	"taskpad/internal/commands"
	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/service"
	"taskpad/internal/testutil"
)

func addTaskReply(convID int) service.ChatResponse {
	return service.ChatResponse{
		ConversationID: convID,
		MessageID:      2,
		Content:        "Added **Buy milk**.",
		ToolCalls: []service.ToolCall{{
			Name:      "add_task",
			Arguments: map[string]any{"title": "Buy milk"},
			Result:    map[string]any{"success": true},
		}},
	}
}

func TestChatCommand_OneShot(t *testing.T) {
	svc := testutil.NewFakeService()
	cfg := &config.Config{Dir: t.TempDir()}

	stdout, stderr, code := runWithConfig(t, &commands.ChatCmd{}, cfg, svc, []string{"hello", "there"})

	expectCode(t, code, exitcode.Success)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "assistant: You said: hello there\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if svc.LastChat.ConversationID != nil {
		t.Error("first message should not carry a conversation id")
	}
	if cfg.LastConversation() != 1 {
		t.Errorf("expected conversation 1 remembered, got %d", cfg.LastConversation())
	}
	if svc.Calls("ListTasks") != 0 {
		t.Error("tasks should not be refetched without tool calls")
	}
}

func TestChatCommand_ContinuesRememberedConversation(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddConversation(4, "Groceries")
	cfg := &config.Config{Dir: t.TempDir()}
	if err := cfg.SetLastConversation(4); err != nil {
		t.Fatal(err)
	}

	_, _, code := runWithConfig(t, &commands.ChatCmd{}, cfg, svc, []string{"again"})

	expectCode(t, code, exitcode.Success)
	if svc.LastChat.ConversationID == nil || *svc.LastChat.ConversationID != 4 {
		t.Errorf("expected conversation 4, got %v", svc.LastChat.ConversationID)
	}
}

func TestChatCommand_RememberedConversationGone(t *testing.T) {
	svc := testutil.NewFakeService()
	cfg := &config.Config{Dir: t.TempDir()}
	if err := cfg.SetLastConversation(9); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runWithConfig(t, &commands.ChatCmd{}, cfg, svc, []string{"hi"})

	expectCode(t, code, exitcode.Success)
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "assistant: You said: hi\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if svc.Calls("SendMessage") != 2 {
		t.Errorf("expected a retry in a new conversation, got %d sends", svc.Calls("SendMessage"))
	}
	if cfg.LastConversation() != 1 {
		t.Errorf("expected new conversation remembered, got %d", cfg.LastConversation())
	}
}

func TestChatCommand_ExplicitConversationNotFound(t *testing.T) {
	svc := testutil.NewFakeService()

	cmd := &commands.ChatCmd{}
	cmd.SetConversation(9)
	_, stderr, code := runCommand(t, cmd, svc, []string{"hi"}, false)

	expectCode(t, code, exitcode.UserError)
	if stderr != "error: not found: conversation 9\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("SendMessage") != 1 {
		t.Errorf("an explicit conversation is never retried, got %d sends", svc.Calls("SendMessage"))
	}
}

func TestChatCommand_NewIgnoresRemembered(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddConversation(4, "Groceries")
	cfg := &config.Config{Dir: t.TempDir()}
	if err := cfg.SetLastConversation(4); err != nil {
		t.Fatal(err)
	}

	cmd := &commands.ChatCmd{}
	cmd.SetNew(true)
	_, _, code := runWithConfig(t, cmd, cfg, svc, []string{"fresh start"})

	expectCode(t, code, exitcode.Success)
	if svc.LastChat.ConversationID != nil {
		t.Errorf("expected no conversation id, got %d", *svc.LastChat.ConversationID)
	}
	if cfg.LastConversation() != 5 {
		t.Errorf("expected conversation 5, got %d", cfg.LastConversation())
	}
}

func TestChatCommand_ToolCallsRefreshTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", false)
	svc.QueueReply(addTaskReply(3))

	stdout, _, code := runCommand(t, &commands.ChatCmd{}, svc, []string{"add", "buy", "milk"}, false)

	expectCode(t, code, exitcode.Success)
	expected := "assistant: Added **Buy milk**.\n" +
		"  actions performed:\n" +
		"    - add task ✓\n" +
		"tasks:\n" +
		"   1  [ ] Buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
	if svc.Calls("ListTasks") != 1 {
		t.Errorf("expected exactly one refetch, got %d", svc.Calls("ListTasks"))
	}
}

func TestChatCommand_RefreshFailureWarns(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.QueueReply(addTaskReply(3))
	svc.ListTasksErr = service.ErrNotFound

	stdout, stderr, code := runCommand(t, &commands.ChatCmd{}, svc, []string{"add milk"}, false)

	expectCode(t, code, exitcode.Success)
	if strings.Contains(stdout, "tasks:") {
		t.Errorf("no task list expected, got %q", stdout)
	}
	if stderr != "warning: could not refresh tasks\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestChatCommand_EmptyMessage(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.ChatCmd{}, svc, []string{" "}, false)

	expectCode(t, code, exitcode.UserError)
	if stderr != "error: Message is required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("SendMessage") != 0 {
		t.Error("no request should be issued")
	}
}

func TestChatCommand_Unauthorized(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SendMessageErr = service.ErrUnauthorized

	_, stderr, code := runCommand(t, &commands.ChatCmd{}, svc, []string{"hi"}, false)

	expectCode(t, code, exitcode.AuthError)
	if stderr != "error: auth error: session expired (run: taskpad login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestChatCommand_Interactive(t *testing.T) {
	svc := testutil.NewFakeService()
	cfg := &config.Config{Dir: t.TempDir()}

	cmd := &commands.ChatCmd{}
	cmd.SetInput(strings.NewReader("first\n\n/new\nsecond\n/quit\nnever sent\n"))
	stdout, stderr, code := runWithConfig(t, cmd, cfg, svc, nil)

	expectCode(t, code, exitcode.Success)
	expected := "assistant: You said: first\nassistant: You said: second\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
	if stderr != "> > > started a new conversation\n> > " {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("SendMessage") != 2 {
		t.Errorf("expected 2 sends, got %d", svc.Calls("SendMessage"))
	}
	if svc.LastChat.ConversationID != nil {
		t.Error("/new should start the next message without a conversation")
	}
	if cfg.LastConversation() != 2 {
		t.Errorf("expected conversation 2 remembered, got %d", cfg.LastConversation())
	}
}

func TestChatCommand_InteractiveKeepsGoingAfterError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.QueueReply(addTaskReply(1))

	cmd := &commands.ChatCmd{}
	cmd.SetInput(strings.NewReader(strings.Repeat("x", 4001) + "\nadd milk\n"))
	stdout, stderr, code := runCommand(t, cmd, svc, nil, true)

	expectCode(t, code, exitcode.Success)
	if !strings.Contains(stderr, "error: Message must be 4000 characters or less\n") {
		t.Errorf("expected validation error, got %q", stderr)
	}
	if !strings.HasPrefix(stdout, "assistant: Added **Buy milk**.\n") {
		t.Errorf("expected reply after the error, got %q", stdout)
	}
}

func TestChatCommand_InteractiveStopsOnAuthError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.SendMessageErr = service.ErrUnauthorized

	cmd := &commands.ChatCmd{}
	cmd.SetInput(strings.NewReader("hi\nagain\n"))
	_, _, code := runCommand(t, cmd, svc, nil, false)

	expectCode(t, code, exitcode.AuthError)
	if svc.Calls("SendMessage") != 1 {
		t.Errorf("expected the loop to stop, got %d sends", svc.Calls("SendMessage"))
	}
}

// Tests for conversation commands
func TestConversationsCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddConversation(1, "Old")
	svc.AddConversation(3, "Groceries",
		service.Message{ID: 1, Role: service.RoleUser, Content: "add eggs"})

	stdout, _, code := runCommand(t, &commands.ConversationsCmd{}, svc, nil, false)

	expectCode(t, code, exitcode.Success)
	expected := "   3  Groceries  (1 messages, updated 2025-01-02 11:00)\n" +
		"   1  Old  (0 messages, updated 2025-01-02 11:00)\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestConversationsCommand_EmptyQuiet(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ConversationsCmd{}, testutil.NewFakeService(), nil, true)

	expectCode(t, code, exitcode.Success)
	if stdout != "" {
		t.Errorf("expected no output, got %q", stdout)
	}
}

func TestConversationCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddConversation(3, "Groceries",
		service.Message{ID: 1, Role: service.RoleUser, Content: "add eggs"},
		service.Message{ID: 2, Role: service.RoleAssistant, Content: "Done.", ToolCalls: []service.ToolCall{{
			Name:   "add_task",
			Result: map[string]any{"success": true},
		}}},
	)

	stdout, _, code := runCommand(t, &commands.ConversationCmd{}, svc, []string{"3"}, false)

	expectCode(t, code, exitcode.Success)
	expected := "conversation 3: Groceries\n" +
		"you: add eggs\n" +
		"assistant: Done.\n" +
		"  actions performed:\n" +
		"    - add task ✓\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestConversationCommand_NoID(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.ConversationCmd{}, testutil.NewFakeService(), nil, false)

	expectCode(t, code, exitcode.UserError)
	if stderr != "error: conversation id required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRmConversationCommand_ForgetsRemembered(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddConversation(3, "Groceries")
	cfg := &config.Config{Dir: t.TempDir()}
	if err := cfg.SetLastConversation(3); err != nil {
		t.Fatal(err)
	}

	stdout, _, code := runWithConfig(t, &commands.RmConversationCmd{}, cfg, svc, []string{"3"})

	expectCode(t, code, exitcode.Success)
	if stdout != "ok\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if cfg.LastConversation() != 0 {
		t.Error("deleted conversation should be forgotten")
	}
}

func TestRmConversationCommand_KeepsOtherRemembered(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddConversation(3, "Groceries")
	cfg := &config.Config{Dir: t.TempDir()}
	if err := cfg.SetLastConversation(8); err != nil {
		t.Fatal(err)
	}

	_, _, code := runWithConfig(t, &commands.RmConversationCmd{}, cfg, svc, []string{"3"})

	expectCode(t, code, exitcode.Success)
	if cfg.LastConversation() != 8 {
		t.Errorf("expected conversation 8 kept, got %d", cfg.LastConversation())
	}
}

func TestRenameConversationCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddConversation(3, "Groceries")

	stdout, _, code := runCommand(t, &commands.RenameConversationCmd{}, svc, []string{"3", "Weekly", "shop"}, false)

	expectCode(t, code, exitcode.Success)
	if stdout != "ok\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	list, _ := svc.ListConversations(t.Context())
	if list.Conversations[0].Title != "Weekly shop" {
		t.Errorf("unexpected title %q", list.Conversations[0].Title)
	}
}

func TestRenameConversationCommand_NoTitle(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := runCommand(t, &commands.RenameConversationCmd{}, svc, []string{"3"}, false)

	expectCode(t, code, exitcode.UserError)
	if stderr != "error: title required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.TotalCalls() != 0 {
		t.Error("no request should be issued")
	}
}
