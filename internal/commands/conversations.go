package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/output"
	"taskpad/internal/service"
)

func init() {
	Register(&ConversationsCmd{})
	Register(&ConversationCmd{})
	Register(&RmConversationCmd{})
	Register(&RenameConversationCmd{})
}

// ConversationsCmd lists stored conversations.
type ConversationsCmd struct{}

func (c *ConversationsCmd) Name() string       { return "conversations" }
func (c *ConversationsCmd) Aliases() []string  { return []string{"convs"} }
func (c *ConversationsCmd) Synopsis() string   { return "List assistant conversations" }
func (c *ConversationsCmd) Usage() string      { return "taskpad conversations [common flags]" }
func (c *ConversationsCmd) NeedsAuth() bool    { return true }
func (c *ConversationsCmd) NeedsBackend() bool { return false }

func (c *ConversationsCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ConversationsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	list, err := svc.ListConversations(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	if len(list.Conversations) > 0 || !cfg.Quiet {
		output.NewPrinter(out).Conversations(list)
	}
	return exitcode.Success
}

// ConversationCmd prints the transcript of one conversation.
type ConversationCmd struct{}

func (c *ConversationCmd) Name() string       { return "conversation" }
func (c *ConversationCmd) Aliases() []string  { return []string{"history"} }
func (c *ConversationCmd) Synopsis() string   { return "Show a conversation transcript" }
func (c *ConversationCmd) Usage() string      { return "taskpad conversation <id>" }
func (c *ConversationCmd) NeedsAuth() bool    { return true }
func (c *ConversationCmd) NeedsBackend() bool { return false }

func (c *ConversationCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ConversationCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := ParseConversationID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	history, err := svc.GetConversation(ctx, id)
	if err != nil {
		return reportError(errOut, err)
	}
	output.NewPrinter(out).Transcript(history)
	return exitcode.Success
}

// RmConversationCmd deletes a conversation.
type RmConversationCmd struct{}

func (c *RmConversationCmd) Name() string       { return "rmconversation" }
func (c *RmConversationCmd) Aliases() []string  { return []string{"rmconv"} }
func (c *RmConversationCmd) Synopsis() string   { return "Delete a conversation" }
func (c *RmConversationCmd) Usage() string      { return "taskpad rmconversation <id>" }
func (c *RmConversationCmd) NeedsAuth() bool    { return true }
func (c *RmConversationCmd) NeedsBackend() bool { return false }

func (c *RmConversationCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *RmConversationCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := ParseConversationID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := svc.DeleteConversation(ctx, id); err != nil {
		return reportError(errOut, err)
	}
	if cfg.LastConversation() == id {
		if err := cfg.SetLastConversation(0); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// RenameConversationCmd sets a conversation title.
type RenameConversationCmd struct{}

func (c *RenameConversationCmd) Name() string      { return "renameconversation" }
func (c *RenameConversationCmd) Aliases() []string { return []string{"mvconv"} }
func (c *RenameConversationCmd) Synopsis() string  { return "Rename a conversation" }
func (c *RenameConversationCmd) Usage() string {
	return "taskpad renameconversation <id> <title...>"
}
func (c *RenameConversationCmd) NeedsAuth() bool    { return true }
func (c *RenameConversationCmd) NeedsBackend() bool { return false }

func (c *RenameConversationCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *RenameConversationCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := ParseConversationID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	title := strings.TrimSpace(strings.Join(args[1:], " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	if len([]rune(title)) > maxConversationTitle {
		fmt.Fprintf(errOut, "error: Title must be %d characters or less\n", maxConversationTitle)
		return exitcode.UserError
	}
	if _, err := svc.RenameConversation(ctx, id, title); err != nil {
		return reportError(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// maxConversationTitle matches the backend's title column.
const maxConversationTitle = 255
