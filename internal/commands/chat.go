package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"taskpad/internal/chat"
	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/logging"
	"taskpad/internal/output"
	"taskpad/internal/service"
)

func init() {
	Register(&ChatCmd{})
}

// ChatCmd talks to the task assistant, either once or interactively.
type ChatCmd struct {
	input
	conversation int
	fresh        bool
}

// SetConversation sets the conversation to continue (for testing).
func (c *ChatCmd) SetConversation(id int) { c.conversation = id }

// SetNew starts a new conversation (for testing).
func (c *ChatCmd) SetNew(on bool) { c.fresh = on }

func (c *ChatCmd) Name() string      { return "chat" }
func (c *ChatCmd) Aliases() []string { return []string{"ask"} }
func (c *ChatCmd) Synopsis() string  { return "Talk to the task assistant" }
func (c *ChatCmd) Usage() string {
	return "taskpad chat [--conversation <id>] [--new] [message...]"
}
func (c *ChatCmd) NeedsAuth() bool    { return true }
func (c *ChatCmd) NeedsBackend() bool { return false }

func (c *ChatCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&c.conversation, "conversation", "c", 0, "continue conversation <id>")
	fs.BoolVarP(&c.fresh, "new", "n", false, "start a new conversation")
}

func (c *ChatCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.conversation < 0 {
		fmt.Fprintf(errOut, "error: invalid conversation id: %d\n", c.conversation)
		return exitcode.UserError
	}

	convID, remembered := c.conversation, false
	if convID == 0 && !c.fresh {
		convID, remembered = cfg.LastConversation(), true
	}
	if c.fresh {
		convID = 0
	}

	r := &chatRun{cfg: cfg, svc: svc, out: out, errOut: errOut, p: output.NewPrinter(out)}
	r.session = r.newSession(convID)

	if len(args) > 0 {
		text := strings.Join(args, " ")
		err := r.send(ctx, text)
		if err != nil && remembered && convID != 0 && errors.Is(err, service.ErrNotFound) {
			// The remembered conversation was deleted elsewhere.
			logging.FromContext(ctx).Debug("remembered conversation gone", "conversation", convID)
			r.session = r.newSession(0)
			err = r.send(ctx, text)
		}
		if err != nil {
			return reportError(errOut, err)
		}
		return exitcode.Success
	}
	return r.repl(ctx, &c.input)
}

// chatRun is the state of one chat invocation.
type chatRun struct {
	cfg     *config.Config
	svc     service.Service
	out     io.Writer
	errOut  io.Writer
	p       *output.Printer
	session *chat.Session
	changed []service.Task
	stale   bool
}

func (r *chatRun) newSession(convID int) *chat.Session {
	return chat.NewSession(r.svc,
		chat.WithConversation(convID),
		chat.WithTasksChanged(func(ctx context.Context) {
			ts, err := r.svc.ListTasks(ctx)
			if err != nil {
				r.stale = true
				logging.FromContext(ctx).Debug("task refresh failed", "error", err)
				return
			}
			r.changed = ts
		}),
	)
}

func (r *chatRun) send(ctx context.Context, text string) error {
	r.changed, r.stale = nil, false
	reply, err := r.session.Send(ctx, text)
	if err != nil {
		return err
	}

	r.p.Message(reply.Role, reply.Content, reply.ToolCalls)
	switch {
	case r.changed != nil:
		fmt.Fprintln(r.out, "tasks:")
		r.p.Tasks(r.changed)
	case r.stale:
		fmt.Fprintln(r.errOut, "warning: could not refresh tasks")
	}

	if err := r.cfg.SetLastConversation(r.session.ConversationID()); err != nil {
		logging.FromContext(ctx).Debug("failed to remember conversation", "error", err)
	}
	return nil
}

func (r *chatRun) repl(ctx context.Context, in *input) int {
	if id := r.session.ConversationID(); id != 0 && !r.cfg.Quiet {
		fmt.Fprintf(r.errOut, "continuing conversation %d (/new to start over, /quit to leave)\n", id)
	}

	for {
		if ctx.Err() != nil {
			return exitcode.Success
		}
		line, err := in.prompt(r.errOut, "> ")
		if err != nil {
			if err == io.EOF {
				return exitcode.Success
			}
			fmt.Fprintf(r.errOut, "error: %v\n", err)
			return exitcode.UserError
		}

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return exitcode.Success
		case "/new":
			r.session.NewConversation()
			if err := r.cfg.SetLastConversation(0); err != nil {
				fmt.Fprintf(r.errOut, "error: %v\n", err)
			}
			if !r.cfg.Quiet {
				fmt.Fprintln(r.errOut, "started a new conversation")
			}
			continue
		}

		if err := r.send(ctx, line); err != nil {
			code := reportError(r.errOut, err)
			if code == exitcode.AuthError {
				return code
			}
		}
	}
}
