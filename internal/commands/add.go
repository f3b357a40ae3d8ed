package commands

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/output"
	"taskpad/internal/service"
	"taskpad/internal/tasks"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
}

// SetDescription sets the description (for testing).
func (c *AddCmd) SetDescription(d string) {
	c.description = d
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "taskpad add [--description <text>] <title...>" }
func (c *AddCmd) NeedsAuth() bool    { return true }
func (c *AddCmd) NeedsBackend() bool { return false }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.description, "description", "d", "", "task description")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if err := tasks.ValidateTitle(title); err != nil {
		return reportError(errOut, err)
	}
	desc := strings.TrimSpace(c.description)
	if err := tasks.ValidateDescription(desc); err != nil {
		return reportError(errOut, err)
	}

	req := service.CreateTaskRequest{Title: title}
	if desc != "" {
		req.Description = &desc
	}
	task, err := svc.CreateTask(ctx, req)
	if err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		output.NewPrinter(out).Task(task)
	}
	return exitcode.Success
}
