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
	"taskpad/internal/tasks"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd changes a task's title or description.
// An empty --description clears the description, so presence is tracked
// separately from value.
type EditCmd struct {
	title       string
	description string
	titleSet    bool
	descSet     bool
	fs          *pflag.FlagSet
}

// SetTitle sets the new title (for testing).
func (c *EditCmd) SetTitle(t string) {
	c.title, c.titleSet = t, true
}

// SetDescription sets the new description (for testing).
func (c *EditCmd) SetDescription(d string) {
	c.description, c.descSet = d, true
}

func (c *EditCmd) changed(name string, set bool) bool {
	return set || (c.fs != nil && c.fs.Changed(name))
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change a task's title or description" }
func (c *EditCmd) Usage() string {
	return "taskpad edit <id> [--title <title>] [--description <text>]"
}
func (c *EditCmd) NeedsAuth() bool    { return true }
func (c *EditCmd) NeedsBackend() bool { return false }

func (c *EditCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.title, "title", "t", "", "new title")
	fs.StringVarP(&c.description, "description", "d", "", "new description (empty clears it)")
	c.fs = fs
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	var req service.UpdateTaskRequest
	if c.changed("title", c.titleSet) {
		title := strings.TrimSpace(c.title)
		if err := tasks.ValidateTitle(title); err != nil {
			return reportError(errOut, err)
		}
		req.Title = &title
	}
	if c.changed("description", c.descSet) {
		desc := strings.TrimSpace(c.description)
		if err := tasks.ValidateDescription(desc); err != nil {
			return reportError(errOut, err)
		}
		req.Description = &desc
	}
	if req.Title == nil && req.Description == nil {
		fmt.Fprintln(errOut, "error: nothing to change (use --title or --description)")
		return exitcode.UserError
	}

	task, err := svc.UpdateTask(ctx, id, req)
	if err != nil {
		return reportError(errOut, err)
	}
	if !cfg.Quiet {
		output.NewPrinter(out).Task(task)
	}
	return exitcode.Success
}
