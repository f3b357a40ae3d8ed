package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	input
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete tasks" }
func (c *RmCmd) Usage() string      { return "taskpad rm [--force] <id...>" }
func (c *RmCmd) NeedsAuth() bool    { return true }
func (c *RmCmd) NeedsBackend() bool { return false }

func (c *RmCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.force, "force", "y", false, "delete without asking")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ids, err := ParseTaskIDs(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	for _, id := range ids {
		if !c.force {
			task, err := svc.GetTask(ctx, id)
			if err != nil {
				return reportError(errOut, err)
			}
			if !c.confirm(errOut, fmt.Sprintf("delete task %d %q?", task.ID, task.Title)) {
				fmt.Fprintln(errOut, "error: cancelled")
				return exitcode.UserError
			}
		}
		if err := svc.DeleteTask(ctx, id); err != nil {
			return reportError(errOut, err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
