package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/output"
	"taskpad/internal/service"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd flips the completion flag of one or more tasks.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string       { return "toggle" }
func (c *ToggleCmd) Aliases() []string  { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string   { return "Mark tasks complete or incomplete" }
func (c *ToggleCmd) Usage() string      { return "taskpad toggle <id...>" }
func (c *ToggleCmd) NeedsAuth() bool    { return true }
func (c *ToggleCmd) NeedsBackend() bool { return false }

func (c *ToggleCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ids, err := ParseTaskIDs(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	p := output.NewPrinter(out)
	for _, id := range ids {
		task, err := svc.ToggleTask(ctx, id)
		if err != nil {
			return reportError(errOut, err)
		}
		if !cfg.Quiet {
			p.Task(task)
		}
	}
	return exitcode.Success
}
