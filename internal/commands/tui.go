package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/service"
	"taskpad/internal/tui"
)

func init() {
	Register(&TUICmd{})
}

// TUICmd starts the full-screen dashboard.
type TUICmd struct{}

func (c *TUICmd) Name() string       { return "tui" }
func (c *TUICmd) Aliases() []string  { return []string{"ui", "dashboard"} }
func (c *TUICmd) Synopsis() string   { return "Open the interactive dashboard" }
func (c *TUICmd) Usage() string      { return "taskpad tui [common flags]" }
func (c *TUICmd) NeedsAuth() bool    { return false }
func (c *TUICmd) NeedsBackend() bool { return true }

func (c *TUICmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *TUICmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if err := tui.Run(ctx, cfg, svc); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
