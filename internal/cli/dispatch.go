// Package cli parses the command line and dispatches to commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"taskpad/internal/commands"
	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/logging"
	"taskpad/internal/service"
	"taskpad/internal/session"
)

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// Flags require a command
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		if s := d.registry.Suggest(cmdName); s != "" {
			fmt.Fprintf(errOut, "did you mean: %s\n", s)
		}
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir, apiURL string
	var quiet, debug bool

	fs.StringVar(&configDir, "config", "", "override config directory")
	fs.StringVar(&apiURL, "api-url", "", "override the backend URL")
	fs.BoolVarP(&quiet, "quiet", "q", false, "suppress informational output")
	fs.BoolVar(&debug, "debug", false, "print debug logs to stderr")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			commands.PrintCommandUsage(out, cmd)
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	if apiURL != "" {
		cfg.APIURL = config.NormalizeURL(apiURL)
	}
	cfg.Quiet = quiet
	cfg.Debug = cfg.Debug || debug

	log := logging.Setup(errOut, cfg.Debug)
	log.Debug("dispatch", "command", cmd.Name(), "config", cfg.Dir, "api", cfg.APIURL)

	if cmd.NeedsAuth() {
		if code := preflight(cfg, errOut); code != exitcode.Success {
			return code
		}
	}

	var svc service.Service
	if (cmd.NeedsAuth() || cmd.NeedsBackend()) && d.factory != nil {
		svc, err = d.factory(ctx, cfg)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
	}

	return cmd.Run(ctx, cfg, svc, fs.Args(), out, errOut)
}

// preflight refuses to start an authenticated command without usable
// credentials, so nothing is sent with a missing or expired token.
func preflight(cfg *config.Config, errOut io.Writer) int {
	store := session.NewStore(cfg.CredentialsPath())
	creds, err := store.Load()
	if err != nil {
		if !errors.Is(err, session.ErrNoCredentials) {
			logging.Logger().Debug("unreadable credentials", "error", err)
		}
		fmt.Fprintf(errOut, "error: %s\n", service.ErrNotLoggedIn)
		return exitcode.AuthError
	}
	if !creds.Token.Valid() {
		if err := store.Clear(); err != nil {
			logging.Logger().Debug("failed to clear credentials", "error", err)
		}
		fmt.Fprintf(errOut, "error: %s\n", service.ErrUnauthorized)
		return exitcode.AuthError
	}
	return exitcode.Success
}
