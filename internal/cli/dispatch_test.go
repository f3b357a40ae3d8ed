package cli_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"taskpad/internal/cli"
	"taskpad/internal/commands"
	"taskpad/internal/config"
	"taskpad/internal/exitcode"
	"taskpad/internal/service"
	"taskpad/internal/session"
	"taskpad/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return svc, nil
	}
}

// run dispatches args with an isolated config directory.
func run(t *testing.T, svc *testutil.FakeService, dir string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	t.Setenv(config.EnvDebug, "")
	t.Setenv(config.EnvConfigDir, dir)

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))
	var outBuf, errBuf bytes.Buffer
	code = dispatcher.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func loggedInDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteCredentials(t, (&config.Config{Dir: dir}).CredentialsPath())
	return dir
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	_, stderr, code := run(t, testutil.NewFakeService(), t.TempDir(), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_UnknownCommandSuggests(t *testing.T) {
	_, stderr, code := run(t, testutil.NewFakeService(), t.TempDir(), "lisst")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: lisst\ndid you mean: list\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	_, stderr, code := run(t, testutil.NewFakeService(), t.TempDir(), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	stdout, stderr, code := run(t, testutil.NewFakeService(), t.TempDir(), "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_HelpFlag(t *testing.T) {
	stdout, _, code := run(t, testutil.NewFakeService(), t.TempDir(), "add", "--help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "taskpad add [--description <text>] <title...>") {
		t.Errorf("expected add usage, got %q", stdout)
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	stdout, stderr, code := run(t, testutil.NewFakeService(), t.TempDir(), "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskpad 0.1.0\n" {
		t.Errorf("expected 'taskpad 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	_, stderr, code := run(t, testutil.NewFakeService(), t.TempDir(), "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: --unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := run(t, svc, t.TempDir(), "list")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: taskpad login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.TotalCalls() != 0 {
		t.Error("no request should be sent without credentials")
	}
}

func TestDispatcher_ExpiredSession(t *testing.T) {
	svc := testutil.NewFakeService()
	dir := t.TempDir()
	store := session.NewStore((&config.Config{Dir: dir}).CredentialsPath())
	tok := testutil.SignToken(t, "user-1", time.Now().Add(-time.Minute))
	if err := store.Save(session.NewCredentials(tok, "bearer", "user-1", "")); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := run(t, svc, dir, "add", "milk")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: session expired (run: taskpad login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if store.Exists() {
		t.Error("expired credentials should be cleared")
	}
	if svc.TotalCalls() != 0 {
		t.Error("no request should be sent with an expired token")
	}
}

func TestDispatcher_NoArgsListsTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", false)

	stdout, stderr, code := run(t, svc, loggedInDir(t))

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "   1  [ ] Buy milk\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestDispatcher_CommandFlags(t *testing.T) {
	svc := testutil.NewFakeService()

	_, _, code := run(t, svc, loggedInDir(t), "add", "-q", "--description", "two litres", "Buy", "milk")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if svc.LastCreate.Title != "Buy milk" {
		t.Errorf("unexpected title %q", svc.LastCreate.Title)
	}
	if svc.LastCreate.Description == nil || *svc.LastCreate.Description != "two litres" {
		t.Errorf("unexpected description %v", svc.LastCreate.Description)
	}
}

func TestDispatcher_EditEmptyDescriptionFlag(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Task", false)

	_, stderr, code := run(t, svc, loggedInDir(t), "edit", "1", "--description=")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if svc.LastUpdate.Description == nil || *svc.LastUpdate.Description != "" {
		t.Errorf("expected description to be cleared, got %v", svc.LastUpdate.Description)
	}
}

func TestDispatcher_LoginNeedsNoCredentials(t *testing.T) {
	svc := testutil.NewFakeService()
	dir := t.TempDir()

	stdout, stderr, code := run(t, svc, dir, "login", "-e", "me@example.com", "-p", "secret-password")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if !session.NewStore((&config.Config{Dir: dir}).CredentialsPath()).Exists() {
		t.Error("expected credentials to be saved")
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	t.Setenv(config.EnvDebug, "")
	t.Setenv(config.EnvConfigDir, t.TempDir())
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return nil, errors.New("no route to host")
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"health"}, &stdout, &stderr)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr.String() != "error: backend error: no route to host\n" {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}

func TestDispatcher_APIURLOverride(t *testing.T) {
	var seen string
	t.Setenv(config.EnvDebug, "")
	t.Setenv(config.EnvConfigDir, t.TempDir())
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		seen = cfg.APIURL
		return testutil.NewFakeService(), nil
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	var stdout, stderr bytes.Buffer
	dispatcher.Run(context.Background(), []string{"health", "--api-url", "http://api.test:9000/"}, &stdout, &stderr)

	if seen != "http://api.test:9000" {
		t.Errorf("expected normalized override, got %q", seen)
	}
}
