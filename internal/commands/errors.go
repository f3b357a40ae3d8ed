package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"taskpad/internal/chat"
	"taskpad/internal/exitcode"
	"taskpad/internal/service"
	"taskpad/internal/tasks"
)

// reportError prints err in the CLI's "error: ..." form and returns the
// matching exit code.
func reportError(errOut io.Writer, err error) int {
	var verr *tasks.ValidationError
	switch {
	case errors.As(err, &verr):
		fmt.Fprintf(errOut, "error: %s\n", verr.Message)
		return exitcode.UserError
	case errors.Is(err, chat.ErrBusy), errors.Is(err, chat.ErrRateLimited):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrNotLoggedIn):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	case service.StatusCode(err) == http.StatusUnauthorized, service.StatusCode(err) == http.StatusForbidden:
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	// Remaining 4xx responses (duplicate email, rejected input) are the
	// caller's to fix.
	if code := service.StatusCode(err); code >= 400 && code < 500 {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}
