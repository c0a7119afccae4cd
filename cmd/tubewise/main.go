package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"tubewise/internal/daemonctl"
)

// Exit codes are part of the CLI contract so shell scripts can branch
// on daemon state.
const (
	exitFailure          = 1
	exitAlreadyRunning   = 2
	exitNotRunning       = 3
	exitStoreUnavailable = 4
)

// errStoreUnavailable marks queue database open failures so main can
// map them to a distinct exit code.
var errStoreUnavailable = errors.New("queue store unavailable")

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, daemonctl.ErrAlreadyRunning):
		return exitAlreadyRunning
	case errors.Is(err, daemonctl.ErrNotRunning):
		return exitNotRunning
	case errors.Is(err, errStoreUnavailable):
		return exitStoreUnavailable
	default:
		return exitFailure
	}
}
