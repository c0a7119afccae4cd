package main

import (
	"errors"
	"fmt"
	"testing"

	"tubewise/internal/daemonctl"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"generic", errors.New("boom"), exitFailure},
		{"already running", fmt.Errorf("start: %w", daemonctl.ErrAlreadyRunning), exitAlreadyRunning},
		{"not running", fmt.Errorf("stop: %w", daemonctl.ErrNotRunning), exitNotRunning},
		{"store unavailable", fmt.Errorf("%w: disk full", errStoreUnavailable), exitStoreUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCodeFor(tc.err); got != tc.want {
				t.Fatalf("exitCodeFor(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
