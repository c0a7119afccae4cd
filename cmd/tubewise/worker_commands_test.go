package main

import (
	"errors"
	"testing"

	"tubewise/internal/daemonctl"
)

func TestWorkerStopWithoutDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"worker", "stop"}, env.configPath)
	if !errors.Is(err, daemonctl.ErrNotRunning) {
		t.Fatalf("err = %v, want ErrNotRunning", err)
	}
	requireContains(t, out, "not running")
}

func TestWorkerStatusWithoutDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"worker", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("worker status: %v", err)
	}
	requireContains(t, out, "Not running")
}
