package daemonctl_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tubewise/internal/daemonctl"
	"tubewise/internal/testsupport"
)

func TestReadRegistryMissingFile(t *testing.T) {
	reg, err := daemonctl.ReadRegistry(filepath.Join(t.TempDir(), "worker.registry"))
	if err != nil {
		t.Fatalf("expected nil error for missing registry, got %v", err)
	}
	if reg != nil {
		t.Fatalf("expected nil registry, got %#v", reg)
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.registry")
	want := &daemonctl.Registry{ControllerPID: 4000, WorkerPIDs: []int{4001, 4002}}
	if err := daemonctl.WriteRegistry(path, want); err != nil {
		t.Fatalf("WriteRegistry failed: %v", err)
	}

	got, err := daemonctl.ReadRegistry(path)
	if err != nil {
		t.Fatalf("ReadRegistry failed: %v", err)
	}
	if got.ControllerPID != want.ControllerPID {
		t.Fatalf("controller pid mismatch: %d", got.ControllerPID)
	}
	if len(got.WorkerPIDs) != 2 || got.WorkerPIDs[0] != 4001 || got.WorkerPIDs[1] != 4002 {
		t.Fatalf("worker pids mismatch: %v", got.WorkerPIDs)
	}
}

func TestReadRegistryRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.registry")
	if err := os.WriteFile(path, []byte("not-a-pid\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := daemonctl.ReadRegistry(path); err == nil {
		t.Fatal("expected error for invalid controller pid")
	}

	if err := os.WriteFile(path, []byte("123\nabc\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := daemonctl.ReadRegistry(path); err == nil {
		t.Fatal("expected error for invalid worker pid")
	}
}

func TestProcessAlive(t *testing.T) {
	if !daemonctl.ProcessAlive(os.Getpid()) {
		t.Fatal("expected current process to be alive")
	}
	if daemonctl.ProcessAlive(0) {
		t.Fatal("expected pid 0 to be rejected")
	}
	if daemonctl.ProcessAlive(-1) {
		t.Fatal("expected negative pid to be rejected")
	}
}

func TestStopWithoutRegistryReportsNotRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := daemonctl.Stop(cfg, time.Second)
	if err != daemonctl.ErrNotRunning {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
}

func TestStopCleansStaleRegistry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	// A registry left behind by a dead controller. Spawn-and-reap a
	// short-lived process so the pid is known dead.
	stale := &daemonctl.Registry{ControllerPID: 999999, WorkerPIDs: []int{999998}}
	if err := daemonctl.WriteRegistry(cfg.RegistryPath(), stale); err != nil {
		t.Fatalf("WriteRegistry failed: %v", err)
	}

	_, err := daemonctl.Stop(cfg, time.Second)
	if err != daemonctl.ErrNotRunning {
		t.Fatalf("expected ErrNotRunning for stale registry, got %v", err)
	}
	if _, statErr := os.Stat(cfg.RegistryPath()); !os.IsNotExist(statErr) {
		t.Fatal("expected stale registry to be removed")
	}
}

func TestInspectReportsPerWorkerLiveness(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	status, err := daemonctl.Inspect(cfg)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if status.Running || status.ControllerPID != 0 {
		t.Fatalf("expected empty status without registry, got %#v", status)
	}

	reg := &daemonctl.Registry{ControllerPID: os.Getpid(), WorkerPIDs: []int{os.Getpid(), 999999}}
	if err := daemonctl.WriteRegistry(cfg.RegistryPath(), reg); err != nil {
		t.Fatalf("WriteRegistry failed: %v", err)
	}

	status, err = daemonctl.Inspect(cfg)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected running controller")
	}
	if len(status.Workers) != 2 {
		t.Fatalf("expected 2 workers, got %d", len(status.Workers))
	}
	if !status.Workers[0].Alive || status.Workers[1].Alive {
		t.Fatalf("unexpected worker liveness: %#v", status.Workers)
	}
}
