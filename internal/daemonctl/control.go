package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"tubewise/internal/config"
)

// ErrAlreadyRunning indicates a live daemon controller already owns the registry.
var ErrAlreadyRunning = errors.New("worker daemon already running")

// ErrNotRunning indicates no live daemon controller was found.
var ErrNotRunning = errors.New("worker daemon not running")

const registryPollInterval = 200 * time.Millisecond

// LaunchOptions controls daemon process launch behavior.
type LaunchOptions struct {
	ConfigPath string
	Workers    int
}

// StartResult captures daemon start orchestration state.
type StartResult struct {
	ControllerPID int
	Workers       int
}

// StopResult captures daemon stop outcome.
type StopResult struct {
	ControllerPID int
	ForcedKill    bool
}

// WorkerStatus is the liveness of a single registered worker.
type WorkerStatus struct {
	PID   int
	Alive bool
}

// Status describes the daemon as seen from the registry file.
type Status struct {
	Running       bool
	ControllerPID int
	Workers       []WorkerStatus
}

// Start launches a detached daemon controller and waits for it to
// publish a live registry. A stale registry left by a dead controller
// is removed before launching.
func Start(cfg *config.Config, executablePath string, opts LaunchOptions, waitTimeout time.Duration) (StartResult, error) {
	if strings.TrimSpace(executablePath) == "" {
		return StartResult{}, fmt.Errorf("resolve executable: executable path is empty")
	}

	registryPath := cfg.RegistryPath()
	reg, err := ReadRegistry(registryPath)
	if err != nil {
		return StartResult{}, err
	}
	if reg != nil {
		if ProcessAlive(reg.ControllerPID) {
			return StartResult{}, ErrAlreadyRunning
		}
		if err := RemoveRegistry(registryPath); err != nil {
			return StartResult{}, err
		}
	}

	args := []string{"worker", "daemon"}
	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		args = append(args, "--config", path)
	}
	if opts.Workers > 0 {
		args = append(args, "--workers", strconv.Itoa(opts.Workers))
	}

	proc := exec.Command(executablePath, args...)
	proc.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := proc.Start(); err != nil {
		return StartResult{}, fmt.Errorf("launch worker daemon: %w", err)
	}
	controllerPID := proc.Process.Pid
	if err := proc.Process.Release(); err != nil {
		return StartResult{}, fmt.Errorf("detach worker daemon: %w", err)
	}

	reg, err = waitForRegistry(registryPath, controllerPID, waitTimeout)
	if err != nil {
		return StartResult{}, err
	}
	return StartResult{ControllerPID: reg.ControllerPID, Workers: len(reg.WorkerPIDs)}, nil
}

func waitForRegistry(path string, controllerPID int, timeout time.Duration) (*Registry, error) {
	deadline := time.Now().Add(timeout)
	for {
		reg, err := ReadRegistry(path)
		if err == nil && reg != nil && reg.ControllerPID == controllerPID && len(reg.WorkerPIDs) > 0 {
			return reg, nil
		}
		if !ProcessAlive(controllerPID) {
			return nil, fmt.Errorf("worker daemon exited during startup (pid %d)", controllerPID)
		}
		if time.Now().After(deadline) {
			if err != nil {
				return nil, fmt.Errorf("worker daemon failed to start: %w", err)
			}
			return nil, fmt.Errorf("worker daemon failed to start within %s", timeout)
		}
		time.Sleep(registryPollInterval)
	}
}

// Stop terminates a running daemon. The controller gets SIGTERM and a
// grace period to shut its workers down; whatever survives is killed
// and the registry is removed either way.
func Stop(cfg *config.Config, gracePeriod time.Duration) (StopResult, error) {
	registryPath := cfg.RegistryPath()
	reg, err := ReadRegistry(registryPath)
	if err != nil {
		return StopResult{}, err
	}
	if reg == nil {
		return StopResult{}, ErrNotRunning
	}
	if !ProcessAlive(reg.ControllerPID) {
		// Stale registry from a crashed controller. Clean it up so a
		// later start does not trip over it.
		if err := RemoveRegistry(registryPath); err != nil {
			return StopResult{}, err
		}
		return StopResult{}, ErrNotRunning
	}
	if reg.ControllerPID == os.Getpid() {
		return StopResult{}, fmt.Errorf("refusing to stop current process (pid %d)", reg.ControllerPID)
	}

	result := StopResult{ControllerPID: reg.ControllerPID}
	if err := unix.Kill(reg.ControllerPID, unix.SIGTERM); err != nil && !errors.Is(err, unix.ESRCH) {
		return result, fmt.Errorf("signal worker daemon %d: %w", reg.ControllerPID, err)
	}

	deadline := time.Now().Add(gracePeriod)
	for time.Now().Before(deadline) {
		if !ProcessAlive(reg.ControllerPID) {
			if err := RemoveRegistry(registryPath); err != nil {
				return result, err
			}
			return result, nil
		}
		time.Sleep(registryPollInterval)
	}

	// Grace expired. Kill the controller and every registered worker.
	result.ForcedKill = true
	_ = unix.Kill(reg.ControllerPID, unix.SIGKILL)
	for _, pid := range reg.WorkerPIDs {
		if pid > 0 && pid != os.Getpid() {
			_ = unix.Kill(pid, unix.SIGKILL)
		}
	}
	if err := RemoveRegistry(registryPath); err != nil {
		return result, err
	}
	return result, nil
}

// Inspect reads the registry and checks liveness of each registered pid.
func Inspect(cfg *config.Config) (Status, error) {
	reg, err := ReadRegistry(cfg.RegistryPath())
	if err != nil {
		return Status{}, err
	}
	if reg == nil {
		return Status{}, nil
	}

	status := Status{
		Running:       ProcessAlive(reg.ControllerPID),
		ControllerPID: reg.ControllerPID,
	}
	for _, pid := range reg.WorkerPIDs {
		status.Workers = append(status.Workers, WorkerStatus{PID: pid, Alive: ProcessAlive(pid)})
	}
	return status, nil
}
