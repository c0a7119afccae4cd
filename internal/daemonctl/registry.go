package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"tubewise/internal/fileutil"
)

// Registry is the on-disk record of a daemon instance. The first line
// of the file is the controller pid; each following line is a worker
// pid. A registry on disk is a claim, not proof: callers must check
// liveness before trusting it.
type Registry struct {
	ControllerPID int
	WorkerPIDs    []int
}

// ReadRegistry parses the registry file at path. A missing file
// returns (nil, nil).
func ReadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read worker registry %q: %w", path, err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("worker registry %q is empty", path)
	}

	controller, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || controller <= 0 {
		return nil, fmt.Errorf("worker registry %q has invalid controller pid %q", path, lines[0])
	}

	reg := &Registry{ControllerPID: controller}
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pid, err := strconv.Atoi(line)
		if err != nil || pid <= 0 {
			return nil, fmt.Errorf("worker registry %q has invalid worker pid %q", path, line)
		}
		reg.WorkerPIDs = append(reg.WorkerPIDs, pid)
	}
	return reg, nil
}

// WriteRegistry atomically replaces the registry file at path.
func WriteRegistry(path string, reg *Registry) error {
	if reg == nil || reg.ControllerPID <= 0 {
		return fmt.Errorf("write worker registry: controller pid required")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", reg.ControllerPID)
	for _, pid := range reg.WorkerPIDs {
		fmt.Fprintf(&b, "%d\n", pid)
	}

	if err := fileutil.WriteFileAtomic(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write worker registry %q: %w", path, err)
	}
	return nil
}

// RemoveRegistry deletes the registry file, tolerating absence.
func RemoveRegistry(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove worker registry %q: %w", path, err)
	}
	return nil
}

// ProcessAlive reports whether pid refers to a live process. EPERM
// means the process exists but belongs to another user, which still
// counts as alive.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}
	return errors.Is(err, unix.EPERM)
}
