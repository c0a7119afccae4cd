// Package daemonrun is the worker daemon controller runtime. The
// controller holds the single-instance lock, sweeps orphaned jobs back
// to the queue, spawns and supervises worker processes, and keeps the
// registry file in sync with the live set.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"tubewise/internal/config"
	"tubewise/internal/daemonctl"
	"tubewise/internal/logging"
	"tubewise/internal/queue"
)

// restartDelay spaces out respawns so a worker that dies on startup
// does not turn the controller into a fork loop.
const restartDelay = time.Second

// Options configures the daemon controller runtime.
type Options struct {
	ConfigPath string
	Workers    int
}

// Run starts the controller and blocks until the context is cancelled
// or a SIGINT/SIGTERM arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = cfg.Queue.Workers
	}
	if workers <= 0 {
		workers = 1
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logging.NewComponentLogger(logger, "daemon")

	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "tubewise.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return daemonctl.ErrAlreadyRunning
	}
	defer lock.Unlock()

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}
	defer store.Close()

	// Jobs left running by a previous daemon have no live owner now
	// that the lock is ours. Requeue them before any worker starts.
	swept, err := store.RequeueOrphans(signalCtx)
	if err != nil {
		logger.Error("orphan sweep failed", logging.Error(err))
		return err
	}
	if swept > 0 {
		logger.Info("requeued orphaned jobs", logging.Int64("count", swept))
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	sup := &supervisor{
		cfg:        cfg,
		logger:     logger,
		executable: executable,
		configPath: opts.ConfigPath,
		children:   make(map[int]*exec.Cmd),
		exits:      make(chan int, workers),
	}
	defer sup.terminateAll()

	for i := 0; i < workers; i++ {
		if err := sup.spawn(); err != nil {
			return err
		}
	}
	if err := sup.publishRegistry(); err != nil {
		return err
	}
	defer daemonctl.RemoveRegistry(cfg.RegistryPath())

	logger.Info("worker daemon started",
		logging.Int(logging.FieldPID, os.Getpid()),
		logging.Int("workers", workers),
	)

	sup.supervise(signalCtx)
	logger.Info("worker daemon shutting down")
	return nil
}

type supervisor struct {
	cfg        *config.Config
	logger     *slog.Logger
	executable string
	configPath string
	children   map[int]*exec.Cmd
	exits      chan int
}

func (s *supervisor) spawn() error {
	args := []string{"worker", "run"}
	if path := strings.TrimSpace(s.configPath); path != "" {
		args = append(args, "--config", path)
	}
	cmd := exec.Command(s.executable, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn worker process: %w", err)
	}
	pid := cmd.Process.Pid
	s.children[pid] = cmd
	s.logger.Info("worker process started", logging.Int(logging.FieldPID, pid))

	go func() {
		_ = cmd.Wait()
		s.exits <- pid
	}()
	return nil
}

func (s *supervisor) publishRegistry() error {
	reg := &daemonctl.Registry{ControllerPID: os.Getpid()}
	for pid := range s.children {
		reg.WorkerPIDs = append(reg.WorkerPIDs, pid)
	}
	sort.Ints(reg.WorkerPIDs)
	return daemonctl.WriteRegistry(s.cfg.RegistryPath(), reg)
}

// supervise restarts workers that die and returns once ctx is done.
func (s *supervisor) supervise(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case pid := <-s.exits:
			delete(s.children, pid)
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("worker process exited, restarting", logging.Int(logging.FieldPID, pid))
			select {
			case <-ctx.Done():
				return
			case <-time.After(restartDelay):
			}
			if err := s.spawn(); err != nil {
				s.logger.Error("worker restart failed", logging.Error(err))
				continue
			}
			if err := s.publishRegistry(); err != nil {
				s.logger.Error("registry update failed", logging.Error(err))
			}
		}
	}
}

// terminateAll signals every child with SIGTERM, waits out the grace
// period, then kills whatever is still alive.
func (s *supervisor) terminateAll() {
	if len(s.children) == 0 {
		return
	}
	for pid, cmd := range s.children {
		if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
			s.logger.Warn("failed to signal worker", logging.Int(logging.FieldPID, pid), logging.Error(err))
		}
	}

	grace := time.Duration(s.cfg.Queue.StopGraceSeconds) * time.Second
	deadline := time.NewTimer(grace)
	defer deadline.Stop()

	remaining := len(s.children)
	for remaining > 0 {
		select {
		case pid := <-s.exits:
			delete(s.children, pid)
			remaining--
		case <-deadline.C:
			for pid, cmd := range s.children {
				s.logger.Warn("worker did not stop in time, killing", logging.Int(logging.FieldPID, pid))
				_ = cmd.Process.Kill()
			}
			for remaining > 0 {
				pid := <-s.exits
				delete(s.children, pid)
				remaining--
			}
			return
		}
	}
}
