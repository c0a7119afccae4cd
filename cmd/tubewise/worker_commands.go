package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tubewise/internal/daemonctl"
	"tubewise/internal/daemonrun"
	"tubewise/internal/logging"
	"tubewise/internal/pipeline"
	"tubewise/internal/queue"
	"tubewise/internal/worker"
)

const daemonStartTimeout = 10 * time.Second

func newWorkerCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage the background worker daemon",
	}

	cmd.AddCommand(newWorkerStartCommand(ctx))
	cmd.AddCommand(newWorkerStopCommand(ctx))
	cmd.AddCommand(newWorkerStatusCommand(ctx))
	cmd.AddCommand(newWorkerDaemonCommand(ctx))
	cmd.AddCommand(newWorkerRunCommand(ctx))

	return cmd
}

func newWorkerStartCommand(ctx *commandContext) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the worker daemon in the background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			executable, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}

			result, err := daemonctl.Start(cfg, executable, daemonctl.LaunchOptions{
				ConfigPath: ctx.configPath(),
				Workers:    workers,
			}, daemonStartTimeout)
			if errors.Is(err, daemonctl.ErrAlreadyRunning) {
				fmt.Fprintln(cmd.OutOrStdout(), "Worker daemon is already running")
				return err
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Worker daemon started (pid %d, %d workers)\n", result.ControllerPID, result.Workers)
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of worker processes (defaults to the configured count)")

	return cmd
}

func newWorkerStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the worker daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			grace := time.Duration(cfg.Queue.StopGraceSeconds) * time.Second
			result, err := daemonctl.Stop(cfg, grace)
			if errors.Is(err, daemonctl.ErrNotRunning) {
				fmt.Fprintln(cmd.OutOrStdout(), "Worker daemon is not running")
				return err
			}
			if err != nil {
				return err
			}

			if result.ForcedKill {
				fmt.Fprintf(cmd.OutOrStdout(), "Worker daemon (pid %d) did not stop within %s and was killed\n", result.ControllerPID, grace)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Worker daemon stopped (pid %d)\n", result.ControllerPID)
			}
			return nil
		},
	}
}

func newWorkerStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the worker daemon's process state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			status, err := daemonctl.Inspect(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, line := range renderDaemonSection(status, shouldColorize(out)) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

// newWorkerDaemonCommand is the controller process entry point. It is spawned
// by `worker start` and not meant to be invoked by hand.
func newWorkerDaemonCommand(ctx *commandContext) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:    "daemon",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				ConfigPath: ctx.configPath(),
				Workers:    workers,
			})
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Number of worker processes")

	return cmd
}

// newWorkerRunCommand runs a single worker loop in the foreground. The daemon
// controller spawns one of these per configured worker.
func newWorkerRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:    "run",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			workerLogger := logging.NewComponentLogger(logger, "worker")

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("%w: %v", errStoreUnavailable, err)
			}
			defer store.Close()

			executor, err := pipeline.NewExecutor(runCtx, cfg, workerLogger)
			if err != nil {
				return err
			}

			return worker.New(cfg, store, executor, workerLogger).Run(runCtx)
		},
	}
}
