package testsupport

import (
	"path/filepath"
	"testing"

	"tubewise/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Queue.PollInterval = 1
	cfg.Queue.StopGraceSeconds = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithWorkers overrides the configured worker count.
func WithWorkers(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Queue.Workers = n
	}
}
