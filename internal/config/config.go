package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"tubewise/internal/language"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	OutputDir string `toml:"output_dir"`
}

// Queue contains daemon polling intervals and worker counts.
type Queue struct {
	PollInterval     int `toml:"poll_interval"`
	Workers          int `toml:"workers"`
	StopGraceSeconds int `toml:"stop_grace_seconds"`
}

// Transcript contains settings for YouTube transcript retrieval.
type Transcript struct {
	Language       string `toml:"language"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Bedrock contains AWS Bedrock connection and summarization tuning.
type Bedrock struct {
	Region             string  `toml:"region"`
	ModelID            string  `toml:"model_id"`
	Temperature        float64 `toml:"temperature"`
	MaxTokens          int     `toml:"max_tokens"`
	SingleShotMaxWords int     `toml:"single_shot_max_words"`
	ChunkWords         int     `toml:"chunk_words"`
}

// Notion contains configuration for Notion page publishing.
type Notion struct {
	Enabled        bool   `toml:"enabled"`
	Token          string `toml:"token"`
	ParentPageID   string `toml:"parent_page_id"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for TubeWise.
//
// Configuration sections by subsystem:
//   - Paths: data, log, and output directories
//   - Queue: worker count and daemon polling intervals
//   - Transcript: YouTube caption retrieval settings
//   - Bedrock: AWS Bedrock model and summarization strategy tuning
//   - Notion: page publishing integration
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Queue      Queue      `toml:"queue"`
	Transcript Transcript `toml:"transcript"`
	Bedrock    Bedrock    `toml:"bedrock"`
	Notion     Notion     `toml:"notion"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/tubewise/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized, and secrets overlaid from the
// environment (including ~/.tubewise/.env when present).
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	loadDotenv()
	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotenv reads secret overlays from ~/.tubewise/.env, falling back to ./.env.
// Values already present in the environment win.
func loadDotenv() {
	if home, err := ExpandPath("~/.tubewise/.env"); err == nil {
		if _, statErr := os.Stat(home); statErr == nil {
			_ = godotenv.Load(home)
			return
		}
	}
	_ = godotenv.Load()
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("QUEUE_DB_PATH")); v != "" {
		c.Paths.DataDir = filepath.Dir(v)
	}
	if v := strings.TrimSpace(os.Getenv("AWS_REGION")); v != "" {
		c.Bedrock.Region = v
	}
	if v := strings.TrimSpace(os.Getenv("BEDROCK_MODEL_ID")); v != "" {
		c.Bedrock.ModelID = v
	}
	if v := strings.TrimSpace(os.Getenv("NOTION_TOKEN")); v != "" {
		c.Notion.Token = v
	}
	if v := strings.TrimSpace(os.Getenv("NOTION_PARENT_PAGE_ID")); v != "" {
		c.Notion.ParentPageID = v
	}
	if v := strings.TrimSpace(os.Getenv("TUBEWISE_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tubewise.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	for _, field := range []*string{&c.Paths.DataDir, &c.Paths.LogDir, &c.Paths.OutputDir} {
		expanded, err := ExpandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	if c.Queue.PollInterval <= 0 {
		c.Queue.PollInterval = defaultQueuePollInterval
	}
	if c.Queue.Workers <= 0 {
		c.Queue.Workers = defaultQueueWorkers
	}
	if c.Queue.StopGraceSeconds <= 0 {
		c.Queue.StopGraceSeconds = defaultStopGraceSeconds
	}
	if strings.TrimSpace(c.Transcript.Language) == "" {
		c.Transcript.Language = defaultTranscriptLanguage
	}
	// Accept "english" or "eng" in config, store the ISO 639-1 code.
	if normalized := language.Normalize(c.Transcript.Language); normalized != "" {
		c.Transcript.Language = normalized
	}
	if c.Transcript.RequestTimeout <= 0 {
		c.Transcript.RequestTimeout = defaultTranscriptTimeout
	}
	if c.Bedrock.SingleShotMaxWords <= 0 {
		c.Bedrock.SingleShotMaxWords = defaultSingleShotMaxWords
	}
	if c.Bedrock.ChunkWords <= 0 {
		c.Bedrock.ChunkWords = defaultChunkWords
	}
	if c.Bedrock.MaxTokens <= 0 {
		c.Bedrock.MaxTokens = defaultBedrockMaxTokens
	}
	if c.Notion.RequestTimeout <= 0 {
		c.Notion.RequestTimeout = defaultNotionTimeout
	}
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

// Validate checks configuration coherence before any subsystem starts.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		problems = append(problems, "paths.log_dir must not be empty")
	}
	if strings.TrimSpace(c.Bedrock.ModelID) == "" {
		problems = append(problems, "bedrock.model_id must not be empty")
	}
	if c.Bedrock.Temperature < 0 || c.Bedrock.Temperature > 1 {
		problems = append(problems, "bedrock.temperature must be between 0 and 1")
	}
	if c.Notion.Enabled && strings.TrimSpace(c.Notion.Token) == "" {
		problems = append(problems, "notion.token required when notion.enabled (set NOTION_TOKEN)")
	}
	if c.Notion.Enabled && strings.TrimSpace(c.Notion.ParentPageID) == "" {
		problems = append(problems, "notion.parent_page_id required when notion.enabled")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// EnsureDirectories creates the directories the runtime depends on.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.OutputDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// QueueDBPath returns the path to the SQLite job store.
func (c *Config) QueueDBPath() string {
	if v := strings.TrimSpace(os.Getenv("QUEUE_DB_PATH")); v != "" {
		return v
	}
	return filepath.Join(c.Paths.DataDir, "queue.db")
}

// RegistryPath returns the path to the daemon process registry file.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.Paths.DataDir, "worker.registry")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// WriteSampleConfig writes the sample configuration to path, refusing to overwrite.
func WriteSampleConfig(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves ~ and environment variables in a filesystem path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(os.ExpandEnv(trimmed))
}
