package config

const (
	defaultDataDir            = "~/.local/share/tubewise"
	defaultLogDir             = "~/.local/share/tubewise/logs"
	defaultOutputDir          = "~/tubewise-summaries"
	defaultQueuePollInterval  = 3
	defaultQueueWorkers       = 2
	defaultStopGraceSeconds   = 5
	defaultTranscriptLanguage = "en"
	defaultTranscriptTimeout  = 30
	defaultBedrockRegion      = "us-east-1"
	defaultBedrockModelID     = "anthropic.claude-3-5-sonnet-20241022-v2:0"
	defaultBedrockTemperature = 0.3
	defaultBedrockMaxTokens   = 4096
	defaultSingleShotMaxWords = 40000
	defaultChunkWords         = 8000
	defaultNotionTimeout      = 30
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			OutputDir: defaultOutputDir,
		},
		Queue: Queue{
			PollInterval:     defaultQueuePollInterval,
			Workers:          defaultQueueWorkers,
			StopGraceSeconds: defaultStopGraceSeconds,
		},
		Transcript: Transcript{
			Language:       defaultTranscriptLanguage,
			RequestTimeout: defaultTranscriptTimeout,
		},
		Bedrock: Bedrock{
			Region:             defaultBedrockRegion,
			ModelID:            defaultBedrockModelID,
			Temperature:        defaultBedrockTemperature,
			MaxTokens:          defaultBedrockMaxTokens,
			SingleShotMaxWords: defaultSingleShotMaxWords,
			ChunkWords:         defaultChunkWords,
		},
		Notion: Notion{
			RequestTimeout: defaultNotionTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
