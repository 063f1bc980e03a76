package config

const (
	defaultPollIntervalMS = 50
	defaultChunkSize      = 64 * 1024
	defaultStartOffset    = StartOffsetBeginning
	defaultLogFormat      = "auto"
	defaultLogLevel       = "info"
)

// Start offset policies accepted in stdio.start_offset.
const (
	StartOffsetBeginning = "beginning"
	StartOffsetEnd       = "end"
)

// Default returns a Config populated with repository defaults. Fields with
// an environment fallback are left empty until Load normalizes them.
func Default() Config {
	return Config{
		Stdio: Stdio{
			PollIntervalMS: defaultPollIntervalMS,
			ChunkSize:      defaultChunkSize,
			StartOffset:    defaultStartOffset,
		},
		// Level stays empty so TAILPIPE_LOG_LEVEL can fill it when the file
		// does not; normalize applies defaultLogLevel last.
		Logging: Logging{
			Format: defaultLogFormat,
		},
	}
}
