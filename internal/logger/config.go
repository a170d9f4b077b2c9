package logger

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	DefaultLevel string            // trace, debug, info, warn, error
	Timezone     string            // "Local", "UTC", or IANA timezone name
	Console      *ConsoleOutput    // console output configuration
	FileOutput   *FileOutput       // file output configuration
	ModuleLevels map[string]string // per-module log levels
}

// ConsoleOutput represents console logging configuration.
// Console output uses human-readable text format.
type ConsoleOutput struct {
	Enabled bool
	Level   string
}

// FileOutput represents file logging configuration.
// File output uses JSON format and is rotated by lumberjack.
type FileOutput struct {
	Enabled    bool
	Path       string
	MaxSize    int // megabytes before rotation
	MaxAge     int // days to keep rotated logs (0 = no limit)
	MaxBackups int // rotated files to keep (0 = no limit)
	Compress   bool
	Level      string
}

const (
	DefaultLogLevel   = "info"
	DefaultLogPath    = "logs/pokeguess.log"
	DefaultMaxSize    = 100
	DefaultMaxAge     = 30
	DefaultMaxBackups = 10
)

// applyConfigDefaults fills nil sections so that a zero config still logs to the console.
func applyConfigDefaults(cfg *LoggingConfig) {
	if cfg == nil {
		return
	}

	if cfg.DefaultLevel == "" {
		cfg.DefaultLevel = DefaultLogLevel
	}

	if cfg.Console == nil {
		cfg.Console = &ConsoleOutput{
			Enabled: true,
			Level:   cfg.DefaultLevel,
		}
	}

	if cfg.FileOutput != nil && cfg.FileOutput.Enabled {
		if cfg.FileOutput.Path == "" {
			cfg.FileOutput.Path = DefaultLogPath
		}
		if cfg.FileOutput.MaxSize == 0 {
			cfg.FileOutput.MaxSize = DefaultMaxSize
		}
		if cfg.FileOutput.Level == "" {
			cfg.FileOutput.Level = cfg.DefaultLevel
		}
	}
}
