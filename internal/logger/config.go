package logger

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds logging configuration
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled *bool  `yaml:"console_enabled"`
	ConsoleFormat  string `yaml:"console_format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileFormat     string `yaml:"file_format"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
}

// DefaultConfig returns console text logging at INFO.
func DefaultConfig() Config {
	on := true
	return Config{
		Level:          "INFO",
		ConsoleEnabled: &on,
		ConsoleFormat:  "text",
		FilePath:       "logs/hexsolve.log",
		FileFormat:     "text",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// Merge fills the zero fields of c from defaults.
func (c Config) Merge(defaults Config) Config {
	if c.Level == "" {
		c.Level = defaults.Level
	}
	if c.ConsoleEnabled == nil {
		c.ConsoleEnabled = defaults.ConsoleEnabled
	}
	if c.ConsoleFormat == "" {
		c.ConsoleFormat = defaults.ConsoleFormat
	}
	if c.FilePath == "" {
		c.FilePath = defaults.FilePath
	}
	if c.FileFormat == "" {
		c.FileFormat = defaults.FileFormat
	}
	if c.FileMaxSizeMB <= 0 {
		c.FileMaxSizeMB = defaults.FileMaxSizeMB
	}
	if c.FileMaxBackups <= 0 {
		c.FileMaxBackups = defaults.FileMaxBackups
	}
	if c.FileMaxAgeDays <= 0 {
		c.FileMaxAgeDays = defaults.FileMaxAgeDays
	}
	return c
}

// Console reports whether console output is on.
func (c Config) Console() bool { return c.ConsoleEnabled == nil || *c.ConsoleEnabled }

// ApplyEnv applies the LOG_* environment overrides.
func (c Config) ApplyEnv() Config {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Level = v
	}
	if v := os.Getenv("LOG_CONSOLE_FORMAT"); v != "" {
		c.ConsoleFormat = v
	}
	if v := os.Getenv("LOG_FILE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.FileEnabled = enabled
		}
	}
	if v := os.Getenv("LOG_FILE_PATH"); v != "" {
		c.FilePath = v
	}
	return c
}

type loggingFile struct {
	Logging Config `yaml:"logging"`
}

// LoadConfig reads the logging block of a YAML file and applies environment
// overrides. A missing or unreadable file yields the defaults.
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			var lf loggingFile
			if err := yaml.Unmarshal(data, &lf); err == nil {
				config = lf.Logging.Merge(config)
			}
		}
	}
	return config.ApplyEnv(), nil
}
