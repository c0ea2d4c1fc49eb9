package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
)

type LoggerConfig struct {
	Name           string `json:"name" mapstructure:"name"`
	LogLevel       string `json:"logLevel" mapstructure:"logLevel"`
	JSONLogsFormat bool   `json:"jsonLogsFormat" mapstructure:"jsonLogsFormat"`
	LogFilePath    string `json:"logFilePath" mapstructure:"logFilePath"`
	AppendFile     bool   `json:"appendFile" mapstructure:"appendFile"`
}

// NewLogger creates root logger. When LogFilePath is set the output goes both to stdout and the file
func NewLogger(config LoggerConfig) (hclog.Logger, error) {
	level := hclog.LevelFromString(config.LogLevel)
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	var output io.Writer = os.Stdout

	if config.LogFilePath != "" {
		if err := CreateDirectoryIfNotExists(filepath.Dir(config.LogFilePath)); err != nil {
			return nil, fmt.Errorf("failed to create logs directory: %w", err)
		}

		flags := os.O_CREATE | os.O_WRONLY
		if config.AppendFile {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}

		file, err := os.OpenFile(config.LogFilePath, flags, 0640)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", config.LogFilePath, err)
		}

		output = io.MultiWriter(os.Stdout, file)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       config.Name,
		Level:      level,
		Output:     output,
		JSONFormat: config.JSONLogsFormat,
	}), nil
}
