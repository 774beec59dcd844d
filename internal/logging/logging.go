// Package logging builds the zap loggers used across GraphChat. CLI
// subcommands log to stderr; the fullscreen TUI owns the terminal, so
// its logger writes to a file under the config directory instead.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewCLI returns a stderr logger for non-interactive subcommands.
func NewCLI(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// NewTUI returns a file-backed logger for the interactive session. path
// may be empty, in which case <dir>/graphchat.log is used. The directory
// is created on demand.
func NewTUI(dir, path string, debug bool) (*zap.Logger, error) {
	if path == "" {
		path = filepath.Join(dir, "graphchat.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
