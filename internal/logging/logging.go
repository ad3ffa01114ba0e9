// v0
// internal/logging/logging.go
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

type DualLogger struct {
	Logger *slog.Logger
	file   *os.File
}

// New creates a slog logger that writes to both stdout and an append-only
// file at path. An empty path logs to stdout only.
func New(path string) (*DualLogger, error) {
	writers := []io.Writer{os.Stdout}

	var file *os.File
	if path != "" {
		// the default path nests under logs/, which won't exist on first boot
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		var err error
		file, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		writers = append(writers, file)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: slog.LevelInfo})
	return &DualLogger{Logger: slog.New(handler), file: file}, nil
}

// Close releases the log file, if one was opened.
func (d *DualLogger) Close() error {
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}
