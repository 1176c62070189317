package toolchain

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Workspace is a per-run temporary directory.
type Workspace struct {
	dir    string
	keep   bool
	closed bool
	logger *slog.Logger
}

// NewWorkspace creates a fresh temporary directory.
// A nil logger discards log output.
func NewWorkspace(logger *slog.Logger) (*Workspace, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dir, err := os.MkdirTemp("", "kmemtest-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	logger.Debug("workspace created", "dir", dir)

	return &Workspace{dir: dir, logger: logger}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the absolute path of name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// WriteSource writes text to name inside the workspace and returns its path.
func (w *Workspace) WriteSource(name, text string) (string, error) {
	path := w.Path(name)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

// Keep leaves the directory on disk when Close is called.
func (w *Workspace) Keep() {
	w.keep = true
}

// Close removes the workspace directory. Safe to call more than once.
func (w *Workspace) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.keep {
		w.logger.Info("keeping workspace", "dir", w.dir)
		return nil
	}
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("failed to remove workspace %s: %w", w.dir, err)
	}
	w.logger.Debug("workspace removed", "dir", w.dir)
	return nil
}
