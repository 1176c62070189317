package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Build waits for the compiler's output pipes
// after ctx is done. Children such as cc1 or as may outlive a killed driver.
const waitDelay = 5 * time.Second

// DefaultCC is used when neither a flag nor $CC names a compiler.
const DefaultCC = "gcc"

// CompileError reports a failed compile step.
type CompileError struct {
	CC          string
	Diagnostics string // captured compiler output, may be empty
	Err         error  // underlying failure
}

func (e *CompileError) Error() string {
	if e.Diagnostics != "" {
		return fmt.Sprintf("compilation failed (%s): %v\n%s", e.CC, e.Err, e.Diagnostics)
	}
	return fmt.Sprintf("compilation failed (%s): %v", e.CC, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// ResolveCC picks the compiler: explicit name first, then $CC, then DefaultCC.
func ResolveCC(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv("CC"); env != "" {
		return env
	}
	return DefaultCC
}

// Compiler builds shared objects with an external C compiler.
type Compiler struct {
	CC     string
	Flags  []string // appended after -shared -fPIC
	Logger *slog.Logger
}

// NewCompiler returns a Compiler for cc. An empty cc resolves via ResolveCC.
func NewCompiler(cc string, flags []string, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Compiler{
		CC:     ResolveCC(cc),
		Flags:  flags,
		Logger: logger,
	}
}

// Args returns the full compiler argument list for the given output and sources.
func (c *Compiler) Args(out string, sources ...string) []string {
	args := []string{"-shared", "-fPIC"}
	args = append(args, c.Flags...)
	args = append(args, "-o", out)
	return append(args, sources...)
}

// Build compiles sources into the shared object out.
// It blocks until the compiler exits or ctx is done.
func (c *Compiler) Build(ctx context.Context, out string, sources ...string) error {
	if len(sources) == 0 {
		return &CompileError{CC: c.CC, Err: errors.New("no source files")}
	}

	args := c.Args(out, sources...)
	c.Logger.Debug("invoking compiler", "cc", c.CC, "args", strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := c.command(ctx, args)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag == "" {
			diag = strings.TrimSpace(stdout.String())
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		c.Logger.Error("compiler failed", "cc", c.CC, "error", err)
		return &CompileError{CC: c.CC, Diagnostics: diag, Err: err}
	}

	if _, err := os.Stat(out); err != nil {
		return &CompileError{CC: c.CC, Err: fmt.Errorf("compiler produced no output: %w", err)}
	}

	c.Logger.Debug("compiler finished", "out", out)
	return nil
}

func (c *Compiler) command(ctx context.Context, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.CC, args...)
	cmd.WaitDelay = waitDelay
	return cmd
}
