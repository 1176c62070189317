package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pipos/kmemtest/internal/ffi"
	"github.com/pipos/kmemtest/internal/kstring"
	"github.com/pipos/kmemtest/internal/toolchain"
)

// moduleFile is the name of the compiled module inside the workspace.
const moduleFile = "k_string.so"

// Config controls a harness run. The zero value runs the built-in reference
// source and case table with the default compiler.
type Config struct {
	CC      string   // compiler; empty resolves via toolchain.ResolveCC
	CFlags  []string // extra compiler flags
	Sources []string // C files to test; empty compiles the built-in reference

	Cases *Cases // nil uses DefaultCases
	Fuzz  Fuzz

	KeepWorkspace bool

	Logger *slog.Logger
	IDs    IDGenerator
	Clock  Clock
}

func (c *Config) setDefaults() {
	if c.Cases == nil {
		c.Cases = DefaultCases()
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.IDs == nil {
		c.IDs = UUIDv7Generator{}
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
}

// Run compiles the primitives, loads the module and executes every check.
//
// A failed compile is not an error: the returned report has Compiled set to
// false, carries the compiler diagnostics and contains no checks. Run returns
// an error only when a compiled module cannot be loaded. The temporary
// workspace is removed before Run returns on every path.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	cfg.setDefaults()
	logger := cfg.Logger

	compiler := toolchain.NewCompiler(cfg.CC, cfg.CFlags, logger)
	report := &Report{
		RunID:     cfg.IDs.Generate(),
		StartedAt: cfg.Clock.Now(),
		Compiler:  compiler.CC,
		Sources:   cfg.Sources,
	}
	logger.Info("harness run starting", "run_id", report.RunID, "cc", compiler.CC)

	ws, err := toolchain.NewWorkspace(logger)
	if err != nil {
		report.Diagnostics = err.Error()
		logger.Error("compile step failed", "error", err)
		return report, nil
	}
	if cfg.KeepWorkspace {
		ws.Keep()
	}
	defer func() {
		if err := ws.Close(); err != nil {
			logger.Warn("workspace cleanup failed", "error", err)
		}
	}()

	modulePath, err := compile(ctx, compiler, ws, cfg.Sources)
	if err != nil {
		var compileErr *toolchain.CompileError
		if errors.As(err, &compileErr) && compileErr.Diagnostics != "" {
			report.Diagnostics = compileErr.Diagnostics
		} else {
			report.Diagnostics = err.Error()
		}
		logger.Error("compile step failed", "error", err)
		return report, nil
	}
	report.Compiled = true
	logger.Info("module compiled", "path", modulePath)

	lib, err := ffi.Open(modulePath)
	if err != nil {
		return report, fmt.Errorf("failed to load module: %w", err)
	}
	defer func() {
		if err := lib.Close(); err != nil {
			logger.Warn("module unload failed", "error", err)
		}
	}()

	report.Checks = RunChecks(lib, cfg.Cases, cfg.Fuzz)
	for _, c := range report.Checks {
		logger.Debug("check finished", "check", c.Name, "cases", c.Cases, "pass", c.Pass())
	}

	logger.Info("harness run finished",
		"run_id", report.RunID,
		"passed", report.Passed(),
		"failed", report.Failed(),
	)
	return report, nil
}

// compile writes the reference source when no sources were given and builds
// the module. Every failure is a *toolchain.CompileError.
func compile(ctx context.Context, c *toolchain.Compiler, ws *toolchain.Workspace, sources []string) (string, error) {
	if len(sources) == 0 {
		path, err := ws.WriteSource(kstring.SourceFile, kstring.Source())
		if err != nil {
			return "", &toolchain.CompileError{CC: c.CC, Err: err}
		}
		sources = []string{path}
	}

	out := ws.Path(moduleFile)
	if err := c.Build(ctx, out, sources...); err != nil {
		return "", err
	}
	return out, nil
}
