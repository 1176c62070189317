package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pipos/kmemtest/internal/harness"
	"github.com/pipos/kmemtest/internal/store"
)

// RunOptions holds flags for a harness run.
type RunOptions struct {
	*RootOptions
	CC       string
	CFlags   []string
	Sources  []string
	Cases    string
	Fuzz     int
	Seed     uint64
	Timeout  time.Duration
	Database string
	Keep     bool

	// IDs and Clock override run stamping (for testing).
	// If nil, runs get UUIDv7 IDs and wall-clock start times.
	IDs   harness.IDGenerator
	Clock harness.Clock
}

func addRunFlags(cmd *cobra.Command, opts *RunOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.CC, "cc", "", "C compiler (default: $CC, then gcc)")
	f.StringArrayVar(&opts.CFlags, "cflags", nil, "extra compiler flag (repeatable)")
	f.StringSliceVar(&opts.Sources, "source", nil, "C source files to test instead of the built-in reference")
	f.StringVar(&opts.Cases, "cases", "", "YAML case table (default: built-in table)")
	f.IntVar(&opts.Fuzz, "fuzz", 0, "randomized differential iterations against the Go reference (0 disables)")
	f.Uint64Var(&opts.Seed, "seed", 1, "seed for --fuzz")
	f.DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "compile timeout (0 disables)")
	f.StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	f.BoolVar(&opts.Keep, "keep", false, "keep the temporary workspace for debugging")
}

// newLogger configures slog on w based on the verbose flag and installs it as
// the default logger.
func newLogger(verbose bool, w io.Writer) *slog.Logger {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func runHarness(opts *RunOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.Verbose, out.GetErrWriter())

	if opts.Fuzz < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --fuzz %d: must be >= 0", opts.Fuzz))
	}

	cases := harness.DefaultCases()
	if opts.Cases != "" {
		loaded, err := harness.LoadCases(opts.Cases)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load cases", err)
		}
		cases = loaded
	}

	for _, src := range opts.Sources {
		if _, err := os.Stat(src); err != nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("source file not found: %s", src))
		}
	}

	var st *store.Store
	if opts.Database != "" {
		var err error
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	parentCtx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx := parentCtx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parentCtx, opts.Timeout)
		defer cancel()
	}

	rep, err := harness.Run(ctx, harness.Config{
		CC:            opts.CC,
		CFlags:        opts.CFlags,
		Sources:       opts.Sources,
		Cases:         cases,
		Fuzz:          harness.Fuzz{Iterations: opts.Fuzz, Seed: opts.Seed},
		KeepWorkspace: opts.Keep,
		Logger:        logger,
		IDs:           opts.IDs,
		Clock:         opts.Clock,
	})
	if err != nil {
		_ = out.Error(ErrCodeLoad, "failed to load module", err.Error())
		return WrapExitError(ExitFailure, "failed to load module", err)
	}

	out.VerboseLog("run %s compiled with %s", rep.RunID, rep.Compiler)

	if opts.Format == "json" {
		if err := renderJSON(out.Writer, rep); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else {
		renderText(out.Writer, NewStyles(out.Writer, opts.NoColor), rep)
	}

	if st != nil {
		if err := st.WriteRun(parentCtx, rep); err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		out.VerboseLog("run %s recorded in %s", rep.RunID, opts.Database)
	}

	return exitForReport(rep)
}

// exitForReport maps a finished report to the command's exit status.
func exitForReport(rep *harness.Report) error {
	if !rep.Compiled {
		return NewExitError(ExitFailure, "failed to compile test module")
	}
	if n := rep.Failed(); n > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d check(s) failed", n))
	}
	return nil
}
