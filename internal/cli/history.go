package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pipos/kmemtest/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	RunID    string // optional - show one run with its checks
}

// HistoryEntry is one run in history output.
type HistoryEntry struct {
	RunID       string         `json:"run_id"`
	StartedAt   string         `json:"started_at"`
	Compiler    string         `json:"compiler"`
	Sources     []string       `json:"sources"`
	Compiled    bool           `json:"compiled"`
	Diagnostics string         `json:"diagnostics,omitempty"`
	Passed      int            `json:"passed"`
	Failed      int            `json:"failed"`
	Total       int            `json:"total"`
	Checks      []HistoryCheck `json:"checks,omitempty"`
}

// HistoryCheck is one check of a run in history output.
type HistoryCheck struct {
	Name     string   `json:"name"`
	Cases    int      `json:"cases"`
	Pass     bool     `json:"pass"`
	Failures []string `json:"failures"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded harness runs",
		Long: `List harness runs recorded with --db, newest first.

With --run, show a single run including every check and its failures.

Examples:
  kmemtest history --db ./kmemtest.db
  kmemtest history --db ./kmemtest.db --limit 5
  kmemtest history --db ./kmemtest.db --run <run-id> --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run by ID")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Database == "" {
		return NewExitError(ExitCommandError, `required flag(s) "db" not set`)
	}

	// Opening would create an empty database; a missing file is a usage error.
	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.Database))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.RunID != "" {
		run, err := st.GetRun(ctx, opts.RunID)
		if errors.Is(err, store.ErrRunNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		entry := toHistoryEntry(*run)
		if opts.Format == "json" {
			return out.Success(entry)
		}
		outputRunText(cmd, NewStyles(out.Writer, opts.NoColor), entry)
		return nil
	}

	out.VerboseLog("listing up to %d runs from %s", opts.Limit, opts.Database)
	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	entries := make([]HistoryEntry, 0, len(runs))
	for _, r := range runs {
		entries = append(entries, toHistoryEntry(r))
	}

	if opts.Format == "json" {
		return out.Success(entries)
	}
	outputHistoryText(cmd, NewStyles(out.Writer, opts.NoColor), entries)
	return nil
}

func toHistoryEntry(r store.RunRecord) HistoryEntry {
	sources := r.Sources
	if sources == nil {
		sources = []string{}
	}
	entry := HistoryEntry{
		RunID:       r.ID,
		StartedAt:   r.StartedAt.UTC().Format(time.RFC3339),
		Compiler:    r.Compiler,
		Sources:     sources,
		Compiled:    r.Compiled,
		Diagnostics: r.Diagnostics,
		Passed:      r.Passed,
		Failed:      r.Failed,
		Total:       r.Total,
	}
	for _, c := range r.Checks {
		failures := c.Failures
		if failures == nil {
			failures = []string{}
		}
		entry.Checks = append(entry.Checks, HistoryCheck{
			Name:     c.Name,
			Cases:    c.Cases,
			Pass:     c.Pass,
			Failures: failures,
		})
	}
	return entry
}

// runStatus summarizes a run in one word.
func runStatus(e HistoryEntry) (string, bool) {
	switch {
	case !e.Compiled:
		return "compile-failed", false
	case e.Failed > 0:
		return "failed", false
	default:
		return "passed", true
	}
}

func outputHistoryText(cmd *cobra.Command, st Styles, entries []HistoryEntry) {
	w := cmd.OutOrStdout()

	if len(entries) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	for _, e := range entries {
		status, ok := runStatus(e)
		fmt.Fprintf(w, "%s %s  %s  %-6s %d/%d  %s\n",
			st.Mark(ok), e.RunID, e.StartedAt, e.Compiler, e.Passed, e.Total, status)
	}
}

func outputRunText(cmd *cobra.Command, st Styles, e HistoryEntry) {
	w := cmd.OutOrStdout()
	status, ok := runStatus(e)

	fmt.Fprintf(w, "Run:      %s\n", e.RunID)
	fmt.Fprintf(w, "Started:  %s\n", e.StartedAt)
	fmt.Fprintf(w, "Compiler: %s\n", e.Compiler)
	if len(e.Sources) > 0 {
		fmt.Fprintf(w, "Sources:  %v\n", e.Sources)
	}
	fmt.Fprintf(w, "Result:   %s %s (%d/%d)\n", st.Mark(ok), status, e.Passed, e.Total)

	if !e.Compiled {
		fmt.Fprintln(w)
		fmt.Fprintln(w, e.Diagnostics)
		return
	}

	fmt.Fprintln(w)
	for _, c := range e.Checks {
		fmt.Fprintf(w, "%s %s (%d cases)\n", st.Mark(c.Pass), c.Name, c.Cases)
		for _, f := range c.Failures {
			fmt.Fprintf(w, "    %s\n", f)
		}
	}
}
