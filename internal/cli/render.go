package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pipos/kmemtest/internal/harness"
	"github.com/pipos/kmemtest/internal/report"
)

const ruleWidth = 40

// renderText writes the human-readable report: banner, compile outcome, one
// marker line per check with its failed cases above it, and the summary.
func renderText(w io.Writer, st Styles, r *harness.Report) {
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, st.Bold.Render("PIP-OS Memory Function Unit Tests"))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Compiling memory functions for testing...")
	if !r.Compiled {
		fmt.Fprintln(w, st.Fail.Render("Compilation failed:"))
		if diag := strings.TrimRight(r.Diagnostics, "\n"); diag != "" {
			fmt.Fprintln(w, diag)
		}
		fmt.Fprintln(w, st.Fail.Render("Failed to compile test module"))
		return
	}
	fmt.Fprintln(w, st.Pass.Render("Compilation successful"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Running tests...")
	for _, c := range r.Checks {
		for _, f := range c.Failures {
			fmt.Fprintf(w, "  %s %s\n", st.Fail.Render("Failed:"), f)
		}
		fmt.Fprintf(w, "%s %s tests\n", st.Mark(c.Pass()), c.Name)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, st.Bold.Render("Test Summary"))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%s %d/%d\n", st.Pass.Render("Passed:"), r.Passed(), r.Total())
	fmt.Fprintf(w, "%s %d/%d\n", st.Fail.Render("Failed:"), r.Failed(), r.Total())
	fmt.Fprintln(w)

	if r.OK() {
		fmt.Fprintln(w, st.Pass.Render("All tests passed!"))
	} else {
		fmt.Fprintln(w, st.Fail.Render("Some tests failed."))
	}
}

// renderJSON writes the report inside the CLIResponse envelope. The data
// payload is the canonical encoding of the report.
func renderJSON(w io.Writer, r *harness.Report) error {
	data, err := report.Marshal(r)
	if err != nil {
		return err
	}

	response := CLIResponse{
		Status: "ok",
		Data:   json.RawMessage(data),
		RunID:  r.RunID,
	}

	switch {
	case !r.Compiled:
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeCompile,
			Message: "failed to compile test module",
		}
	case r.Failed() > 0:
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeChecksFailed,
			Message: fmt.Sprintf("%d check(s) failed", r.Failed()),
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}
