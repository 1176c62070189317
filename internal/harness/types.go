package harness

import (
	"fmt"
	"time"
)

// Primitives is the call surface of the four kernel routines.
// Implemented by *ffi.Library (the compiled module) and kstring.Oracle.
type Primitives interface {
	Strlen(s string) uint32
	Memcmp(a, b []byte, n int) int32
	Memcpy(dst, src []byte, n int) []byte
	Memset(dst []byte, c int32, n int) []byte
}

// Check names, in execution order.
const (
	CheckStrlen       = "k_strlen"
	CheckMemcmp       = "k_memcmp"
	CheckMemcpy       = "k_memcpy"
	CheckMemset       = "memset"
	CheckDifferential = "differential"
)

// AssertionError describes one failed case.
type AssertionError struct {
	Call     string // rendered call, e.g. k_strlen("abc")
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s = %s, expected %s", e.Call, e.Actual, e.Expected)
}

// CheckResult is the outcome of one check over its case table.
type CheckResult struct {
	Name     string
	Cases    int
	Failures []string
}

// Pass reports whether every case of the check succeeded.
func (c CheckResult) Pass() bool {
	return len(c.Failures) == 0
}

// addFailure records a failed case.
func (c *CheckResult) addFailure(err error) {
	c.Failures = append(c.Failures, err.Error())
}

// CanonicalValue implements report.Canonical.
func (c CheckResult) CanonicalValue() any {
	failures := c.Failures
	if failures == nil {
		failures = []string{}
	}
	return map[string]any{
		"name":     c.Name,
		"pass":     c.Pass(),
		"cases":    c.Cases,
		"failures": failures,
	}
}

// Report is the outcome of a harness run.
type Report struct {
	RunID       string
	StartedAt   time.Time
	Compiler    string
	Sources     []string // user-supplied sources; empty means the built-in reference
	Compiled    bool
	Diagnostics string // compiler output when Compiled is false
	Checks      []CheckResult
}

// Passed returns the number of passing checks.
func (r *Report) Passed() int {
	n := 0
	for _, c := range r.Checks {
		if c.Pass() {
			n++
		}
	}
	return n
}

// Total returns the number of checks that ran.
func (r *Report) Total() int {
	return len(r.Checks)
}

// Failed returns the number of failing checks.
func (r *Report) Failed() int {
	return r.Total() - r.Passed()
}

// OK reports whether the module compiled and every check passed.
func (r *Report) OK() bool {
	return r.Compiled && r.Failed() == 0
}

// CanonicalValue implements report.Canonical.
func (r *Report) CanonicalValue() any {
	checks := make([]any, len(r.Checks))
	for i, c := range r.Checks {
		checks[i] = c
	}
	sources := r.Sources
	if sources == nil {
		sources = []string{}
	}

	v := map[string]any{
		"run_id":     r.RunID,
		"started_at": r.StartedAt.UTC().Format(time.RFC3339),
		"compiler":   r.Compiler,
		"sources":    sources,
		"compiled":   r.Compiled,
		"checks":     checks,
		"passed":     r.Passed(),
		"failed":     r.Failed(),
		"total":      r.Total(),
	}
	if r.Diagnostics != "" {
		v["diagnostics"] = r.Diagnostics
	}
	return v
}
