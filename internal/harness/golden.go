package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/pipos/kmemtest/internal/report"
)

// AssertGolden compares the canonical JSON of r against
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Reports compared this way should come from a run using a fixed IDGenerator
// and a deterministic Clock.
func AssertGolden(t *testing.T, name string, r *Report) {
	t.Helper()

	data, err := report.Marshal(r)
	if err != nil {
		t.Fatalf("failed to marshal report: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
