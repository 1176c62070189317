package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipos/kmemtest/internal/kstring"
)

// offByOneStrlen counts the terminator.
type offByOneStrlen struct{ kstring.Oracle }

func (offByOneStrlen) Strlen(s string) uint32 { return uint32(len(s)) + 1 }

// signedMemcmp compares bytes as signed chars.
type signedMemcmp struct{ kstring.Oracle }

func (signedMemcmp) Memcmp(a, b []byte, n int) int32 {
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return int32(int8(a[i])) - int32(int8(b[i]))
		}
	}
	return 0
}

// shortMemcpy drops the last byte and returns a fresh buffer.
type shortMemcpy struct{ kstring.Oracle }

func (shortMemcpy) Memcpy(dst, src []byte, n int) []byte {
	copy(dst, src[:n-1])
	return dst
}

// lostDestMemcpy copies correctly but returns a different pointer.
type lostDestMemcpy struct{ kstring.Oracle }

func (o lostDestMemcpy) Memcpy(dst, src []byte, n int) []byte {
	o.Oracle.Memcpy(dst, src, n)
	return make([]byte, len(dst))
}

// overrunMemset writes the whole buffer regardless of n.
type overrunMemset struct{ kstring.Oracle }

func (o overrunMemset) Memset(dst []byte, c int32, n int) []byte {
	return o.Oracle.Memset(dst, c, len(dst))
}

func findCheck(t *testing.T, results []CheckResult, name string) CheckResult {
	t.Helper()
	for _, r := range results {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("check %s not found", name)
	return CheckResult{}
}

func TestRunChecksOracleDefaultCases(t *testing.T) {
	results := RunChecks(kstring.Oracle{}, DefaultCases(), Fuzz{})

	require.Len(t, results, 4)
	names := []string{results[0].Name, results[1].Name, results[2].Name, results[3].Name}
	assert.Equal(t, []string{CheckStrlen, CheckMemcmp, CheckMemcpy, CheckMemset}, names)

	for _, r := range results {
		assert.True(t, r.Pass(), "%s failures: %v", r.Name, r.Failures)
		assert.Positive(t, r.Cases)
	}
}

func TestRunChecksOracleExtendedCases(t *testing.T) {
	cases, err := LoadCases("testdata/cases/extended.yaml")
	require.NoError(t, err)

	for _, r := range RunChecks(kstring.Oracle{}, cases, Fuzz{}) {
		assert.True(t, r.Pass(), "%s failures: %v", r.Name, r.Failures)
	}
}

func TestStrlenMismatchContinues(t *testing.T) {
	results := RunChecks(offByOneStrlen{}, DefaultCases(), Fuzz{})
	require.Len(t, results, 4)

	strlen := findCheck(t, results, CheckStrlen)
	assert.False(t, strlen.Pass())
	assert.Len(t, strlen.Failures, 4)
	assert.Equal(t, `k_strlen("PIP-OS V7.1.0.8") = 16, expected 15`, strlen.Failures[3])

	// Remaining checks still ran and passed.
	for _, name := range []string{CheckMemcmp, CheckMemcpy, CheckMemset} {
		assert.True(t, findCheck(t, results, name).Pass(), name)
	}
}

func TestMemcmpExactCatchesSignedComparison(t *testing.T) {
	results := RunChecks(signedMemcmp{}, DefaultCases(), Fuzz{})

	memcmp := findCheck(t, results, CheckMemcmp)
	require.Len(t, memcmp.Failures, 1)
	assert.Equal(t, `k_memcmp("\x00", "\xff", 1) = 1, expected -255`, memcmp.Failures[0])
}

func TestMemcmpExpectations(t *testing.T) {
	exact := int32(-1)
	tests := []struct {
		tc   MemcmpCase
		got  int32
		want bool
	}{
		{MemcmpCase{Expect: ExpectZero}, 0, true},
		{MemcmpCase{Expect: ExpectZero}, 3, false},
		{MemcmpCase{Expect: ExpectNonZero}, -3, true},
		{MemcmpCase{Expect: ExpectNonZero}, 0, false},
		{MemcmpCase{Expect: ExpectNegative}, -1, true},
		{MemcmpCase{Expect: ExpectNegative}, 1, false},
		{MemcmpCase{Expect: ExpectPositive}, 1, true},
		{MemcmpCase{Expect: ExpectPositive}, 0, false},
		{MemcmpCase{Expect: ExpectPositive, Exact: &exact}, -1, true},
		{MemcmpCase{Exact: &exact}, -2, false},
		{MemcmpCase{Expect: "bogus"}, 0, false},
	}

	for _, tt := range tests {
		_, ok := memcmpMatches(tt.tc, tt.got)
		assert.Equal(t, tt.want, ok, "case %+v got %d", tt.tc, tt.got)
	}
}

func TestMemcpyFailures(t *testing.T) {
	cases := &Cases{Memcpy: []MemcpyCase{{Src: Bytes("Hello PIP-OS")}}}

	short := findCheck(t, RunChecks(shortMemcpy{}, cases, Fuzz{}), CheckMemcpy)
	require.Len(t, short.Failures, 1)
	assert.Contains(t, short.Failures[0], `expected "Hello PIP-OS"`)

	lost := findCheck(t, RunChecks(lostDestMemcpy{}, cases, Fuzz{}), CheckMemcpy)
	require.Len(t, lost.Failures, 1)
	assert.Contains(t, lost.Failures[0], "expected dest returned")
}

func TestMemsetOverrunDetected(t *testing.T) {
	n := 4
	cases := &Cases{Memset: []MemsetCase{{Size: 8, Value: 0x41, N: &n}}}

	res := findCheck(t, RunChecks(overrunMemset{}, cases, Fuzz{}), CheckMemset)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "memset(buf[8], 0x41, 4) = buf[4] = 0x41, expected bytes past n untouched", res.Failures[0])
}

func TestEmptyTablesPass(t *testing.T) {
	results := RunChecks(offByOneStrlen{}, &Cases{}, Fuzz{})
	for _, r := range results {
		assert.True(t, r.Pass())
		assert.Zero(t, r.Cases)
	}
}

func TestSameBuffer(t *testing.T) {
	buf := make([]byte, 4)
	assert.True(t, sameBuffer(buf, buf))
	assert.True(t, sameBuffer(buf[:4], buf))
	assert.False(t, sameBuffer(nil, buf))
	assert.False(t, sameBuffer(make([]byte, 4), buf))
	assert.True(t, sameBuffer([]byte{}, []byte{}))
}

func TestDifferentialOracleAgreesWithItself(t *testing.T) {
	results := RunChecks(kstring.Oracle{}, DefaultCases(), Fuzz{Iterations: 200, Seed: 7})
	require.Len(t, results, 5)

	diff := results[4]
	assert.Equal(t, CheckDifferential, diff.Name)
	assert.Equal(t, 800, diff.Cases)
	assert.True(t, diff.Pass(), "failures: %v", diff.Failures)
}

func TestDifferentialReportsMismatchesCapped(t *testing.T) {
	diff := findCheck(t, RunChecks(offByOneStrlen{}, &Cases{}, Fuzz{Iterations: 50, Seed: 1}), CheckDifferential)

	// Every strlen call disagrees, so 50 mismatches are capped at 10 lines plus a tail.
	require.Len(t, diff.Failures, maxReportedMismatches+1)
	assert.Equal(t, "... and 40 more mismatches", diff.Failures[maxReportedMismatches])
}

func TestDifferentialIsDeterministic(t *testing.T) {
	fuzz := Fuzz{Iterations: 25, Seed: 42}
	a := findCheck(t, RunChecks(signedMemcmp{}, &Cases{}, fuzz), CheckDifferential)
	b := findCheck(t, RunChecks(signedMemcmp{}, &Cases{}, fuzz), CheckDifferential)
	assert.Equal(t, a.Failures, b.Failures)
}
