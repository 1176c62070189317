package harness

import (
	"bytes"
	"fmt"
	"math/rand/v2"

	"github.com/pipos/kmemtest/internal/kstring"
)

// maxFuzzLen bounds the random buffers fed to the primitives.
const maxFuzzLen = 64

// maxReportedMismatches caps the failure lines kept for the differential check.
const maxReportedMismatches = 10

// Fuzz configures the differential check.
type Fuzz struct {
	Iterations int
	Seed       uint64
}

// Enabled reports whether the differential check should run.
func (f Fuzz) Enabled() bool {
	return f.Iterations > 0
}

// checkDifferential compares p against the Go oracle on seeded random inputs.
// The same seed always produces the same inputs.
func checkDifferential(p Primitives, fuzz Fuzz) CheckResult {
	res := CheckResult{Name: CheckDifferential, Cases: fuzz.Iterations * 4}
	rng := rand.New(rand.NewPCG(fuzz.Seed, fuzz.Seed^0x9e3779b97f4a7c15))
	var oracle kstring.Oracle
	mismatches := 0

	report := func(err error) {
		mismatches++
		if mismatches <= maxReportedMismatches {
			res.addFailure(err)
		}
	}

	for i := 0; i < fuzz.Iterations; i++ {
		// k_strlen over a string without interior NULs.
		s := randomBytes(rng, rng.IntN(maxFuzzLen+1), true)
		if got, want := p.Strlen(string(s)), oracle.Strlen(string(s)); got != want {
			report(&AssertionError{
				Call:     fmt.Sprintf("[%d] k_strlen(%s)", i, Bytes(s)),
				Expected: fmt.Sprint(want),
				Actual:   fmt.Sprint(got),
			})
		}

		// k_memcmp over a pair sharing a random-length common prefix.
		a, b := randomPair(rng)
		n := rng.IntN(len(a) + 1)
		if got, want := p.Memcmp(a, b, n), oracle.Memcmp(a, b, n); got != want {
			report(&AssertionError{
				Call:     fmt.Sprintf("[%d] k_memcmp(%s, %s, %d)", i, Bytes(a), Bytes(b), n),
				Expected: fmt.Sprint(want),
				Actual:   fmt.Sprint(got),
			})
		}

		// k_memcpy round trip.
		src := randomBytes(rng, rng.IntN(maxFuzzLen+1), false)
		n = rng.IntN(len(src) + 1)
		got := make([]byte, len(src))
		want := make([]byte, len(src))
		p.Memcpy(got, src, n)
		oracle.Memcpy(want, src, n)
		if !bytes.Equal(got, want) {
			report(&AssertionError{
				Call:     fmt.Sprintf("[%d] k_memcpy(dst[%d], %s, %d)", i, len(src), Bytes(src), n),
				Expected: Bytes(want).String(),
				Actual:   Bytes(got).String(),
			})
		}

		// memset with a full-range int argument; only the low byte counts.
		size := rng.IntN(maxFuzzLen + 1)
		n = rng.IntN(size + 1)
		c := rng.Int32() - rng.Int32()
		got = make([]byte, size)
		want = make([]byte, size)
		p.Memset(got, c, n)
		oracle.Memset(want, c, n)
		if !bytes.Equal(got, want) {
			report(&AssertionError{
				Call:     fmt.Sprintf("[%d] memset(buf[%d], %s, %d)", i, size, fillValue(c), n),
				Expected: Bytes(want).String(),
				Actual:   Bytes(got).String(),
			})
		}
	}

	if mismatches > maxReportedMismatches {
		res.Failures = append(res.Failures,
			fmt.Sprintf("... and %d more mismatches", mismatches-maxReportedMismatches))
	}
	return res
}

// randomBytes returns n random bytes, avoiding zero when nonZero is set.
func randomBytes(rng *rand.Rand, n int, nonZero bool) []byte {
	b := make([]byte, n)
	for i := range b {
		if nonZero {
			b[i] = byte(1 + rng.IntN(255))
		} else {
			b[i] = byte(rng.IntN(256))
		}
	}
	return b
}

// randomPair returns two equal-length buffers that agree on a random prefix
// and usually differ in exactly one byte after it.
func randomPair(rng *rand.Rand) ([]byte, []byte) {
	a := randomBytes(rng, rng.IntN(maxFuzzLen+1), false)
	b := bytes.Clone(a)
	if len(b) > 0 && rng.IntN(4) != 0 {
		i := rng.IntN(len(b))
		b[i] = byte(rng.IntN(256))
	}
	return a, b
}
