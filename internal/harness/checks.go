package harness

import (
	"bytes"
	"fmt"
)

// RunChecks executes the four checks against p in order, followed by the
// differential check when fuzz is enabled. A failing check never stops the
// ones after it.
func RunChecks(p Primitives, cases *Cases, fuzz Fuzz) []CheckResult {
	results := []CheckResult{
		checkStrlen(p, cases.Strlen),
		checkMemcmp(p, cases.Memcmp),
		checkMemcpy(p, cases.Memcpy),
		checkMemset(p, cases.Memset),
	}
	if fuzz.Enabled() {
		results = append(results, checkDifferential(p, fuzz))
	}
	return results
}

func checkStrlen(p Primitives, cases []StrlenCase) CheckResult {
	res := CheckResult{Name: CheckStrlen, Cases: len(cases)}
	for _, tc := range cases {
		got := p.Strlen(string(tc.Input))
		if got != tc.Want {
			res.addFailure(&AssertionError{
				Call:     fmt.Sprintf("k_strlen(%s)", tc.Input),
				Expected: fmt.Sprint(tc.Want),
				Actual:   fmt.Sprint(got),
			})
		}
	}
	return res
}

func checkMemcmp(p Primitives, cases []MemcmpCase) CheckResult {
	res := CheckResult{Name: CheckMemcmp, Cases: len(cases)}
	for _, tc := range cases {
		got := p.Memcmp(tc.A, tc.B, tc.N)
		if want, ok := memcmpMatches(tc, got); !ok {
			res.addFailure(&AssertionError{
				Call:     fmt.Sprintf("k_memcmp(%s, %s, %d)", tc.A, tc.B, tc.N),
				Expected: want,
				Actual:   fmt.Sprint(got),
			})
		}
	}
	return res
}

// memcmpMatches reports whether got satisfies the case, along with a
// description of what was expected.
func memcmpMatches(tc MemcmpCase, got int32) (string, bool) {
	if tc.Exact != nil {
		return fmt.Sprint(*tc.Exact), got == *tc.Exact
	}
	switch tc.Expect {
	case ExpectZero:
		return "0", got == 0
	case ExpectNonZero:
		return "non-zero", got != 0
	case ExpectNegative:
		return "negative", got < 0
	case ExpectPositive:
		return "positive", got > 0
	default:
		return fmt.Sprintf("unknown expectation %q", tc.Expect), false
	}
}

func checkMemcpy(p Primitives, cases []MemcpyCase) CheckResult {
	res := CheckResult{Name: CheckMemcpy, Cases: len(cases)}
	for _, tc := range cases {
		n := len(tc.Src)
		if tc.N != nil {
			n = *tc.N
		}
		dst := make([]byte, len(tc.Src))
		ret := p.Memcpy(dst, tc.Src, n)
		call := fmt.Sprintf("k_memcpy(dst[%d], %s, %d)", len(dst), tc.Src, n)

		if !sameBuffer(ret, dst) {
			res.addFailure(&AssertionError{Call: call, Expected: "dest returned", Actual: "different pointer"})
			continue
		}
		if !bytes.Equal(dst[:n], tc.Src[:n]) {
			res.addFailure(&AssertionError{Call: call, Expected: Bytes(tc.Src[:n]).String(), Actual: Bytes(dst[:n]).String()})
			continue
		}
		if i := firstNonZero(dst[n:]); i >= 0 {
			res.addFailure(&AssertionError{
				Call:     call,
				Expected: "bytes past n untouched",
				Actual:   fmt.Sprintf("dst[%d] = 0x%02x", n+i, dst[n+i]),
			})
		}
	}
	return res
}

func checkMemset(p Primitives, cases []MemsetCase) CheckResult {
	res := CheckResult{Name: CheckMemset, Cases: len(cases)}
	for _, tc := range cases {
		n := tc.Size
		if tc.N != nil {
			n = *tc.N
		}
		buf := make([]byte, tc.Size)
		ret := p.Memset(buf, tc.Value, n)
		call := fmt.Sprintf("memset(buf[%d], %s, %d)", tc.Size, fillValue(tc.Value), n)
		want := byte(tc.Value)

		if !sameBuffer(ret, buf) {
			res.addFailure(&AssertionError{Call: call, Expected: "s returned", Actual: "different pointer"})
			continue
		}
		for i := 0; i < n; i++ {
			if buf[i] != want {
				res.addFailure(&AssertionError{
					Call:     call,
					Expected: fmt.Sprintf("buf[%d] = 0x%02x", i, want),
					Actual:   fmt.Sprintf("0x%02x", buf[i]),
				})
				break
			}
		}
		if i := firstNonZero(buf[n:]); i >= 0 {
			res.addFailure(&AssertionError{
				Call:     call,
				Expected: "bytes past n untouched",
				Actual:   fmt.Sprintf("buf[%d] = 0x%02x", n+i, buf[n+i]),
			})
		}
	}
	return res
}

// sameBuffer reports whether ret refers to the same memory as buf.
func sameBuffer(ret, buf []byte) bool {
	if ret == nil {
		return false
	}
	if len(buf) == 0 {
		return len(ret) == 0
	}
	return len(ret) == len(buf) && &ret[0] == &buf[0]
}

// fillValue renders a memset argument; non-negative values in hex.
func fillValue(v int32) string {
	if v < 0 {
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("0x%x", v)
}

func firstNonZero(b []byte) int {
	for i, v := range b {
		if v != 0 {
			return i
		}
	}
	return -1
}
