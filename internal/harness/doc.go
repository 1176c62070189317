// Package harness runs the memory-primitive conformance checks.
//
// A run compiles the primitives into a shared object, loads it, and executes
// four checks in a fixed order: k_strlen, k_memcmp, k_memcpy, memset. A
// mismatch fails only its own check; the remaining checks still run and the
// report aggregates the pass/fail count. When the compile step fails no
// checks run at all.
//
// # Case Tables
//
// Inputs and expectations come from a YAML case file. The built-in table is
// used unless another file is supplied:
//
//	strlen:
//	  - input: "PIP-OS V7.1.0.8"
//	    want: 15
//	memcmp:
//	  - a: abc
//	    b: abd
//	    n: 2
//	    expect: zero        # zero | nonzero | negative | positive
//	  - a: "hex:00"
//	    b: "hex:ff"
//	    n: 1
//	    exact: -255
//	memcpy:
//	  - src: "Hello PIP-OS"
//	    n: 5                # optional; defaults to len(src)
//	memset:
//	  - size: 10
//	    value: 0xAA
//	    n: 4                # optional; defaults to size
//
// Byte strings prefixed with "hex:" are hex decoded, so arbitrary bytes can
// be expressed. Case files are checked against a CUE schema before use;
// unknown fields are rejected.
//
// # Differential Checks
//
// With Fuzz.Iterations > 0 an extra "differential" check feeds seeded random
// inputs to both the loaded module and the Go oracle (kstring.Oracle) and
// reports every disagreement.
package harness
