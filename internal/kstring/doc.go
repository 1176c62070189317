// Package kstring holds the kernel's memory primitives in two forms: the C
// reference source that gets compiled into a loadable module, and a Go
// oracle with the same semantics.
//
// The four primitives are:
//
//   - k_memcmp: compares n bytes; the result is the difference of the first
//     mismatching pair, each byte widened as unsigned before subtraction
//   - k_memcpy: copies n bytes from src to dest (ranges must not overlap)
//   - k_strlen: counts the bytes preceding the NUL terminator
//   - memset:   writes the low 8 bits of c into the first n bytes
//
// None of them report errors. In C, lengths past the end of a buffer are
// undefined behavior; the Go oracle clamps them to the slice bounds instead.
package kstring
