package kstring

import _ "embed"

//go:embed csrc/k_string.c
var source string

// Exported symbol names as they appear in the compiled module.
const (
	SymMemcmp = "k_memcmp"
	SymMemcpy = "k_memcpy"
	SymStrlen = "k_strlen"
	SymMemset = "memset"
)

// SourceFile is the file name used when the reference source is written out.
const SourceFile = "k_string.c"

// Symbols lists every symbol a module must export, in check order.
func Symbols() []string {
	return []string{SymStrlen, SymMemcmp, SymMemcpy, SymMemset}
}

// Source returns the C reference implementation of the four primitives.
func Source() string {
	return source
}
