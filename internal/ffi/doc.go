// Package ffi loads a compiled primitives module and binds its symbols to
// typed Go functions.
//
// Each symbol is looked up with dlsym and registered against an explicit Go
// signature before it is ever called, mirroring the C prototypes:
//
//	int       k_memcmp(const void *s1, const void *s2, size_t n);
//	void     *k_memcpy(void *dest, const void *src, size_t n);
//	uint32_t  k_strlen(char *s);
//	void     *memset(void *s, int c, size_t n);
//
// Lengths handed to the Library methods are clamped to the Go slice bounds
// so a caller cannot drive the C code past the end of a buffer.
package ffi
