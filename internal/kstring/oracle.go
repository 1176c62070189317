package kstring

// Oracle is the Go rendition of the kernel primitives. It satisfies the same
// call shape as a loaded module so checks can run against either.
type Oracle struct{}

// Strlen returns the number of bytes before the first NUL in s, or len(s)
// when s contains none.
func (Oracle) Strlen(s string) uint32 {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return uint32(i)
		}
	}
	return uint32(len(s))
}

// Memcmp compares the first n bytes of a and b.
func (Oracle) Memcmp(a, b []byte, n int) int32 {
	n = clamp(n, len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return int32(a[i]) - int32(b[i])
		}
	}
	return 0
}

// Memcpy copies the first n bytes of src into dst and returns dst.
func (Oracle) Memcpy(dst, src []byte, n int) []byte {
	n = clamp(n, len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] = src[i]
	}
	return dst
}

// Memset sets the first n bytes of dst to byte(c) and returns dst.
func (Oracle) Memset(dst []byte, c int32, n int) []byte {
	n = clamp(n, len(dst))
	v := byte(c)
	for i := 0; i < n; i++ {
		dst[i] = v
	}
	return dst
}

// clamp bounds n to [0, min(limits)].
func clamp(n int, limits ...int) int {
	if n < 0 {
		return 0
	}
	for _, l := range limits {
		if n > l {
			n = l
		}
	}
	return n
}
