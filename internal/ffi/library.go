package ffi

import (
	"unsafe"
)

// Library is a loaded primitives module.
type Library struct {
	path   string
	handle uintptr

	strlen func(s string) uint32
	memcmp func(s1, s2 unsafe.Pointer, n uintptr) int32
	memcpy func(dest, src unsafe.Pointer, n uintptr) unsafe.Pointer
	memset func(s unsafe.Pointer, c int32, n uintptr) unsafe.Pointer
}

// Path returns the file the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

// Strlen calls k_strlen on a NUL-terminated copy of s.
func (l *Library) Strlen(s string) uint32 {
	return l.strlen(s)
}

// Memcmp calls k_memcmp over the first n bytes of a and b.
func (l *Library) Memcmp(a, b []byte, n int) int32 {
	n = clamp(n, len(a), len(b))
	ret := l.memcmp(bufPtr(a), bufPtr(b), uintptr(n))
	keepAlive(a, b)
	return ret
}

// Memcpy calls k_memcpy and returns dst when the C side returned dest,
// nil otherwise.
func (l *Library) Memcpy(dst, src []byte, n int) []byte {
	n = clamp(n, len(dst), len(src))
	p := bufPtr(dst)
	ret := l.memcpy(p, bufPtr(src), uintptr(n))
	keepAlive(dst, src)
	if ret != p {
		return nil
	}
	return dst
}

// Memset calls memset over the first n bytes of dst and returns dst when the
// C side returned s, nil otherwise.
func (l *Library) Memset(dst []byte, c int32, n int) []byte {
	n = clamp(n, len(dst))
	p := bufPtr(dst)
	ret := l.memset(p, c, uintptr(n))
	keepAlive(dst)
	if ret != p {
		return nil
	}
	return dst
}

func bufPtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

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
