//go:build !(darwin || freebsd || linux || netbsd)

package ffi

import (
	"errors"
	"runtime"
)

// ErrUnsupported is returned by Open on platforms without dlopen support.
var ErrUnsupported = errors.New("ffi: dynamic loading is not supported on " + runtime.GOOS)

// Open always fails on this platform.
func Open(path string) (*Library, error) {
	return nil, ErrUnsupported
}

// Close is a no-op on this platform.
func (l *Library) Close() error {
	return nil
}

func keepAlive(bufs ...[]byte) {
	for _, b := range bufs {
		runtime.KeepAlive(b)
	}
}
