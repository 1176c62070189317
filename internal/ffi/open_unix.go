//go:build darwin || freebsd || linux || netbsd

package ffi

import (
	"fmt"
	"runtime"

	"github.com/ebitengine/purego"

	"github.com/pipos/kmemtest/internal/kstring"
)

// Open loads the shared object at path and binds the four primitives.
// A missing symbol is an error; the handle is released before returning it.
func Open(path string) (*Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	lib := &Library{path: path, handle: handle}
	bindings := []struct {
		name string
		fptr any
	}{
		{kstring.SymStrlen, &lib.strlen},
		{kstring.SymMemcmp, &lib.memcmp},
		{kstring.SymMemcpy, &lib.memcpy},
		{kstring.SymMemset, &lib.memset},
	}
	for _, b := range bindings {
		sym, err := purego.Dlsym(handle, b.name)
		if err != nil {
			purego.Dlclose(handle)
			return nil, fmt.Errorf("failed to bind %s: %w", b.name, err)
		}
		purego.RegisterFunc(b.fptr, sym)
	}

	return lib, nil
}

// Close unloads the module. The Library must not be used afterwards.
func (l *Library) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	if err != nil {
		return fmt.Errorf("failed to unload %s: %w", l.path, err)
	}
	return nil
}

func keepAlive(bufs ...[]byte) {
	for _, b := range bufs {
		runtime.KeepAlive(b)
	}
}
