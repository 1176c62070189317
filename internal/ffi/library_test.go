//go:build darwin || freebsd || linux || netbsd

package ffi

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipos/kmemtest/internal/kstring"
	"github.com/pipos/kmemtest/internal/toolchain"
)

// buildModule compiles src into a shared object inside a test workspace.
func buildModule(t *testing.T, src string) string {
	t.Helper()

	cc := toolchain.ResolveCC("")
	if _, err := exec.LookPath(cc); err != nil {
		t.Skipf("C compiler %q not available: %v", cc, err)
	}

	ws, err := toolchain.NewWorkspace(nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	srcPath, err := ws.WriteSource(kstring.SourceFile, src)
	require.NoError(t, err)

	out := ws.Path("k_string.so")
	require.NoError(t, toolchain.NewCompiler(cc, nil, nil).Build(context.Background(), out, srcPath))
	return out
}

func openReference(t *testing.T) *Library {
	t.Helper()
	lib, err := Open(buildModule(t, kstring.Source()))
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open("/nonexistent/k_string.so")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load")
}

func TestOpenMissingSymbol(t *testing.T) {
	path := buildModule(t, "#include <stdint.h>\nuint32_t k_strlen(char *s) { return 0; }\n")

	_, err := Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to bind k_memcmp")
}

func TestLibraryStrlen(t *testing.T) {
	lib := openReference(t)

	assert.Equal(t, uint32(0), lib.Strlen(""))
	assert.Equal(t, uint32(1), lib.Strlen("a"))
	assert.Equal(t, uint32(5), lib.Strlen("hello"))
	assert.Equal(t, uint32(15), lib.Strlen("PIP-OS V7.1.0.8"))
}

func TestLibraryMemcmp(t *testing.T) {
	lib := openReference(t)

	assert.Equal(t, int32(0), lib.Memcmp([]byte("abc"), []byte("abd"), 2))
	assert.NotEqual(t, int32(0), lib.Memcmp([]byte("abc"), []byte("abd"), 3))
	assert.Equal(t, int32(-255), lib.Memcmp([]byte{0x00}, []byte{0xFF}, 1))
	assert.Equal(t, int32(0), lib.Memcmp(nil, nil, 4))
}

func TestLibraryMemcpy(t *testing.T) {
	lib := openReference(t)

	src := []byte("Hello PIP-OS")
	dst := make([]byte, len(src))
	ret := lib.Memcpy(dst, src, len(src))

	assert.Equal(t, src, dst)
	require.NotNil(t, ret)
	assert.Same(t, &dst[0], &ret[0])
}

func TestLibraryMemset(t *testing.T) {
	lib := openReference(t)

	buf := make([]byte, 10)
	ret := lib.Memset(buf, 0xAA, len(buf))

	assert.Equal(t, []byte{0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA}, buf)
	require.NotNil(t, ret)
	assert.Same(t, &buf[0], &ret[0])
}

func TestLibraryClampsLength(t *testing.T) {
	lib := openReference(t)

	buf := make([]byte, 3)
	lib.Memset(buf, 0x11, 100)
	assert.Equal(t, []byte{0x11, 0x11, 0x11}, buf)
}

func TestCloseIsIdempotent(t *testing.T) {
	lib, err := Open(buildModule(t, kstring.Source()))
	require.NoError(t, err)

	require.NoError(t, lib.Close())
	assert.NoError(t, lib.Close())
}
