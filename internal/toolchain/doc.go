// Package toolchain turns C source text into a loadable shared object.
//
// A Workspace owns a private temporary directory for one harness run. The
// generated source and the compiled module live inside it, and Close removes
// the whole directory. Callers defer Close immediately after NewWorkspace so
// the artifacts are gone on every exit path.
//
// Compiler wraps an external C compiler invoked as a subprocess. Any failure
// of the compile step, including a compiler that cannot be started, surfaces
// as a *CompileError carrying the captured diagnostic text.
package toolchain
