// Completion: 100% - Platform-specific module complete
//go:build !(linux || darwin || freebsd)

package jit

import (
	"fmt"
	"unsafe"

	"github.com/xyproto/jitbf/internal/diag"
)

// Executable is never created on this platform.
type Executable struct{}

// NewExecutable always fails: there is no executable mapping support here.
func NewExecutable(code []byte) (*Executable, error) {
	return nil, diag.CodeGeneration("mapping code memory", diag.ErrUnsupportedPlatform)
}

// Addr returns the address of the first byte of code.
func (x *Executable) Addr() uintptr { return 0 }

// Release unmaps the code. The Executable must not be used afterwards.
func (x *Executable) Release() error { return nil }

// Tape is a plain heap buffer here, without guard pages.
type Tape struct {
	cells []byte
}

// NewTape allocates a zeroed tape of size cells.
func NewTape(size int) (*Tape, error) {
	if size < 1 {
		return nil, fmt.Errorf("tape size must be positive, got %d", size)
	}
	return &Tape{cells: make([]byte, size)}, nil
}

// Cells exposes the tape contents.
func (t *Tape) Cells() []byte { return t.cells }

// Base returns the address of cell 0.
func (t *Tape) Base() unsafe.Pointer { return unsafe.Pointer(&t.cells[0]) }

// Close drops the tape.
func (t *Tape) Close() error {
	t.cells = nil
	return nil
}
