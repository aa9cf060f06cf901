// Completion: 100% - Platform-specific module complete
//go:build linux || darwin || freebsd

package jit

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/xyproto/jitbf/internal/diag"
)

// Executable is an anonymous mapping holding finished machine code. It is
// writable only while the code is copied in, then read+execute.
type Executable struct {
	mem []byte
}

// NewExecutable maps code into fresh executable memory.
func NewExecutable(code []byte) (*Executable, error) {
	if len(code) == 0 {
		return nil, diag.CodeGeneration("no code to map", nil)
	}
	size := pageRound(len(code))
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, diag.CodeGeneration(fmt.Sprintf("mapping %d bytes of code memory", size), err)
	}
	copy(mem, code)
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		unix.Munmap(mem)
		return nil, diag.CodeGeneration("making code memory executable", err)
	}
	log.Debugf("mapped %d bytes of code at %#x", len(code), uintptr(unsafe.Pointer(&mem[0])))
	return &Executable{mem: mem}, nil
}

// Addr returns the address of the first byte of code.
func (x *Executable) Addr() uintptr {
	return uintptr(unsafe.Pointer(&x.mem[0]))
}

// Release unmaps the code. The Executable must not be used afterwards.
func (x *Executable) Release() error {
	if x.mem == nil {
		return nil
	}
	err := unix.Munmap(x.mem)
	x.mem = nil
	return err
}

// Tape is a zero-filled cell buffer mapped between two inaccessible guard
// pages, so that running off either end faults instead of corrupting
// neighbouring memory.
type Tape struct {
	mapping []byte // guard + cells + guard
	cells   []byte
}

// NewTape maps a tape of at least size cells.
func NewTape(size int) (*Tape, error) {
	if size < 1 {
		return nil, fmt.Errorf("tape size must be positive, got %d", size)
	}
	page := unix.Getpagesize()
	body := pageRound(size)
	mapping, err := unix.Mmap(-1, 0, body+2*page, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mapping tape: %w", err)
	}
	if err := unix.Mprotect(mapping[page:page+body], unix.PROT_READ|unix.PROT_WRITE); err != nil {
		unix.Munmap(mapping)
		return nil, fmt.Errorf("unprotecting tape: %w", err)
	}
	return &Tape{mapping: mapping, cells: mapping[page : page+size : page+size]}, nil
}

// Cells exposes the tape contents.
func (t *Tape) Cells() []byte {
	return t.cells
}

// Base returns the address of cell 0.
func (t *Tape) Base() unsafe.Pointer {
	return unsafe.Pointer(&t.cells[0])
}

// Close unmaps the tape.
func (t *Tape) Close() error {
	if t.mapping == nil {
		return nil
	}
	err := unix.Munmap(t.mapping)
	t.mapping, t.cells = nil, nil
	return err
}

func pageRound(n int) int {
	page := unix.Getpagesize()
	return (n + page - 1) &^ (page - 1)
}
