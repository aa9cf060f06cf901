// Completion: 100% - Platform-specific module complete
//go:build !((linux || darwin || freebsd) && amd64)

package jit

import (
	"unsafe"

	"github.com/xyproto/jitbf/internal/diag"
)

const nativeSupported = false

type entryFunc func(tape unsafe.Pointer, session uintptr) uintptr

// hostRoutines has no callbacks to offer here; code generated with these
// placeholder addresses is only good for listings.
func hostRoutines() HostRoutines {
	return HostRoutines{}
}

// bind fails here; Compile checks Supported before it gets this far.
func bind(x *Executable) (entryFunc, error) {
	return nil, diag.CodeGeneration("binding native entry", diag.ErrUnsupportedPlatform)
}
