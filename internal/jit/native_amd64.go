// Completion: 100% - Platform-specific module complete
//go:build (linux || darwin || freebsd) && amd64

package jit

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// nativeSupported is true where generated code can be entered.
const nativeSupported = true

// entryFunc is the Go view of a generated function.
type entryFunc func(tape unsafe.Pointer, session uintptr) uintptr

var (
	routinesOnce sync.Once
	routines     HostRoutines
)

// hostRoutines turns the host routines into C-ABI function pointers. The
// callback table is process-wide and never freed, so this happens once.
func hostRoutines() HostRoutines {
	routinesOnce.Do(func() {
		routines = HostRoutines{
			Output: purego.NewCallback(hostOutput),
			Input:  purego.NewCallback(hostInput),
		}
	})
	return routines
}

// bind gives the code in x a typed Go entry point.
func bind(x *Executable) (entryFunc, error) {
	var fn entryFunc
	purego.RegisterFunc(&fn, x.Addr())
	return fn, nil
}
