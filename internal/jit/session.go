// Completion: 100% - Module complete
package jit

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/xyproto/jitbf/internal/diag"
	"github.com/xyproto/jitbf/internal/hostio"
)

// Host routine status codes returned to generated code.
const (
	statusOK      uintptr = 0
	statusFailed  uintptr = 1
	statusUnknown uintptr = 2 // session token not registered
)

// session is the per-run state the host routines reach through the token
// passed in the first argument register.
type session struct {
	host *hostio.Host
	err  error
}

var (
	sessions    sync.Map // uintptr -> *session
	lastSession atomic.Uintptr
)

// openSession registers host under a fresh non-zero token.
func openSession(host *hostio.Host) (uintptr, *session) {
	id := lastSession.Add(1)
	s := &session{host: host}
	sessions.Store(id, s)
	return id, s
}

func closeSession(id uintptr) {
	sessions.Delete(id)
}

func lookupSession(id uintptr) *session {
	v, ok := sessions.Load(id)
	if !ok {
		return nil
	}
	return v.(*session)
}

// hostOutput is called from generated code for every output command.
// Panics are turned into errors here so nothing unwinds through native
// frames.
func hostOutput(id uintptr, b uintptr) (status uintptr) {
	s := lookupSession(id)
	if s == nil {
		return statusUnknown
	}
	defer func() {
		if r := recover(); r != nil {
			s.err = diag.IOFailure("output routine panicked", fmt.Errorf("%v", r))
			status = statusFailed
		}
	}()
	if err := s.host.EmitByte(byte(b)); err != nil {
		s.err = err
		return statusFailed
	}
	return statusOK
}

// hostInput is called from generated code for every input command with the
// address of the current cell.
func hostInput(id uintptr, cell *byte) (status uintptr) {
	s := lookupSession(id)
	if s == nil {
		return statusUnknown
	}
	defer func() {
		if r := recover(); r != nil {
			s.err = diag.IOFailure("input routine panicked", fmt.Errorf("%v", r))
			status = statusFailed
		}
	}()
	if err := s.host.ReadInto(cell); err != nil {
		s.err = err
		return statusFailed
	}
	return statusOK
}

// result converts the status returned by generated code into an error.
func (s *session) result(status uintptr) error {
	switch {
	case status == statusOK:
		return nil
	case s.err != nil:
		return s.err
	case status == statusUnknown:
		return diag.IOFailure("host routine called with an unknown session", nil)
	default:
		return diag.IOFailure(fmt.Sprintf("host routine failed with status %d", status), nil)
	}
}
