// Completion: 100% - Module complete

// Package interp runs folded IR directly. It is the portable backend and the
// reference the native code is checked against.
package interp

import (
	"errors"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/xyproto/jitbf/internal/diag"
	"github.com/xyproto/jitbf/internal/hostio"
	"github.com/xyproto/jitbf/internal/ir"
)

var log = commonlog.GetLogger("jitbf.interp")

// DefaultTapeLimit caps how far the tape may grow.
const DefaultTapeLimit = 1 << 24

// ErrTapeLimit is returned when the pointer moves past the tape limit.
var ErrTapeLimit = errors.New("tape limit exceeded")

// Machine holds the tape and pointer across one run.
type Machine struct {
	Tape  []byte
	Ptr   int
	Limit int
	Steps int64
}

// NewMachine returns a machine with an initial tape of size cells that may
// grow up to limit cells. A limit below size is raised to size.
func NewMachine(size, limit int) *Machine {
	if size < 1 {
		size = 1
	}
	if limit < size {
		limit = size
	}
	return &Machine{Tape: make([]byte, size), Limit: limit}
}

// Run executes prog to completion against host.
func (m *Machine) Run(prog *ir.Program, host *hostio.Host) error {
	instrs := prog.Instrs
	for pc := 0; pc < len(instrs); pc++ {
		in := instrs[pc]
		m.Steps++
		switch in.Op {
		case ir.ShiftRight:
			if in.Count > m.Limit-1-m.Ptr {
				return fmt.Errorf("instruction %d: pointer moved past cell %d: %w", pc, m.Limit-1, ErrTapeLimit)
			}
			m.Ptr += in.Count
			m.grow()
		case ir.ShiftLeft:
			m.Ptr -= in.Count
			if m.Ptr < 0 {
				m.Ptr = 0
			}
		case ir.Add:
			m.Tape[m.Ptr] += in.Delta()
		case ir.Sub:
			m.Tape[m.Ptr] -= in.Delta()
		case ir.Output:
			if err := host.EmitByte(m.Tape[m.Ptr]); err != nil {
				return err
			}
		case ir.Input:
			if err := host.ReadInto(&m.Tape[m.Ptr]); err != nil {
				return err
			}
		case ir.JumpIfZero:
			if m.Tape[m.Ptr] == 0 {
				pc = in.Target
			}
		case ir.JumpIfNonZero:
			if m.Tape[m.Ptr] != 0 {
				pc = in.Target
			}
		default:
			return diag.CodeGeneration(fmt.Sprintf("instruction %d: unknown op %s", pc, in.Op), nil)
		}
	}
	log.Debugf("ran %d instructions, tape grew to %d cells", m.Steps, len(m.Tape))
	return nil
}

// grow doubles the tape until Ptr is inside it, never beyond Limit.
func (m *Machine) grow() {
	if m.Ptr < len(m.Tape) {
		return
	}
	n := len(m.Tape)
	for n <= m.Ptr {
		n *= 2
	}
	if n > m.Limit {
		n = m.Limit
	}
	tape := make([]byte, n)
	copy(tape, m.Tape)
	m.Tape = tape
}

// Run interprets prog on a fresh tape of size cells, growing up to limit,
// and flushes the output at the end.
func Run(prog *ir.Program, size, limit int, host *hostio.Host) (*Machine, error) {
	if err := prog.Validate(); err != nil {
		return nil, diag.CodeGeneration("invalid program", err)
	}
	m := NewMachine(size, limit)
	err := m.Run(prog, host)
	if ferr := host.Flush(); err == nil {
		err = ferr
	}
	return m, err
}
