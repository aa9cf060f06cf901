// Completion: 100% - Module complete

// Package hostio holds the two I/O primitives that running programs call
// back into: emit one byte and read one byte.
package hostio

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xyproto/jitbf/internal/diag"
)

// EOFPolicy decides what an input command stores when input is exhausted.
type EOFPolicy int

const (
	EOFZero      EOFPolicy = iota // store 0
	EOFUnchanged                  // leave the cell alone
	EOFMax                        // store 255
	EOFError                      // fail the run
)

var eofNames = map[EOFPolicy]string{
	EOFZero:      "zero",
	EOFUnchanged: "unchanged",
	EOFMax:       "max",
	EOFError:     "error",
}

func (p EOFPolicy) String() string {
	if s, ok := eofNames[p]; ok {
		return s
	}
	return fmt.Sprintf("EOFPolicy(%d)", int(p))
}

// EOFPolicyNames lists the accepted spellings, in declaration order.
func EOFPolicyNames() []string {
	return []string{"zero", "unchanged", "max", "error"}
}

// ParseEOFPolicy accepts the names printed by String, case-insensitively.
func ParseEOFPolicy(s string) (EOFPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zero", "0", "":
		return EOFZero, nil
	case "unchanged", "keep":
		return EOFUnchanged, nil
	case "max", "255", "-1":
		return EOFMax, nil
	case "error", "fail":
		return EOFError, nil
	default:
		return 0, fmt.Errorf("unknown EOF policy %q (supported: %s)", s, strings.Join(EOFPolicyNames(), ", "))
	}
}

// Host connects a running program to an output sink and an input source.
// It is used by one run at a time.
type Host struct {
	out     WriteFlusher
	in      io.ByteReader
	eof     EOFPolicy
	written int64
	read    int64
}

// New builds a Host. A nil out discards output, a nil in is always at EOF.
func New(out io.Writer, in io.Reader, eof EOFPolicy) *Host {
	return &Host{
		out: NewWriteFlusher(out),
		in:  NewByteReader(in),
		eof: eof,
	}
}

// EmitByte writes b to the output.
func (h *Host) EmitByte(b byte) error {
	var buf [1]byte
	buf[0] = b
	n, err := h.out.Write(buf[:])
	if err == nil && n != 1 {
		err = io.ErrShortWrite
	}
	if err != nil {
		return diag.IOFailure("output failed", err)
	}
	h.written++
	return nil
}

// ReadInto flushes pending output so prompts are visible, then blocks for
// one byte of input and stores it in cell. At end of input the EOF policy
// applies.
func (h *Host) ReadInto(cell *byte) error {
	if err := h.Flush(); err != nil {
		return err
	}
	b, err := h.in.ReadByte()
	switch {
	case err == nil:
		*cell = b
		h.read++
		return nil
	case errors.Is(err, io.EOF):
		switch h.eof {
		case EOFZero:
			*cell = 0
		case EOFMax:
			*cell = 0xFF
		case EOFUnchanged:
		default:
			return diag.IOFailure("unexpected end of input", io.EOF)
		}
		return nil
	default:
		return diag.IOFailure("input failed", err)
	}
}

// Flush pushes buffered output to the underlying writer.
func (h *Host) Flush() error {
	if err := h.out.Flush(); err != nil {
		return diag.IOFailure("flushing output failed", err)
	}
	return nil
}

// Counts returns how many bytes were written and read so far.
func (h *Host) Counts() (written, read int64) {
	return h.written, h.read
}
