// Completion: 100% - Module complete
package ir

import (
	"fmt"
	"strings"
)

// Op is the kind of an IR instruction. The set is closed.
type Op uint8

const (
	ShiftRight Op = iota
	ShiftLeft
	Add
	Sub
	Output
	Input
	JumpIfZero
	JumpIfNonZero
)

func (op Op) String() string {
	switch op {
	case ShiftRight:
		return "ShiftRight"
	case ShiftLeft:
		return "ShiftLeft"
	case Add:
		return "Add"
	case Sub:
		return "Sub"
	case Output:
		return "Output"
	case Input:
		return "Input"
	case JumpIfZero:
		return "JumpIfZero"
	case JumpIfNonZero:
		return "JumpIfNonZero"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// Counted reports whether instructions of this kind carry a fold count.
func (op Op) Counted() bool {
	return op <= Sub
}

// Instr is one IR instruction.
//
// Count is the exact number of folded commands for ShiftRight, ShiftLeft,
// Add and Sub. Add and Sub apply it modulo 256 (see Delta).
//
// Target is only meaningful for the two jumps: it is the IR index of the
// partner jump, and a taken jump continues at Target+1.
type Instr struct {
	Op     Op
	Count  int
	Target int
}

// Delta is the amount an Add or Sub changes a cell by, after wraparound.
func (in Instr) Delta() uint8 {
	return uint8(in.Count)
}

func (in Instr) String() string {
	switch {
	case in.Op.Counted():
		return fmt.Sprintf("%s(%d)", in.Op, in.Count)
	case in.Op == JumpIfZero || in.Op == JumpIfNonZero:
		return fmt.Sprintf("%s(%d)", in.Op, in.Target)
	default:
		return in.Op.String()
	}
}

// Program is a folded instruction sequence with resolved jump targets.
type Program struct {
	Instrs []Instr
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Instrs)
}

// Validate checks that every jump names an in-range partner of the opposite
// kind that names it back, and that pairs nest properly.
func (p *Program) Validate() error {
	var open []int
	for i, in := range p.Instrs {
		switch in.Op {
		case ShiftRight, ShiftLeft, Add, Sub:
			if in.Count < 1 {
				return fmt.Errorf("instruction %d: %s has non-positive count", i, in)
			}
		case Output, Input:
		case JumpIfZero:
			if in.Target <= i || in.Target >= len(p.Instrs) {
				return fmt.Errorf("instruction %d: %s target out of range", i, in)
			}
			if partner := p.Instrs[in.Target]; partner.Op != JumpIfNonZero || partner.Target != i {
				return fmt.Errorf("instruction %d: %s is not paired with %s", i, in, partner)
			}
			open = append(open, i)
		case JumpIfNonZero:
			if len(open) == 0 || open[len(open)-1] != in.Target {
				return fmt.Errorf("instruction %d: %s does not close the innermost loop", i, in)
			}
			open = open[:len(open)-1]
		default:
			return fmt.Errorf("instruction %d: unknown op %d", i, in.Op)
		}
	}
	if len(open) > 0 {
		return fmt.Errorf("instruction %d: loop is never closed", open[len(open)-1])
	}
	return nil
}

// String renders a numbered listing, one instruction per line, indented by
// loop depth.
func (p *Program) String() string {
	var sb strings.Builder
	width := len(fmt.Sprint(len(p.Instrs)))
	depth := 0
	for i, in := range p.Instrs {
		if in.Op == JumpIfNonZero && depth > 0 {
			depth--
		}
		fmt.Fprintf(&sb, "%*d  %s%s\n", width, i, strings.Repeat("  ", depth), in)
		if in.Op == JumpIfZero {
			depth++
		}
	}
	return sb.String()
}
