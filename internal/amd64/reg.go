// Completion: 100% - Utility module complete
package amd64

// Reg is a 64-bit general purpose register, numbered by its encoding.
type Reg uint8

const (
	RAX Reg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

var regNames = [...]string{
	"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
}

var regNames32 = [...]string{
	"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi",
	"r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d",
}

func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return "r?"
}

// Name32 returns the name of the low 32 bits of r.
func (r Reg) Name32() string {
	if int(r) < len(regNames32) {
		return regNames32[r]
	}
	return "r?d"
}

// low is the 3-bit field that goes into ModR/M or the opcode.
func (r Reg) low() uint8 {
	return uint8(r) & 7
}

// extended reports whether r needs a REX extension bit.
func (r Reg) extended() bool {
	return r >= R8
}

// System V AMD64 roles
var (
	// ArgRegs carry the first integer arguments, in order.
	ArgRegs = []Reg{RDI, RSI, RDX, RCX, R8, R9}
	// CalleeSaved must be preserved across calls.
	CalleeSaved = []Reg{RBX, RBP, R12, R13, R14, R15}
	// ReturnReg carries an integer result.
	ReturnReg = RAX
)

const (
	rexBase = 0x40
	rexW    = 0x08 // 64-bit operand size
	rexR    = 0x04 // extends ModR/M reg
	rexB    = 0x01 // extends ModR/M r/m or opcode reg
)

// rex builds a REX prefix; ok is false when none is needed.
func rex(w bool, reg, rm Reg) (b uint8, ok bool) {
	b = rexBase
	if w {
		b |= rexW
	}
	if reg.extended() {
		b |= rexR
	}
	if rm.extended() {
		b |= rexB
	}
	return b, b != rexBase
}

// modrmReg encodes a register-direct ModR/M byte.
func modrmReg(reg uint8, rm Reg) uint8 {
	return 0xC0 | (reg&7)<<3 | rm.low()
}

// memOperand encodes [base] with no displacement. RSP/R12 as base need a
// SIB byte, RBP/R13 as base can only be expressed with a zero disp8.
func memOperand(reg uint8, base Reg) []byte {
	switch base.low() {
	case 4:
		return []byte{(reg&7)<<3 | 4, 0x24}
	case 5:
		return []byte{0x40 | (reg&7)<<3 | 5, 0x00}
	default:
		return []byte{(reg&7)<<3 | base.low()}
	}
}
