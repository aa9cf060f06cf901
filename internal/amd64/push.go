// Completion: 100% - Instruction implementation complete
package amd64

// PUSH/POP for the function prologue and epilogue.

// PushReg pushes a 64-bit register: 0x50 + reg, REX.B for r8-r15.
func (a *Assembler) PushReg(r Reg) {
	if r.extended() {
		a.emit("push "+r.String(), rexBase|rexB, 0x50+r.low())
		return
	}
	a.emit("push "+r.String(), 0x50+r.low())
}

// PopReg pops into a 64-bit register: 0x58 + reg.
func (a *Assembler) PopReg(r Reg) {
	if r.extended() {
		a.emit("pop "+r.String(), rexBase|rexB, 0x58+r.low())
		return
	}
	a.emit("pop "+r.String(), 0x58+r.low())
}
