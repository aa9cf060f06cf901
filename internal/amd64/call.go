// Completion: 100% - Instruction implementation complete
package amd64

// CallReg calls the absolute address held in r (FF /2).
func (a *Assembler) CallReg(r Reg) {
	if r.extended() {
		a.emit("call "+r.String(), rexBase|rexB, 0xFF, modrmReg(2, r))
		return
	}
	a.emit("call "+r.String(), 0xFF, modrmReg(2, r))
}

// Ret returns to the caller (C3).
func (a *Assembler) Ret() {
	a.emit("ret", 0xC3)
}
