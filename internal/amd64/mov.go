// Completion: 100% - Instruction implementation complete
package amd64

import (
	"encoding/binary"
	"fmt"
)

// MovRegReg copies src into dst (MOV r/m64, r64: REX.W 89 /r).
func (a *Assembler) MovRegReg(dst, src Reg) {
	prefix, _ := rex(true, src, dst)
	a.emit(fmt.Sprintf("mov %s, %s", dst, src), prefix, 0x89, modrmReg(uint8(src), dst))
}

// MovRegImm64 loads a full 64-bit immediate (REX.W B8+r io). Used for
// absolute addresses of host routines.
func (a *Assembler) MovRegImm64(dst Reg, imm uint64) {
	prefix, _ := rex(true, 0, dst)
	code := []byte{prefix, 0xB8 + dst.low()}
	code = binary.LittleEndian.AppendUint64(code, imm)
	a.emit(fmt.Sprintf("mov %s, %#x", dst, imm), code...)
}

// MovzxRegMem8 zero-extends the byte at [base] into the 32-bit half of dst,
// which clears the upper half as well (0F B6 /r).
func (a *Assembler) MovzxRegMem8(dst, base Reg) {
	var code []byte
	if prefix, ok := rex(false, dst, base); ok {
		code = append(code, prefix)
	}
	code = append(code, 0x0F, 0xB6)
	code = append(code, memOperand(uint8(dst), base)...)
	a.emit(fmt.Sprintf("movzx %s, byte [%s]", dst.Name32(), base), code...)
}
