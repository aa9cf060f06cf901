// Completion: 100% - Instruction implementation complete
package amd64

import (
	"encoding/binary"
	"fmt"
)

// Group-1 opcode extensions (the reg field of ModR/M).
const (
	extAdd = 0
	extSub = 5
	extCmp = 7
)

var group1Names = map[uint8]string{extAdd: "add", extSub: "sub", extCmp: "cmp"}

// AddRegImm adds a sign-extended immediate to a 64-bit register.
func (a *Assembler) AddRegImm(dst Reg, imm int32) {
	a.group1RegImm(extAdd, dst, imm)
}

// SubRegImm subtracts a sign-extended immediate from a 64-bit register.
func (a *Assembler) SubRegImm(dst Reg, imm int32) {
	a.group1RegImm(extSub, dst, imm)
}

// group1RegImm picks the short imm8 form (83 /ext ib) when the value fits,
// else imm32 (81 /ext id).
func (a *Assembler) group1RegImm(ext uint8, dst Reg, imm int32) {
	prefix, _ := rex(true, 0, dst)
	text := fmt.Sprintf("%s %s, %d", group1Names[ext], dst, imm)
	if imm >= -128 && imm <= 127 {
		a.emit(text, prefix, 0x83, modrmReg(ext, dst), byte(int8(imm)))
		return
	}
	code := []byte{prefix, 0x81, modrmReg(ext, dst)}
	code = binary.LittleEndian.AppendUint32(code, uint32(imm))
	a.emit(text, code...)
}

// AddMem8Imm adds imm to the byte at [base], wrapping at 256 (80 /0 ib).
func (a *Assembler) AddMem8Imm(base Reg, imm uint8) {
	a.group1Mem8Imm(extAdd, base, imm)
}

// SubMem8Imm subtracts imm from the byte at [base] (80 /5 ib).
func (a *Assembler) SubMem8Imm(base Reg, imm uint8) {
	a.group1Mem8Imm(extSub, base, imm)
}

// CmpMem8Imm compares the byte at [base] with imm (80 /7 ib).
func (a *Assembler) CmpMem8Imm(base Reg, imm uint8) {
	a.group1Mem8Imm(extCmp, base, imm)
}

func (a *Assembler) group1Mem8Imm(ext uint8, base Reg, imm uint8) {
	var code []byte
	if prefix, ok := rex(false, 0, base); ok {
		code = append(code, prefix)
	}
	code = append(code, 0x80)
	code = append(code, memOperand(ext, base)...)
	code = append(code, imm)
	a.emit(fmt.Sprintf("%s byte [%s], %d", group1Names[ext], base, imm), code...)
}

// TestRegReg ANDs two 64-bit registers for flags only (REX.W 85 /r).
func (a *Assembler) TestRegReg(x, y Reg) {
	prefix, _ := rex(true, y, x)
	a.emit(fmt.Sprintf("test %s, %s", x, y), prefix, 0x85, modrmReg(uint8(y), x))
}

// XorRegReg32 is the usual zeroing idiom; writing the 32-bit half clears the
// whole register (31 /r).
func (a *Assembler) XorRegReg32(dst, src Reg) {
	var code []byte
	if prefix, ok := rex(false, src, dst); ok {
		code = append(code, prefix)
	}
	code = append(code, 0x31, modrmReg(uint8(src), dst))
	a.emit(fmt.Sprintf("xor %s, %s", dst.Name32(), src.Name32()), code...)
}
