// Completion: 100% - Native code generation complete
package jit

import (
	"fmt"
	"math"

	"github.com/xyproto/jitbf/internal/amd64"
	"github.com/xyproto/jitbf/internal/diag"
	"github.com/xyproto/jitbf/internal/ir"
)

// Register roles inside generated code. Both live in callee-saved registers,
// so host calls never clobber them and nothing needs spilling around a call.
const (
	tapeReg    = amd64.RBX // current cell address
	sessionReg = amd64.R12 // opaque host session token
	scratchReg = amd64.RAX
)

// HostRoutines are the absolute addresses of the two C-ABI host routines.
//
//	Output(session, byte) status
//	Input(session, *cell) status
//
// A non-zero status ends the run early and is returned from the generated
// function.
type HostRoutines struct {
	Output uintptr
	Input  uintptr
}

// Code is generated machine code for one program.
type Code struct {
	Bytes   []byte
	Entry   int // offset of the entry point within Bytes
	Listing []amd64.Line
}

// loopLabels are the two labels of one loop: the first body instruction and
// the instruction after the closing jump.
type loopLabels struct {
	open  int // IR index of the JumpIfZero
	top   amd64.Label
	after amd64.Label
}

// Generate emits x86-64 System V code for prog. The result behaves as
//
//	uintptr fn(uint8_t *tape, uintptr_t session)
//
// returning 0 on success or the first non-zero host status.
func Generate(prog *ir.Program, host HostRoutines) (*Code, error) {
	a := amd64.New()
	exit := a.NewLabel()

	// prologue: three pushes after the return address leave rsp 16-byte
	// aligned for every call below
	a.PushReg(amd64.RBP)
	a.MovRegReg(amd64.RBP, amd64.RSP)
	a.PushReg(tapeReg)
	a.PushReg(sessionReg)
	a.MovRegReg(tapeReg, amd64.ArgRegs[0])
	a.MovRegReg(sessionReg, amd64.ArgRegs[1])

	var loops []loopLabels
	for i, in := range prog.Instrs {
		switch in.Op {
		case ir.ShiftRight:
			emitShift(a, in.Count, a.AddRegImm)
		case ir.ShiftLeft:
			emitShift(a, in.Count, a.SubRegImm)
		case ir.Add:
			if d := in.Delta(); d != 0 {
				a.AddMem8Imm(tapeReg, d)
			}
		case ir.Sub:
			if d := in.Delta(); d != 0 {
				a.SubMem8Imm(tapeReg, d)
			}
		case ir.Output:
			a.MovzxRegMem8(amd64.ArgRegs[1], tapeReg)
			emitHostCall(a, host.Output, exit)
		case ir.Input:
			a.MovRegReg(amd64.ArgRegs[1], tapeReg)
			emitHostCall(a, host.Input, exit)
		case ir.JumpIfZero:
			l := loopLabels{open: i, top: a.NewLabel(), after: a.NewLabel()}
			loops = append(loops, l)
			a.CmpMem8Imm(tapeReg, 0)
			a.Jcc(amd64.CondZ, l.after)
			if err := a.Bind(l.top); err != nil {
				return nil, diag.CodeGeneration("binding loop label", err)
			}
		case ir.JumpIfNonZero:
			if len(loops) == 0 {
				return nil, diag.CodeGeneration(fmt.Sprintf("instruction %d: loop close without open", i), nil)
			}
			l := loops[len(loops)-1]
			loops = loops[:len(loops)-1]
			if l.open != in.Target {
				return nil, diag.CodeGeneration(fmt.Sprintf("instruction %d: closes loop %d, innermost open loop is %d", i, in.Target, l.open), nil)
			}
			a.CmpMem8Imm(tapeReg, 0)
			a.Jcc(amd64.CondNZ, l.top)
			if err := a.Bind(l.after); err != nil {
				return nil, diag.CodeGeneration("binding loop label", err)
			}
		default:
			return nil, diag.CodeGeneration(fmt.Sprintf("instruction %d: unknown op %s", i, in.Op), nil)
		}
	}
	if len(loops) > 0 {
		return nil, diag.CodeGeneration(fmt.Sprintf("instruction %d: loop is never closed", loops[len(loops)-1].open), nil)
	}

	// epilogue
	a.XorRegReg32(scratchReg, scratchReg)
	if err := a.Bind(exit); err != nil {
		return nil, diag.CodeGeneration("binding exit label", err)
	}
	a.PopReg(sessionReg)
	a.PopReg(tapeReg)
	a.PopReg(amd64.RBP)
	a.Ret()

	code, err := a.Finalize()
	if err != nil {
		return nil, diag.CodeGeneration("resolving jumps", err)
	}
	log.Debugf("generated %d bytes for %d instructions", len(code), prog.Len())
	return &Code{Bytes: code, Listing: a.Listing()}, nil
}

// emitShift moves the tape pointer by n cells, split into steps that fit a
// sign-extended imm32.
func emitShift(a *amd64.Assembler, n int, op func(amd64.Reg, int32)) {
	for n > 0 {
		step := min(n, math.MaxInt32)
		op(tapeReg, int32(step))
		n -= step
	}
}

// emitHostCall calls a host routine with the session in the first argument
// register (the second is already loaded) and leaves through exit when the
// routine reports failure.
func emitHostCall(a *amd64.Assembler, routine uintptr, exit amd64.Label) {
	a.MovRegReg(amd64.ArgRegs[0], sessionReg)
	a.MovRegImm64(scratchReg, uint64(routine))
	a.CallReg(scratchReg)
	a.TestRegReg(amd64.ReturnReg, amd64.ReturnReg)
	a.Jcc(amd64.CondNZ, exit)
}
