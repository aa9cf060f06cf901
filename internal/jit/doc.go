// Package jit turns folded IR into x86-64 machine code and runs it.
//
// Generated code follows the System V AMD64 calling convention and is
// entered through a purego trampoline as
//
//	status = fn(tape, session)
//
// where tape is the address of cell 0 and session is an opaque token the
// code hands back to the output and input host routines. The tape pointer
// lives in rbx and the session in r12 for the whole call. There are no
// bounds checks; the tape is surrounded by guard pages instead.
package jit
