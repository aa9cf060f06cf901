package amd64

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assemble(t *testing.T, f func(a *Assembler)) []byte {
	t.Helper()
	a := New()
	f(a)
	code, err := a.Finalize()
	require.NoError(t, err)
	return code
}

func TestEncodings(t *testing.T) {
	tests := []struct {
		name string
		emit func(a *Assembler)
		want []byte
	}{
		{"push rbp", func(a *Assembler) { a.PushReg(RBP) }, []byte{0x55}},
		{"push r12", func(a *Assembler) { a.PushReg(R12) }, []byte{0x41, 0x54}},
		{"pop rbx", func(a *Assembler) { a.PopReg(RBX) }, []byte{0x5B}},
		{"pop r12", func(a *Assembler) { a.PopReg(R12) }, []byte{0x41, 0x5C}},
		{"mov rbp, rsp", func(a *Assembler) { a.MovRegReg(RBP, RSP) }, []byte{0x48, 0x89, 0xE5}},
		{"mov rbx, rdi", func(a *Assembler) { a.MovRegReg(RBX, RDI) }, []byte{0x48, 0x89, 0xFB}},
		{"mov r12, rsi", func(a *Assembler) { a.MovRegReg(R12, RSI) }, []byte{0x49, 0x89, 0xF4}},
		{"mov rdi, r12", func(a *Assembler) { a.MovRegReg(RDI, R12) }, []byte{0x4C, 0x89, 0xE7}},
		{"mov rsi, rbx", func(a *Assembler) { a.MovRegReg(RSI, RBX) }, []byte{0x48, 0x89, 0xDE}},
		{"mov rax, imm64", func(a *Assembler) { a.MovRegImm64(RAX, 0x1122334455667788) },
			[]byte{0x48, 0xB8, 0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11}},
		{"mov r9, imm64", func(a *Assembler) { a.MovRegImm64(R9, 1) },
			[]byte{0x49, 0xB9, 1, 0, 0, 0, 0, 0, 0, 0}},
		{"movzx esi, [rbx]", func(a *Assembler) { a.MovzxRegMem8(RSI, RBX) }, []byte{0x0F, 0xB6, 0x33}},
		{"movzx eax, [r12]", func(a *Assembler) { a.MovzxRegMem8(RAX, R12) }, []byte{0x41, 0x0F, 0xB6, 0x04, 0x24}},
		{"movzx eax, [rbp]", func(a *Assembler) { a.MovzxRegMem8(RAX, RBP) }, []byte{0x0F, 0xB6, 0x45, 0x00}},
		{"add rbx, 1", func(a *Assembler) { a.AddRegImm(RBX, 1) }, []byte{0x48, 0x83, 0xC3, 0x01}},
		{"add rbx, 127", func(a *Assembler) { a.AddRegImm(RBX, 127) }, []byte{0x48, 0x83, 0xC3, 0x7F}},
		{"add rbx, 128", func(a *Assembler) { a.AddRegImm(RBX, 128) }, []byte{0x48, 0x81, 0xC3, 0x80, 0, 0, 0}},
		{"sub rbx, 3", func(a *Assembler) { a.SubRegImm(RBX, 3) }, []byte{0x48, 0x83, 0xEB, 0x03}},
		{"sub rbx, 1000", func(a *Assembler) { a.SubRegImm(RBX, 1000) }, []byte{0x48, 0x81, 0xEB, 0xE8, 0x03, 0, 0}},
		{"add byte [rbx], 2", func(a *Assembler) { a.AddMem8Imm(RBX, 2) }, []byte{0x80, 0x03, 0x02}},
		{"sub byte [rbx], 255", func(a *Assembler) { a.SubMem8Imm(RBX, 255) }, []byte{0x80, 0x2B, 0xFF}},
		{"cmp byte [rbx], 0", func(a *Assembler) { a.CmpMem8Imm(RBX, 0) }, []byte{0x80, 0x3B, 0x00}},
		{"add byte [r13], 1", func(a *Assembler) { a.AddMem8Imm(R13, 1) }, []byte{0x41, 0x80, 0x45, 0x00, 0x01}},
		{"test rax, rax", func(a *Assembler) { a.TestRegReg(RAX, RAX) }, []byte{0x48, 0x85, 0xC0}},
		{"xor eax, eax", func(a *Assembler) { a.XorRegReg32(RAX, RAX) }, []byte{0x31, 0xC0}},
		{"call rax", func(a *Assembler) { a.CallReg(RAX) }, []byte{0xFF, 0xD0}},
		{"call r11", func(a *Assembler) { a.CallReg(R11) }, []byte{0x41, 0xFF, 0xD3}},
		{"ret", func(a *Assembler) { a.Ret() }, []byte{0xC3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, assemble(t, tt.emit))
		})
	}
}

func TestForwardAndBackwardJumps(t *testing.T) {
	a := New()
	top := a.NewLabel()
	after := a.NewLabel()
	a.Jcc(CondZ, after) // 0..5
	require.NoError(t, a.Bind(top))
	a.Ret()            // 6
	a.Jcc(CondNZ, top) // 7..12, rel = 6 - 13 = -7
	require.NoError(t, a.Bind(after))
	a.Jmp(top) // 13..17, rel = 6 - 18 = -12
	code, err := a.Finalize()
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x0F, 0x84, 0x07, 0, 0, 0,
		0xC3,
		0x0F, 0x85, 0xF9, 0xFF, 0xFF, 0xFF,
		0xE9, 0xF4, 0xFF, 0xFF, 0xFF,
	}, code)
}

func TestUnboundLabelFails(t *testing.T) {
	a := New()
	a.Jmp(a.NewLabel())
	_, err := a.Finalize()
	assert.ErrorContains(t, err, "unbound label")
}

func TestBindTwiceFails(t *testing.T) {
	a := New()
	l := a.NewLabel()
	require.NoError(t, a.Bind(l))
	assert.Error(t, a.Bind(l))
	assert.Error(t, a.Bind(Label(42)))
}

func TestEmitAfterFinalizePanics(t *testing.T) {
	a := New()
	a.Ret()
	_, err := a.Finalize()
	require.NoError(t, err)
	assert.Panics(t, func() { a.Ret() })
}

func TestListing(t *testing.T) {
	a := New()
	l := a.NewLabel()
	require.NoError(t, a.Bind(l))
	a.CmpMem8Imm(RBX, 0)
	a.Jcc(CondNZ, l)
	_, err := a.Finalize()
	require.NoError(t, err)

	lines := a.Listing()
	require.Len(t, lines, 3)
	assert.Equal(t, Line{Offset: 0, Text: "L0:"}, lines[0])
	assert.Equal(t, Line{Offset: 0, Bytes: []byte{0x80, 0x3B, 0x00}, Text: "cmp byte [rbx], 0"}, lines[1])
	assert.Equal(t, Line{Offset: 3, Bytes: []byte{0x0F, 0x85, 0xF7, 0xFF, 0xFF, 0xFF}, Text: "jnz L0"}, lines[2])

	text := FormatListing(lines)
	assert.True(t, strings.HasSuffix(text, "jnz L0\n"))
	assert.Contains(t, text, "0f85f7ffffff")
}
