//go:build (linux || darwin || freebsd) && amd64

package jit

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyproto/jitbf/internal/diag"
	"github.com/xyproto/jitbf/internal/hostio"
	"github.com/xyproto/jitbf/internal/interp"
	"github.com/xyproto/jitbf/internal/ir"
)

const helloWorld = `++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++.`

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }
func (failingWriter) Flush() error                { return nil }

func compile(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := ir.Parse([]byte(src))
	require.NoError(t, err)
	p, err := Compile(prog)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func newTape(t *testing.T, size int) *Tape {
	t.Helper()
	tape, err := NewTape(size)
	require.NoError(t, err)
	t.Cleanup(func() { tape.Close() })
	return tape
}

func TestSupportedHere(t *testing.T) {
	assert.True(t, Supported())
}

func TestExecuteOutputsTwo(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Execute([]byte("++."), WithOutput(&out)))
	assert.Equal(t, []byte{2}, out.Bytes())
}

func TestExecuteHelloWorld(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Execute([]byte(helloWorld), WithOutput(&out)))
	assert.Equal(t, "Hello World!\n", out.String())
}

func TestClearLoopTerminates(t *testing.T) {
	p := compile(t, "+[-]")
	tape := newTape(t, 16)
	require.NoError(t, p.Run(tape, hostio.New(nil, nil, hostio.EOFZero)))
	assert.Zero(t, tape.Cells()[0])
}

func TestWraparound(t *testing.T) {
	p := compile(t, strings.Repeat("+", 255)+">-")
	tape := newTape(t, 4)
	require.NoError(t, p.Run(tape, hostio.New(nil, nil, hostio.EOFZero)))
	assert.Equal(t, []byte{255, 255, 0, 0}, tape.Cells())

	p = compile(t, strings.Repeat("+", 256))
	tape = newTape(t, 1)
	require.NoError(t, p.Run(tape, hostio.New(nil, nil, hostio.EOFZero)))
	assert.Zero(t, tape.Cells()[0])
}

func TestUnbalancedExecutesNothing(t *testing.T) {
	var out bytes.Buffer
	err := Execute([]byte(".+["), WithOutput(&out))
	assert.ErrorIs(t, err, diag.ErrUnbalancedLoop)
	assert.Empty(t, out.Bytes())
}

func TestMoveCell(t *testing.T) {
	p := compile(t, ">[-]<[->+<]")
	tape := newTape(t, 8)
	tape.Cells()[0] = 42
	tape.Cells()[1] = 9
	require.NoError(t, p.Run(tape, hostio.New(nil, nil, hostio.EOFZero)))
	assert.Equal(t, byte(0), tape.Cells()[0])
	assert.Equal(t, byte(42), tape.Cells()[1])
}

func TestRunTwiceIsDeterministic(t *testing.T) {
	p := compile(t, helloWorld)
	var first, second bytes.Buffer
	require.NoError(t, p.Run(newTape(t, 64), hostio.New(&first, nil, hostio.EOFZero)))
	require.NoError(t, p.Run(newTape(t, 64), hostio.New(&second, nil, hostio.EOFZero)))
	assert.Equal(t, first.String(), second.String())
}

func TestInputEcho(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Execute([]byte(",[.,]"), WithOutput(&out), WithInput(strings.NewReader("jit!"))))
	assert.Equal(t, "jit!", out.String())
}

func TestInputEOFPolicies(t *testing.T) {
	p := compile(t, "+++,")
	tape := newTape(t, 1)
	require.NoError(t, p.Run(tape, hostio.New(nil, nil, hostio.EOFUnchanged)))
	assert.Equal(t, byte(3), tape.Cells()[0])

	err := p.Run(tape, hostio.New(nil, nil, hostio.EOFError))
	assert.ErrorIs(t, err, diag.ErrIO)
}

func TestFailingWriterStopsRun(t *testing.T) {
	// the second output must never happen, so the cell is left at 1
	p := compile(t, "+.+.")
	tape := newTape(t, 1)
	err := p.Run(tape, hostio.New(failingWriter{}, nil, hostio.EOFZero))
	assert.ErrorIs(t, err, diag.ErrIO)
	assert.ErrorContains(t, err, "broken pipe")
	assert.Equal(t, byte(1), tape.Cells()[0])
}

func TestClosedProgramRefusesToRun(t *testing.T) {
	p := compile(t, "+")
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	err := p.Run(newTape(t, 1), hostio.New(nil, nil, hostio.EOFZero))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestConcurrentRuns(t *testing.T) {
	p := compile(t, helloWorld)
	var wg sync.WaitGroup
	outs := make([]bytes.Buffer, 8)
	errs := make([]error, len(outs))
	for i := range outs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tape, err := NewTape(64)
			if err != nil {
				errs[i] = err
				return
			}
			defer tape.Close()
			errs[i] = p.Run(tape, hostio.New(&outs[i], nil, hostio.EOFZero))
		}(i)
	}
	wg.Wait()
	for i := range outs {
		require.NoError(t, errs[i])
		assert.Equal(t, "Hello World!\n", outs[i].String())
	}
}

// randomProgram generates a balanced program whose loops always terminate:
// every loop body ends by clearing the cell it tests.
func randomProgram(r *rand.Rand, depth int) string {
	var sb strings.Builder
	for n := r.Intn(12); n > 0; n-- {
		switch k := r.Intn(10); {
		case k < 3:
			sb.WriteString(strings.Repeat("+", 1+r.Intn(300)))
		case k < 5:
			sb.WriteString(strings.Repeat("-", 1+r.Intn(300)))
		case k < 6:
			sb.WriteString(strings.Repeat(">", 1+r.Intn(4)))
		case k < 7:
			sb.WriteString(strings.Repeat("<", 1+r.Intn(4)))
		case k < 8:
			sb.WriteString(".")
		case k < 9:
			sb.WriteString(",")
		default:
			if depth < 3 {
				sb.WriteString("[")
				sb.WriteString(randomProgram(r, depth+1))
				sb.WriteString("[-]]")
			}
		}
	}
	return sb.String()
}

// The native code and the interpreter must agree on output and tape.
// Programs stay inside the first cells: moves are small and the tape starts
// in the middle, so neither backend clamps or faults.
func TestNativeMatchesInterpreter(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	const size = 4096
	const start = 2048
	for round := 0; round < 300; round++ {
		body := randomProgram(r, 0)
		src := strings.Repeat(">", start) + body
		input := make([]byte, r.Intn(8))
		r.Read(input)

		prog, err := ir.Parse([]byte(src))
		require.NoError(t, err)

		var interpOut bytes.Buffer
		m, err := interp.Run(prog, size, size, hostio.New(&interpOut, bytes.NewReader(input), hostio.EOFZero))
		require.NoError(t, err, "interpreter, program %q", body)

		p, err := Compile(prog)
		require.NoError(t, err)
		tape := newTape(t, size)
		var jitOut bytes.Buffer
		host := hostio.New(&jitOut, bytes.NewReader(input), hostio.EOFZero)
		require.NoError(t, p.Run(tape, host), "native, program %q", body)
		require.NoError(t, host.Flush())
		require.NoError(t, p.Close())

		require.Equal(t, interpOut.Bytes(), jitOut.Bytes(), "output of %q", body)
		require.Equal(t, m.Tape, tape.Cells(), "tape after %q", body)
	}
}

func TestTapeGuardLayout(t *testing.T) {
	tape := newTape(t, 10)
	assert.Len(t, tape.Cells(), 10)
	assert.Equal(t, 10, cap(tape.Cells()))
	require.NoError(t, tape.Close())
	require.NoError(t, tape.Close())

	_, err := NewTape(0)
	assert.Error(t, err)
}

func TestRunOnceReleasesEverything(t *testing.T) {
	prog, err := ir.Parse([]byte("++."))
	require.NoError(t, err)
	var out bytes.Buffer
	host := hostio.New(&out, nil, hostio.EOFZero)
	require.NoError(t, RunOnce(prog, 16, host))
	require.NoError(t, host.Flush())
	assert.Equal(t, []byte{2}, out.Bytes())

	_, err = NewTape(0)
	require.Error(t, err)
	err = RunOnce(prog, 0, host)
	assert.ErrorIs(t, err, diag.ErrCodeGeneration)
}
