// Completion: 100% - Execution trampoline complete
package jit

import (
	"errors"
	"io"
	"runtime"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/xyproto/jitbf/internal/diag"
	"github.com/xyproto/jitbf/internal/engine"
	"github.com/xyproto/jitbf/internal/hostio"
	"github.com/xyproto/jitbf/internal/ir"
)

var log = commonlog.GetLogger("jitbf.jit")

// DefaultTapeSize is the number of cells a run gets unless told otherwise.
const DefaultTapeSize = 65536

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("jit: program is closed")

// Supported reports whether this build can run generated code on the host.
func Supported() bool {
	return nativeSupported && engine.Host().JITSupported()
}

// Program is compiled native code ready to run. Run may be called any number
// of times, also concurrently, until Close.
type Program struct {
	mu    sync.RWMutex
	exec  *Executable
	entry entryFunc
	code  *Code
}

// Compile generates and maps native code for prog.
func Compile(prog *ir.Program) (*Program, error) {
	if !Supported() {
		return nil, diag.CodeGeneration("cannot run native code on "+engine.Host().String(), diag.ErrUnsupportedPlatform)
	}
	if err := prog.Validate(); err != nil {
		return nil, diag.CodeGeneration("invalid program", err)
	}
	code, err := Generate(prog, hostRoutines())
	if err != nil {
		return nil, err
	}
	exec, err := NewExecutable(code.Bytes)
	if err != nil {
		return nil, err
	}
	entry, err := bind(exec)
	if err != nil {
		exec.Release()
		return nil, err
	}
	return &Program{exec: exec, entry: entry, code: code}, nil
}

// Assemble generates code for prog without mapping it, for listings. Where
// native code cannot run the host routine addresses are zero.
func Assemble(prog *ir.Program) (*Code, error) {
	if err := prog.Validate(); err != nil {
		return nil, diag.CodeGeneration("invalid program", err)
	}
	return Generate(prog, hostRoutines())
}

// Code returns the generated machine code and its listing.
func (p *Program) Code() *Code {
	return p.code
}

// Run executes the program once against tape, with I/O going through host.
// Output is not flushed; that is up to the caller.
func (p *Program) Run(tape *Tape, host *hostio.Host) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.exec == nil {
		return ErrClosed
	}

	id, s := openSession(host)
	defer closeSession(id)

	log.Debugf("entering native code at %#x with session %d", p.exec.Addr(), id)
	status := p.entry(tape.Base(), id)
	runtime.KeepAlive(tape)
	return s.result(status)
}

// Close releases the executable memory. It waits for running calls.
func (p *Program) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exec == nil {
		return nil
	}
	err := p.exec.Release()
	p.exec = nil
	p.entry = nil
	if err != nil {
		return diag.CodeGeneration("releasing code memory", err)
	}
	return nil
}

// Options configure Execute.
type Options struct {
	TapeSize int
	Output   io.Writer
	Input    io.Reader
	EOF      hostio.EOFPolicy
}

// Option adjusts Options.
type Option interface{ apply(o *Options) }

type tapeSizeOption int
type outputOption struct{ io.Writer }
type inputOption struct{ io.Reader }
type eofOption hostio.EOFPolicy

// WithTapeSize sets the number of tape cells.
func WithTapeSize(n int) Option { return tapeSizeOption(n) }

// WithOutput sets where output bytes go. The default discards them.
func WithOutput(w io.Writer) Option { return outputOption{w} }

// WithInput sets where input bytes come from. The default is always at EOF.
func WithInput(r io.Reader) Option { return inputOption{r} }

// WithEOF sets what input does at end of input.
func WithEOF(p hostio.EOFPolicy) Option { return eofOption(p) }

func (n tapeSizeOption) apply(o *Options) { o.TapeSize = int(n) }
func (w outputOption) apply(o *Options)   { o.Output = w.Writer }
func (r inputOption) apply(o *Options)    { o.Input = r.Reader }
func (p eofOption) apply(o *Options)      { o.EOF = hostio.EOFPolicy(p) }

// Execute is the whole pipeline in one call: parse src, compile it, run it
// once on a fresh zeroed tape, flush output and release everything. Nothing
// runs when src has unbalanced loops.
func Execute(src []byte, opts ...Option) error {
	o := Options{TapeSize: DefaultTapeSize}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&o)
		}
	}

	prog, err := ir.Parse(src)
	if err != nil {
		return err
	}
	host := hostio.New(o.Output, o.Input, o.EOF)
	err = RunOnce(prog, o.TapeSize, host)
	if ferr := host.Flush(); err == nil {
		err = ferr
	}
	return err
}

// RunOnce compiles prog, runs it on a fresh tape of tapeSize cells and
// releases the code and the tape again. A failed release is reported when
// the run itself succeeded. Output is not flushed.
func RunOnce(prog *ir.Program, tapeSize int, host *hostio.Host) (err error) {
	p, err := Compile(prog)
	if err != nil {
		return err
	}
	defer closeInto(&err, p, "releasing code memory")

	tape, err := NewTape(tapeSize)
	if err != nil {
		return diag.CodeGeneration("allocating tape", err)
	}
	defer closeInto(&err, tape, "releasing tape")

	log.Debugf("%d bytes of native code, %d tape cells", len(p.Code().Bytes), tapeSize)
	return p.Run(tape, host)
}

// closeInto closes c and stores a failure in *errp unless an earlier error
// is already there. Every failure is logged.
func closeInto(errp *error, c io.Closer, what string) {
	cerr := c.Close()
	if cerr == nil {
		return
	}
	log.Warningf("%s: %v", what, cerr)
	if *errp != nil {
		return
	}
	var ce *diag.CompilerError
	if errors.As(cerr, &ce) {
		*errp = cerr
		return
	}
	*errp = diag.CodeGeneration(what, cerr)
}
