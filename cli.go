// Completion: 100% - Utility module complete
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/xyproto/jitbf/internal/amd64"
	"github.com/xyproto/jitbf/internal/config"
	"github.com/xyproto/jitbf/internal/diag"
	"github.com/xyproto/jitbf/internal/engine"
	"github.com/xyproto/jitbf/internal/hostio"
	"github.com/xyproto/jitbf/internal/interp"
	"github.com/xyproto/jitbf/internal/ir"
	"github.com/xyproto/jitbf/internal/jit"
	"github.com/xyproto/jitbf/internal/token"
)

// cli.go - command-line interface for jitbf
//
// Subcommands:
// - jitbf run <file>   (compile and run; "-" reads the program from stdin)
// - jitbf ir <file>    (print the folded instruction listing)
// - jitbf asm <file>   (print the generated x86-64 listing)
// - jitbf check <file> (validate loop structure only)
// - jitbf <file>       (shorthand for run)
// - jitbf -e '<code>'  (run inline code)

var log = commonlog.GetLogger("jitbf")

// CommandContext holds the execution context for a CLI command
type CommandContext struct {
	Args     []string
	Config   *config.Config
	Inline   string // source given with -e
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	UseColor bool
}

var commandNames = []string{"run", "ir", "asm", "check", "help", "version"}

// RunCLI is the main entry point for the CLI
// It determines which command to run based on arguments
func RunCLI(ctx *CommandContext) error {
	args := ctx.Args

	// -e runs inline code; a command word may still pick what to do with it
	if ctx.Inline != "" {
		cmd := "run"
		if len(args) > 0 {
			cmd, args = args[0], args[1:]
		}
		if len(args) > 0 {
			return usagef("-e and a source file are mutually exclusive")
		}
		switch cmd {
		case "run":
			return cmdRun(ctx, nil)
		case "ir":
			return cmdIR(ctx, nil)
		case "asm":
			return cmdAsm(ctx, nil)
		case "check":
			return cmdCheck(ctx, nil)
		case "help", "--help", "-h":
			return cmdHelp(ctx)
		case "version", "--version":
			return cmdVersion(ctx)
		default:
			return usagef("-e and a source file are mutually exclusive")
		}
	}

	// No arguments - show help
	if len(args) == 0 {
		return cmdHelp(ctx)
	}

	subcmd := args[0]

	switch subcmd {
	case "run":
		if len(args) < 2 {
			return usagef("usage: jitbf run <file>")
		}
		return cmdRun(ctx, args[1:])

	case "ir":
		if len(args) < 2 {
			return usagef("usage: jitbf ir <file>")
		}
		return cmdIR(ctx, args[1:])

	case "asm":
		if len(args) < 2 {
			return usagef("usage: jitbf asm <file>")
		}
		return cmdAsm(ctx, args[1:])

	case "check":
		if len(args) < 2 {
			return usagef("usage: jitbf check <file>")
		}
		return cmdCheck(ctx, args[1:])

	case "help", "--help", "-h":
		return cmdHelp(ctx)

	case "version", "--version":
		return cmdVersion(ctx)

	default:
		// An existing file is shorthand for run
		if info, err := os.Stat(subcmd); err == nil && !info.IsDir() {
			return cmdRun(ctx, args)
		}

		msg := fmt.Sprintf("unknown command or file: %s", subcmd)
		if suggestions := engine.Suggest(subcmd, commandNames, 1); len(suggestions) > 0 {
			msg += fmt.Sprintf(" (did you mean '%s'?)", suggestions[0])
		}
		return usagef("%s\n\nRun 'jitbf help' for usage information", msg)
	}
}

// loadSource returns the program text and a name to report it under.
func loadSource(ctx *CommandContext, args []string) (string, []byte, error) {
	if ctx.Inline != "" {
		return "<inline>", []byte(ctx.Inline), nil
	}
	if len(args) == 0 {
		return "", nil, usagef("no source file given")
	}
	if len(args) > 1 {
		return "", nil, usagef("expected one source file, got %d", len(args))
	}
	name := args[0]
	if name == "-" {
		src, err := io.ReadAll(ctx.Stdin)
		if err != nil {
			return "", nil, diag.IOFailure("reading program from stdin", err)
		}
		return "<stdin>", src, nil
	}
	src, err := os.ReadFile(name)
	if err != nil {
		return "", nil, diag.IOFailure("reading "+name, err)
	}
	return name, src, nil
}

// parse loads and builds the IR, attaching file and source line to errors.
func parse(ctx *CommandContext, args []string) (string, *ir.Program, error) {
	name, src, err := loadSource(ctx, args)
	if err != nil {
		return "", nil, err
	}
	prog, err := ir.Parse(src)
	if err != nil {
		return name, nil, diag.Attach(err, name, src)
	}
	log.Infof("%s: %d instructions", name, prog.Len())
	return name, prog, nil
}

// backendFor resolves "auto" against what the host supports.
func backendFor(cfg *config.Config) string {
	if cfg.Backend != config.BackendAuto {
		return cfg.Backend
	}
	if jit.Supported() {
		return config.BackendJIT
	}
	return config.BackendInterp
}

// cmdRun compiles and runs a program with stdin and stdout attached
func cmdRun(ctx *CommandContext, args []string) error {
	name, prog, err := parse(ctx, args)
	if err != nil {
		return err
	}

	host := hostio.New(ctx.Stdout, ctx.Stdin, ctx.Config.EOFPolicy())
	backend := backendFor(ctx.Config)
	log.Infof("running %s with the %s backend", name, backend)

	switch backend {
	case config.BackendJIT:
		err = jit.RunOnce(prog, ctx.Config.TapeSize, host)
	default:
		_, err = interp.Run(prog, ctx.Config.TapeSize, ctx.Config.TapeLimit, host)
	}
	if ferr := host.Flush(); err == nil {
		err = ferr
	}
	written, read := host.Counts()
	log.Debugf("%s: wrote %d bytes, read %d bytes", name, written, read)
	return err
}

// cmdIR prints the folded IR
func cmdIR(ctx *CommandContext, args []string) error {
	_, prog, err := parse(ctx, args)
	if err != nil {
		return err
	}
	_, err = io.WriteString(ctx.Stdout, prog.String())
	return err
}

// cmdAsm prints the machine code listing
func cmdAsm(ctx *CommandContext, args []string) error {
	_, prog, err := parse(ctx, args)
	if err != nil {
		return err
	}
	code, err := jit.Assemble(prog)
	if err != nil {
		return err
	}
	fmt.Fprint(ctx.Stdout, amd64.FormatListing(code.Listing))
	fmt.Fprintf(ctx.Stdout, "; %d bytes, %d instructions\n", len(code.Bytes), prog.Len())
	return nil
}

// cmdCheck validates the loop structure without compiling
func cmdCheck(ctx *CommandContext, args []string) error {
	name, src, err := loadSource(ctx, args)
	if err != nil {
		return err
	}
	tokens := token.Tokenize(src)
	jt, err := token.Match(tokens)
	if err != nil {
		return diag.Attach(err, name, src)
	}
	fmt.Fprintf(ctx.Stdout, "%s: ok, %d commands, %d loops\n", name, len(tokens), jt.Pairs())
	return nil
}

func cmdVersion(ctx *CommandContext) error {
	host := engine.Host()
	support := "interpreter only"
	if jit.Supported() {
		support = "jit"
	}
	fmt.Fprintf(ctx.Stdout, "%s (%s, %s)\n", versionString, host, support)
	return nil
}

func cmdHelp(ctx *CommandContext) error {
	printHelp(ctx.Stdout)
	return nil
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `%s - a just-in-time compiler for the eight-command tape language

USAGE:
    jitbf [flags] <command> [file]

COMMANDS:
    run <file>       Compile and run a program ("-" reads it from stdin)
    ir <file>        Print the folded instruction listing
    asm <file>       Print the generated x86-64 machine code
    check <file>     Check that every loop is closed
    help             Show this help message
    version          Show version information

SHORTHAND:
    jitbf <file>         Same as 'jitbf run <file>'
    jitbf -e '<code>'    Run code given on the command line

FLAGS (must come before the command):
    -backend <name>     auto, jit or interp (default: auto)
    -tape-size <n>      Number of tape cells (default: %d)
    -eof <policy>       Input at end of input: %s (default: zero)
    -config <file>      Configuration file (default: nearest %s)
    -log-file <file>    Write log messages to a file
    -v, -verbose        Log compilation steps and emitted instructions
    -no-color           Plain diagnostics
    -V, -version        Print version information

ENVIRONMENT:
    JITBF_BACKEND, JITBF_TAPE_SIZE, JITBF_TAPE_LIMIT, JITBF_EOF,
    JITBF_VERBOSE, JITBF_LOG_FILE, NO_COLOR

EXAMPLES:
    jitbf run hello.bf
    jitbf -backend interp hello.bf
    echo 'hi' | jitbf -e ',[.,]'
    jitbf asm hello.bf

`, versionString, config.DefaultTapeSize, strings.Join(hostio.EOFPolicyNames(), ", "), config.FileName)
}
