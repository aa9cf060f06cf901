// Completion: 100% - CLI interface complete, all flags working
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"
	"github.com/tliron/commonlog/simple"

	"github.com/xyproto/jitbf/internal/config"
	"github.com/xyproto/jitbf/internal/diag"
)

// A just-in-time compiler for the eight-command tape language, x86-64 on
// Linux, macOS and FreeBSD, with a portable interpreter everywhere else

const versionString = "jitbf 1.0.0"

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// usageError marks mistakes in how the program was invoked.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run parses args, merges configuration and dispatches the command. It
// returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("jitbf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printHelp(stderr) }

	// NOTE: flag stops parsing at the first non-flag argument,
	// so flags must come BEFORE the command: jitbf -backend interp run hello.bf
	var backendFlag = fs.String("backend", config.BackendAuto, "execution backend (auto, jit, interp)")
	var tapeSizeFlag = fs.Int("tape-size", config.DefaultTapeSize, "number of tape cells")
	var eofFlag = fs.String("eof", "zero", "what input stores at end of input (zero, unchanged, max, error)")
	var configFlag = fs.String("config", "", "configuration file (default: nearest "+config.FileName+")")
	var verbose = fs.Bool("v", false, "verbose mode (log compilation steps and emitted instructions)")
	var verboseLong = fs.Bool("verbose", false, "verbose mode (log compilation steps and emitted instructions)")
	var logFileFlag = fs.String("log-file", "", "write log messages to this file instead of stderr")
	var codeFlag = fs.String("e", "", "run this source code instead of a file")
	var versionShort = fs.Bool("V", false, "print version information and exit")
	var version = fs.Bool("version", false, "print version information and exit")
	var noColorFlag = fs.Bool("no-color", false, "disable colored diagnostics")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if *version || *versionShort {
		fmt.Fprintln(stdout, versionString)
		return exitOK
	}

	// log what loading the configuration has to say, then reconfigure
	// once the merged settings are known
	early := config.Default()
	if *verbose || *verboseLong {
		early.Log.Verbosity = 2
	}
	if err := setupLogging(early); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	// defaults < config file < environment < flags
	var cfg *config.Config
	var err error
	if *configFlag != "" {
		cfg, err = config.Load(*configFlag)
	} else {
		cfg, err = config.FindAndLoad(".")
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	cfg.ApplyEnv()

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *backendFlag
		case "tape-size":
			cfg.TapeSize = *tapeSizeFlag
			if cfg.TapeLimit < cfg.TapeSize {
				cfg.TapeLimit = cfg.TapeSize
			}
		case "eof":
			cfg.EOF = *eofFlag
		case "v", "verbose":
			if *verbose || *verboseLong {
				cfg.Log.Verbosity = 2
			}
		case "log-file":
			cfg.Log.File = *logFileFlag
		case "no-color":
			cfg.NoColor = *noColorFlag
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if err := setupLogging(cfg); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	ctx := &CommandContext{
		Args:     fs.Args(),
		Config:   cfg,
		Inline:   *codeFlag,
		Stdin:    stdin,
		Stdout:   stdout,
		Stderr:   stderr,
		UseColor: !cfg.NoColor && isTerminal(stderr),
	}
	if err := RunCLI(ctx); err != nil {
		return reportError(ctx, err)
	}
	return exitOK
}

// setupLogging installs an unbuffered simple backend, so nothing is lost when
// the process exits through os.Exit.
func setupLogging(cfg *config.Config) error {
	backend := simple.NewBackend()
	backend.Buffered = false
	commonlog.SetBackend(backend)

	verbosity := logVerbosity(cfg.Log.Verbosity)
	if cfg.Log.File == "" {
		commonlog.Configure(verbosity, nil)
		return nil
	}
	// the backend exits the process on a bad path, so check it here first
	path := cfg.Log.File
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("cannot open log file: %w", err)
	}
	f.Close()
	commonlog.Configure(verbosity, &path)
	return nil
}

// logVerbosity maps the configured level (0 quiet, 1 info, 2 debug) onto
// commonlog verbosity. Warnings and errors are always shown.
func logVerbosity(level int) int {
	switch {
	case level <= 0:
		return -1
	case level == 1:
		return 1
	default:
		return 2
	}
}

// reportError prints err and maps it to an exit code.
func reportError(ctx *CommandContext, err error) int {
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(ctx.Stderr, "Error: %s\n", ue.msg)
		return exitUsage
	}
	var ce *diag.CompilerError
	if errors.As(err, &ce) {
		fmt.Fprint(ctx.Stderr, ce.Format(ctx.UseColor))
		return exitError
	}
	fmt.Fprintf(ctx.Stderr, "Error: %v\n", err)
	return exitError
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
