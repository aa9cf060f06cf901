// Completion: 100% - Error handling complete, clear and helpful messages
package diag

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for the three failure classes. Every *CompilerError
// unwraps to exactly one of them, so callers can use errors.Is.
var (
	ErrUnbalancedLoop      = errors.New("unbalanced loop")
	ErrCodeGeneration      = errors.New("code generation failure")
	ErrIO                  = errors.New("i/o failure")
	ErrUnsupportedPlatform = errors.New("jit is not supported on this platform")
)

// ErrorLevel indicates the severity of an error
type ErrorLevel int

const (
	LevelWarning ErrorLevel = iota
	LevelError
	LevelFatal
)

var levelNames = [...]string{
	LevelWarning: "warning",
	LevelError:   "error",
	LevelFatal:   "fatal error",
}

func (l ErrorLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// ErrorCategory says which stage failed
type ErrorCategory int

const (
	CategoryUnbalancedLoop ErrorCategory = iota
	CategoryCodegen
	CategoryIO
)

var categories = [...]struct {
	name     string
	sentinel error
}{
	CategoryUnbalancedLoop: {"unbalanced loop", ErrUnbalancedLoop},
	CategoryCodegen:        {"codegen", ErrCodeGeneration},
	CategoryIO:             {"i/o", ErrIO},
}

func (c ErrorCategory) String() string {
	if c < 0 || int(c) >= len(categories) {
		return "unknown"
	}
	return categories[c].name
}

func (c ErrorCategory) sentinel() error {
	if c < 0 || int(c) >= len(categories) {
		return ErrIO
	}
	return categories[c].sentinel
}

// SourceLocation is a position in program text. Offset is the byte index,
// Line and Column are 1-based, and a zero Line means there is no position.
type SourceLocation struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (loc SourceLocation) String() string {
	switch {
	case loc.Line == 0 && loc.File == "":
		return "<input>"
	case loc.Line == 0:
		return loc.File
	case loc.File == "":
		return fmt.Sprintf("%d:%d", loc.Line, loc.Column)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Column)
	}
}

func (loc SourceLocation) known() bool {
	return loc.Line > 0 || loc.File != ""
}

// ErrorContext is what Format shows below the headline
type ErrorContext struct {
	SourceLine string // the offending line, filled in by Attach
	HelpText   string
}

// CompilerError is one failure of the pipeline, from parsing to a run
type CompilerError struct {
	Level    ErrorLevel
	Category ErrorCategory
	Message  string
	Location SourceLocation
	Context  ErrorContext
	Err      error // underlying cause, may be nil
}

func (e *CompilerError) headline() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// Error implements the error interface
func (e *CompilerError) Error() string {
	if !e.Location.known() {
		return e.headline()
	}
	return e.Location.String() + ": " + e.headline()
}

// Unwrap exposes both the category sentinel and the underlying cause.
func (e *CompilerError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Category.sentinel()}
	}
	return []error{e.Category.sentinel(), e.Err}
}

// ANSI colors used by Format
const (
	colorReset = "\033[0m"
	colorRed   = "\033[1;31m"
	colorBlue  = "\033[1;34m"
	colorCyan  = "\033[1;36m"
)

// Format renders the error over several lines, rustc style:
//
//	error: unmatched '['
//	  --> copy.bf:2:2
//	   |
//	 2 | +[->+<
//	   |  ^
func (e *CompilerError) Format(useColor bool) string {
	var sb strings.Builder
	paint := func(color, text string) {
		if useColor {
			sb.WriteString(color + text + colorReset)
		} else {
			sb.WriteString(text)
		}
	}

	paint(colorRed, e.Level.String()+": ")
	sb.WriteString(e.headline())
	sb.WriteByte('\n')

	if e.Location.known() {
		paint(colorBlue, "  --> "+e.Location.String())
		sb.WriteByte('\n')
	}

	if e.Context.SourceLine != "" && e.Location.Line > 0 {
		num := strconv.Itoa(e.Location.Line)
		gutter := strings.Repeat(" ", len(num)+1) + "|"
		fmt.Fprintf(&sb, "%s\n%s | %s\n%s", gutter, num, e.Context.SourceLine, gutter)
		if e.Location.Column > 0 {
			sb.WriteString(" " + strings.Repeat(" ", e.Location.Column-1))
			paint(colorRed, "^")
		}
		sb.WriteByte('\n')
	}

	if e.Context.HelpText != "" {
		paint(colorCyan, "   note: ")
		sb.WriteString(e.Context.HelpText)
		sb.WriteByte('\n')
	}

	return sb.String()
}

// Attach fills in the file name and the offending source line, if err is a
// *CompilerError carrying a position. Other errors are returned unchanged.
func Attach(err error, file string, source []byte) error {
	var ce *CompilerError
	if !errors.As(err, &ce) {
		return err
	}
	if ce.Location.File == "" {
		ce.Location.File = file
	}
	if ce.Context.SourceLine == "" {
		ce.Context.SourceLine = sourceLine(source, ce.Location.Line)
	}
	return err
}

// sourceLine returns the 1-based line lineNum of source without its line
// ending, or "" when there is no such line.
func sourceLine(source []byte, lineNum int) string {
	if lineNum <= 0 {
		return ""
	}
	rest := string(source)
	for n := 1; n < lineNum; n++ {
		i := strings.IndexByte(rest, '\n')
		if i < 0 {
			return ""
		}
		rest = rest[i+1:]
	}
	line, _, _ := strings.Cut(rest, "\n")
	return strings.TrimSuffix(line, "\r")
}

// UnbalancedLoop is the structural error for an unmatched bracket.
func UnbalancedLoop(message string, loc SourceLocation) *CompilerError {
	return &CompilerError{
		Level:    LevelError,
		Category: CategoryUnbalancedLoop,
		Message:  message,
		Location: loc,
		Context:  ErrorContext{HelpText: "every '[' needs a matching ']' after it"},
	}
}

// CodeGeneration is a fatal failure of the native backend.
func CodeGeneration(message string, err error) *CompilerError {
	return &CompilerError{Level: LevelFatal, Category: CategoryCodegen, Message: message, Err: err}
}

// IOFailure is a failed host read or write.
func IOFailure(message string, err error) *CompilerError {
	return &CompilerError{Level: LevelError, Category: CategoryIO, Message: message, Err: err}
}
