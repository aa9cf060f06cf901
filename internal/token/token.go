// Completion: 100% - Lexer complete
package token

import (
	"github.com/tliron/commonlog"

	"github.com/xyproto/jitbf/internal/diag"
)

var log = commonlog.GetLogger("jitbf.token")

// Command is one of the eight recognized source bytes.
// The value of each Command is the byte that spells it.
type Command byte

const (
	MoveRight Command = '>'
	MoveLeft  Command = '<'
	Increment Command = '+'
	Decrement Command = '-'
	Output    Command = '.'
	Input     Command = ','
	LoopOpen  Command = '['
	LoopClose Command = ']'
)

// IsCommand reports whether b spells one of the eight commands.
func IsCommand(b byte) bool {
	switch Command(b) {
	case MoveRight, MoveLeft, Increment, Decrement, Output, Input, LoopOpen, LoopClose:
		return true
	}
	return false
}

func (c Command) String() string {
	switch c {
	case MoveRight:
		return "move-right"
	case MoveLeft:
		return "move-left"
	case Increment:
		return "increment"
	case Decrement:
		return "decrement"
	case Output:
		return "output"
	case Input:
		return "input"
	case LoopOpen:
		return "loop-open"
	case LoopClose:
		return "loop-close"
	default:
		return "unknown"
	}
}

// Token is a command together with where it was found.
type Token struct {
	Cmd    Command
	Offset int // byte offset into the source
	Line   int // 1-based
	Column int // 1-based, in bytes
}

// Location converts the token position into a diagnostic location.
func (t Token) Location() diag.SourceLocation {
	return diag.SourceLocation{Offset: t.Offset, Line: t.Line, Column: t.Column}
}

// Tokenize keeps the recognized command bytes of src, in order, and drops
// everything else. Any input is valid.
func Tokenize(src []byte) []Token {
	tokens := make([]Token, 0, len(src))
	line, col := 1, 1
	for i, b := range src {
		if IsCommand(b) {
			tokens = append(tokens, Token{Cmd: Command(b), Offset: i, Line: line, Column: col})
		}
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	log.Debugf("tokenized %d bytes into %d commands", len(src), len(tokens))
	return tokens
}

// Commands projects the bare command sequence out of tokens.
func Commands(tokens []Token) []Command {
	cmds := make([]Command, len(tokens))
	for i, t := range tokens {
		cmds[i] = t.Cmd
	}
	return cmds
}

// FromCommands builds positionless tokens, for callers that already hold a
// filtered command sequence.
func FromCommands(cmds []Command) []Token {
	tokens := make([]Token, len(cmds))
	for i, c := range cmds {
		tokens[i] = Token{Cmd: c, Offset: i, Line: 1, Column: i + 1}
	}
	return tokens
}
