// Completion: 100% - Module complete
package ir

import (
	"github.com/tliron/commonlog"

	"github.com/xyproto/jitbf/internal/diag"
	"github.com/xyproto/jitbf/internal/token"
)

var log = commonlog.GetLogger("jitbf.ir")

// Build folds runs of identical pointer moves and cell updates into counted
// instructions and resolves loop brackets into IR indices. Bracket matching
// happens inline, so an unbalanced program is rejected here, before any
// backend sees it.
func Build(tokens []token.Token) (*Program, error) {
	instrs := make([]Instr, 0, len(tokens))
	var pending []int // IR indices of unresolved JumpIfZero placeholders
	var pendingTok []token.Token

	fold := func(op Op) {
		if n := len(instrs); n > 0 && instrs[n-1].Op == op {
			instrs[n-1].Count++
			return
		}
		instrs = append(instrs, Instr{Op: op, Count: 1})
	}

	for _, t := range tokens {
		switch t.Cmd {
		case token.MoveRight:
			fold(ShiftRight)
		case token.MoveLeft:
			fold(ShiftLeft)
		case token.Increment:
			fold(Add)
		case token.Decrement:
			fold(Sub)
		case token.Output:
			instrs = append(instrs, Instr{Op: Output})
		case token.Input:
			instrs = append(instrs, Instr{Op: Input})
		case token.LoopOpen:
			pending = append(pending, len(instrs))
			pendingTok = append(pendingTok, t)
			instrs = append(instrs, Instr{Op: JumpIfZero, Target: -1})
		case token.LoopClose:
			if len(pending) == 0 {
				return nil, diag.UnbalancedLoop("unmatched ']'", t.Location())
			}
			open := pending[len(pending)-1]
			pending = pending[:len(pending)-1]
			pendingTok = pendingTok[:len(pendingTok)-1]
			instrs = append(instrs, Instr{Op: JumpIfNonZero, Target: open})
			instrs[open].Target = len(instrs) - 1
		}
	}
	if len(pending) > 0 {
		return nil, diag.UnbalancedLoop("unmatched '['", pendingTok[len(pendingTok)-1].Location())
	}

	log.Debugf("folded %d commands into %d instructions", len(tokens), len(instrs))
	return &Program{Instrs: instrs}, nil
}

// Parse tokenizes src and builds its IR.
func Parse(src []byte) (*Program, error) {
	return Build(token.Tokenize(src))
}
