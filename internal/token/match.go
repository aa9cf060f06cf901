// Completion: 100% - Module complete
package token

import (
	"github.com/xyproto/jitbf/internal/diag"
)

// JumpTable pairs every loop-open token index with its loop-close index and
// back. Indices that are not brackets map to -1.
type JumpTable []int

// Partner returns the index of the bracket matching the one at i.
func (jt JumpTable) Partner(i int) (int, bool) {
	if i < 0 || i >= len(jt) || jt[i] < 0 {
		return 0, false
	}
	return jt[i], true
}

// Pairs returns the number of matched bracket pairs.
func (jt JumpTable) Pairs() int {
	n := 0
	for i, j := range jt {
		if j > i {
			n++
		}
	}
	return n
}

// Match walks tokens once with a stack of pending loop-opens. It fails with
// an unbalanced loop error on a loop-close that has nothing to close, and on
// any loop-open still pending when the scan ends.
func Match(tokens []Token) (JumpTable, error) {
	jt := make(JumpTable, len(tokens))
	var pending []int
	for i, t := range tokens {
		jt[i] = -1
		switch t.Cmd {
		case LoopOpen:
			pending = append(pending, i)
		case LoopClose:
			if len(pending) == 0 {
				return nil, diag.UnbalancedLoop("unmatched ']'", t.Location())
			}
			j := pending[len(pending)-1]
			pending = pending[:len(pending)-1]
			jt[j] = i
			jt[i] = j
		}
	}
	if len(pending) > 0 {
		open := tokens[pending[len(pending)-1]]
		return nil, diag.UnbalancedLoop("unmatched '['", open.Location())
	}
	log.Debugf("matched %d loop pairs", jt.Pairs())
	return jt, nil
}
