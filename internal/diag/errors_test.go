package diag

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorySentinels(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{UnbalancedLoop("unmatched '['", SourceLocation{Line: 1, Column: 1}), ErrUnbalancedLoop},
		{CodeGeneration("mprotect failed", errors.New("EPERM")), ErrCodeGeneration},
		{IOFailure("write failed", io.ErrClosedPipe), ErrIO},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, tt.err, tt.want)
	}
	assert.ErrorIs(t, IOFailure("write failed", io.ErrClosedPipe), io.ErrClosedPipe)
	assert.NotErrorIs(t, IOFailure("write failed", nil), ErrUnbalancedLoop)
}

func TestErrorString(t *testing.T) {
	err := UnbalancedLoop("unmatched ']'", SourceLocation{File: "a.bf", Line: 3, Column: 7})
	assert.Equal(t, "a.bf:3:7: unmatched ']'", err.Error())

	err = IOFailure("output failed", io.ErrShortWrite)
	assert.Equal(t, "output failed: short write", err.Error())
}

func TestAttachAndFormat(t *testing.T) {
	src := []byte("++\n+[->+<\n")
	var err error = UnbalancedLoop("unmatched '['", SourceLocation{Offset: 4, Line: 2, Column: 2})
	err = Attach(err, "copy.bf", src)

	var ce *CompilerError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "copy.bf", ce.Location.File)
	assert.Equal(t, "+[->+<", ce.Context.SourceLine)

	out := ce.Format(false)
	assert.Contains(t, out, "error: unmatched '['")
	assert.Contains(t, out, "--> copy.bf:2:2")
	assert.Contains(t, out, "2 | +[->+<")
	lines := strings.Split(out, "\n")
	var caret string
	for _, l := range lines {
		if strings.HasSuffix(l, "^") {
			caret = l
		}
	}
	assert.Equal(t, "  |  ^", caret)
	assert.NotContains(t, out, "\033[")
	assert.Contains(t, ce.Format(true), "\033[1;31m")
}

func TestAttachLeavesOtherErrorsAlone(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, Attach(plain, "x.bf", []byte("[")))
}
