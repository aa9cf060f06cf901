//go:build !((linux || darwin || freebsd) && amd64)

package jit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xyproto/jitbf/internal/diag"
	"github.com/xyproto/jitbf/internal/ir"
)

func TestBindIsUnsupported(t *testing.T) {
	fn, err := bind(&Executable{})
	assert.Nil(t, fn)
	assert.ErrorIs(t, err, diag.ErrUnsupportedPlatform)
	assert.ErrorIs(t, err, diag.ErrCodeGeneration)
}

func TestCompileIsUnsupported(t *testing.T) {
	assert.False(t, Supported())
	prog, err := ir.Parse([]byte("+."))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Compile(prog)
	assert.ErrorIs(t, err, diag.ErrUnsupportedPlatform)
}
