package engine

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"run", "", 3},
		{"", "asm", 3},
		{"run", "run", 0},
		{"rnu", "run", 2},
		{"chek", "check", 1},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshteinDistance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestSuggest(t *testing.T) {
	commands := []string{"run", "ir", "asm", "check", "help", "version"}
	assert.Equal(t, []string{"check"}, Suggest("chek", commands, 3))
	// "asm" is two edits away from "rum" as well, so it comes after "run"
	assert.Equal(t, []string{"run", "asm"}, Suggest("rum", commands, 3))
	assert.Equal(t, []string{"run"}, Suggest("rum", commands, 1))
	assert.Empty(t, Suggest("run", commands, 3))
	assert.Empty(t, Suggest("compile", commands, 3))
	assert.Len(t, Suggest("a", commands, 1), 1)
}

func TestParsePlatform(t *testing.T) {
	a, err := ParseArch("x86_64")
	require.NoError(t, err)
	assert.Equal(t, ArchAMD64, a)
	_, err = ParseArch("mips")
	assert.Error(t, err)

	o, err := ParseOS("macos")
	require.NoError(t, err)
	assert.Equal(t, OSDarwin, o)
	_, err = ParseOS("plan9")
	assert.Error(t, err)

	p, err := ParsePlatform("freebsd/amd64")
	require.NoError(t, err)
	assert.Equal(t, Platform{OS: OSFreeBSD, Arch: ArchAMD64}, p)
	assert.Equal(t, "freebsd/amd64", p.String())

	for _, bad := range []string{"linux", "linux/mips", "plan9/amd64", ""} {
		_, err := ParsePlatform(bad)
		assert.Error(t, err, bad)
	}
}

func TestJITSupported(t *testing.T) {
	tests := []struct {
		platform string
		abi      ABI
		jit      bool
	}{
		{"linux/amd64", ABISysV, true},
		{"darwin/amd64", ABISysV, true},
		{"freebsd/amd64", ABISysV, true},
		{"windows/amd64", ABIWin64, false},
		{"linux/arm64", ABIUnknown, false},
		{"linux/386", ABIUnknown, false},
	}
	for _, tt := range tests {
		p, err := ParsePlatform(tt.platform)
		require.NoError(t, err)
		assert.Equal(t, tt.abi, p.ABI(), tt.platform)
		assert.Equal(t, tt.jit, p.JITSupported(), tt.platform)
	}
	assert.False(t, Platform{}.JITSupported())
	assert.Equal(t, "unknown/unknown", Platform{}.String())
}

func TestHost(t *testing.T) {
	h := Host()
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, h.String())
}
