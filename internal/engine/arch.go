// Completion: 100% - Utility module complete
package engine

import (
	"fmt"
	"runtime"
	"strings"
)

// Arch is a processor family, as far as code generation cares
type Arch int

const (
	ArchUnknown Arch = iota
	ArchAMD64
	ArchARM64
	Arch386
	ArchRiscv64
)

func (a Arch) String() string {
	switch a {
	case ArchAMD64:
		return "amd64"
	case ArchARM64:
		return "arm64"
	case Arch386:
		return "386"
	case ArchRiscv64:
		return "riscv64"
	default:
		return "unknown"
	}
}

// ParseArch accepts GOARCH values and the usual vendor names
func ParseArch(s string) (Arch, error) {
	switch strings.ToLower(s) {
	case "amd64", "x86_64", "x86-64", "x64":
		return ArchAMD64, nil
	case "arm64", "aarch64":
		return ArchARM64, nil
	case "386", "i386", "x86":
		return Arch386, nil
	case "riscv64", "rv64":
		return ArchRiscv64, nil
	default:
		return ArchUnknown, fmt.Errorf("unknown architecture: %s", s)
	}
}

// OS type
type OS int

const (
	OSUnknown OS = iota
	OSLinux
	OSDarwin
	OSFreeBSD
	OSWindows
)

func (o OS) String() string {
	switch o {
	case OSLinux:
		return "linux"
	case OSDarwin:
		return "darwin"
	case OSFreeBSD:
		return "freebsd"
	case OSWindows:
		return "windows"
	default:
		return "unknown"
	}
}

// ParseOS accepts GOOS values
func ParseOS(s string) (OS, error) {
	switch strings.ToLower(s) {
	case "linux":
		return OSLinux, nil
	case "darwin", "macos":
		return OSDarwin, nil
	case "freebsd":
		return OSFreeBSD, nil
	case "windows":
		return OSWindows, nil
	default:
		return OSUnknown, fmt.Errorf("unknown OS: %s", s)
	}
}

// ABI is the C calling convention generated code has to follow
type ABI int

const (
	ABIUnknown ABI = iota
	ABISysV        // arguments in rdi, rsi; rbx, rbp, r12-r15 callee-saved
	ABIWin64       // arguments in rcx, rdx; shadow space; rsi, rdi callee-saved
)

func (a ABI) String() string {
	switch a {
	case ABISysV:
		return "sysv"
	case ABIWin64:
		return "win64"
	default:
		return "unknown"
	}
}

// Platform is an OS and architecture pair
type Platform struct {
	OS   OS
	Arch Arch
}

// String returns the platform in GOOS/GOARCH form
func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}

// ParsePlatform parses "os/arch", for example "linux/amd64"
func ParsePlatform(s string) (Platform, error) {
	osName, archName, ok := strings.Cut(s, "/")
	if !ok {
		return Platform{}, fmt.Errorf("platform %q is not of the form os/arch", s)
	}
	goos, err := ParseOS(osName)
	if err != nil {
		return Platform{}, err
	}
	arch, err := ParseArch(archName)
	if err != nil {
		return Platform{}, err
	}
	return Platform{OS: goos, Arch: arch}, nil
}

// Host returns the platform this binary was built for. Unrecognized values
// map to ArchUnknown and OSUnknown.
func Host() Platform {
	arch, _ := ParseArch(runtime.GOARCH)
	goos, _ := ParseOS(runtime.GOOS)
	return Platform{OS: goos, Arch: arch}
}

// ABI returns the x86-64 calling convention of p, or ABIUnknown for other
// architectures.
func (p Platform) ABI() ABI {
	if p.Arch != ArchAMD64 {
		return ABIUnknown
	}
	switch p.OS {
	case OSLinux, OSDarwin, OSFreeBSD:
		return ABISysV
	case OSWindows:
		return ABIWin64
	default:
		return ABIUnknown
	}
}

// JITSupported reports whether generated code can run on p. The code
// generator only speaks the System V convention.
func (p Platform) JITSupported() bool {
	return p.ABI() == ABISysV
}
