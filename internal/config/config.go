// Completion: 100% - Module complete

// Package config handles jitbf.toml and JITBF_* environment configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
	"github.com/xyproto/env/v2"

	"github.com/xyproto/jitbf/internal/hostio"
)

var log = commonlog.GetLogger("jitbf.config")

// FileName is the configuration file looked up from the working directory.
const FileName = "jitbf.toml"

// Backend names
const (
	BackendAuto   = "auto"
	BackendJIT    = "jit"
	BackendInterp = "interp"
)

const (
	DefaultTapeSize  = 65536
	DefaultTapeLimit = 1 << 24
)

// Config is the merged configuration for one invocation.
type Config struct {
	Backend   string `toml:"backend"`
	TapeSize  int    `toml:"tape_size"`
	TapeLimit int    `toml:"tape_limit"`
	EOF       string `toml:"eof"`
	Log       Log    `toml:"log"`
	NoColor   bool   `toml:"no_color"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

// Log configures logging.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend:   BackendAuto,
		TapeSize:  DefaultTapeSize,
		TapeLimit: DefaultTapeLimit,
		EOF:       hostio.EOFZero.String(),
	}
}

// Load reads path over the defaults. Keys the file sets replace the
// defaults, everything else keeps its default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.Warningf("%s: unknown key %q", path, key.String())
	}

	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	log.Infof("loaded configuration from %s", c.Path)
	return c, nil
}

// FindAndLoad walks up from startDir looking for jitbf.toml and loads the
// first one found. Without one it returns the defaults.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return Default(), nil
		}
		dir = parent
	}
}

// ApplyEnv overrides c with any JITBF_* variables that are set and not
// empty. Numbers that do not parse leave the current value alone.
func (c *Config) ApplyEnv() {
	// env caches os.Environ; reload in case it changed since the last read
	env.Load()

	if env.Has("JITBF_BACKEND") {
		c.Backend = env.Str("JITBF_BACKEND")
	}
	if env.Has("JITBF_TAPE_SIZE") {
		c.TapeSize = env.Int("JITBF_TAPE_SIZE", c.TapeSize)
	}
	if env.Has("JITBF_TAPE_LIMIT") {
		c.TapeLimit = env.Int("JITBF_TAPE_LIMIT", c.TapeLimit)
	}
	if env.Has("JITBF_EOF") {
		c.EOF = env.Str("JITBF_EOF")
	}
	if env.Has("JITBF_VERBOSE") {
		c.Log.Verbosity = env.Int("JITBF_VERBOSE", c.Log.Verbosity)
	}
	if env.Has("JITBF_LOG_FILE") {
		c.Log.File = env.Str("JITBF_LOG_FILE")
	}
	if env.Has("NO_COLOR") {
		c.NoColor = true
	}
}

// Validate rejects values no backend can run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case BackendAuto, BackendJIT, BackendInterp:
		c.Backend = strings.ToLower(c.Backend)
	default:
		return fmt.Errorf("unknown backend %q (supported: %s, %s, %s)", c.Backend, BackendAuto, BackendJIT, BackendInterp)
	}
	if c.TapeSize < 1 {
		return fmt.Errorf("tape size must be positive, got %d", c.TapeSize)
	}
	if c.TapeLimit < c.TapeSize {
		return fmt.Errorf("tape limit %d is smaller than the tape size %d", c.TapeLimit, c.TapeSize)
	}
	if _, err := hostio.ParseEOFPolicy(c.EOF); err != nil {
		return err
	}
	return nil
}

// EOFPolicy returns the parsed EOF policy. Call Validate first.
func (c *Config) EOFPolicy() hostio.EOFPolicy {
	p, _ := hostio.ParseEOFPolicy(c.EOF)
	return p
}
