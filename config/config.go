// Package config handles oidvm.toml runtime configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/oidvm/vm"
)

// FileName is the configuration file Load and FindAndLoad look for.
const FileName = "oidvm.toml"

// Config represents an oidvm.toml file.
type Config struct {
	Table    Table    `toml:"table"`
	Stack    Stack    `toml:"stack"`
	Dispatch Dispatch `toml:"dispatch"`
	Log      Log      `toml:"log"`
	Load     Startup  `toml:"load"`

	// Dir is the directory containing the oidvm.toml file (set at load time).
	Dir string `toml:"-"`
}

// Table sizes the object table.
type Table struct {
	InitialCapacity int `toml:"initial-capacity"`
	MaxObjects      int `toml:"max-objects"`
}

// Stack sizes the call stack.
type Stack struct {
	Depth int `toml:"depth"`
}

// Dispatch bounds method lookup.
type Dispatch struct {
	MaxChainDepth int `toml:"max-chain-depth"`
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Startup lists text assets interned at startup.
type Startup struct {
	Assets []string `toml:"assets"`
}

// Default returns the configuration used when no oidvm.toml exists.
func Default() *Config {
	return &Config{
		Table:    Table{InitialCapacity: vm.DefaultInitialCapacity},
		Stack:    Stack{Depth: vm.DefaultStackDepth},
		Dispatch: Dispatch{MaxChainDepth: vm.DefaultMaxChainDepth},
	}
}

// Load parses an oidvm.toml file from the given directory. Keys the file
// leaves out keep their Default values.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return c, nil
}

// Parse decodes oidvm.toml content over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FindAndLoad loads the oidvm.toml nearest to startDir, looking in startDir
// and then each directory above it. A directory that happens to be named
// oidvm.toml is skipped. It returns nil, nil when no file exists.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for prev := ""; dir != prev; prev, dir = dir, filepath.Dir(dir) {
		info, err := os.Stat(filepath.Join(dir, FileName))
		switch {
		case err == nil && !info.IsDir():
			return Load(dir)
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("looking for %s in %s: %w", FileName, dir, err)
		}
	}
	return nil, nil
}

// Validate rejects sizes no VM can run with.
func (c *Config) Validate() error {
	switch {
	case c.Table.InitialCapacity < 0:
		return fmt.Errorf("table.initial-capacity must not be negative, got %d", c.Table.InitialCapacity)
	case c.Table.MaxObjects < 0:
		return fmt.Errorf("table.max-objects must not be negative, got %d", c.Table.MaxObjects)
	case c.Stack.Depth <= 0:
		return fmt.Errorf("stack.depth must be positive, got %d", c.Stack.Depth)
	case c.Dispatch.MaxChainDepth <= 0:
		return fmt.Errorf("dispatch.max-chain-depth must be positive, got %d", c.Dispatch.MaxChainDepth)
	}
	return nil
}

// Options converts the configuration for vm.New.
func (c *Config) Options() vm.Options {
	return vm.Options{
		InitialCapacity: c.Table.InitialCapacity,
		MaxObjects:      c.Table.MaxObjects,
		StackDepth:      c.Stack.Depth,
		MaxChainDepth:   c.Dispatch.MaxChainDepth,
	}
}

// LogFile returns the log path for commonlog.Configure, or nil for stderr.
// A relative path is resolved against Dir.
func (c *Config) LogFile() *string {
	if c.Log.File == "" {
		return nil
	}
	path := c.Log.File
	if !filepath.IsAbs(path) && c.Dir != "" {
		path = filepath.Join(c.Dir, path)
	}
	return &path
}

// AssetPaths returns absolute paths for the configured assets.
func (c *Config) AssetPaths() []string {
	var paths []string
	for _, a := range c.Load.Assets {
		if filepath.IsAbs(a) || c.Dir == "" {
			paths = append(paths, a)
			continue
		}
		paths = append(paths, filepath.Join(c.Dir, a))
	}
	return paths
}
