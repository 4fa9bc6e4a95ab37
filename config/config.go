// Package config handles jscore.toml runtime configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("jscore.config")

// FileName is the configuration file Load and FindAndLoad look for.
const FileName = "jscore.toml"

// EnvFileName is the optional dotenv file next to FileName whose JSCORE_*
// entries override the TOML values.
const EnvFileName = ".env"

// Config represents a jscore.toml configuration.
type Config struct {
	Heap     HeapConfig     `toml:"heap"`
	Agent    AgentConfig    `toml:"agent"`
	GC       GCConfig       `toml:"gc"`
	Log      LogConfig      `toml:"log"`
	Snapshot SnapshotConfig `toml:"snapshot"`

	// Dir is the directory containing the jscore.toml file (set at load time).
	Dir string `toml:"-"`
}

// HeapConfig sizes the value heap.
type HeapConfig struct {
	InitialCapacity int `toml:"initial-capacity"`
}

// AgentConfig bounds recursion.
type AgentConfig struct {
	MaxDepth int `toml:"max-depth"`
}

// GCConfig configures the reference collector.
type GCConfig struct {
	Threshold uint64 `toml:"threshold"`
	Enabled   bool   `toml:"enabled"`
}

// LogConfig configures commonlog.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// SnapshotConfig configures heap snapshot output.
type SnapshotConfig struct {
	Output string `toml:"output"`
}

// Default returns the configuration used when no jscore.toml exists.
func Default() *Config {
	return &Config{
		Heap:     HeapConfig{InitialCapacity: 1024},
		Agent:    AgentConfig{MaxDepth: 512},
		GC:       GCConfig{Threshold: 4096, Enabled: true},
		Log:      LogConfig{Verbosity: 0},
		Snapshot: SnapshotConfig{Output: "heap.snapshot"},
	}
}

// Load parses a jscore.toml file from the given directory. Fields the file
// omits keep their defaults. A .env file in the same directory is applied
// on top.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	env, err := ReadEnvFile(filepath.Join(dir, EnvFileName))
	if err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(env); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Infof("loaded %s", path)
	return c, nil
}

// FindAndLoad walks up from startDir to find a jscore.toml file,
// then loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// ReadEnvFile reads a dotenv file without touching the process
// environment. A missing file yields an empty map.
func ReadEnvFile(path string) (map[string]string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return env, nil
}

// ApplyEnv overrides fields from JSCORE_* entries in env. Unknown keys are
// ignored.
func (c *Config) ApplyEnv(env map[string]string) error {
	ints := map[string]*int{
		"JSCORE_HEAP_INITIAL_CAPACITY": &c.Heap.InitialCapacity,
		"JSCORE_MAX_DEPTH":             &c.Agent.MaxDepth,
		"JSCORE_LOG_VERBOSITY":         &c.Log.Verbosity,
	}
	for key, dst := range ints {
		s, ok := env[key]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}

	if s, ok := env["JSCORE_GC_THRESHOLD"]; ok {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("JSCORE_GC_THRESHOLD: %w", err)
		}
		c.GC.Threshold = n
	}
	if s, ok := env["JSCORE_GC_ENABLED"]; ok {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("JSCORE_GC_ENABLED: %w", err)
		}
		c.GC.Enabled = b
	}
	if s, ok := env["JSCORE_LOG_FILE"]; ok {
		c.Log.File = s
	}
	if s, ok := env["JSCORE_SNAPSHOT_OUTPUT"]; ok {
		c.Snapshot.Output = s
	}
	return nil
}

// Validate rejects settings the runtime cannot use.
func (c *Config) Validate() error {
	if c.Agent.MaxDepth <= 0 {
		return fmt.Errorf("agent.max-depth must be positive, got %d", c.Agent.MaxDepth)
	}
	if c.GC.Threshold == 0 {
		return errors.New("gc.threshold must be positive")
	}
	if c.Heap.InitialCapacity < 0 {
		return fmt.Errorf("heap.initial-capacity must not be negative, got %d", c.Heap.InitialCapacity)
	}
	return nil
}

// SnapshotPath returns the snapshot output path, resolved against Dir when
// relative.
func (c *Config) SnapshotPath() string {
	if c.Snapshot.Output == "" || filepath.IsAbs(c.Snapshot.Output) || c.Dir == "" {
		return c.Snapshot.Output
	}
	return filepath.Join(c.Dir, c.Snapshot.Output)
}
