// Package config loads a project's braid.yaml (spec.md's "ambient
// stack" expansion — the interpreter itself needs a settings surface
// even though the spec's core has none), using gopkg.in/yaml.v3, the
// same YAML library the teacher carries as a direct dependency for
// its own guest-language YAML builtins
// (github.com/funvibe/funxy/internal/evaluator/builtins_yaml.go) —
// here promoted from a guest-language feature to the interpreter's
// own host-side configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level shape of braid.yaml.
type Config struct {
	// StdlibPaths are directories searched, in order, when `import`
	// resolves a bare (non-URL) path that isn't found relative to the
	// importing file.
	StdlibPaths []string `yaml:"stdlibPaths"`

	// Seed, when non-nil, makes `measure` deterministic by seeding the
	// process-wide PRNG instead of drawing from OS entropy — intended
	// for reproducible test runs, not production use.
	Seed *uint64 `yaml:"seed"`

	// CachePath is where internal/resource's on-disk import cache
	// lives. Empty disables caching.
	CachePath string `yaml:"cachePath"`
}

// Default returns the configuration used when no braid.yaml is
// present: no extra stdlib search paths, entropy-seeded PRNG, caching
// disabled.
func Default() *Config {
	return &Config{}
}

// Load reads and parses the YAML file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &c, nil
}
