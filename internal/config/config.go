// Package config holds the harness configuration: fixture locations,
// allowlist path, and how to find and build the engine executable.
//
// Configuration is an explicit value threaded through the commands; there
// are no package-level path globals. Defaults derive from the repository
// root and an optional YAML file can override any of them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTimeout bounds a single engine batch invocation.
const DefaultTimeout = 30 * time.Second

// Config is the resolved harness configuration. All paths are absolute.
type Config struct {
	// Root is the repository root every default derives from.
	Root string `yaml:"-"`

	// TokenizerDir holds the tokenizer .test fixtures.
	TokenizerDir string `yaml:"tokenizer_dir"`

	// TreeDir holds the tree-construction .dat fixtures.
	TreeDir string `yaml:"tree_dir"`

	// EncodingDir holds the encoding-sniffing .dat fixtures.
	EncodingDir string `yaml:"encoding_dir"`

	// AllowlistPath is the expected-pass allowlist JSON document.
	AllowlistPath string `yaml:"allowlist"`

	// EngineExe is the engine executable the protocol client spawns.
	EngineExe string `yaml:"engine_exe"`

	// EngineSourceDir and EngineSourceExt drive the build staleness check.
	EngineSourceDir string `yaml:"engine_source_dir"`
	EngineSourceExt string `yaml:"engine_source_ext"`

	// BuildCommand rebuilds the engine when stale. Run in Root.
	BuildCommand []string `yaml:"build_command"`

	// JournalPath is the optional sqlite run journal. Empty disables it.
	JournalPath string `yaml:"journal"`

	// Timeout bounds each engine batch. DefaultTimeout when unset.
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration implied by a repository root alone.
func Default(root string) Config {
	return Config{
		Root:            root,
		TokenizerDir:    filepath.Join(root, "html5lib-tests", "tokenizer"),
		TreeDir:         filepath.Join(root, "html5lib-tests", "tree-construction"),
		EncodingDir:     filepath.Join(root, "html5lib-tests", "encoding"),
		AllowlistPath:   filepath.Join(root, "data", "allowlists.json"),
		EngineExe:       filepath.Join(root, ".build", "engine"),
		EngineSourceDir: filepath.Join(root, "src"),
		Timeout:         DefaultTimeout,
	}
}

// Load builds the configuration for root, applying overrides from the
// YAML file at path when it exists. An empty path means root/htmlconf.yaml,
// and that default file is allowed to be absent; an explicit path must
// exist.
func Load(root, path string) (Config, error) {
	cfg := Default(root)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, "htmlconf.yaml")
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var file fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := file.apply(&cfg, root); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// fileConfig mirrors the YAML shape. Every field is optional; string
// pointers distinguish "absent" from "set to empty".
type fileConfig struct {
	TokenizerDir    *string  `yaml:"tokenizer_dir"`
	TreeDir         *string  `yaml:"tree_dir"`
	EncodingDir     *string  `yaml:"encoding_dir"`
	Allowlist       *string  `yaml:"allowlist"`
	EngineExe       *string  `yaml:"engine_exe"`
	EngineSourceDir *string  `yaml:"engine_source_dir"`
	EngineSourceExt *string  `yaml:"engine_source_ext"`
	BuildCommand    []string `yaml:"build_command"`
	Journal         *string  `yaml:"journal"`
	Timeout         *string  `yaml:"timeout"`
}

func (f *fileConfig) apply(cfg *Config, root string) error {
	setPath := func(dst *string, src *string) {
		if src == nil {
			return
		}
		p := *src
		if p != "" && !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		*dst = p
	}
	setPath(&cfg.TokenizerDir, f.TokenizerDir)
	setPath(&cfg.TreeDir, f.TreeDir)
	setPath(&cfg.EncodingDir, f.EncodingDir)
	setPath(&cfg.AllowlistPath, f.Allowlist)
	setPath(&cfg.EngineExe, f.EngineExe)
	setPath(&cfg.EngineSourceDir, f.EngineSourceDir)
	setPath(&cfg.JournalPath, f.Journal)
	if f.EngineSourceExt != nil {
		cfg.EngineSourceExt = *f.EngineSourceExt
	}
	if f.BuildCommand != nil {
		cfg.BuildCommand = f.BuildCommand
	}
	if f.Timeout != nil {
		d, err := time.ParseDuration(*f.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		cfg.Timeout = d
	}
	return nil
}
