package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultMaxDepth bounds traversal when neither the command line nor the
	// config file sets a depth.
	DefaultMaxDepth = 100

	configFileName = "swim-clean-all.toml"
)

// SearchConfig is the merged, read-only configuration of one run.
type SearchConfig struct {
	Root     string   // canonical absolute search root
	Skip     []string // skip entries, see skipMatcher
	MaxDepth int      // levels below Root, Root is depth 0
	WorkDir  string   // base for relative path skip entries
}

// ConfigError aborts a run before traversal starts.
type ConfigError struct {
	Op   string
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// fileConfig mirrors swim-clean-all.toml.
type fileConfig struct {
	Skip     []string `toml:"skip"`
	MaxDepth *int     `toml:"max-depth"`
}

// cliOptions holds what the command line provided.
type cliOptions struct {
	root         string
	skip         []string
	maxDepth     int
	maxDepthSet  bool
	configPath   string
	ignoreConfig bool
	verbose      bool
	dryRun       bool
	interactive  bool
	plain        bool
}

// defaultConfigDir follows XDG_CONFIG_HOME, then the OS user config dir,
// then ~/.config.
func defaultConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	dir, err := homedir.Expand("~/.config")
	if err != nil {
		return ""
	}
	return dir
}

// configFilePath returns the config file to load, or "" when there is no
// config directory on this system.
func configFilePath(explicit string, log logrus.FieldLogger) string {
	if explicit != "" {
		p, err := homedir.Expand(explicit)
		if err != nil {
			return explicit
		}
		return p
	}
	dir := defaultConfigDir()
	if dir == "" {
		log.Warn("No config directory found on system")
		return ""
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Warnf("Config directory %s does not exist", dir)
		return ""
	}
	return filepath.Join(dir, configFileName)
}

// loadFileConfig parses path. A missing file is not an error and yields nil.
func loadFileConfig(path string, log logrus.FieldLogger) (*fileConfig, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warnf("Config file %s does not exist or is not a file", path)
			return nil, nil
		}
		return nil, &ConfigError{Op: "load config file", Path: path, Err: err}
	}

	var cfg fileConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, &ConfigError{Op: "parse config file", Path: path, Err: err}
	}
	log.Debugf("Loaded config file %s", path)
	return &cfg, nil
}

// buildSearchConfig merges command line and file values. Skip lists are
// unioned, max depth comes from the command line when set, else the file,
// else DefaultMaxDepth.
func buildSearchConfig(opts cliOptions, file *fileConfig) (SearchConfig, error) {
	cfg := SearchConfig{MaxDepth: DefaultMaxDepth}

	seen := make(map[string]bool)
	add := func(entries []string) {
		for _, e := range entries {
			if e == "" || seen[e] {
				continue
			}
			seen[e] = true
			cfg.Skip = append(cfg.Skip, e)
		}
	}
	add(opts.skip)
	if file != nil {
		add(file.Skip)
	}

	switch {
	case opts.maxDepthSet:
		cfg.MaxDepth = opts.maxDepth
	case file != nil && file.MaxDepth != nil:
		cfg.MaxDepth = *file.MaxDepth
	}
	if cfg.MaxDepth < 0 {
		return SearchConfig{}, &ConfigError{Op: "validate max depth", Err: fmt.Errorf("must be >= 0, got %d", cfg.MaxDepth)}
	}

	wd, err := os.Getwd()
	if err != nil {
		return SearchConfig{}, &ConfigError{Op: "get working directory", Err: err}
	}
	cfg.WorkDir = wd

	root := opts.root
	if root == "" {
		root = "."
	}
	cfg.Root, err = canonicalizeRoot(root, wd)
	if err != nil {
		return SearchConfig{}, err
	}
	return cfg, nil
}

// canonicalizeRoot expands ~, makes the path absolute and resolves symlinks.
// The result must be a directory.
func canonicalizeRoot(root, workDir string) (string, error) {
	p, err := homedir.Expand(root)
	if err != nil {
		return "", &ConfigError{Op: "expand search root", Path: root, Err: err}
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(workDir, p)
	}
	p, err = filepath.EvalSymlinks(p)
	if err != nil {
		return "", &ConfigError{Op: "canonicalize search root", Path: root, Err: err}
	}
	info, err := os.Stat(p)
	if err != nil {
		return "", &ConfigError{Op: "stat search root", Path: root, Err: err}
	}
	if !info.IsDir() {
		return "", &ConfigError{Op: "search root", Path: root, Err: errors.New("not a directory")}
	}
	if _, err := os.ReadDir(p); err != nil {
		return "", &ConfigError{Op: "read search root", Path: root, Err: err}
	}
	return p, nil
}
