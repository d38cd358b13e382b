// Package config implements Bind options (SPEC_FULL.md §4.11): classpath
// and bootclasspath archive locations, source root, and feature flags,
// loaded from YAML with gopkg.in/yaml.v3 the same way analyzer/linage's
// structs carry yaml tags, with CLI flag overrides applied on top via
// github.com/spf13/cobra.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

// Options is the on-disk/CLI-overridable configuration for one binding run.
type Options struct {
	SourceRoot    string   `yaml:"sourceRoot"`
	BootClasspath []string `yaml:"bootClasspath,omitempty"`
	Classpath     []string `yaml:"classpath,omitempty"`

	// Flags toggles optional behaviors; unrecognized keys are preserved
	// on Load (and silently ignored by the binder) rather than rejected,
	// since new flags are added over time without requiring every config
	// file on disk to be rewritten.
	Flags map[string]bool `yaml:"flags,omitempty"`
}

// Load reads and parses a YAML options file.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &opts, nil
}

// Flag reports whether a named feature flag is set, defaulting to false
// when absent.
func (o *Options) Flag(name string) bool {
	if o == nil || o.Flags == nil {
		return false
	}
	return o.Flags[name]
}

// DetectModulePath reads the go.mod at sourceRoot, if any, and returns the
// module path it declares. It returns "" with a nil error when sourceRoot
// has no go.mod, since a source root need not be a Go module (the tree
// being bound is Java, not Go) — this is purely an optional hint surfaced
// to logging/diagnostics, not something the binder depends on.
func DetectModulePath(sourceRoot string) (string, error) {
	path := filepath.Join(sourceRoot, "go.mod")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("config: reading %s: %w", path, err)
	}
	mod, err := modfile.Parse(path, data, nil)
	if err != nil {
		return "", fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if mod.Module == nil {
		return "", nil
	}
	return mod.Module.Mod.Path, nil
}

// MergeOverrides applies non-zero CLI-supplied overrides onto o, in place,
// giving flags precedence over whatever the YAML file declared.
func (o *Options) MergeOverrides(sourceRoot string, bootClasspath, classpath []string) {
	if sourceRoot != "" {
		o.SourceRoot = sourceRoot
	}
	if len(bootClasspath) > 0 {
		o.BootClasspath = bootClasspath
	}
	if len(classpath) > 0 {
		o.Classpath = classpath
	}
}
