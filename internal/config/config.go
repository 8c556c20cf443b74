// Package config reads the optional .shipit.yaml file at the repository
// root. Every field has a sensible default, a repository without the file
// works out of the box.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up at the repository root
const ConfigFileName = ".shipit.yaml"

// Config is the repository-level release configuration
type Config struct {
	// Remote to push to, defaults to origin
	Remote string `yaml:"remote,omitempty"`
	// CommitMessage template, {version} is replaced with the new version
	CommitMessage string `yaml:"commit_message,omitempty"`
	// TagMessage template for annotated tags, {version} is replaced
	TagMessage string `yaml:"tag_message,omitempty"`
	// AnnotatedTags controls whether release tags carry a message
	AnnotatedTags *bool `yaml:"annotated_tags,omitempty"`
	// PushTags controls whether tags are pushed alongside commits
	PushTags *bool `yaml:"push_tags,omitempty"`
	// SkipModules lists module directories excluded from per-module tags
	SkipModules []string `yaml:"skip_modules,omitempty"`
	// Publish toggles the forge release after the git phase
	Publish *bool `yaml:"publish,omitempty"`
	// DraftRelease creates the forge release as a draft
	DraftRelease bool `yaml:"draft_release,omitempty"`
}

// Load reads the configuration from repoRoot, returning defaults when the
// file does not exist
func Load(repoRoot string) (*Config, error) {
	path := filepath.Join(repoRoot, ConfigFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}
	return &cfg, nil
}

// RemoteName returns the configured remote or "origin"
func (c *Config) RemoteName() string {
	if c.Remote != "" {
		return c.Remote
	}
	return "origin"
}

// CommitMessageFor expands the commit message template for a version
func (c *Config) CommitMessageFor(version string) string {
	tmpl := c.CommitMessage
	if tmpl == "" {
		tmpl = "release: v{version}"
	}
	return expand(tmpl, version)
}

// TagMessageFor expands the tag message template for a version
func (c *Config) TagMessageFor(version string) string {
	tmpl := c.TagMessage
	if tmpl == "" {
		tmpl = "Release v{version}"
	}
	return expand(tmpl, version)
}

// UseAnnotatedTags defaults to true
func (c *Config) UseAnnotatedTags() bool {
	if c.AnnotatedTags == nil {
		return true
	}
	return *c.AnnotatedTags
}

// ShouldPushTags defaults to true
func (c *Config) ShouldPushTags() bool {
	if c.PushTags == nil {
		return true
	}
	return *c.PushTags
}

// ShouldPublish defaults to true
func (c *Config) ShouldPublish() bool {
	if c.Publish == nil {
		return true
	}
	return *c.Publish
}

// SkipsModule reports whether the module directory is excluded from
// per-module tagging
func (c *Config) SkipsModule(dir string) bool {
	for _, skip := range c.SkipModules {
		if filepath.ToSlash(skip) == filepath.ToSlash(dir) {
			return true
		}
	}
	return false
}

func expand(tmpl, version string) string {
	return strings.ReplaceAll(tmpl, "{version}", version)
}
