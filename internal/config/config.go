// Package config provides configuration types, defaults, and persistence for hilite.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/hilite/internal/flags"
	"github.com/zjrosen/hilite/internal/highlight"
	"github.com/zjrosen/hilite/internal/log"
	"github.com/zjrosen/hilite/internal/templates"
)

// Config holds all configuration options for hilite.
type Config struct {
	// Language forces a language for every file. Empty infers it from the extension.
	Language  string           `mapstructure:"language"`
	Theme     ThemeConfig      `mapstructure:"theme"`
	Render    RenderConfig     `mapstructure:"render"`
	Log       LogConfig        `mapstructure:"log"`
	Languages []LanguageConfig `mapstructure:"languages"`
	Flags     map[string]bool  `mapstructure:"flags"`
}

// ThemeConfig selects a base theme and overrides individual styles.
// Keys of Colors and entries of Bold/Italic/Underline are style names
// ("keyword", "stringBlock", ...).
type ThemeConfig struct {
	// Preset is "" or "default" for the built-in theme, otherwise a chroma style name.
	Preset    string            `mapstructure:"preset"`
	Colors    map[string]string `mapstructure:"colors"` // "#rrggbb", "#rgb" or ANSI 0-255
	Bold      []string          `mapstructure:"bold"`
	Italic    []string          `mapstructure:"italic"`
	Underline []string          `mapstructure:"underline"`
}

// RenderConfig controls terminal output of the render command.
type RenderConfig struct {
	Color        string        `mapstructure:"color"` // "auto" (default), "always", "never"
	LineNumbers  bool          `mapstructure:"line_numbers"`
	MatchTimeout time.Duration `mapstructure:"match_timeout"` // 0 = unbounded regex searches
}

// LogConfig controls the debug log.
type LogConfig struct {
	File  string `mapstructure:"file"`  // empty disables logging
	Level string `mapstructure:"level"` // debug, info (default), warn, error
}

// LanguageConfig declares a language, or overrides a built-in one by name.
type LanguageConfig struct {
	Name       string   `mapstructure:"name" yaml:"name"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions,omitempty"`
	// Extends copies every table of a registered language before appending these.
	Extends         string                `mapstructure:"extends" yaml:"extends,omitempty"`
	CaseInsensitive *bool                 `mapstructure:"case_insensitive" yaml:"case_insensitive,omitempty"`
	Keywords        []string              `mapstructure:"keywords" yaml:"keywords,omitempty"`
	Operators       []string              `mapstructure:"operators" yaml:"operators,omitempty"`
	Braces          []string              `mapstructure:"braces" yaml:"braces,omitempty"`
	Rules           []RuleConfig          `mapstructure:"rules" yaml:"rules,omitempty"`
	MultiLine       []MultiLineRuleConfig `mapstructure:"multiline" yaml:"multiline,omitempty"`
}

// RuleConfig is a single-line rule in config form.
type RuleConfig struct {
	Pattern string `mapstructure:"pattern" yaml:"pattern"`
	Capture int    `mapstructure:"capture" yaml:"capture,omitempty"`
	Style   string `mapstructure:"style" yaml:"style"`
}

// MultiLineRuleConfig is a multi-line region rule in config form.
type MultiLineRuleConfig struct {
	Start string `mapstructure:"start" yaml:"start"`
	End   string `mapstructure:"end" yaml:"end"`
	State int    `mapstructure:"state" yaml:"state"`
	Style string `mapstructure:"style" yaml:"style"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Render: RenderConfig{
			Color: "auto",
		},
		Log: LogConfig{
			Level: "info",
		},
		Flags: map[string]bool{
			flags.FlagIsolateClosedRegions: false,
		},
	}
}

// SetDefaults registers Defaults on v so unset keys unmarshal to them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("language", d.Language)
	v.SetDefault("theme.preset", d.Theme.Preset)
	v.SetDefault("render.color", d.Render.Color)
	v.SetDefault("render.line_numbers", d.Render.LineNumbers)
	v.SetDefault("render.match_timeout", d.Render.MatchTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("flags", d.Flags)
}

// Load reads the config file at path into a fresh viper instance.
func Load(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config %s: %w", path, err)
	}
	log.Debug(log.CatConfig, "Loaded config", "path", path, "languages", len(cfg.Languages))
	return cfg, nil
}

// Validate checks every section of the configuration.
func Validate(cfg Config) error {
	if err := ValidateTheme(cfg.Theme); err != nil {
		return err
	}
	if err := ValidateRender(cfg.Render); err != nil {
		return err
	}
	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return ValidateLanguages(cfg.Languages)
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidColor reports whether c is a hex color or an ANSI color index.
func ValidColor(c string) bool {
	if hexColor.MatchString(c) {
		return true
	}
	n, err := strconv.Atoi(c)
	return err == nil && n >= 0 && n <= 255
}

// ValidateTheme checks style names and color values of a theme section.
// Preset names are resolved by the theme package.
func ValidateTheme(theme ThemeConfig) error {
	for name, color := range theme.Colors {
		if _, err := parseStyle(name); err != nil {
			return fmt.Errorf("theme.colors: %w", err)
		}
		if !ValidColor(color) {
			return fmt.Errorf("theme.colors.%s: invalid color %q (want #rrggbb, #rgb or 0-255)", name, color)
		}
	}
	for attr, names := range map[string][]string{
		"bold":      theme.Bold,
		"italic":    theme.Italic,
		"underline": theme.Underline,
	} {
		for _, name := range names {
			if _, err := parseStyle(name); err != nil {
				return fmt.Errorf("theme.%s: %w", attr, err)
			}
		}
	}
	return nil
}

// ValidateRender checks the render section.
func ValidateRender(r RenderConfig) error {
	switch r.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("render.color must be \"auto\", \"always\", or \"never\", got %q", r.Color)
	}
	if r.MatchTimeout < 0 {
		return fmt.Errorf("render.match_timeout must not be negative, got %v", r.MatchTimeout)
	}
	return nil
}

// ValidateLanguages checks language declarations for errors that do not
// need pattern compilation. Returns nil for an empty list.
func ValidateLanguages(langs []LanguageConfig) error {
	seen := make(map[string]int, len(langs))
	for i, lang := range langs {
		if lang.Name == "" {
			return fmt.Errorf("language %d: name is required", i)
		}
		key := strings.ToLower(lang.Name)
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("language %d (%s): name already declared by language %d", i, lang.Name, prev)
		}
		seen[key] = i

		for j, ext := range lang.Extensions {
			if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
				return fmt.Errorf("language %d (%s): extension %d %q must start with '.'", i, lang.Name, j, ext)
			}
		}
		for j, r := range lang.Rules {
			if r.Pattern == "" {
				return fmt.Errorf("language %d (%s): rule %d: pattern is required", i, lang.Name, j)
			}
			if _, err := parseStyle(r.Style); err != nil {
				return fmt.Errorf("language %d (%s): rule %d: %w", i, lang.Name, j, err)
			}
		}
		for j, m := range lang.MultiLine {
			if m.Start == "" || m.End == "" {
				return fmt.Errorf("language %d (%s): multiline %d: start and end are required", i, lang.Name, j)
			}
			if m.State <= 0 {
				return fmt.Errorf("language %d (%s): multiline %d: state must be positive, got %d", i, lang.Name, j, m.State)
			}
			if _, err := parseStyle(m.Style); err != nil {
				return fmt.Errorf("language %d (%s): multiline %d: %w", i, lang.Name, j, err)
			}
		}
	}
	return nil
}

// parseStyle resolves a style name that a rule or theme entry may assign.
func parseStyle(name string) (highlight.StyleID, error) {
	s, err := highlight.ParseStyle(name)
	if err != nil {
		return s, err
	}
	if !s.Assignable() {
		return s, fmt.Errorf("%w: %q cannot be assigned", highlight.ErrUnknownStyle, name)
	}
	return s, nil
}

// DefaultConfigPath returns ~/.config/hilite/config.yaml or empty string if
// the home directory is unavailable.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hilite", "config.yaml")
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return templates.DefaultConfig()
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
