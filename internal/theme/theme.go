// Package theme maps highlight styles to terminal rendering attributes.
package theme

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/hilite/internal/config"
	"github.com/zjrosen/hilite/internal/highlight"
	"github.com/zjrosen/hilite/internal/log"
)

// DefaultName is the preset name of the built-in theme.
const DefaultName = "default"

// ErrUnknownPreset is returned for a preset that is neither the default nor a chroma style.
var ErrUnknownPreset = errors.New("unknown theme preset")

// Attrs are the rendering attributes of one style.
// An empty Foreground leaves the terminal's color.
type Attrs struct {
	Foreground string
	Bold       bool
	Italic     bool
	Underline  bool
}

// IsZero reports whether a renders as plain text.
func (a Attrs) IsZero() bool {
	return a == Attrs{}
}

// Theme assigns Attrs to each highlight style.
type Theme struct {
	name  string
	attrs map[highlight.StyleID]Attrs
}

// Default returns the built-in theme.
func Default() *Theme {
	return &Theme{
		name: DefaultName,
		attrs: map[highlight.StyleID]Attrs{
			highlight.StyleKeyword:     {Foreground: "#c98300"},
			highlight.StyleOperator:    {Foreground: "#828282"},
			highlight.StyleBrace:       {Foreground: "#828282"},
			highlight.StyleDef:         {Foreground: "#d4bc08"},
			highlight.StyleString:      {Foreground: "#41b55c"},
			highlight.StyleStringBlock: {Foreground: "#41b55c"},
			highlight.StyleComment:     {Foreground: "#828282"},
			highlight.StyleClsSelf:     {Italic: true},
			highlight.StylePrivate:     {Foreground: "#d200f7", Italic: true},
		},
	}
}

// chromaTokens picks the chroma token whose entry colors each style.
var chromaTokens = map[highlight.StyleID]chroma.TokenType{
	highlight.StyleKeyword:     chroma.Keyword,
	highlight.StyleOperator:    chroma.Operator,
	highlight.StyleBrace:       chroma.Punctuation,
	highlight.StyleDef:         chroma.NameFunction,
	highlight.StyleClass:       chroma.NameClass,
	highlight.StyleString:      chroma.LiteralString,
	highlight.StyleStringBlock: chroma.LiteralStringDoc,
	highlight.StyleComment:     chroma.Comment,
	highlight.StyleClsSelf:     chroma.NameBuiltinPseudo,
	highlight.StylePrivate:     chroma.NameVariable,
	highlight.StyleNumbers:     chroma.LiteralNumber,
}

// FromChroma builds a theme from a chroma style such as "monokai".
func FromChroma(name string) (*Theme, error) {
	cs, ok := lookupChroma(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}

	t := &Theme{name: cs.Name, attrs: make(map[highlight.StyleID]Attrs, len(chromaTokens))}
	for id, tok := range chromaTokens {
		entry := cs.Get(tok)
		a := Attrs{
			Bold:      entry.Bold == chroma.Yes,
			Italic:    entry.Italic == chroma.Yes,
			Underline: entry.Underline == chroma.Yes,
		}
		if entry.Colour.IsSet() {
			a.Foreground = entry.Colour.String()
		}
		if !a.IsZero() {
			t.attrs[id] = a
		}
	}
	log.Debug(log.CatTheme, "Loaded chroma theme", "name", cs.Name, "styles", len(t.attrs))
	return t, nil
}

func lookupChroma(name string) (*chroma.Style, bool) {
	if cs, ok := styles.Registry[name]; ok {
		return cs, true
	}
	cs, ok := styles.Registry[strings.ToLower(name)]
	return cs, ok
}

// Preset returns the default theme for "" or DefaultName, otherwise the chroma style.
func Preset(name string) (*Theme, error) {
	if name == "" || strings.EqualFold(name, DefaultName) {
		return Default(), nil
	}
	return FromChroma(name)
}

// Presets returns every accepted preset name: the default first, then chroma styles sorted.
func Presets() []string {
	names := styles.Names()
	slices.Sort(names)
	return append([]string{DefaultName}, names...)
}

// Load builds the theme described by cfg: its preset with the overrides applied.
func Load(cfg config.ThemeConfig) (*Theme, error) {
	t, err := Preset(cfg.Preset)
	if err != nil {
		return nil, err
	}
	if err := t.Apply(cfg); err != nil {
		return nil, err
	}
	return t, nil
}

// Apply overrides colors and turns on attributes named in cfg.
// The preset in cfg is ignored.
func (t *Theme) Apply(cfg config.ThemeConfig) error {
	for name, color := range cfg.Colors {
		id, err := highlight.ParseStyle(name)
		if err != nil {
			return fmt.Errorf("theme colors: %w", err)
		}
		if !config.ValidColor(color) {
			return fmt.Errorf("theme colors: %s: invalid color %q", name, color)
		}
		a := t.attrs[id]
		a.Foreground = color
		t.attrs[id] = a
	}

	set := func(names []string, field string, apply func(*Attrs)) error {
		for _, name := range names {
			id, err := highlight.ParseStyle(name)
			if err != nil {
				return fmt.Errorf("theme %s: %w", field, err)
			}
			a := t.attrs[id]
			apply(&a)
			t.attrs[id] = a
		}
		return nil
	}
	if err := set(cfg.Bold, "bold", func(a *Attrs) { a.Bold = true }); err != nil {
		return err
	}
	if err := set(cfg.Italic, "italic", func(a *Attrs) { a.Italic = true }); err != nil {
		return err
	}
	if err := set(cfg.Underline, "underline", func(a *Attrs) { a.Underline = true }); err != nil {
		return err
	}

	log.Debug(log.CatTheme, "Applied theme overrides", "theme", t.name, "colors", len(cfg.Colors))
	return nil
}

// Name returns the preset the theme was built from.
func (t *Theme) Name() string {
	return t.name
}

// Attrs returns the attributes of a style.
func (t *Theme) Attrs(id highlight.StyleID) Attrs {
	return t.attrs[id]
}

// All returns a copy of every non-plain style's attributes.
func (t *Theme) All() map[highlight.StyleID]Attrs {
	return maps.Clone(t.attrs)
}

// Style returns the lipgloss style for id.
func (t *Theme) Style(id highlight.StyleID) lipgloss.Style {
	a := t.attrs[id]
	s := lipgloss.NewStyle().
		TabWidth(lipgloss.NoTabConversion).
		Bold(a.Bold).
		Italic(a.Italic).
		Underline(a.Underline)
	if a.Foreground != "" {
		s = s.Foreground(lipgloss.Color(a.Foreground))
	}
	return s
}
