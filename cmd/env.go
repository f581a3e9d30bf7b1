package cmd

import (
	"fmt"

	"github.com/zjrosen/hilite/internal/config"
	"github.com/zjrosen/hilite/internal/flags"
	"github.com/zjrosen/hilite/internal/highlight"
	"github.com/zjrosen/hilite/internal/language"
	"github.com/zjrosen/hilite/internal/theme"
)

// environment is everything a command needs to highlight and render,
// built from the loaded configuration.
type environment struct {
	languages *language.Registry
	theme     *theme.Theme
	flags     *flags.Registry
	forced    string
}

// newEnvironment builds the language registry and theme for c.
// themePreset, when non-empty, replaces c.Theme.Preset.
func newEnvironment(c config.Config, themePreset string) (*environment, error) {
	fl := flags.New(c.Flags)

	opts := []highlight.Option{
		highlight.WithIsolatedRegions(fl.IsolateClosedRegions()),
	}
	if c.Render.MatchTimeout > 0 {
		opts = append(opts, highlight.WithMatchTimeout(c.Render.MatchTimeout))
	}

	reg := language.Default(opts...)
	if err := reg.LoadConfig(c.Languages); err != nil {
		return nil, fmt.Errorf("loading languages: %w", err)
	}

	themeCfg := c.Theme
	if themePreset != "" {
		themeCfg.Preset = themePreset
	}
	th, err := theme.Load(themeCfg)
	if err != nil {
		return nil, fmt.Errorf("loading theme: %w", err)
	}

	return &environment{
		languages: reg,
		theme:     th,
		flags:     fl,
		forced:    c.Language,
	}, nil
}

// highlighterFor returns the highlighter for path, or for the forced
// language when one is set.
func (e *environment) highlighterFor(path string) (*highlight.Highlighter, error) {
	if e.forced != "" {
		return e.languages.Highlighter(e.forced)
	}
	if path == "" {
		return nil, fmt.Errorf("reading stdin: no language given (use --language)")
	}
	return e.languages.HighlighterForPath(path)
}
