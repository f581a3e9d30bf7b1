package language

import (
	"fmt"
	"strings"

	"github.com/zjrosen/hilite/internal/config"
	"github.com/zjrosen/hilite/internal/highlight"
	"github.com/zjrosen/hilite/internal/log"
)

// FromConfig converts a config declaration into a Definition.
// When base is non-nil its tables come first and lc's entries are appended,
// so base rules keep their order and lc's rules repaint them. Base
// extensions are inherited only when lc keeps the base's name.
func FromConfig(lc config.LanguageConfig, base *highlight.Definition) (highlight.Definition, error) {
	var def highlight.Definition
	if base != nil {
		def = base.Clone()
		if !strings.EqualFold(base.Name, lc.Name) {
			def.Extensions = nil
		}
	}
	def.Name = lc.Name
	def.Extensions = append(def.Extensions, lc.Extensions...)
	if lc.CaseInsensitive != nil {
		def.CaseInsensitive = *lc.CaseInsensitive
	}
	def.Keywords = append(def.Keywords, lc.Keywords...)
	def.Operators = append(def.Operators, lc.Operators...)
	def.Braces = append(def.Braces, lc.Braces...)

	for i, rc := range lc.Rules {
		style, err := highlight.ParseStyle(rc.Style)
		if err != nil {
			return highlight.Definition{}, fmt.Errorf("language %s: rule %d: %w", lc.Name, i, err)
		}
		def.Rules = append(def.Rules, highlight.LineRule{
			Pattern: rc.Pattern,
			Capture: rc.Capture,
			Style:   style,
		})
	}
	for i, mc := range lc.MultiLine {
		style, err := highlight.ParseStyle(mc.Style)
		if err != nil {
			return highlight.Definition{}, fmt.Errorf("language %s: multiline %d: %w", lc.Name, i, err)
		}
		def.MultiLine = append(def.MultiLine, highlight.MultiLineRule{
			Start: mc.Start,
			End:   mc.End,
			State: highlight.BlockState(mc.State),
			Style: style,
		})
	}
	return def, nil
}

// ToConfig converts a Definition into its config form.
func ToConfig(def highlight.Definition) config.LanguageConfig {
	lc := config.LanguageConfig{
		Name:       def.Name,
		Extensions: append([]string(nil), def.Extensions...),
		Keywords:   append([]string(nil), def.Keywords...),
		Operators:  append([]string(nil), def.Operators...),
		Braces:     append([]string(nil), def.Braces...),
	}
	if def.CaseInsensitive {
		ci := true
		lc.CaseInsensitive = &ci
	}
	for _, r := range def.Rules {
		lc.Rules = append(lc.Rules, config.RuleConfig{
			Pattern: r.Pattern,
			Capture: r.Capture,
			Style:   r.Style.String(),
		})
	}
	for _, m := range def.MultiLine {
		lc.MultiLine = append(lc.MultiLine, config.MultiLineRuleConfig{
			Start: m.Start,
			End:   m.End,
			State: int(m.State),
			Style: m.Style.String(),
		})
	}
	return lc
}

// LoadConfig registers every language declared in config, in order.
// A declaration with Extends builds on a language already registered,
// including one declared earlier in the same list. A declaration whose name
// matches a registered language replaces it.
func (r *Registry) LoadConfig(langs []config.LanguageConfig) error {
	for i, lc := range langs {
		var base *highlight.Definition
		if lc.Extends != "" {
			def, ok := r.Definition(lc.Extends)
			if !ok {
				return fmt.Errorf("language %d (%s): extends %w %q", i, lc.Name, ErrUnknownLanguage, lc.Extends)
			}
			base = &def
		}

		def, err := FromConfig(lc, base)
		if err != nil {
			return err
		}
		if err := r.Register(def); err != nil {
			return fmt.Errorf("language %d: %w", i, err)
		}
		log.Info(log.CatLanguage, "Loaded language from config", "language", lc.Name, "extends", lc.Extends)
	}
	return nil
}
