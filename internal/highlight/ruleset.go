package highlight

import (
	"fmt"
	"slices"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/zjrosen/hilite/internal/log"
)

// pattern is a compiled regular expression together with its source.
type pattern struct {
	source string
	re     *regexp2.Regexp
}

type compiledLineRule struct {
	rule LineRule
	pat  pattern
}

type compiledMultiLineRule struct {
	rule  MultiLineRule
	start pattern
	end   pattern
}

// RuleSet is the compiled, immutable form of a Definition.
// It holds no mutable state and may be shared between goroutines.
type RuleSet struct {
	name    string
	line    []compiledLineRule
	multi   []compiledMultiLineRule
	isolate bool
}

// Option configures Compile.
type Option func(*compileOptions)

type compileOptions struct {
	matchTimeout time.Duration
	isolate      bool
}

// WithMatchTimeout bounds the time a single regex search may take.
// A search that times out counts as no match. Zero leaves searches unbounded.
func WithMatchTimeout(d time.Duration) Option {
	return func(o *compileOptions) {
		o.matchTimeout = d
	}
}

// WithIsolatedRegions stops single-line rules from repainting text inside a
// multi-line region that opened and closed on the same line. By default the
// single-line rules scan the whole line after a region closes, so a closed
// string's contents can be re-tokenized.
func WithIsolatedRegions(enabled bool) Option {
	return func(o *compileOptions) {
		o.isolate = enabled
	}
}

// Compile validates def and compiles its patterns into a RuleSet.
// It performs no matching. Any invalid pattern, capture group, style or
// region state yields a *ConfigurationError.
func Compile(def Definition, opts ...Option) (*RuleSet, error) {
	var o compileOptions
	for _, opt := range opts {
		opt(&o)
	}

	reOpts := regexp2.None
	if def.CaseInsensitive {
		reOpts |= regexp2.IgnoreCase
	}

	c := compiler{def: def, reOpts: reOpts, timeout: o.matchTimeout}
	rs := &RuleSet{name: def.Name, isolate: o.isolate}

	for i, kw := range def.Keywords {
		src := `(?<!\w)` + regexp2.Escape(kw) + `(?!\w)`
		r, err := c.lineRule("keyword", i, LineRule{Pattern: src, Style: StyleKeyword})
		if err != nil {
			return nil, err
		}
		rs.line = append(rs.line, r)
	}
	for i, op := range def.Operators {
		r, err := c.lineRule("operator", i, LineRule{Pattern: op, Style: StyleOperator})
		if err != nil {
			return nil, err
		}
		rs.line = append(rs.line, r)
	}
	for i, br := range def.Braces {
		r, err := c.lineRule("brace", i, LineRule{Pattern: br, Style: StyleBrace})
		if err != nil {
			return nil, err
		}
		rs.line = append(rs.line, r)
	}
	for i, lr := range def.Rules {
		r, err := c.lineRule("rule", i, lr)
		if err != nil {
			return nil, err
		}
		rs.line = append(rs.line, r)
	}

	seen := make(map[BlockState]int, len(def.MultiLine))
	for i, mr := range def.MultiLine {
		if mr.State <= StateNormal {
			return nil, c.fail("multiline", i, "", fmt.Errorf("%w: got %d", ErrInvalidRegionState, mr.State))
		}
		if prev, dup := seen[mr.State]; dup {
			return nil, c.fail("multiline", i, "", fmt.Errorf("%w: %d already used by multiline %d", ErrDuplicateRegionState, mr.State, prev))
		}
		seen[mr.State] = i
		if !mr.Style.Assignable() {
			return nil, c.fail("multiline", i, "", fmt.Errorf("%w: %s", ErrUnknownStyle, mr.Style))
		}
		start, err := c.compile("multiline", i, mr.Start)
		if err != nil {
			return nil, err
		}
		end, err := c.compile("multiline", i, mr.End)
		if err != nil {
			return nil, err
		}
		rs.multi = append(rs.multi, compiledMultiLineRule{rule: mr, start: start, end: end})
	}

	log.Debug(log.CatHighlight, "rule set compiled",
		"language", def.Name, "line_rules", len(rs.line), "multiline_rules", len(rs.multi),
		"case_insensitive", def.CaseInsensitive, "isolate", o.isolate)
	return rs, nil
}

// ownsState reports whether a multi-line rule uses s as its region state.
func (rs *RuleSet) ownsState(s BlockState) bool {
	for i := range rs.multi {
		if rs.multi[i].rule.State == s {
			return true
		}
	}
	return false
}

// MustCompile is like Compile but panics on error. Intended for built-in tables.
func MustCompile(def Definition, opts ...Option) *RuleSet {
	rs, err := Compile(def, opts...)
	if err != nil {
		panic(err)
	}
	return rs
}

type compiler struct {
	def     Definition
	reOpts  regexp2.RegexOptions
	timeout time.Duration
}

func (c compiler) fail(kind string, idx int, src string, err error) *ConfigurationError {
	return &ConfigurationError{Language: c.def.Name, Kind: kind, Index: idx, Pattern: src, Err: err}
}

func (c compiler) compile(kind string, idx int, src string) (pattern, error) {
	re, err := regexp2.Compile(src, c.reOpts)
	if err != nil {
		return pattern{}, c.fail(kind, idx, src, fmt.Errorf("%w: %v", ErrInvalidPattern, err))
	}
	if c.timeout > 0 {
		re.MatchTimeout = c.timeout
	}
	return pattern{source: src, re: re}, nil
}

func (c compiler) lineRule(kind string, idx int, lr LineRule) (compiledLineRule, error) {
	if !lr.Style.Assignable() {
		return compiledLineRule{}, c.fail(kind, idx, lr.Pattern, fmt.Errorf("%w: %s", ErrUnknownStyle, lr.Style))
	}
	p, err := c.compile(kind, idx, lr.Pattern)
	if err != nil {
		return compiledLineRule{}, err
	}
	if lr.Capture < 0 || !slices.Contains(p.re.GetGroupNumbers(), lr.Capture) {
		return compiledLineRule{}, c.fail(kind, idx, lr.Pattern, fmt.Errorf("%w: group %d", ErrInvalidCaptureGroup, lr.Capture))
	}
	return compiledLineRule{rule: lr, pat: p}, nil
}

// Name returns the Definition name the set was compiled from.
func (rs *RuleSet) Name() string {
	return rs.name
}

// LineRules returns the expanded line rules in evaluation order.
// Keyword entries appear with their generated boundary pattern.
func (rs *RuleSet) LineRules() []LineRule {
	out := make([]LineRule, len(rs.line))
	for i, r := range rs.line {
		out[i] = r.rule
	}
	return out
}

// MultiLineRules returns the multi-line rules in evaluation order.
func (rs *RuleSet) MultiLineRules() []MultiLineRule {
	out := make([]MultiLineRule, len(rs.multi))
	for i, r := range rs.multi {
		out[i] = r.rule
	}
	return out
}

// IsolatesRegions reports whether WithIsolatedRegions was enabled.
func (rs *RuleSet) IsolatesRegions() bool {
	return rs.isolate
}

// find returns the first match at or after rune offset at, or nil.
func (p pattern) find(line []rune, at int) *regexp2.Match {
	if at > len(line) {
		return nil
	}
	m, err := p.re.FindRunesMatchStartingAt(line, at)
	if err != nil {
		log.Warn(log.CatHighlight, "pattern search failed", "pattern", p.source, "error", err)
		return nil
	}
	return m
}

// next returns the match following m, or nil.
func (p pattern) next(m *regexp2.Match) *regexp2.Match {
	n, err := p.re.FindNextMatch(m)
	if err != nil {
		log.Warn(log.CatHighlight, "pattern search failed", "pattern", p.source, "error", err)
		return nil
	}
	return n
}
