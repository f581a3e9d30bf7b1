package highlight

import (
	"github.com/zjrosen/hilite/internal/log"
)

// Highlighter styles one line at a time against a RuleSet.
// It keeps no per-document state: the caller threads BlockState from each
// line's result into the next call. Safe for concurrent use.
type Highlighter struct {
	rules *RuleSet
}

// New returns a Highlighter over a compiled rule set.
func New(rs *RuleSet) *Highlighter {
	return &Highlighter{rules: rs}
}

// FromDefinition compiles def and returns a Highlighter for it.
func FromDefinition(def Definition, opts ...Option) (*Highlighter, error) {
	rs, err := Compile(def, opts...)
	if err != nil {
		return nil, err
	}
	return New(rs), nil
}

// RuleSet returns the rules the highlighter matches with.
func (h *Highlighter) RuleSet() *RuleSet {
	return h.rules
}

// Language returns the name of the compiled definition.
func (h *Highlighter) Language() string {
	return h.rules.name
}

// InitialState returns the state to pass for the first line of a document.
func (h *Highlighter) InitialState() BlockState {
	return StateNormal
}

// HighlightLine styles text, one line without its newline, given the exit
// state of the previous line. It returns spans in the order they were painted
// (later spans win where they overlap) and the state for the next line.
// Offsets are rune offsets into text.
func (h *Highlighter) HighlightLine(text string, in BlockState) ([]Span, BlockState) {
	line := []rune(text)

	regions, out, applied := h.scanRegions(line, in)
	if applied && out != StateNormal {
		// An open region owns the rest of the line.
		return regions, out
	}

	return h.scanLine(line, regions), StateNormal
}

// scanRegions applies the first multi-line rule, in rule order, that either
// resumes in or finds its start delimiter on the line.
func (h *Highlighter) scanRegions(line []rune, in BlockState) ([]Span, BlockState, bool) {
	if in != StateNormal && !h.rules.ownsState(in) {
		log.Debug(log.CatHighlight, "unknown incoming state treated as normal",
			"language", h.rules.name, "state", in)
	}

	for i := range h.rules.multi {
		r := &h.rules.multi[i]
		if r.rule.State == in {
			spans, out := h.region(r, line, 0, 0)
			return spans, out, true
		}
		m := r.start.find(line, 0)
		if m == nil {
			continue
		}
		spans, out := h.region(r, line, m.Index, m.Length)
		return spans, out, true
	}
	return nil, StateNormal, false
}

// region paints every occurrence of rule r on the line, beginning with a
// region at start whose opening delimiter is skip runes long.
func (h *Highlighter) region(r *compiledMultiLineRule, line []rune, start, skip int) ([]Span, BlockState) {
	var spans []Span
	for {
		end := r.end.find(line, start+skip)
		if end == nil {
			spans = appendSpan(spans, start, len(line)-start, r.rule.Style)
			return spans, r.rule.State
		}

		stop := end.Index + end.Length
		spans = appendSpan(spans, start, stop-start, r.rule.Style)

		from := stop
		if stop == start {
			// Empty region; step past it so the search makes progress.
			from++
		}
		next := r.start.find(line, from)
		if next == nil {
			return spans, StateNormal
		}
		start, skip = next.Index, next.Length
	}
}

// scanLine returns closed followed by every line-rule match in rule order.
// closed holds the regions that opened and closed on this line.
func (h *Highlighter) scanLine(line []rune, closed []Span) []Span {
	spans := append([]Span(nil), closed...)
	for i := range h.rules.line {
		r := &h.rules.line[i]
		for m := r.pat.find(line, 0); m != nil; m = r.pat.next(m) {
			off, n := m.Index, m.Length
			if r.rule.Capture > 0 {
				g := m.GroupByNumber(r.rule.Capture)
				if g == nil || len(g.Captures) == 0 {
					continue
				}
				off, n = g.Index, g.Length
			}
			if n == 0 {
				continue
			}
			if h.rules.isolate && overlapsAny(off, n, closed) {
				continue
			}
			spans = append(spans, Span{Offset: off, Length: n, Style: r.rule.Style})
		}
	}
	return spans
}

func appendSpan(spans []Span, off, n int, style StyleID) []Span {
	if n <= 0 {
		return spans
	}
	return append(spans, Span{Offset: off, Length: n, Style: style})
}

func overlapsAny(off, n int, spans []Span) bool {
	for _, s := range spans {
		if off < s.End() && s.Offset < off+n {
			return true
		}
	}
	return false
}
