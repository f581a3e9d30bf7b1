package highlight

// BlockState is the only information carried from one line to the next.
// StateNormal means the line ended outside every multi-line region; any other
// value is the State of the MultiLineRule left open.
type BlockState int

// StateNormal is the state of the first line of a document.
const StateNormal BlockState = 0

// LineRule styles matches of Pattern within a single line.
// Capture selects the capture group to style; 0 styles the whole match.
type LineRule struct {
	Pattern string  `yaml:"pattern"`
	Capture int     `yaml:"capture,omitempty"`
	Style   StyleID `yaml:"style"`
}

// MultiLineRule styles a region opened by Start and closed by End that may
// span lines. State tags the region while it is open and must be unique and
// positive within a Definition.
type MultiLineRule struct {
	Start string     `yaml:"start"`
	End   string     `yaml:"end"`
	State BlockState `yaml:"state"`
	Style StyleID    `yaml:"style"`
}

// Definition is the declarative form of a language's rules.
//
// Line rules are evaluated in this order: one per keyword, one per operator,
// one per brace, then Rules as listed. Later rules repaint earlier ones.
// MultiLine rules are tried in order and the first that applies to a line wins.
type Definition struct {
	Name            string          `yaml:"name"`
	Extensions      []string        `yaml:"extensions,omitempty"`
	CaseInsensitive bool            `yaml:"case_insensitive,omitempty"`
	Keywords        []string        `yaml:"keywords,omitempty"`
	Operators       []string        `yaml:"operators,omitempty"`
	Braces          []string        `yaml:"braces,omitempty"`
	Rules           []LineRule      `yaml:"rules,omitempty"`
	MultiLine       []MultiLineRule `yaml:"multiline,omitempty"`
}

// Clone returns a deep copy so callers can extend a built-in definition.
func (d Definition) Clone() Definition {
	out := d
	out.Extensions = append([]string(nil), d.Extensions...)
	out.Keywords = append([]string(nil), d.Keywords...)
	out.Operators = append([]string(nil), d.Operators...)
	out.Braces = append([]string(nil), d.Braces...)
	out.Rules = append([]LineRule(nil), d.Rules...)
	out.MultiLine = append([]MultiLineRule(nil), d.MultiLine...)
	return out
}
