// Package highlight implements an incremental, line-at-a-time lexical highlighter.
//
// A Definition lists ordered line rules and multi-line region rules. Compile
// turns it into an immutable RuleSet, and a Highlighter built on that set maps
// (line text, incoming BlockState) to styled spans plus the BlockState to carry
// into the next line. Nothing else is remembered between calls.
package highlight

import (
	"fmt"
	"strings"
)

// StyleID identifies a rendering style. The highlighter only attaches it to
// spans; a theme decides what it looks like.
type StyleID uint8

const (
	StyleNone StyleID = iota
	StyleKeyword
	StyleOperator
	StyleBrace
	StyleDef
	StyleClass
	StyleString
	StyleStringBlock
	StyleComment
	StyleClsSelf
	StylePrivate
	StyleNumbers

	styleCount
)

var styleNames = [...]string{
	StyleNone:        "none",
	StyleKeyword:     "keyword",
	StyleOperator:    "operator",
	StyleBrace:       "brace",
	StyleDef:         "def",
	StyleClass:       "class",
	StyleString:      "string",
	StyleStringBlock: "stringBlock",
	StyleComment:     "comment",
	StyleClsSelf:     "clsself",
	StylePrivate:     "private",
	StyleNumbers:     "numbers",
}

// String returns the configuration name of the style.
func (s StyleID) String() string {
	if s < styleCount {
		return styleNames[s]
	}
	return fmt.Sprintf("style(%d)", uint8(s))
}

// Valid reports whether s is one of the declared styles.
func (s StyleID) Valid() bool {
	return s < styleCount
}

// Assignable reports whether a rule may paint text with s.
// StyleNone marks unstyled text and is never assigned by a rule.
func (s StyleID) Assignable() bool {
	return s != StyleNone && s.Valid()
}

// ParseStyle resolves a configuration name such as "keyword" or "stringBlock".
// Matching ignores case since config loaders may lowercase map keys.
func ParseStyle(name string) (StyleID, error) {
	for i, n := range styleNames {
		if strings.EqualFold(n, name) {
			return StyleID(i), nil
		}
	}
	return StyleNone, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
}

// Styles returns every style except StyleNone, in declaration order.
func Styles() []StyleID {
	out := make([]StyleID, 0, styleCount-1)
	for s := StyleKeyword; s < styleCount; s++ {
		out = append(out, s)
	}
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (s StyleID) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStyle, uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *StyleID) UnmarshalText(text []byte) error {
	v, err := ParseStyle(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
