package theme

import (
	"strings"

	"github.com/zjrosen/hilite/internal/highlight"
)

// Render applies the theme to line. spans use rune offsets and may overlap;
// each rune takes the style of the last span covering it. Unstyled text and
// plain styles are written as is.
func (t *Theme) Render(line string, spans []highlight.Span) string {
	if line == "" {
		return ""
	}
	runes := []rune(line)
	runs := highlight.Flatten(spans, len(runes))
	if len(runs) == 0 {
		return line
	}

	var result strings.Builder
	last := 0
	for _, run := range runs {
		if run.Offset > last {
			result.WriteString(string(runes[last:run.Offset]))
		}
		text := string(runes[run.Offset:run.End()])
		if t.attrs[run.Style].IsZero() {
			result.WriteString(text)
		} else {
			result.WriteString(t.Style(run.Style).Render(text))
		}
		last = run.End()
	}
	if last < len(runes) {
		result.WriteString(string(runes[last:]))
	}
	return result.String()
}
