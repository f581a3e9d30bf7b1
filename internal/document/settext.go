package document

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/hilite/internal/log"
)

// SetText replaces the whole document. Lines that the line diff between the
// old and new text keeps unchanged retain their cached highlighting, so only
// edited lines and lines whose incoming state changed are re-highlighted.
func (d *Document) SetText(text string) Change {
	d.mu.Lock()

	oldTexts := make([]string, len(d.lines))
	for i, l := range d.lines {
		oldTexts[i] = l.text
	}
	newTexts := splitLines(text)

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(terminate(oldTexts), terminate(newTexts))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	next := make([]line, 0, len(newTexts))
	oldIdx := 0
	first := -1
	for _, diff := range diffs {
		if diff.Text == "" {
			continue
		}
		texts := unterminate(diff.Text)
		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			next = append(next, d.lines[oldIdx:oldIdx+len(texts)]...)
			oldIdx += len(texts)
		case diffmatchpatch.DiffDelete:
			oldIdx += len(texts)
			if first < 0 {
				first = len(next)
			}
		case diffmatchpatch.DiffInsert:
			if first < 0 {
				first = len(next)
			}
			for _, t := range texts {
				next = append(next, line{text: t})
			}
		}
	}
	d.lines = next

	var change Change
	if first < 0 {
		change = Change{First: 0, Last: -1, Lines: len(d.lines)}
	} else {
		change = d.refresh(min(first, len(d.lines)))
	}
	d.mu.Unlock()

	log.Debug(log.CatDocument, "Text replaced", "diffs", len(diffs), "first", change.First, "last", change.Last)
	d.publish(change)
	return change
}

// terminate joins lines with a newline after each, so the final line diffs
// like every other.
func terminate(lines []string) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func unterminate(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
