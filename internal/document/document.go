// Package document hosts a highlighted text buffer.
//
// A Document keeps, for every line, its text, its spans and the BlockState it
// was highlighted in and left with. Edits re-highlight from the first changed
// line forward, in document order, until a line is reached whose incoming
// state is unchanged and no edited lines remain below it.
package document

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/zjrosen/hilite/internal/highlight"
	"github.com/zjrosen/hilite/internal/log"
	"github.com/zjrosen/hilite/internal/pubsub"
)

// ErrLineOutOfRange is returned for a line index outside the document.
var ErrLineOutOfRange = errors.New("line out of range")

// Change describes the result of an edit. Lines First through Last (new
// numbering, inclusive) were re-highlighted; Last < First when no line needed
// it. Lines is the document length after the edit. Lines below First may
// have shifted even when none was re-highlighted.
type Change struct {
	First int
	Last  int
	Lines int
}

// Empty reports whether no line was re-highlighted.
func (c Change) Empty() bool {
	return c.Last < c.First
}

type line struct {
	text  string
	spans []highlight.Span
	in    highlight.BlockState
	exit  highlight.BlockState
	valid bool
}

// Document is a list of lines with cached highlighting. Safe for concurrent use.
type Document struct {
	mu     sync.RWMutex
	lines  []line
	hl     *highlight.Highlighter
	broker *pubsub.Broker[Change]
}

// New creates a document holding text, highlighted with h.
// Empty text is a document with a single empty line. LF and CRLF line
// endings are both accepted.
func New(h *highlight.Highlighter, text string) *Document {
	d := &Document{
		hl:     h,
		broker: pubsub.NewBroker[Change](),
	}
	for _, s := range splitLines(text) {
		d.lines = append(d.lines, line{text: s})
	}
	d.refresh(0)
	return d
}

// splitLines splits on "\n" and drops the "\r" of CRLF line endings, so
// Text always joins with "\n".
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Subscribe returns a channel of Change events, closed when ctx is done or
// the document is closed.
func (d *Document) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return d.broker.Subscribe(ctx)
}

// Close stops event delivery. The document stays readable.
func (d *Document) Close() {
	d.broker.Close()
}

// Highlighter returns the highlighter in use.
func (d *Document) Highlighter() *highlight.Highlighter {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hl
}

// SetHighlighter switches to h and re-highlights every line.
func (d *Document) SetHighlighter(h *highlight.Highlighter) Change {
	d.mu.Lock()
	d.hl = h
	for i := range d.lines {
		d.lines[i].valid = false
	}
	change := d.refresh(0)
	d.mu.Unlock()

	log.Debug(log.CatDocument, "Highlighter replaced", "language", h.Language(), "lines", change.Lines)
	d.broker.Publish(pubsub.ResetEvent, change)
	return change
}

// Len returns the number of lines.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.lines)
}

// Text returns the document joined with newlines.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	texts := make([]string, len(d.lines))
	for i, l := range d.lines {
		texts[i] = l.text
	}
	return strings.Join(texts, "\n")
}

// Line returns the text of line i.
func (d *Document) Line(i int) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.lines) {
		return "", false
	}
	return d.lines[i].text, true
}

// Spans returns a copy of the spans of line i, in paint order.
func (d *Document) Spans(i int) ([]highlight.Span, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.lines) {
		return nil, false
	}
	return slices.Clone(d.lines[i].spans), true
}

// ExitState returns the state line i left for the next line.
func (d *Document) ExitState(i int) (highlight.BlockState, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i < 0 || i >= len(d.lines) {
		return highlight.StateNormal, false
	}
	return d.lines[i].exit, true
}

// SetLine replaces the text of line i.
func (d *Document) SetLine(i int, text string) (Change, error) {
	d.mu.Lock()
	if i < 0 || i >= len(d.lines) {
		n := len(d.lines)
		d.mu.Unlock()
		return Change{}, fmt.Errorf("%w: %d (have %d lines)", ErrLineOutOfRange, i, n)
	}
	d.lines[i] = line{text: text}
	change := d.refresh(i)
	d.mu.Unlock()

	d.publish(change)
	return change, nil
}

// InsertLines inserts texts before line at. at == Len appends.
func (d *Document) InsertLines(at int, texts ...string) (Change, error) {
	d.mu.Lock()
	if at < 0 || at > len(d.lines) {
		n := len(d.lines)
		d.mu.Unlock()
		return Change{}, fmt.Errorf("%w: insert at %d (have %d lines)", ErrLineOutOfRange, at, n)
	}
	inserted := make([]line, len(texts))
	for i, t := range texts {
		inserted[i] = line{text: t}
	}
	d.lines = slices.Insert(d.lines, at, inserted...)
	change := d.refresh(at)
	d.mu.Unlock()

	d.publish(change)
	return change, nil
}

// DeleteLines removes count lines starting at from. Deleting every line
// leaves a single empty line.
func (d *Document) DeleteLines(from, count int) (Change, error) {
	d.mu.Lock()
	if from < 0 || count < 0 || from+count > len(d.lines) {
		n := len(d.lines)
		d.mu.Unlock()
		return Change{}, fmt.Errorf("%w: delete %d lines at %d (have %d lines)", ErrLineOutOfRange, count, from, n)
	}
	d.lines = slices.Delete(d.lines, from, from+count)
	if len(d.lines) == 0 {
		d.lines = []line{{}}
	}
	change := d.refresh(min(from, len(d.lines)))
	d.mu.Unlock()

	d.publish(change)
	return change, nil
}

func (d *Document) publish(c Change) {
	d.broker.Publish(pubsub.RehighlightedEvent, c)
}

// refresh re-highlights from line from until the cache is consistent.
// Caller holds d.mu.
func (d *Document) refresh(from int) Change {
	lastDirty := -1
	for i := len(d.lines) - 1; i >= from; i-- {
		if !d.lines[i].valid {
			lastDirty = i
			break
		}
	}

	state := d.hl.InitialState()
	if from > 0 && from <= len(d.lines) {
		state = d.lines[from-1].exit
	}

	first, last := from, from-1
	for i := from; i < len(d.lines); i++ {
		l := &d.lines[i]
		if l.valid && l.in == state {
			if i > lastDirty {
				break
			}
			state = l.exit
			continue
		}

		spans, exit := d.hl.HighlightLine(l.text, state)
		if last < first {
			first = i
		}
		last = i
		l.spans, l.in, l.exit, l.valid = spans, state, exit, true
		state = exit
	}

	change := Change{First: first, Last: last, Lines: len(d.lines)}
	if !change.Empty() {
		log.Debug(log.CatDocument, "Rehighlighted lines", "first", first, "last", last, "lines", len(d.lines))
	}
	return change
}
