package highlight

// Span is a styled half-open range [Offset, Offset+Length) of runes in a line.
type Span struct {
	Offset int
	Length int
	Style  StyleID
}

// End returns the offset just past the span.
func (s Span) End() int {
	return s.Offset + s.Length
}

// Contains reports whether the rune at offset lies within the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Offset && offset < s.End()
}

// StyleAt returns the visible style at offset: the last span covering it.
func StyleAt(spans []Span, offset int) (StyleID, bool) {
	for i := len(spans) - 1; i >= 0; i-- {
		if spans[i].Contains(offset) {
			return spans[i].Style, true
		}
	}
	return StyleNone, false
}

// Flatten resolves overlapping spans into sorted, non-overlapping runs where
// each rune has the style of the last span painted over it. Adjacent runs of
// the same style are merged. Spans are clipped to [0, length).
func Flatten(spans []Span, length int) []Span {
	if len(spans) == 0 || length <= 0 {
		return nil
	}

	paint := make([]int, length)
	for i := range paint {
		paint[i] = -1
	}
	for _, s := range spans {
		lo, hi := max(s.Offset, 0), min(s.End(), length)
		for i := lo; i < hi; i++ {
			paint[i] = int(s.Style)
		}
	}

	var out []Span
	for i := 0; i < length; {
		if paint[i] < 0 {
			i++
			continue
		}
		j := i + 1
		for j < length && paint[j] == paint[i] {
			j++
		}
		out = append(out, Span{Offset: i, Length: j - i, Style: StyleID(paint[i])})
		i = j
	}
	return out
}
