package highlight

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// lineGen draws short lines dense in the characters the Python rules care about.
func lineGen() *rapid.Generator[string] {
	alphabet := []rune(`"'#_ab1x.=+-()[]\ é`)
	return rapid.Custom(func(t *rapid.T) string {
		runes := rapid.SliceOfN(rapid.SampledFrom(alphabet), 0, 40).Draw(t, "runes")
		return string(runes)
	})
}

func TestProperty_Deterministic(t *testing.T) {
	h := newPython(t)
	rapid.Check(t, func(rt *rapid.T) {
		line := lineGen().Draw(rt, "line")
		in := BlockState(rapid.IntRange(0, 2).Draw(rt, "in"))

		spans1, out1 := h.HighlightLine(line, in)
		spans2, out2 := h.HighlightLine(line, in)
		require.Equal(rt, spans1, spans2)
		require.Equal(rt, out1, out2)
	})
}

func TestProperty_SpansWithinLine(t *testing.T) {
	h := newPython(t)
	rapid.Check(t, func(rt *rapid.T) {
		line := lineGen().Draw(rt, "line")
		in := BlockState(rapid.IntRange(0, 2).Draw(rt, "in"))
		n := utf8.RuneCountInString(line)

		spans, out := h.HighlightLine(line, in)
		require.Contains(rt, []BlockState{0, 1, 2}, out)
		for _, s := range spans {
			require.GreaterOrEqual(rt, s.Offset, 0)
			require.Greater(rt, s.Length, 0)
			require.LessOrEqual(rt, s.End(), n)
			require.True(rt, s.Style.Assignable())
		}
	})
}

func TestProperty_OpenRegionReachesEndOfLine(t *testing.T) {
	h := newPython(t)
	rapid.Check(t, func(rt *rapid.T) {
		line := lineGen().Draw(rt, "line")
		in := BlockState(rapid.IntRange(0, 2).Draw(rt, "in"))
		n := utf8.RuneCountInString(line)

		spans, out := h.HighlightLine(line, in)
		if out == StateNormal || n == 0 {
			return
		}
		last := spans[len(spans)-1]
		require.Equal(rt, StyleStringBlock, last.Style)
		require.Equal(rt, n, last.End())
	})
}

func TestProperty_FlattenAgreesWithStyleAt(t *testing.T) {
	h := newPython(t)
	rapid.Check(t, func(rt *rapid.T) {
		line := lineGen().Draw(rt, "line")
		n := utf8.RuneCountInString(line)

		spans, _ := h.HighlightLine(line, StateNormal)
		runs := Flatten(spans, n)

		for i := 0; i < n; i++ {
			want, wantOK := StyleAt(spans, i)
			got, gotOK := StyleAt(runs, i)
			require.Equal(rt, wantOK, gotOK, "offset %d", i)
			require.Equal(rt, want, got, "offset %d", i)
		}
	})
}
