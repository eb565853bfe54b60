package richtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func joinText(segs []segment) string {
	var out string
	for _, s := range segs {
		out += s.text
	}
	return out
}

// S1: bold with an inline boundary either side of it, so the leading space
// of the run that follows the close only survives via followsInlineElement.
func TestParseToSegments_BoldWithInlineBoundary(t *testing.T) {
	segs := ParseToSegments([]byte("Hello <b>bold</b> world"))
	require.Len(t, segs, 3)

	require.Equal(t, "Hello ", segs[0].text)
	require.False(t, segs[0].isBold)
	require.False(t, segs[0].followsInlineElement)

	require.Equal(t, "bold", segs[1].text)
	require.True(t, segs[1].isBold)
	require.False(t, segs[1].followsInlineElement)

	require.Equal(t, " world", segs[2].text)
	require.False(t, segs[2].isBold)
	require.True(t, segs[2].followsInlineElement)
}

// S2: a safe link produces a link segment carrying its URL.
func TestParseToSegments_SafeLink(t *testing.T) {
	segs := ParseToSegments([]byte(`Click <a href="https://ex.com">here</a> now`))
	require.Len(t, segs, 3)
	require.Equal(t, "Click ", segs[0].text)
	require.False(t, segs[0].isLink)

	require.Equal(t, "here", segs[1].text)
	require.True(t, segs[1].isLink)
	require.True(t, segs[1].isUnderline)
	require.Equal(t, "https://ex.com", segs[1].linkURL)

	require.Equal(t, " now", segs[2].text)
	require.False(t, segs[2].isLink)
}

// S3: a dangerous URL scheme must never surface as a link.
func TestParseToSegments_DangerousSchemeRejected(t *testing.T) {
	segs := ParseToSegments([]byte(`X <a href="javascript:alert(1)">Y</a> Z`))
	require.Len(t, segs, 3)
	require.False(t, segs[1].isLink)
	require.False(t, segs[1].isUnderline)
	require.Equal(t, "", segs[1].linkURL)
}

// S4: an unclosed <a> spanning a block close must not leak link state into
// text that follows. This is the security-critical invariant.
func TestParseToSegments_UnclosedLinkAcrossBlockBoundary(t *testing.T) {
	segs := ParseToSegments([]byte(`<p><a href="https://ex.com">one</p><p>two</p>`))
	require.GreaterOrEqual(t, len(segs), 2)

	require.Equal(t, "one\n", segs[0].text)
	require.True(t, segs[0].isLink)

	last := segs[len(segs)-1]
	require.Equal(t, "two\n", last.text)
	require.False(t, last.isLink, "link state must be cleared on block close regardless of tag balance")
	require.Equal(t, "", last.linkURL)
}

// S5: ordered list items get numbered and sentence-terminated for screen readers.
func TestParseToSegments_OrderedListScreenReaderLabel(t *testing.T) {
	segs := ParseToSegments([]byte("<ol><li>A</li><li>B</li></ol>"))
	text := joinText(segs)
	require.Contains(t, text, "1. A.\n2. B.\n")
}

// S6: a bdo override wraps its text with RLO/PDF and reports RTL direction,
// leaving the surrounding runs' direction untouched.
func TestParseToSegments_BidiOverride(t *testing.T) {
	segs := ParseToSegments([]byte(`abc<bdo dir="rtl">def</bdo>ghi`))
	require.Len(t, segs, 3)

	require.Equal(t, "abc", segs[0].text)

	mid := segs[1]
	require.True(t, strings.HasPrefix(mid.text, "‮")) // RLO
	require.True(t, strings.HasSuffix(mid.text, "‬")) // PDF
	require.True(t, mid.isBdoOverride)
	require.Equal(t, RTL, mid.writingDirection)

	require.Equal(t, "ghi", segs[2].text)
	require.Equal(t, segs[0].writingDirection, segs[2].writingDirection)
}

func TestParseToSegments_BdiIsolation(t *testing.T) {
	segs := ParseToSegments([]byte(`<p><bdi>مرحبا</bdi></p>`))
	// The </bdi> close flushes the isolated run; the </p> close then flushes
	// its own "\n" segment.
	require.Len(t, segs, 2)
	require.True(t, segs[0].isBdiIsolated)
	require.Equal(t, RTL, segs[0].writingDirection)
}

// P1-ish: unbalanced closing tags never panic.
func TestParseToSegments_UnbalancedCloseToleratedNoPanic(t *testing.T) {
	require.NotPanics(t, func() {
		ParseToSegments([]byte("<p>hello</div></b></p>"))
	})
}

func TestParseToSegments_EmptyInput(t *testing.T) {
	require.Empty(t, ParseToSegments(nil))
	require.Empty(t, ParseToSegments([]byte("")))
}

func TestParseToSegments_ScriptAndStyleStripped(t *testing.T) {
	segs := ParseToSegments([]byte(`<p>before<script>var x = "<b>not html</b>";</script>after</p>`))
	text := joinText(segs)
	require.NotContains(t, text, "not html")
	require.Contains(t, text, "before")
	require.Contains(t, text, "after")
}

func TestParseToSegments_HeadingScaleMonotonic(t *testing.T) {
	prev := float32(999)
	for _, tag := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		segs := ParseToSegments([]byte("<" + tag + ">text</" + tag + ">"))
		require.Len(t, segs, 1)
		require.True(t, segs[0].fontScale < prev, "%s scale %v should be < previous %v", tag, segs[0].fontScale, prev)
		prev = segs[0].fontScale
		require.True(t, segs[0].isBold)
	}
}

func TestParseToSegments_NestedListIndent(t *testing.T) {
	segs := ParseToSegments([]byte("<ul><li>outer<ul><li>inner</li></ul></li></ul>"))
	text := joinText(segs)
	require.Contains(t, text, "• outer")
	require.Contains(t, text, "    • inner")
}
