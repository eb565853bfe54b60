package richtext

import "math"

// FontWeight is the resolved weight of a fragment.
type FontWeight int

const (
	FontWeightRegular FontWeight = iota
	FontWeightBold
)

func (w FontWeight) String() string {
	if w == FontWeightBold {
		return "bold"
	}
	return "regular"
}

// FontStyle is the resolved slant of a fragment.
type FontStyle int

const (
	FontStyleNormal FontStyle = iota
	FontStyleItalic
)

func (s FontStyle) String() string {
	if s == FontStyleItalic {
		return "italic"
	}
	return "normal"
}

// TextDecorationLine is the resolved underline/strikethrough combination
// of a fragment.
type TextDecorationLine int

const (
	TextDecorationNone TextDecorationLine = iota
	TextDecorationUnderline
	TextDecorationStrikethrough
	TextDecorationUnderlineStrikethrough
)

func (d TextDecorationLine) String() string {
	switch d {
	case TextDecorationUnderline:
		return "underline"
	case TextDecorationStrikethrough:
		return "line-through"
	case TextDecorationUnderlineStrikethrough:
		return "underline line-through"
	default:
		return "none"
	}
}

// DefaultLinkColor is applied to link fragments that have no explicit
// tagStyles color override: iOS system blue, 0xAARRGGBB.
const DefaultLinkColor uint32 = 0xFF007AFF

// LineHeightBuffer is added to a fragment's font size when no explicit
// line height is supplied.
const LineHeightBuffer = 4.0

// Fragment is one output styled run: a contiguous span of text with a
// single, fully-resolved style record.
type Fragment struct {
	Text                   string
	FontSize               float32
	LineHeight             float32
	FontWeight             FontWeight
	FontFamily             string
	FontStyle              FontStyle
	LetterSpacing          float32
	TextDecorationLineType TextDecorationLine
	ForegroundColor        uint32 // 0xAARRGGBB, 0 = unset
	AllowFontScaling       bool
}

// BuildAttributed applies font scaling, per-tag overrides, decoration
// resolution, and color priority to segments, producing the final
// fragment sequence, its parallel link-URL array, and the accessibility
// label. It is component F of spec.md.
func BuildAttributed(segments []segment, opts Options) (fragments []Fragment, linkURLs []string, accessibilityLabel string) {
	working := trimTrailingBreaks(segments)
	if len(working) == 0 {
		return nil, nil, ""
	}

	effectiveMultiplier := float32(1.0)
	if opts.AllowFontScaling {
		effectiveMultiplier = opts.FontSizeMultiplier
		if !isNaN32(opts.MaxFontSizeMultiplier) && opts.MaxFontSizeMultiplier > 0 {
			effectiveMultiplier = minf32(opts.FontSizeMultiplier, opts.MaxFontSizeMultiplier)
		}
	}

	for i, seg := range working {
		isBreak := IsParagraphBreak(seg.text)
		normalized := NormalizeSegmentText(seg.text, isBreak, seg.followsInlineElement)

		if i == len(working)-1 {
			normalized = rtrimSpace(normalized)
		}
		if normalized == "" {
			continue
		}

		tagStyle := emptyTagStyle()
		if seg.parentTag != "" && opts.TagStyles != "" {
			tagStyle = GetStyleFromTagStyles(opts.TagStyles, seg.parentTag)
		}

		fontSize := opts.BaseFontSize * seg.fontScale * effectiveMultiplier
		if !isNaN32(tagStyle.FontSize) && tagStyle.FontSize > 0 {
			fontSize = tagStyle.FontSize * effectiveMultiplier
		}

		minLineHeight := fontSize + LineHeightBuffer
		lineHeight := minLineHeight
		if opts.LineHeight > 0 {
			lineHeight = maxf32(opts.LineHeight, minLineHeight)
		}

		isBold := seg.isBold
		if tagStyle.FontWeight != "" {
			isBold = isBoldWeight(tagStyle.FontWeight)
		} else if isBoldWeight(opts.FontWeight) {
			isBold = true
		}
		weight := FontWeightRegular
		if isBold {
			weight = FontWeightBold
		}

		isItalic := seg.isItalic
		if tagStyle.FontStyle != "" {
			isItalic = tagStyle.FontStyle == "italic"
		} else if opts.FontStyle == "italic" {
			isItalic = true
		}
		style := FontStyleNormal
		if isItalic {
			style = FontStyleItalic
		}

		hasUnderline := seg.isUnderline
		hasStrikethrough := seg.isStrikethrough
		if tagStyle.TextDecorationLine != "" {
			switch tagStyle.TextDecorationLine {
			case "underline":
				hasUnderline, hasStrikethrough = true, false
			case "line-through":
				hasUnderline, hasStrikethrough = false, true
			case "underline line-through", "line-through underline":
				hasUnderline, hasStrikethrough = true, true
			case "none":
				hasUnderline, hasStrikethrough = false, false
			}
		}
		decoration := TextDecorationNone
		switch {
		case hasUnderline && hasStrikethrough:
			decoration = TextDecorationUnderlineStrikethrough
		case hasUnderline:
			decoration = TextDecorationUnderline
		case hasStrikethrough:
			decoration = TextDecorationStrikethrough
		}

		color := tagStyle.Color
		if color == 0 {
			if seg.isLink {
				color = DefaultLinkColor
			} else if opts.Color != 0 {
				color = opts.Color
			}
		}

		fragments = append(fragments, Fragment{
			Text:                   normalized,
			FontSize:               fontSize,
			LineHeight:             lineHeight,
			FontWeight:             weight,
			FontFamily:             opts.FontFamily,
			FontStyle:              style,
			LetterSpacing:          opts.LetterSpacing,
			TextDecorationLineType: decoration,
			ForegroundColor:        color,
			AllowFontScaling:       opts.AllowFontScaling,
		})
		linkURLs = append(linkURLs, seg.linkURL)
	}

	accessibilityLabel = buildAccessibilityLabel(concatFragmentText(fragments))
	return fragments, linkURLs, accessibilityLabel
}

// linkURLsOf extracts the raw link URL of each segment, independent of the
// rest of the fragment-construction pipeline.
func linkURLsOf(segments []segment) []string {
	out := make([]string, len(segments))
	for i, s := range segments {
		out[i] = s.linkURL
	}
	return out
}

func trimTrailingBreaks(segments []segment) []segment {
	end := len(segments)
	for end > 0 && IsParagraphBreak(segments[end-1].text) {
		end--
	}
	return segments[:end]
}

func concatFragmentText(fragments []Fragment) string {
	total := 0
	for _, f := range fragments {
		total += len(f.Text)
	}
	buf := make([]byte, 0, total)
	for _, f := range fragments {
		buf = append(buf, f.Text...)
	}
	return string(buf)
}

// buildAccessibilityLabel inserts a '.' before any newline that precedes a
// list-item marker (a digit or the UTF-8 bullet "•"), unless the text
// already ends in a sentence terminator.
func buildAccessibilityLabel(plainText string) string {
	out := make([]byte, 0, len(plainText)+16)

	for i := 0; i < len(plainText); i++ {
		c := plainText[i]
		if c == '\n' && i+1 < len(plainText) {
			next := plainText[i+1]
			isListMarker := next >= '0' && next <= '9'
			if !isListMarker && i+3 < len(plainText) &&
				plainText[i+1] == 0xE2 && plainText[i+2] == 0x80 && plainText[i+3] == 0xA2 {
				isListMarker = true
			}
			if isListMarker && len(out) > 0 && !isSentenceTerminator(out[len(out)-1]) {
				out = append(out, '.')
			}
		}
		out = append(out, c)
	}

	return string(out)
}

func isBoldWeight(w string) bool {
	switch w {
	case "bold", "700", "800", "900":
		return true
	default:
		return false
	}
}

func isNaN32(f float32) bool { return math.IsNaN(float64(f)) }

func minf32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func rtrimSpace(s string) string {
	end := len(s)
	for end > 0 && isASCIISpace(s[end-1]) {
		end--
	}
	return s[:end]
}
