package richtext

import (
	"strconv"
	"strings"
)

// blockLevelTags is the set of tags treated as block-level for
// whitespace-collapsing purposes.
var blockLevelTags = map[string]bool{
	"p": true, "div": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "blockquote": true, "pre": true,
	"hr": true, "br": true,
	"table": true, "thead": true, "tbody": true, "tr": true, "th": true, "td": true,
	"header": true, "footer": true, "section": true, "article": true, "nav": true, "aside": true,
}

// inlineFormattingTags is the set of tags treated as inline formatting
// elements; the last one entered before a text run becomes its parentTag.
var inlineFormattingTags = map[string]bool{
	"strong": true, "b": true, "em": true, "i": true, "u": true, "s": true,
	"mark": true, "small": true, "sub": true, "sup": true, "code": true,
	"span": true, "a": true, "bdi": true, "bdo": true,
}

func isBlockLevelTag(tag string) bool      { return blockLevelTags[tag] }
func isInlineFormattingTag(tag string) bool { return inlineFormattingTags[tag] }

// NormalizeInterTagWhitespace drops leading whitespace before the source's
// first tag, and drops whitespace that immediately follows a block-level
// element's closing tag, leaving all other whitespace untouched.
func NormalizeInterTagWhitespace(source []byte) []byte {
	result := make([]byte, 0, len(source))

	beforeFirstTag := true
	afterBlockClose := false
	var lastClosedTag string

	for i := 0; i < len(source); i++ {
		c := source[i]

		if beforeFirstTag && isASCIISpace(c) {
			continue
		}

		switch c {
		case '<':
			beforeFirstTag = false
			if i+1 < len(source) && source[i+1] == '/' {
				j := i + 2
				for j < len(source) && source[j] != '>' && !isASCIISpace(source[j]) {
					j++
				}
				lastClosedTag = toLowerASCII(string(source[i+2 : j]))
			} else {
				lastClosedTag = ""
			}
			result = append(result, c)
			afterBlockClose = false
		case '>':
			result = append(result, c)
			afterBlockClose = lastClosedTag != "" && isBlockLevelTag(lastClosedTag)
		default:
			if afterBlockClose && isASCIISpace(c) {
				continue
			}
			beforeFirstTag = false
			result = append(result, c)
			afterBlockClose = false
		}
	}

	return result
}

// IsParagraphBreak reports whether text is nonempty and consists only of
// whitespace.
func IsParagraphBreak(text string) bool {
	if text == "" {
		return false
	}
	for i := 0; i < len(text); i++ {
		if !isASCIISpace(text[i]) {
			return false
		}
	}
	return true
}

// NormalizeSegmentText normalizes a single text run's whitespace.
//
// If preserveNewlines is set (the run is a pure paragraph-break segment),
// only the original newline bytes survive. Otherwise runs of horizontal
// whitespace collapse to a single space, newlines are preserved once
// content has been seen, and leading whitespace is dropped unless
// preserveLeadingSpace is set — the caller sets that when the run
// immediately follows a closing inline element, so "<b>foo</b> bar" keeps
// its gap.
func NormalizeSegmentText(text string, preserveNewlines, preserveLeadingSpace bool) string {
	if preserveNewlines {
		var b strings.Builder
		for i := 0; i < len(text); i++ {
			if text[i] == '\n' {
				b.WriteByte('\n')
			}
		}
		return b.String()
	}

	var b strings.Builder
	b.Grow(len(text))
	lastWasSpace := !preserveLeadingSpace
	hasContent := preserveLeadingSpace

	for i := 0; i < len(text); i++ {
		c := text[i]
		if isASCIISpace(c) {
			if c == '\n' {
				if hasContent {
					b.WriteByte('\n')
					lastWasSpace = false
				}
			} else if !lastWasSpace {
				b.WriteByte(' ')
				lastWasSpace = true
			}
		} else {
			b.WriteByte(c)
			lastWasSpace = false
			hasContent = true
		}
	}

	return b.String()
}

// htmlEntities maps the five named entities plus &nbsp; to their decoded
// bytes, per spec.md's Non-goals (no full entity table).
var htmlEntities = map[string]string{
	"&amp;":  "&",
	"&lt;":   "<",
	"&gt;":   ">",
	"&quot;": `"`,
	"&apos;": "'",
	"&nbsp;": " ",
}

// StripHTMLTags is an independent plain-text extractor: it drops
// script/style contents, turns <br> into a newline and block closes into
// a blank line, renders <ul>/<ol>/<li> as indented markers and numbers,
// decodes the entities in htmlEntities (unrecognized entities pass
// through verbatim), and finally collapses whitespace.
func StripHTMLTags(source []byte) string {
	var result strings.Builder
	result.Grow(len(source))

	inTag := false
	inScript := false
	inStyle := false
	var listStack []listContext
	var tagName strings.Builder

	for i := 0; i < len(source); i++ {
		c := source[i]

		if c == '<' {
			inTag = true
			tagName.Reset()
			continue
		}

		if c == '>' {
			inTag = false
			lowerTag := toLowerASCII(tagName.String())

			switch lowerTag {
			case "script":
				inScript = true
			case "/script":
				inScript = false
			case "style":
				inStyle = true
			case "/style":
				inStyle = false
			case "br", "br/", "br /":
				result.WriteByte('\n')
			case "/p", "/div", "/h1", "/h2", "/h3", "/h4", "/h5", "/h6":
				result.WriteString("\n\n")
			case "ul":
				listStack = append(listStack, listContext{kind: unorderedList, level: len(listStack) + 1})
			case "ol":
				listStack = append(listStack, listContext{kind: orderedList, level: len(listStack) + 1})
			case "/ul", "/ol":
				if len(listStack) > 0 {
					listStack = listStack[:len(listStack)-1]
				}
				if len(listStack) == 0 {
					result.WriteString("\n\n")
				}
			case "li":
				s := result.String()
				if len(s) > 0 && s[len(s)-1] != '\n' {
					result.WriteByte('\n')
				}
				if len(listStack) > 0 {
					cur := &listStack[len(listStack)-1]
					cur.counter++
					indent := len(listStack) - 1
					if indent > 0 {
						result.WriteString(strings.Repeat(" ", indent*4))
					}
					if cur.kind == orderedList {
						result.WriteString(strconv.Itoa(cur.counter))
						result.WriteString(". ")
					} else {
						result.WriteString("• ")
					}
				} else {
					result.WriteString("• ")
				}
			}

			tagName.Reset()
			continue
		}

		if inTag {
			if !isASCIISpace(c) {
				tagName.WriteByte(c)
			}
			continue
		}

		if !inScript && !inStyle {
			result.WriteByte(c)
		}
	}

	decoded := decodeEntities(result.String())
	return collapseWhitespace(decoded)
}

func decodeEntities(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '&' {
			end := strings.IndexByte(s[i:], ';')
			if end != -1 && end < 10 {
				entity := s[i : i+end+1]
				if decoded, ok := htmlEntities[entity]; ok {
					b.WriteString(decoded)
					i += end
					continue
				}
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastWasSpace := true

	for i := 0; i < len(s); i++ {
		c := s[i]
		if isASCIISpace(c) {
			if c == '\n' {
				if !lastWasSpace {
					b.WriteByte('\n')
					lastWasSpace = true
				}
			} else if !lastWasSpace {
				b.WriteByte(' ')
				lastWasSpace = true
			}
		} else {
			b.WriteByte(c)
			lastWasSpace = false
		}
	}

	out := b.String()
	for len(out) > 0 && isASCIISpace(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}
