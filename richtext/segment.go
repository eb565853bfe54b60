package richtext

import "strings"

// segment is an intermediate styled text run produced by ParseToSegments,
// carrying enough state for the builder (component F) to resolve final
// font size, decoration, and color without re-walking the source.
type segment struct {
	text                 string
	fontScale            float32
	isBold               bool
	isItalic             bool
	isUnderline          bool
	isStrikethrough      bool
	isLink               bool
	followsInlineElement bool
	parentTag            string
	linkURL              string
	writingDirection     Direction
	isBdiIsolated        bool
	isBdoOverride        bool
}

func headingScale(tag string) float32 {
	switch tag {
	case "h1":
		return 2.0
	case "h2":
		return 1.5
	case "h3":
		return 1.17
	case "h4":
		return 1.0
	case "h5":
		return 0.83
	case "h6":
		return 0.67
	default:
		return 1.0
	}
}

func isHeadingTag(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

// parserBlockTags is the subset of blockLevelTags that the segment parser opens
// and closes explicitly (paragraphs and headings; div behaves the same).
var parserBlockTags = map[string]bool{
	"p": true, "div": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// segmentParser holds the mutable state of the component E state machine.
// A fresh instance is created for every ParseToSegments call.
type segmentParser struct {
	source []byte

	segments []segment

	tagStack    []string
	listStack   []listContext
	linkURLStack []string
	linkDepth   int
	dir         DirectionContext

	inScript bool
	inStyle  bool

	currentText strings.Builder

	scale                float32
	bold                 bool
	italic               bool
	underline            bool
	strikethrough        bool
	link                 bool
	parentTag            string
	linkURL              string
	nextFollowsInline    bool

	anomalies anomalyRecorder
}

// ParseToSegments runs the hand-rolled tag-recognition state machine over
// source and returns the ordered styled-text-segment stream described by
// spec.md §4.E. It never fails: malformed input degrades to plain text
// with whatever styling context could still be recovered.
func ParseToSegments(source []byte) []segment {
	return parseToSegments(source, noopAnomalyRecorder{})
}

func parseToSegments(source []byte, rec anomalyRecorder) []segment {
	p := &segmentParser{source: source, anomalies: rec}
	p.refreshStyleFromStack()

	inTag := false
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
			p.dispatchTag(tagName.String(), i)
			tagName.Reset()
			continue
		}

		if inTag {
			tagName.WriteByte(c)
			continue
		}

		if !p.inScript && !p.inStyle {
			p.currentText.WriteByte(c)
		}
	}

	if inTag {
		p.anomalies.record("unterminated-tag", len(source), tagName.String())
	}

	p.flushSegment(false)
	return p.segments
}

// dispatchTag handles the tag body (everything between '<' and '>', not
// including the delimiters) found ending at position closePos in the
// source. It implements the precedence order of spec.md §4.E.
func (p *segmentParser) dispatchTag(rawTagName string, closePos int) {
	lower := toLowerASCII(rawTagName)
	if sp := strings.IndexAny(lower, " \t\n\r\f\v"); sp != -1 {
		lower = lower[:sp]
	}

	isClosing := strings.HasPrefix(lower, "/")
	cleanTag := lower
	if isClosing {
		cleanTag = lower[1:]
	}

	switch {
	case cleanTag == "script":
		p.inScript = !isClosing
	case cleanTag == "style":
		p.inStyle = !isClosing
	case cleanTag == "br" && !isClosing:
		p.currentText.WriteByte('\n')

	case isClosing && parserBlockTags[cleanTag]:
		p.currentText.WriteByte('\n')
		p.flushSegment(false)
		if len(p.tagStack) > 0 && p.tagStack[len(p.tagStack)-1] == cleanTag {
			p.tagStack = p.tagStack[:len(p.tagStack)-1]
			p.dir.ExitElement()
			p.refreshStyleFromStack()
		} else {
			p.anomalies.record("unbalanced-close", closePos, cleanTag)
		}
		// Security boundary: unconditionally clear link state.
		p.linkDepth = 0
		p.linkURLStack = nil
		p.refreshStyleFromStack()

	case !isClosing && parserBlockTags[cleanTag]:
		p.flushSegment(false)
		p.tagStack = append(p.tagStack, cleanTag)
		dirAttr := ExtractDirAttr(rawTagName)
		lookahead := p.lookaheadFor(dirAttr, cleanTag, closePos)
		p.dir.EnterElement(cleanTag, dirAttr, lookahead)
		p.refreshStyleFromStack()

	case !isClosing && isInlineFormattingTag(cleanTag):
		p.flushSegment(false)
		p.tagStack = append(p.tagStack, cleanTag)
		if cleanTag == "a" {
			url := ExtractHrefURL(rawTagName)
			if url != "" {
				p.linkDepth++
				p.linkURLStack = append(p.linkURLStack, url)
			} else if strings.Contains(rawTagName, "href=") {
				p.anomalies.record("bad-href-scheme", closePos, cleanTag)
			}
		}
		dirAttr := ExtractDirAttr(rawTagName)
		needsAuto := toLowerASCII(dirAttr) == "auto" || (dirAttr == "" && cleanTag == "bdi")
		var lookahead []byte
		if needsAuto {
			lookahead = p.lookaheadFor("auto", cleanTag, closePos)
		}
		p.dir.EnterElement(cleanTag, dirAttr, lookahead)

		switch cleanTag {
		case "bdi":
			p.currentText.WriteRune('⁨') // FSI
		case "bdo":
			switch toLowerASCII(dirAttr) {
			case "rtl":
				p.currentText.WriteRune('‮') // RLO
			case "ltr":
				p.currentText.WriteRune('‭') // LRO
			}
		}
		p.refreshStyleFromStack()

	case isClosing && isInlineFormattingTag(cleanTag):
		switch cleanTag {
		case "bdi":
			p.currentText.WriteRune('⁩') // PDI
		case "bdo":
			p.currentText.WriteRune('‬') // PDF
		}
		p.flushSegment(true)
		if len(p.tagStack) > 0 && p.tagStack[len(p.tagStack)-1] == cleanTag {
			p.tagStack = p.tagStack[:len(p.tagStack)-1]
			if cleanTag == "a" && p.linkDepth > 0 {
				p.linkDepth--
				if len(p.linkURLStack) > 0 {
					p.linkURLStack = p.linkURLStack[:len(p.linkURLStack)-1]
				}
			}
			p.dir.ExitElement()
			p.refreshStyleFromStack()
		} else {
			p.anomalies.record("unbalanced-close", closePos, cleanTag)
		}

	case !isClosing && cleanTag == "li":
		s := p.currentText.String()
		if len(s) > 0 && s[len(s)-1] != '\n' {
			p.currentText.WriteByte('\n')
		}
		if len(p.listStack) > 0 {
			cur := &p.listStack[len(p.listStack)-1]
			cur.counter++
			indent := len(p.listStack) - 1
			if indent > maxListIndent {
				indent = maxListIndent
			}
			if indent > 0 {
				p.currentText.WriteString(strings.Repeat(" ", indent*4))
			}
			if cur.kind == orderedList {
				p.currentText.WriteString(itoaSmall(cur.counter))
				p.currentText.WriteString(". ")
			} else {
				p.currentText.WriteString("• ")
			}
		} else {
			p.currentText.WriteString("• ")
		}

	case isClosing && cleanTag == "li":
		s := p.currentText.String()
		if len(s) > 0 {
			last := s[len(s)-1]
			if !isSentenceTerminator(last) {
				p.currentText.WriteByte('.')
			}
		}

	case !isClosing && cleanTag == "ul":
		p.listStack = append(p.listStack, listContext{kind: unorderedList, level: len(p.listStack) + 1})
	case !isClosing && cleanTag == "ol":
		p.listStack = append(p.listStack, listContext{kind: orderedList, level: len(p.listStack) + 1})

	case isClosing && (cleanTag == "ul" || cleanTag == "ol"):
		if len(p.listStack) > 0 {
			p.listStack = p.listStack[:len(p.listStack)-1]
		}
		if len(p.listStack) == 0 {
			p.currentText.WriteByte('\n')
			p.flushSegment(false)
		}
	}
}

func isSentenceTerminator(b byte) bool {
	switch b {
	case '.', '!', '?', ':', ';':
		return true
	default:
		return false
	}
}

// itoaSmall avoids pulling in strconv for the hot li-numbering path; list
// counters are small non-negative integers.
func itoaSmall(n int) string {
	if n < 10 {
		return string([]byte{byte('0' + n)})
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// lookaheadFor gathers the non-consuming look-ahead text used for
// dir="auto" or bare <bdi> direction detection, per spec.md §4.E.1: scan
// forward from just past the current '>' until the first "</cleanTag",
// skipping over nested tag bodies.
func (p *segmentParser) lookaheadFor(dirAttr, cleanTag string, closePos int) []byte {
	if toLowerASCII(dirAttr) != "auto" {
		return nil
	}
	closing := "</" + cleanTag
	var out []byte
	inNested := false

	for j := closePos + 1; j < len(p.source); j++ {
		ch := p.source[j]
		if ch == '<' {
			inNested = true
			remaining := p.source[j:]
			if len(remaining) >= len(closing) && toLowerASCII(string(remaining[:len(closing)])) == closing {
				break
			}
			continue
		}
		if ch == '>' {
			inNested = false
			continue
		}
		if !inNested {
			out = append(out, ch)
		}
	}
	return out
}

// flushSegment appends the buffered text as a new segment (if non-empty)
// and resets the buffer. closingInlineElement becomes the
// followsInlineElement flag for whatever segment comes next.
func (p *segmentParser) flushSegment(closingInlineElement bool) {
	if p.currentText.Len() > 0 {
		p.segments = append(p.segments, segment{
			text:                 p.currentText.String(),
			fontScale:            p.scale,
			isBold:               p.bold,
			isItalic:             p.italic,
			isUnderline:          p.underline,
			isStrikethrough:      p.strikethrough,
			isLink:               p.link,
			followsInlineElement: p.nextFollowsInline,
			parentTag:            p.parentTag,
			linkURL:              p.linkURL,
			writingDirection:     p.dir.EffectiveDirection(),
			isBdiIsolated:        p.dir.IsIsolated(),
			isBdoOverride:        p.dir.IsOverride(),
		})
		p.currentText.Reset()
	}
	p.nextFollowsInline = closingInlineElement
}

// refreshStyleFromStack recomputes the mirrored style summary from the
// current tag stack — the single source of truth stays the stack itself.
func (p *segmentParser) refreshStyleFromStack() {
	p.scale = 1.0
	p.bold = false
	p.italic = false
	p.underline = false
	p.strikethrough = false
	p.link = p.linkDepth > 0
	if len(p.linkURLStack) > 0 {
		p.linkURL = p.linkURLStack[len(p.linkURLStack)-1]
	} else {
		p.linkURL = ""
	}
	p.parentTag = ""

	for _, tag := range p.tagStack {
		switch {
		case isHeadingTag(tag):
			p.scale = headingScale(tag)
			p.bold = true
		case tag == "strong" || tag == "b":
			p.bold = true
		case tag == "em" || tag == "i":
			p.italic = true
		case tag == "u":
			p.underline = true
		case tag == "a" && p.linkDepth > 0:
			p.underline = true
		case tag == "s":
			p.strikethrough = true
		}
		if isInlineFormattingTag(tag) {
			p.parentTag = tag
		}
	}
}
