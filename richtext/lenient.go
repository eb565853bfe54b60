package richtext

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrLenientParse wraps a tokenizer failure from the golang.org/x/net/html
// based frontend. In practice this is close to unreachable, since that
// tokenizer accepts arbitrary byte streams, but callers of the lenient
// frontend still get a real error value rather than a silent empty
// result — unlike the hand-rolled state machine, which spec.md requires
// to never fail.
type ErrLenientParse struct {
	err error
}

func (e *ErrLenientParse) Error() string { return fmt.Sprintf("lenient parse: %s", e.err) }
func (e *ErrLenientParse) Unwrap() error  { return e.err }

// ParseToSegmentsLenient is the alternate frontend of SPEC_FULL.md §4.H:
// it lets golang.org/x/net/html build a corrected DOM (auto-closing
// mismatched tags the way a browser would) and then walks that tree
// re-deriving the same segment stream the hand-rolled parser produces for
// well-formed input, reusing DirectionContext and the tagStyles/href
// scanners unchanged.
func ParseToSegmentsLenient(source []byte, opts Options) ([]segment, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(string(source)), body)
	if err != nil {
		return nil, &ErrLenientParse{err: err}
	}

	w := &lenientWalker{}
	w.refreshStyleFromStack()
	for _, n := range nodes {
		w.walk(n)
	}
	w.flush(false)
	return w.segments, nil
}

// lenientWalker mirrors segmentParser's mutable state, but is driven by a
// tree traversal instead of a byte-by-byte scan.
type lenientWalker struct {
	segments []segment

	tagStack     []string
	listStack    []listContext
	linkURLStack []string
	linkDepth    int
	dir          DirectionContext

	currentText strings.Builder

	scale             float32
	bold              bool
	italic            bool
	underline         bool
	strikethrough     bool
	link              bool
	parentTag         string
	linkURL           string
	nextFollowsInline bool
}

func (w *lenientWalker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.currentText.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}
	if n.Type != html.ElementNode {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		return
	}

	tag := toLowerASCII(n.Data)

	switch {
	case tag == "script" || tag == "style":
		return // never emitted, including any nested markup
	case tag == "br":
		w.currentText.WriteByte('\n')
	case parserBlockTags[tag]:
		w.enterBlock(n, tag)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		w.exitBlock(tag)
	case isInlineFormattingTag(tag):
		w.enterInline(n, tag)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		w.exitInline(tag)
	case tag == "li":
		w.enterLI()
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		w.exitLI()
	case tag == "ul" || tag == "ol":
		kind := unorderedList
		if tag == "ol" {
			kind = orderedList
		}
		w.listStack = append(w.listStack, listContext{kind: kind, level: len(w.listStack) + 1})
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		if len(w.listStack) > 0 {
			w.listStack = w.listStack[:len(w.listStack)-1]
		}
		if len(w.listStack) == 0 {
			w.currentText.WriteByte('\n')
			w.flush(false)
		}
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
	}
}

func attrValue(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func nodeLookaheadText(n *html.Node) []byte {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			collect(cc)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c)
	}
	return []byte(b.String())
}

func (w *lenientWalker) enterBlock(n *html.Node, tag string) {
	w.flush(false)
	w.tagStack = append(w.tagStack, tag)
	dirAttr, _ := attrValue(n, "dir")
	var lookahead []byte
	if toLowerASCII(dirAttr) == "auto" {
		lookahead = nodeLookaheadText(n)
	}
	w.dir.EnterElement(tag, dirAttr, lookahead)
	w.refreshStyleFromStack()
}

func (w *lenientWalker) exitBlock(tag string) {
	w.currentText.WriteByte('\n')
	w.flush(false)
	if len(w.tagStack) > 0 && w.tagStack[len(w.tagStack)-1] == tag {
		w.tagStack = w.tagStack[:len(w.tagStack)-1]
		w.dir.ExitElement()
		w.refreshStyleFromStack()
	}
	// Security boundary: block close unconditionally clears link state,
	// matching segment.go's handling of <a href="...">x</p>.
	w.linkDepth = 0
	w.linkURLStack = nil
	w.refreshStyleFromStack()
}

func (w *lenientWalker) enterInline(n *html.Node, tag string) {
	w.flush(false)
	w.tagStack = append(w.tagStack, tag)

	if tag == "a" {
		if href, ok := attrValue(n, "href"); ok && IsAllowedURLScheme(href) && href != "" {
			w.linkDepth++
			w.linkURLStack = append(w.linkURLStack, href)
		}
	}

	dirAttr, hasDir := attrValue(n, "dir")
	needsAuto := toLowerASCII(dirAttr) == "auto" || (!hasDir && tag == "bdi")
	var lookahead []byte
	if needsAuto {
		lookahead = nodeLookaheadText(n)
	}
	w.dir.EnterElement(tag, dirAttr, lookahead)

	switch tag {
	case "bdi":
		w.currentText.WriteRune('⁨')
	case "bdo":
		switch toLowerASCII(dirAttr) {
		case "rtl":
			w.currentText.WriteRune('‮')
		case "ltr":
			w.currentText.WriteRune('‭')
		}
	}
	w.refreshStyleFromStack()
}

func (w *lenientWalker) exitInline(tag string) {
	switch tag {
	case "bdi":
		w.currentText.WriteRune('⁩')
	case "bdo":
		w.currentText.WriteRune('‬')
	}
	w.flush(true)
	if len(w.tagStack) > 0 && w.tagStack[len(w.tagStack)-1] == tag {
		w.tagStack = w.tagStack[:len(w.tagStack)-1]
		if tag == "a" && w.linkDepth > 0 {
			w.linkDepth--
			if len(w.linkURLStack) > 0 {
				w.linkURLStack = w.linkURLStack[:len(w.linkURLStack)-1]
			}
		}
		w.dir.ExitElement()
		w.refreshStyleFromStack()
	}
}

func (w *lenientWalker) enterLI() {
	s := w.currentText.String()
	if len(s) > 0 && s[len(s)-1] != '\n' {
		w.currentText.WriteByte('\n')
	}
	if len(w.listStack) > 0 {
		cur := &w.listStack[len(w.listStack)-1]
		cur.counter++
		indent := len(w.listStack) - 1
		if indent > maxListIndent {
			indent = maxListIndent
		}
		if indent > 0 {
			w.currentText.WriteString(strings.Repeat(" ", indent*4))
		}
		if cur.kind == orderedList {
			w.currentText.WriteString(itoaSmall(cur.counter))
			w.currentText.WriteString(". ")
		} else {
			w.currentText.WriteString("• ")
		}
	} else {
		w.currentText.WriteString("• ")
	}
}

func (w *lenientWalker) exitLI() {
	s := w.currentText.String()
	if len(s) > 0 && !isSentenceTerminator(s[len(s)-1]) {
		w.currentText.WriteByte('.')
	}
}

func (w *lenientWalker) flush(closingInlineElement bool) {
	if w.currentText.Len() > 0 {
		w.segments = append(w.segments, segment{
			text:                 w.currentText.String(),
			fontScale:            w.scale,
			isBold:               w.bold,
			isItalic:             w.italic,
			isUnderline:          w.underline,
			isStrikethrough:      w.strikethrough,
			isLink:               w.link,
			followsInlineElement: w.nextFollowsInline,
			parentTag:            w.parentTag,
			linkURL:              w.linkURL,
			writingDirection:     w.dir.EffectiveDirection(),
			isBdiIsolated:        w.dir.IsIsolated(),
			isBdoOverride:        w.dir.IsOverride(),
		})
		w.currentText.Reset()
	}
	w.nextFollowsInline = closingInlineElement
}

func (w *lenientWalker) refreshStyleFromStack() {
	w.scale = 1.0
	w.bold = false
	w.italic = false
	w.underline = false
	w.strikethrough = false
	w.link = w.linkDepth > 0
	if len(w.linkURLStack) > 0 {
		w.linkURL = w.linkURLStack[len(w.linkURLStack)-1]
	} else {
		w.linkURL = ""
	}
	w.parentTag = ""

	for _, tag := range w.tagStack {
		switch {
		case isHeadingTag(tag):
			w.scale = headingScale(tag)
			w.bold = true
		case tag == "strong" || tag == "b":
			w.bold = true
		case tag == "em" || tag == "i":
			w.italic = true
		case tag == "u":
			w.underline = true
		case tag == "a" && w.linkDepth > 0:
			w.underline = true
		case tag == "s":
			w.strikethrough = true
		}
		if isInlineFormattingTag(tag) {
			w.parentTag = tag
		}
	}
}
