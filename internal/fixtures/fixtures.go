// Package fixtures holds HTML-subset source snippets shared across the
// richtext test suite and the cmd/richtextd demo server, so both exercise
// the same corpus of well-formed and adversarial input.
package fixtures

// Named is a single fixture: raw source paired with a short description of
// what it is meant to exercise.
type Named struct {
	Name   string
	Source string
}

// WellFormed covers ordinary styling, links, lists, and BiDi markup — the
// S1-S6 scenarios of spec.md's testable-properties section.
var WellFormed = []Named{
	{"bold-italic-boundary", `<p><b>bold</b><i>italic</i></p>`},
	{"safe-link", `<p>see <a href="https://example.com">here</a></p>`},
	{"ordered-list", `<ol><li>first</li><li>second</li></ol>`},
	{"unordered-list", `<ul><li>alpha</li><li>beta</li></ul>`},
	{"bdo-override", `<p><bdo dir="rtl">reversed</bdo></p>`},
	{"bdi-isolation", `<p><bdi>مرحبا</bdi> mixed with English</p>`},
	{"heading-hierarchy", `<h1>Title</h1><h2>Subtitle</h2><p>Body text.</p>`},
	{"dir-auto-paragraph", `<p dir="auto">שלום עולם</p>`},
}

// Adversarial covers inputs the parser must degrade gracefully on: unsafe
// URL schemes and unbalanced tags spanning block boundaries.
var Adversarial = []Named{
	{"dangerous-scheme", `<p><a href="javascript:alert(1)">click</a></p>`},
	{"unclosed-link-across-block", `<p><a href="https://example.com">oops</p><p>safe text</p>`},
	{"unbalanced-close", `<p>hello</div></b></p>`},
	{"script-injection", `<p>before<script>alert(document.cookie)</script>after</p>`},
}

// All returns every fixture, well-formed and adversarial combined.
func All() []Named {
	out := make([]Named, 0, len(WellFormed)+len(Adversarial))
	out = append(out, WellFormed...)
	out = append(out, Adversarial...)
	return out
}
