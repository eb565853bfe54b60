// Package richtext turns an HTML-subset source string into a flat sequence
// of styled text fragments, an accessibility label, and a parallel array
// of link URLs.
//
// The transformation is a pure function of its inputs: it performs no I/O,
// keeps no state across calls, and is safe to call from multiple
// goroutines with disjoint inputs. It is not an HTML5 parser — it
// recognizes a small, fixed set of tags and tolerates malformed markup by
// degrading gracefully rather than failing.
package richtext
