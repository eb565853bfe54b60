package richtext

// listKind distinguishes ordered from unordered lists.
type listKind int

const (
	unorderedList listKind = iota
	orderedList
)

// listContext is a pushdown record for a nested <ul>/<ol>. level counts
// nesting depth starting at 1; counter tracks the running <li> index for
// ordered lists.
type listContext struct {
	kind    listKind
	counter int
	level   int
}

// maxListIndent caps indentation so pathologically deep nesting cannot
// blow up memory on whitespace alone.
const maxListIndent = 100
