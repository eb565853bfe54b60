package richtext

import "log/slog"

// Frontend selects which parsing strategy ParseWithLinks uses.
type Frontend int

const (
	// FrontendHandRolled is the byte-scanning state machine of component E.
	// It is the authoritative behavioral reference for well-formed input.
	FrontendHandRolled Frontend = iota
	// FrontendLenient walks a golang.org/x/net/html-parsed tree instead
	// (see lenient.go). It must uphold the same security invariants as
	// FrontendHandRolled but is not required to match it byte-for-byte
	// on malformed input.
	FrontendLenient
)

// Options configures the attributed-string builder. It mirrors the
// parameter record of spec.md §4.F; every field has a documented "unset"
// value so callers only need to set what they care about.
type Options struct {
	// BaseFontSize is the font size, in points, for unscaled text.
	BaseFontSize float32
	// FontSizeMultiplier is an accessibility scaling factor, applied only
	// when AllowFontScaling is set.
	FontSizeMultiplier float32
	// AllowFontScaling enables FontSizeMultiplier (capped by
	// MaxFontSizeMultiplier, when set).
	AllowFontScaling bool
	// MaxFontSizeMultiplier caps FontSizeMultiplier when > 0. Values <= 0
	// or NaN mean "no cap".
	MaxFontSizeMultiplier float32
	// LineHeight is an explicit line height; <= 0 means "derive from font
	// size plus LineHeightBuffer".
	LineHeight float32
	// FontWeight is the base weight ("bold", "700".."900" count as bold).
	FontWeight string
	// FontFamily is passed through to every fragment when non-empty.
	FontFamily string
	// FontStyle is the base style ("italic" or "normal").
	FontStyle string
	// LetterSpacing is passed through to every fragment.
	LetterSpacing float32
	// Color is the base foreground color, 0xAARRGGBB. 0 means "unset".
	Color uint32
	// TagStyles is the JSON-shaped per-tag style override blob (spec.md
	// §4.C). Empty means no overrides.
	TagStyles string
	// Frontend selects the parsing strategy. The zero value is
	// FrontendHandRolled.
	Frontend Frontend
	// Logger, when non-nil, receives debug-level records of recoverable
	// parsing anomalies (spec.md §7). It never affects parser output.
	Logger *slog.Logger
}

// Result is the full output of ParseWithLinks.
type Result struct {
	Runs               []Fragment
	LinkURLs           []string
	AccessibilityLabel string
}

// ParseWithLinks transforms source into a styled-run document. Empty
// input returns a zero-value Result.
func ParseWithLinks(source []byte, opts Options) Result {
	if len(source) == 0 {
		return Result{}
	}

	normalized := NormalizeInterTagWhitespace(source)

	var segments []segment
	if opts.Frontend == FrontendLenient {
		var err error
		segments, err = ParseToSegmentsLenient(normalized, opts)
		if err != nil {
			if opts.Logger != nil {
				opts.Logger.Debug("lenient frontend failed, falling back", "error", err)
			}
			segments = parseToSegments(normalized, newAnomalyRecorder(opts.Logger, normalized))
		}
	} else {
		segments = parseToSegments(normalized, newAnomalyRecorder(opts.Logger, normalized))
	}

	runs, linkURLs, label := BuildAttributed(segments, opts)
	return Result{Runs: runs, LinkURLs: linkURLs, AccessibilityLabel: label}
}

// ParseToAttributed returns only the attributed-run slice of
// ParseWithLinks(source, opts).
func ParseToAttributed(source []byte, opts Options) []Fragment {
	return ParseWithLinks(source, opts).Runs
}
