package richtext

import (
	"log/slog"

	"github.com/beevik/etree"
)

// anomalyRecorder receives recoverable parsing anomalies as the hand-rolled
// parser meets them: unbalanced closes, unterminated tags, and href values
// rejected by the scheme allowlist. It never influences parser output; it
// exists purely so a caller can opt into debug logging of malformed input.
type anomalyRecorder interface {
	record(kind string, pos int, tag string)
}

// noopAnomalyRecorder is the zero-cost default used when a caller does not
// configure a logger.
type noopAnomalyRecorder struct{}

func (noopAnomalyRecorder) record(string, int, string) {}

// slogAnomalyRecorder logs each anomaly at debug level, attaching a small
// etree-rendered context fragment holding the source bytes around the
// anomaly position.
// Modeled on chtml/err.go's errorContextBuilder, adapted to build a
// synthetic context tree from the flat parse position rather than an
// already-materialized document, since the byte-scanning state machine
// keeps no persistent DOM to point into.
type slogAnomalyRecorder struct {
	logger *slog.Logger
	source []byte
}

func newAnomalyRecorder(logger *slog.Logger, source []byte) anomalyRecorder {
	if logger == nil {
		return noopAnomalyRecorder{}
	}
	return &slogAnomalyRecorder{logger: logger, source: source}
}

func (r *slogAnomalyRecorder) record(kind string, pos int, tag string) {
	doc := etree.NewDocument()
	el := doc.CreateElement("anomaly")
	el.CreateAttr("kind", kind)
	el.CreateAttr("tag", tag)
	el.CreateElement("context").SetText(contextSnippet(r.source, pos))

	xml, err := doc.WriteToString()
	if err != nil {
		xml = ""
	}

	r.logger.Debug("recoverable markup anomaly", "kind", kind, "tag", tag, "pos", pos, "context", xml)
}

// contextSnippet returns up to 20 bytes on either side of pos, for
// inclusion in the diagnostic context element.
func contextSnippet(source []byte, pos int) string {
	const radius = 20
	start := pos - radius
	if start < 0 {
		start = 0
	}
	end := pos + radius
	if end > len(source) {
		end = len(source)
	}
	if start > len(source) {
		return ""
	}
	return string(source[start:end])
}
