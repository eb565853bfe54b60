// Package main implements richtextd, a small HTTP+WebSocket server that
// exposes the richtext package over the network for manual testing and
// demos. None of this is part of the core library: richtext itself never
// does I/O and never spawns goroutines.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/text/unicode/bidi"

	"github.com/dpotapov/richtext/internal/fixtures"
	"github.com/dpotapov/richtext/richtext"
)

var wsUpgrader = websocket.Upgrader{}

// Handler serves /parse, /live and /fixtures. It holds no state across requests: each
// call to richtext.ParseWithLinks is a fresh, independent parse.
type Handler struct {
	// Logger receives request-scoped and connection-scoped log lines, plus
	// the debug-only BiDi cross-check emitted by crossCheckDirection.
	Logger *slog.Logger

	init   sync.Once
	logger *slog.Logger
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.init.Do(func() {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		if h.Logger != nil {
			h.logger = h.Logger
		}
	})

	switch {
	case r.URL.Path == "/parse" && r.Method == http.MethodPost:
		h.handleParse(w, r)
	case r.URL.Path == "/live":
		h.handleLive(w, r)
	case r.URL.Path == "/fixtures" && r.Method == http.MethodGet:
		h.handleFixtures(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleFixtures parses the shared fixture corpus (see internal/fixtures)
// on demand and returns each fixture's name alongside its parsed Result,
// so a caller can eyeball the whole well-formed/adversarial suite without
// hand-typing markup into /parse.
func (h *Handler) handleFixtures(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r, h.logger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	type namedResult struct {
		Name   string          `json:"name"`
		Source string          `json:"source"`
		Result richtext.Result `json:"result"`
	}

	all := fixtures.All()
	out := make([]namedResult, len(all))
	for i, fx := range all {
		out[i] = namedResult{
			Name:   fx.Name,
			Source: fx.Source,
			Result: richtext.ParseWithLinks([]byte(fx.Source), opts),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		h.logger.Error("encode fixtures result", "error", err)
	}
}

func (h *Handler) handleParse(w http.ResponseWriter, r *http.Request) {
	source, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	opts, err := optionsFromQuery(r, h.logger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := richtext.ParseWithLinks(source, opts)
	crossCheckDirection(h.logger, "http", source, result)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("encode parse result", "error", err)
	}
}

// handleLive upgrades to a WebSocket and re-parses on every incoming text
// frame, writing back the JSON-encoded Result. Structure mirrors the
// read-goroutine-plus-render-loop pattern of a websocket-serving component
// handler: one goroutine reads revisions off the wire, the main loop
// selects between a fresh revision and connection teardown.
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	ws, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade", "error", err)
		return
	}
	defer ws.Close()

	connID := uuid.NewString()
	logger := h.logger.With("conn", connID)
	logger.Info("live connection opened")
	defer logger.Info("live connection closed")

	opts, err := optionsFromQuery(r, logger)
	if err != nil {
		_ = ws.WriteMessage(websocket.TextMessage, []byte(err.Error()))
		return
	}

	revisions := make(chan []byte)
	done := make(chan error, 1)

	go func() {
		for {
			_, msg, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					err = nil
				} else {
					err = fmt.Errorf("read websocket message: %w", err)
				}
				done <- err
				return
			}
			revisions <- msg
		}
	}()

	for {
		select {
		case source := <-revisions:
			result := richtext.ParseWithLinks(source, opts)
			crossCheckDirection(logger, connID, source, result)

			body, err := json.Marshal(result)
			if err != nil {
				logger.Error("marshal live result", "error", err)
				continue
			}
			if err := ws.WriteMessage(websocket.TextMessage, body); err != nil {
				logger.Error("write websocket message", "error", err)
				return
			}
		case err := <-done:
			if err != nil {
				logger.Error("live connection", "error", err)
			}
			return
		}
	}
}

// optionsFromQuery maps request query parameters to richtext.Options.
// Unset or unparseable numeric parameters fall back to a default (16 for
// base_font_size, 1 for font_size_multiplier, 0 for the rest) rather than
// rejecting the request, matching richtext's "never fail on
// malformed input" posture; only an unrecognized frontend value is a
// client error.
func optionsFromQuery(r *http.Request, logger *slog.Logger) (richtext.Options, error) {
	q := r.URL.Query()

	opts := richtext.Options{
		BaseFontSize:       parseFloatOr(q.Get("base_font_size"), 16),
		FontSizeMultiplier: parseFloatOr(q.Get("font_size_multiplier"), 1),
		AllowFontScaling:   q.Get("allow_font_scaling") == "true",
		LineHeight:         parseFloatOr(q.Get("line_height"), 0),
		FontWeight:         q.Get("font_weight"),
		FontFamily:         q.Get("font_family"),
		FontStyle:          q.Get("font_style"),
		LetterSpacing:      parseFloatOr(q.Get("letter_spacing"), 0),
		Color:              parseColorOr(q.Get("color"), 0),
		TagStyles:          q.Get("tag_styles"),
		Logger:             logger,
	}
	if max := q.Get("max_font_size_multiplier"); max != "" {
		opts.MaxFontSizeMultiplier = parseFloatOr(max, 0)
	}

	switch q.Get("frontend") {
	case "", "hand-rolled":
		opts.Frontend = richtext.FrontendHandRolled
	case "lenient":
		opts.Frontend = richtext.FrontendLenient
	default:
		return richtext.Options{}, fmt.Errorf("unknown frontend %q", q.Get("frontend"))
	}

	return opts, nil
}

func parseFloatOr(s string, fallback float32) float32 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return fallback
	}
	return float32(v)
}

func parseColorOr(s string, fallback uint32) uint32 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallback
	}
	return uint32(v)
}

// crossCheckDirection is a purely diagnostic secondary opinion: it runs
// golang.org/x/text/unicode/bidi's full UAX#9 paragraph-direction
// resolution over the concatenated fragment text and logs it at debug
// level. It never influences the response; richtext's own first-strong
// heuristic (component A/B) remains authoritative.
func crossCheckDirection(logger *slog.Logger, id string, source []byte, result richtext.Result) {
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	var plain string
	for _, f := range result.Runs {
		plain += f.Text
	}
	if plain == "" {
		return
	}

	var p bidi.Paragraph
	if _, err := p.SetString(plain); err != nil {
		logger.Debug("bidi cross-check failed", "id", id, "error", err)
		return
	}

	logger.Debug("bidi cross-check", "id", id, "bytes", len(source), "bidi_direction", bidiDirectionName(p.Direction()))
}

func bidiDirectionName(d bidi.Direction) string {
	switch d {
	case bidi.LeftToRight:
		return "ltr"
	case bidi.RightToLeft:
		return "rtl"
	case bidi.Mixed:
		return "mixed"
	default:
		return "neutral"
	}
}
