package richtext

import (
	"math"
	"strconv"
	"strings"
)

// TagStyle holds the per-tag style overrides recognized in a tagStyles
// blob: a JSON-shaped string of the form `"tag":{ "key": value, ... }`.
// The "unset" value of each field is Color 0, FontSize NaN, and empty
// strings for the rest; emptyTagStyle returns a TagStyle with every field
// unset.
type TagStyle struct {
	Color              uint32
	FontSize           float32
	FontWeight         string
	FontStyle          string
	TextDecorationLine string
}

func emptyTagStyle() TagStyle {
	return TagStyle{FontSize: float32(math.NaN())}
}

// ExtractHrefURL finds an href="..." or href='...' attribute in rawTagBody
// and returns its value, or "" if absent or if the URL scheme is not on
// the allowlist enforced by IsAllowedURLScheme.
func ExtractHrefURL(rawTagBody string) string {
	url := extractQuotedAttr(rawTagBody, "href=")
	if url == "" || !IsAllowedURLScheme(url) {
		return ""
	}
	return url
}

// ExtractDirAttr finds a dir="..." or dir='...' attribute in rawTagBody
// and returns its raw value, or "" if absent. No scheme validation
// applies since this is not a URL.
func ExtractDirAttr(rawTagBody string) string {
	return extractQuotedAttr(rawTagBody, "dir=")
}

// extractQuotedAttr locates the first occurrence of name (which must
// include the trailing '=') and returns the quoted value that follows it,
// or "" if name is absent or its value is not quoted.
func extractQuotedAttr(rawTagBody, name string) string {
	pos := strings.Index(rawTagBody, name)
	if pos == -1 {
		return ""
	}
	valueStart := pos + len(name)
	if valueStart >= len(rawTagBody) {
		return ""
	}
	quote := rawTagBody[valueStart]
	if quote != '"' && quote != '\'' {
		return ""
	}
	valueStart++
	end := strings.IndexByte(rawTagBody[valueStart:], quote)
	if end <= 0 {
		return ""
	}
	return rawTagBody[valueStart : valueStart+end]
}

// IsAllowedURLScheme reports whether url is safe to surface as a link
// target: http(s), mailto, tel, fragment-only, path-absolute, or any
// scheme-less relative URL (one whose first ':', if any, occurs after its
// first '/'). Everything else — javascript:, vbscript:, data:, and any
// other scheme — is rejected.
func IsAllowedURLScheme(url string) bool {
	lower := strings.TrimLeft(toLowerASCII(url), " \t\n\r\f\v")

	switch {
	case strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "mailto:"),
		strings.HasPrefix(lower, "tel:"):
		return true
	case lower == "" || lower[0] == '/' || lower[0] == '#':
		return true
	}

	colon := strings.IndexByte(lower, ':')
	slash := strings.IndexByte(lower, '/')
	if colon == -1 || (slash != -1 && slash < colon) {
		return true
	}
	return false
}

// ParseHexColor parses a "#RGB" or "#RRGGBB" string into a 0xAARRGGBB
// value with full alpha. It returns 0 (unset) on any malformed input.
func ParseHexColor(colorStr string) uint32 {
	if len(colorStr) == 0 || colorStr[0] != '#' {
		return 0
	}
	hex := colorStr[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0
	}
	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || rgb > 0xFFFFFF {
		return 0
	}
	return 0xFF000000 | uint32(rgb)
}

// GetStyleFromTagStyles finds the `"tagName":{...}` block inside blob
// using a string-aware brace match (quoted braces don't count), and
// extracts the five recognized style keys from it. On any structural
// failure (tag not found, unbalanced braces) it returns emptyTagStyle(),
// unset in every field.
func GetStyleFromTagStyles(blob, tagName string) TagStyle {
	result := emptyTagStyle()
	if blob == "" || tagName == "" {
		return result
	}

	tagPos := strings.Index(blob, `"`+tagName+`"`)
	if tagPos == -1 {
		return result
	}

	braceStart := strings.IndexByte(blob[tagPos:], '{')
	if braceStart == -1 {
		return result
	}
	braceStart += tagPos

	braceEnd, ok := matchBrace(blob, braceStart)
	if !ok {
		return result
	}

	obj := blob[braceStart:braceEnd]

	if colorValue := getStringValueFromStyleObj(obj, "color"); colorValue != "" {
		result.Color = ParseHexColor(colorValue)
	}
	result.FontSize = getNumericValueFromStyleObj(obj, "fontSize")
	result.FontWeight = getStringValueFromStyleObj(obj, "fontWeight")
	result.FontStyle = getStringValueFromStyleObj(obj, "fontStyle")
	result.TextDecorationLine = getStringValueFromStyleObj(obj, "textDecorationLine")

	return result
}

// matchBrace scans forward from an opening '{' at start, tracking
// single- and double-quoted strings (honoring backslash escapes) so that
// braces inside string literals don't affect the count. It returns the
// index just past the matching '}', or ok=false if the braces never
// balance before the end of s.
func matchBrace(s string, start int) (int, bool) {
	depth := 1
	i := start + 1
	inString := false
	var delim byte

	for i < len(s) && depth > 0 {
		ch := s[i]
		switch {
		case !inString && (ch == '"' || ch == '\''):
			inString = true
			delim = ch
		case inString && ch == delim:
			if i == 0 || s[i-1] != '\\' {
				inString = false
			}
		case !inString && ch == '{':
			depth++
		case !inString && ch == '}':
			depth--
		}
		i++
	}
	if depth != 0 {
		return 0, false
	}
	return i, true
}

func getStringValueFromStyleObj(styleObj, key string) string {
	keyPos := strings.Index(styleObj, `"`+key+`"`)
	if keyPos == -1 {
		return ""
	}
	colonPos := strings.IndexByte(styleObj[keyPos:], ':')
	if colonPos == -1 {
		return ""
	}
	valueStart := keyPos + colonPos + 1
	for valueStart < len(styleObj) && isASCIISpace(styleObj[valueStart]) {
		valueStart++
	}
	if valueStart >= len(styleObj) || styleObj[valueStart] != '"' {
		return ""
	}
	valueStart++
	end := strings.IndexByte(styleObj[valueStart:], '"')
	if end == -1 {
		return ""
	}
	return styleObj[valueStart : valueStart+end]
}

func getNumericValueFromStyleObj(styleObj, key string) float32 {
	keyPos := strings.Index(styleObj, `"`+key+`"`)
	if keyPos == -1 {
		return float32(math.NaN())
	}
	colonPos := strings.IndexByte(styleObj[keyPos:], ':')
	if colonPos == -1 {
		return float32(math.NaN())
	}
	valueStart := keyPos + colonPos + 1
	for valueStart < len(styleObj) && isASCIISpace(styleObj[valueStart]) {
		valueStart++
	}

	start := valueStart
	for valueStart < len(styleObj) {
		c := styleObj[valueStart]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' {
			valueStart++
		} else {
			break
		}
	}
	if valueStart == start {
		return float32(math.NaN())
	}

	f, err := strconv.ParseFloat(styleObj[start:valueStart], 32)
	if err != nil {
		return float32(math.NaN())
	}
	return float32(f)
}

func isASCIISpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}
