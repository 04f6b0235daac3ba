package page

import (
	"html"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// RawInput is the merged path and query parameters of a request, as
// produced by routes.Match.Params.
type RawInput map[string]string

// Get returns the raw value of key, "" when absent
func (r RawInput) Get(key string) string {
	return r[key]
}

var strictPolicy = bluemonday.StrictPolicy()

// Sanitize strips every tag and attribute from s. The result is plain text;
// escaping is left to the template that renders it.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// parseInt reads the leading integer of s the way browsers parse numeric
// query values: surrounding junk after the digits is ignored, no digits
// means no value.
func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// intOr returns the leading integer of s, or def when s has none or is 0
func intOr(s string, def int) int {
	if n, ok := parseInt(s); ok && n != 0 {
		return n
	}
	return def
}

// parseNumber parses a full decimal number, nil when s is empty or not a
// number
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

// decodeComponent undoes percent-encoding that survived the query parser.
// Malformed input is returned unchanged.
func decodeComponent(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
