package routes

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// part is one piece of a path segment: either literal text, a named
// placeholder or an anonymous alternation group.
type part struct {
	literal    string
	name       string
	constraint string
	group      bool
	check      *regexp.Regexp
}

type segment struct {
	parts    []part
	optional bool
}

// Pattern is a compiled URL pattern.
//
// Supported syntax, one path segment at a time:
//
//	events          literal
//	:slug           named placeholder, any non-empty segment
//	:amount(\d+)    named placeholder constrained by a regexp
//	:interval?      optional placeholder, only in trailing position
//	(new|create)    anonymous alternation
//	button:size(|@2x).png
//	                placeholder surrounded by literal text in one segment
type Pattern struct {
	raw      string
	segments []segment
	re       *regexp.Regexp
}

// ParsePattern compiles raw into a Pattern
func ParsePattern(raw string) (*Pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return nil, fmt.Errorf("pattern %q must start with /", raw)
	}

	p := &Pattern{raw: raw}
	var expr strings.Builder
	expr.WriteString("^")

	trimmed := strings.Trim(raw, "/")
	if trimmed != "" {
		seenOptional := false
		for _, rawSeg := range strings.Split(trimmed, "/") {
			seg, err := parseSegment(rawSeg)
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", raw, err)
			}
			if seenOptional && !seg.optional {
				return nil, fmt.Errorf("pattern %q: optional segments must be trailing", raw)
			}
			seenOptional = seenOptional || seg.optional

			if seg.optional {
				expr.WriteString("(?:/")
				expr.WriteString(seg.expr())
				expr.WriteString(")?")
			} else {
				expr.WriteString("/")
				expr.WriteString(seg.expr())
			}
			p.segments = append(p.segments, seg)
		}
	}
	expr.WriteString("/?$")

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", raw, err)
	}
	p.re = re
	return p, nil
}

func parseSegment(raw string) (segment, error) {
	var seg segment
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			seg.parts = append(seg.parts, part{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(raw); {
		switch c := raw[i]; {
		case c == ':':
			flush()
			j := i + 1
			for j < len(raw) && isNameChar(raw[j]) {
				j++
			}
			if j == i+1 {
				return seg, fmt.Errorf("empty placeholder name in %q", raw)
			}
			pt := part{name: raw[i+1 : j]}
			if j < len(raw) && raw[j] == '(' {
				body, end, err := readGroup(raw, j)
				if err != nil {
					return seg, err
				}
				pt.constraint = body
				j = end
			}
			if j < len(raw) && raw[j] == '?' {
				if len(seg.parts) > 0 || j != len(raw)-1 {
					return seg, fmt.Errorf("optional placeholder must span the whole segment %q", raw)
				}
				seg.optional = true
				j++
			}
			if err := pt.compile(); err != nil {
				return seg, err
			}
			seg.parts = append(seg.parts, pt)
			i = j
		case c == '(':
			flush()
			body, end, err := readGroup(raw, i)
			if err != nil {
				return seg, err
			}
			pt := part{constraint: body, group: true}
			if err := pt.compile(); err != nil {
				return seg, err
			}
			seg.parts = append(seg.parts, pt)
			i = end
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return seg, nil
}

// readGroup returns the body of the parenthesized group starting at start and
// the index just past its closing parenthesis.
func readGroup(s string, start int) (string, int, error) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[start+1 : i], i + 1, nil
			}
		}
	}
	return "", 0, fmt.Errorf("unbalanced group in %q", s)
}

func isNameChar(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func (pt *part) compile() error {
	if pt.constraint == "" {
		return nil
	}
	re, err := regexp.Compile("^(?:" + pt.constraint + ")$")
	if err != nil {
		return fmt.Errorf("invalid constraint %q: %w", pt.constraint, err)
	}
	pt.check = re
	return nil
}

func (seg segment) expr() string {
	var b strings.Builder
	for _, pt := range seg.parts {
		switch {
		case pt.literal != "":
			b.WriteString(regexp.QuoteMeta(pt.literal))
		case pt.group:
			b.WriteString("(?:" + pt.constraint + ")")
		case pt.constraint != "":
			b.WriteString("(?P<" + pt.name + ">(?:" + pt.constraint + "))")
		default:
			b.WriteString("(?P<" + pt.name + ">[^/]+?)")
		}
	}
	return b.String()
}

// String returns the pattern source
func (p *Pattern) String() string {
	return p.raw
}

// Names returns the placeholder names in path order
func (p *Pattern) Names() []string {
	var names []string
	for _, seg := range p.segments {
		for _, pt := range seg.parts {
			if pt.name != "" {
				names = append(names, pt.name)
			}
		}
	}
	return names
}

// Match reports whether path matches and returns the bound placeholders.
// Optional placeholders that did not participate in the match are absent.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	idx := p.re.FindStringSubmatchIndex(path)
	if idx == nil {
		return nil, false
	}
	params := make(map[string]string)
	for i, name := range p.re.SubexpNames() {
		if name == "" || idx[2*i] < 0 {
			continue
		}
		params[name] = path[idx[2*i]:idx[2*i+1]]
	}
	return params, true
}

// Build renders the pattern with params. It returns the names it consumed.
func (p *Pattern) Build(params map[string]string) (string, map[string]bool, error) {
	used := make(map[string]bool)
	var b strings.Builder

	for _, seg := range p.segments {
		if seg.optional {
			name := seg.parts[0].name
			v := params[name]
			if v == "" {
				// A later constrained placeholder can still be told apart on resolve
				if seg.parts[0].check != nil {
					continue
				}
				break
			}
			if err := seg.parts[0].accepts(v); err != nil {
				return "", nil, err
			}
			b.WriteString("/")
			b.WriteString(url.PathEscape(v))
			used[name] = true
			continue
		}

		b.WriteString("/")
		for _, pt := range seg.parts {
			switch {
			case pt.literal != "":
				b.WriteString(pt.literal)
			case pt.group:
				b.WriteString(firstAlternative(pt.constraint))
			default:
				v := params[pt.name]
				if v == "" && !pt.acceptsEmpty() {
					return "", nil, &missingParamError{param: pt.name}
				}
				if err := pt.accepts(v); err != nil {
					return "", nil, err
				}
				b.WriteString(url.PathEscape(v))
				used[pt.name] = true
			}
		}
	}

	if b.Len() == 0 {
		return "/", used, nil
	}
	return b.String(), used, nil
}

type missingParamError struct {
	param string
}

func (e *missingParamError) Error() string {
	return "missing param " + e.param
}

func (pt part) acceptsEmpty() bool {
	return pt.check != nil && pt.check.MatchString("")
}

func (pt part) accepts(v string) error {
	if pt.check != nil && !pt.check.MatchString(v) {
		return fmt.Errorf("value %q for %s does not match (%s)", v, pt.name, pt.constraint)
	}
	if strings.Contains(v, "/") {
		return fmt.Errorf("value %q for %s contains a slash", v, pt.name)
	}
	return nil
}

func firstAlternative(constraint string) string {
	if i := strings.IndexByte(constraint, '|'); i >= 0 {
		return constraint[:i]
	}
	return constraint
}
