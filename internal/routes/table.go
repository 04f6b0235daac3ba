package routes

import (
	"errors"
	"fmt"
	"net/url"

	apperrors "github.com/opencollective/frontend/pkg/errors"
)

// Definition declares a route before compilation
type Definition struct {
	Name    string
	Pattern string
}

// Entry is a compiled route
type Entry struct {
	Name    string
	Pattern *Pattern
}

// Match is the result of resolving a path
type Match struct {
	Name       string
	Pattern    string
	PathParams map[string]string
	Query      url.Values
}

// Params merges query string values with path params. Path params win.
func (m Match) Params() map[string]string {
	params := make(map[string]string, len(m.PathParams)+len(m.Query))
	for k, v := range m.Query {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	for k, v := range m.PathParams {
		params[k] = v
	}
	return params
}

// Table is an immutable, ordered list of routes. The first entry whose
// pattern matches a path wins, so catch-all patterns must come last.
type Table struct {
	entries []Entry
}

// NewTable compiles defs in order
func NewTable(defs ...Definition) (*Table, error) {
	t := &Table{entries: make([]Entry, 0, len(defs))}
	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("route %s has no name", def.Pattern)
		}
		p, err := ParsePattern(def.Pattern)
		if err != nil {
			return nil, err
		}
		t.entries = append(t.entries, Entry{Name: def.Name, Pattern: p})
	}
	return t, nil
}

// MustTable is like NewTable but panics on an invalid definition
func MustTable(defs ...Definition) *Table {
	t, err := NewTable(defs...)
	if err != nil {
		panic(err)
	}
	return t
}

// Entries returns a copy of the entries in priority order
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Resolve returns the first entry matching path
func (t *Table) Resolve(path string) (Match, error) {
	for _, e := range t.entries {
		if params, ok := e.Pattern.Match(path); ok {
			return Match{Name: e.Name, Pattern: e.Pattern.String(), PathParams: params}, nil
		}
	}
	return Match{}, &apperrors.ErrNoRoute{Path: path}
}

// ResolveURL resolves u.Path and attaches the query string
func (t *Table) ResolveURL(u *url.URL) (Match, error) {
	m, err := t.Resolve(u.Path)
	if err != nil {
		return m, err
	}
	m.Query = u.Query()
	return m, nil
}

// MatchAll returns every entry matching path, in priority order
func (t *Table) MatchAll(path string) []Match {
	var matches []Match
	for _, e := range t.entries {
		if params, ok := e.Pattern.Match(path); ok {
			matches = append(matches, Match{Name: e.Name, Pattern: e.Pattern.String(), PathParams: params})
		}
	}
	return matches
}

// Reverse builds the canonical URL of the page name from params. Params that
// are not placeholders of the chosen pattern become the query string.
func (t *Table) Reverse(name string, params map[string]string) (string, error) {
	var lastErr error
	for _, e := range t.entries {
		if e.Name != name {
			continue
		}
		path, used, err := e.Pattern.Build(params)
		if err != nil {
			lastErr = err
			continue
		}
		return path + queryString(params, used), nil
	}

	if lastErr == nil {
		return "", &apperrors.ErrNoRoute{Name: name}
	}
	var missing *missingParamError
	if errors.As(lastErr, &missing) {
		return "", &apperrors.ErrMissingParam{Route: name, Param: missing.param}
	}
	return "", fmt.Errorf("failed to reverse route %s: %w", name, lastErr)
}

func queryString(params map[string]string, used map[string]bool) string {
	q := url.Values{}
	for k, v := range params {
		if used[k] || v == "" {
			continue
		}
		q.Set(k, v)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
