package page

import (
	"context"
	"fmt"
	"strconv"

	"github.com/opencollective/frontend/internal/domain"
	"github.com/opencollective/frontend/internal/routes"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	pageWindow         = 5
)

// SearchParams are the typed parameters of the search page
type SearchParams struct {
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Term   string `json:"term"`
}

// DeriveSearchParams coerces the search query
func DeriveSearchParams(raw RawInput) SearchParams {
	offset, _ := parseInt(raw.Get("offset"))
	return SearchParams{
		Limit:  clamp(intOr(raw.Get("limit"), defaultSearchLimit), 1, maxSearchLimit),
		Offset: max(offset, 0),
		Term:   raw.Get("q"),
	}
}

// PageLink is one entry of a pagination bar
type PageLink struct {
	Number int    `json:"number"`
	Offset int    `json:"offset"`
	Href   string `json:"href"`
	Active bool   `json:"active"`
}

// SearchView is the view model of the search page
type SearchView struct {
	Params      SearchParams        `json:"params"`
	Collectives []domain.Collective `json:"collectives"`
	Total       int                 `json:"total"`
	Pages       []PageLink          `json:"pages"`
}

// Search lists collectives matching a term
type Search struct {
	base
	params SearchParams
	result *domain.SearchResult
}

// NewSearch builds the search controller
func NewSearch(deps Deps, raw RawInput) Controller {
	return &Search{
		base:   newBase(deps, routes.PageSearch),
		params: DeriveSearchParams(raw),
	}
}

// Params returns the derived parameters
func (s *Search) Params() SearchParams {
	return s.params
}

func (s *Search) Load(ctx context.Context) error {
	return s.lc.Load(ctx, func(ctx context.Context) error {
		result, err := s.deps.Backend.Search(ctx, s.params.Term, s.params.Limit, s.params.Offset)
		if err != nil {
			return fmt.Errorf("failed to search collectives: %w", err)
		}
		s.result = result
		return nil
	})
}

// Pages builds the pagination links: the first and last pages plus a window
// of pageWindow pages on each side of the current one
func (s *Search) Pages() []PageLink {
	if s.result == nil || s.result.Total <= 0 {
		return nil
	}
	limit := s.result.Limit
	if limit <= 0 {
		limit = s.params.Limit
	}
	count := (s.result.Total + limit - 1) / limit
	current := s.params.Offset / limit
	first, last := max(current-pageWindow, 0), min(current+pageWindow, count-1)

	links := make([]PageLink, 0, 2*pageWindow+3)
	for i := 0; i < count; i++ {
		if i != 0 && i != count-1 && (i < first || i > last) {
			continue
		}
		offset := i * limit
		links = append(links, PageLink{
			Number: i + 1,
			Offset: offset,
			Active: offset == s.params.Offset,
			Href: s.href(routes.PageSearch, map[string]string{
				"limit":  strconv.Itoa(limit),
				"offset": strconv.Itoa(offset),
				"q":      s.params.Term,
			}),
		})
		if i == 0 && first > 1 {
			i = first - 1
		}
		if i == last && last < count-2 {
			i = count - 2
		}
	}
	return links
}

func (s *Search) View() View {
	data := SearchView{Params: s.params, Collectives: []domain.Collective{}}
	if s.result != nil {
		if s.result.Collectives != nil {
			data.Collectives = s.result.Collectives
		}
		data.Total = s.result.Total
		data.Pages = s.Pages()
	}
	return View{Template: "search", Title: "Search", Data: data}
}
