package page

import (
	"context"
	"sync"

	"github.com/opencollective/frontend/internal/domain"
	"github.com/opencollective/frontend/internal/routes"
	"github.com/opencollective/frontend/pkg/errors"
)

type fakeBackend struct {
	mu sync.Mutex

	collectives map[string]*domain.Collective
	loadErr     error

	events      []domain.Collective
	search      *domain.SearchResult
	suggestions []domain.Collective
	listErr     error

	order    *domain.Order
	orderErr error
	orders   []domain.OrderInput
	// block, when set, holds CreateOrder until closed
	block   chan struct{}
	entered chan struct{}

	saved      *domain.Collective
	eventErr   error
	created    []domain.EventInput
	edited     []domain.EventInput
	eventsArgs []string
	searchArgs []interface{}
}

func (f *fakeBackend) Collective(_ context.Context, slug string) (*domain.Collective, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	c, ok := f.collectives[slug]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "collective", ID: slug}
	}
	return c, nil
}

func (f *fakeBackend) Event(ctx context.Context, slug string) (*domain.Collective, error) {
	return f.Collective(ctx, slug)
}

func (f *fakeBackend) Events(_ context.Context, slug string, _, _ int) ([]domain.Collective, error) {
	f.eventsArgs = append(f.eventsArgs, slug)
	return f.events, f.listErr
}

func (f *fakeBackend) Search(_ context.Context, term string, limit, offset int) (*domain.SearchResult, error) {
	f.searchArgs = []interface{}{term, limit, offset}
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.search == nil {
		return &domain.SearchResult{Limit: limit, Offset: offset}, nil
	}
	return f.search, nil
}

func (f *fakeBackend) Collectives(_ context.Context, _ domain.CollectivesQuery) ([]domain.Collective, error) {
	return f.suggestions, f.listErr
}

func (f *fakeBackend) CreateOrder(_ context.Context, order domain.OrderInput) (*domain.Order, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, order)
	return f.order, f.orderErr
}

func (f *fakeBackend) CreateEvent(_ context.Context, input domain.EventInput) (*domain.Collective, error) {
	f.created = append(f.created, input)
	return f.saved, f.eventErr
}

func (f *fakeBackend) EditEvent(_ context.Context, input domain.EventInput) (*domain.Collective, error) {
	f.edited = append(f.edited, input)
	return f.saved, f.eventErr
}

func testDeps(b Backend) Deps {
	return Deps{
		Backend: b,
		Routes:  routes.Pages(),
		Assets:  routes.Assets(),
		Host:    "https://example.org",
	}
}

func testCollective() *domain.Collective {
	return &domain.Collective{
		ID:       42,
		Slug:     "webpack",
		Name:     "Webpack",
		Type:     domain.CollectiveTypeCollective,
		Currency: "USD",
		Tiers: []domain.Tier{
			{ID: 7, Type: "TIER", Name: "Backers", Amount: 500, Interval: domain.IntervalMonth},
		},
	}
}
