// Package page implements the page controllers: parameter derivation from
// the request, the data fetch against the API and the form submission
// lifecycle of every page in the route table.
package page

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/opencollective/frontend/internal/domain"
	"github.com/opencollective/frontend/internal/routes"
	"github.com/opencollective/frontend/internal/storage"
	"github.com/opencollective/frontend/pkg/errors"
)

// Backend is the part of the API client used by the pages
type Backend interface {
	Collective(ctx context.Context, slug string) (*domain.Collective, error)
	Event(ctx context.Context, slug string) (*domain.Collective, error)
	Events(ctx context.Context, slug string, limit, offset int) ([]domain.Collective, error)
	Search(ctx context.Context, term string, limit, offset int) (*domain.SearchResult, error)
	Collectives(ctx context.Context, q domain.CollectivesQuery) ([]domain.Collective, error)
	CreateOrder(ctx context.Context, order domain.OrderInput) (*domain.Order, error)
	CreateEvent(ctx context.Context, input domain.EventInput) (*domain.Collective, error)
	EditEvent(ctx context.Context, input domain.EventInput) (*domain.Collective, error)
}

// Deps is what a controller needs to serve one request
type Deps struct {
	Backend Backend
	Routes  *routes.Table
	Assets  *routes.Table
	Store   storage.Reader
	User    *domain.User
	Guard   *InstanceGuard
	FormID  string

	Host                  string
	DefaultCollectiveSlug string

	Logger *zap.Logger
}

// View is what a controller hands to the renderer
type View struct {
	Template string
	Title    string
	Data     interface{}
}

// Controller drives one page for one request
type Controller interface {
	Lifecycle() *Lifecycle
	Load(ctx context.Context) error
	View() View
}

// Submitter is a controller with a form
type Submitter interface {
	Controller
	// NewForm returns a pointer to the form the request body binds into
	NewForm() interface{}
	Submit(ctx context.Context, form interface{}) (*Redirect, error)
}

// Factory builds the controller of a page from the raw request input
type Factory func(deps Deps, raw RawInput) Controller

// Registry maps page names to controller factories
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a registry holding a controller for every page of the
// default route table
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(routes.PageCreateOrder, NewCheckout)
	r.Register(routes.PageOrderTier, NewCheckout)
	r.Register(routes.PageCreateEventOrder, NewCheckout)
	r.Register(routes.PageSearch, NewSearch)
	r.Register(routes.PageRedeemed, NewRedeemed)
	r.Register(routes.PageCollective, NewCollective)
	r.Register(routes.PageEvents, NewEvents)
	r.Register(routes.PageEvent, NewEvent)
	r.Register(routes.PageCreateEvent, NewCreateEvent)
	r.Register(routes.PageEditEvent, NewEditEvent)
	r.Register(routes.PageButton, NewButton)
	return r
}

// Register sets the factory of a page, replacing any previous one
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// New builds the controller of the named page
func (r *Registry) New(name string, deps Deps, raw RawInput) (Controller, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "page", ID: name}
	}
	return f(deps, raw), nil
}

// Names lists the registered pages
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type base struct {
	deps Deps
	lc   *Lifecycle
}

func newBase(deps Deps, page string) base {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	deps.Logger = deps.Logger.With(zap.String("page", page))
	return base{
		deps: deps,
		lc:   NewLifecycle(deps.Guard, deps.FormID, deps.Logger),
	}
}

func (b *base) Lifecycle() *Lifecycle {
	return b.lc
}

// href reverses an in-app route, "" when the route cannot be built
func (b *base) href(name string, params map[string]string) string {
	if b.deps.Routes == nil {
		return ""
	}
	path, err := b.deps.Routes.Reverse(name, params)
	if err != nil {
		b.deps.Logger.Debug("Cannot build link", zap.String("route", name), zap.Error(err))
		return ""
	}
	return path
}
