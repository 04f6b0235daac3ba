package backend

import (
	"context"
	"fmt"

	"github.com/opencollective/frontend/internal/domain"
	"github.com/opencollective/frontend/pkg/errors"
)

// Collective fetches a collective by slug
func (c *Client) Collective(ctx context.Context, slug string) (*domain.Collective, error) {
	var data struct {
		Collective *domain.Collective `json:"Collective"`
	}
	err := c.Execute(ctx, GraphQLRequest{
		OperationName: "Collective",
		Query:         CollectiveQuery,
		Variables:     map[string]interface{}{"slug": slug},
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.Collective == nil {
		return nil, &errors.ErrNotFound{Resource: "collective", ID: slug}
	}
	return data.Collective, nil
}

// Event fetches an event by slug. Events are collectives of type EVENT.
func (c *Client) Event(ctx context.Context, slug string) (*domain.Collective, error) {
	event, err := c.Collective(ctx, slug)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return nil, &errors.ErrNotFound{Resource: "event", ID: slug}
		}
		return nil, err
	}
	return event, nil
}

// Events lists the events of a collective
func (c *Client) Events(ctx context.Context, slug string, limit, offset int) ([]domain.Collective, error) {
	var data struct {
		AllEvents []domain.Collective `json:"allEvents"`
	}
	err := c.Execute(ctx, GraphQLRequest{
		OperationName: "allEvents",
		Query:         EventsQuery,
		Variables: map[string]interface{}{
			"slug":   slug,
			"limit":  limit,
			"offset": offset,
		},
	}, &data)
	if err != nil {
		return nil, err
	}
	return data.AllEvents, nil
}

// Search runs a collective search
func (c *Client) Search(ctx context.Context, term string, limit, offset int) (*domain.SearchResult, error) {
	var data struct {
		Search *domain.SearchResult `json:"search"`
	}
	err := c.Execute(ctx, GraphQLRequest{
		OperationName: "search",
		Query:         SearchQuery,
		Variables: map[string]interface{}{
			"term":   term,
			"limit":  limit,
			"offset": offset,
		},
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.Search == nil {
		return &domain.SearchResult{Limit: limit, Offset: offset}, nil
	}
	return data.Search, nil
}

// Collectives lists collectives matching q
func (c *Client) Collectives(ctx context.Context, q domain.CollectivesQuery) ([]domain.Collective, error) {
	vars := map[string]interface{}{
		"limit":  q.Limit,
		"offset": q.Offset,
	}
	if q.HostCollectiveID > 0 {
		vars["HostCollectiveId"] = q.HostCollectiveID
	}
	if q.OrderBy != "" {
		vars["orderBy"] = q.OrderBy
	}
	if q.OrderDirection != "" {
		vars["orderDirection"] = q.OrderDirection
	}

	var data struct {
		AllCollectives struct {
			Collectives []domain.Collective `json:"collectives"`
		} `json:"allCollectives"`
	}
	err := c.Execute(ctx, GraphQLRequest{
		OperationName: "allCollectives",
		Query:         CollectivesQuery,
		Variables:     vars,
	}, &data)
	if err != nil {
		return nil, err
	}
	return data.AllCollectives.Collectives, nil
}

// LoggedInUser returns the user owning the client token, nil when anonymous
func (c *Client) LoggedInUser(ctx context.Context) (*domain.User, error) {
	if c.token == "" {
		return nil, nil
	}
	var data struct {
		LoggedInUser *domain.User `json:"LoggedInUser"`
	}
	err := c.Execute(ctx, GraphQLRequest{
		OperationName: "LoggedInUser",
		Query:         LoggedInUserQuery,
	}, &data)
	if err != nil {
		return nil, err
	}
	return data.LoggedInUser, nil
}

// CreateOrder submits an order
func (c *Client) CreateOrder(ctx context.Context, order domain.OrderInput) (*domain.Order, error) {
	var data struct {
		CreateOrder *domain.Order `json:"createOrder"`
	}
	err := c.Execute(ctx, GraphQLRequest{
		OperationName: "createOrder",
		Query:         CreateOrderMutation,
		Variables:     map[string]interface{}{"order": order},
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.CreateOrder == nil {
		return nil, fmt.Errorf("createOrder returned no order")
	}
	return data.CreateOrder, nil
}

// CreateCollective creates a collective
func (c *Client) CreateCollective(ctx context.Context, input domain.CollectiveInput) (*domain.Collective, error) {
	if input.Tiers == nil {
		input.Tiers = []domain.Tier{}
	}
	var data struct {
		CreateCollective *domain.Collective `json:"createCollective"`
	}
	err := c.Execute(ctx, GraphQLRequest{
		OperationName: "createCollective",
		Query:         CreateCollectiveMutation,
		Variables:     map[string]interface{}{"collective": input},
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.CreateCollective == nil {
		return nil, fmt.Errorf("createCollective returned no collective")
	}
	return data.CreateCollective, nil
}

// CreateEvent creates an event
func (c *Client) CreateEvent(ctx context.Context, input domain.EventInput) (*domain.Collective, error) {
	var data struct {
		CreateEvent *domain.Collective `json:"createEvent"`
	}
	err := c.Execute(ctx, GraphQLRequest{
		OperationName: "createEvent",
		Query:         CreateEventMutation,
		Variables:     map[string]interface{}{"event": input},
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.CreateEvent == nil {
		return nil, fmt.Errorf("createEvent returned no event")
	}
	return data.CreateEvent, nil
}

// EditEvent updates an event
func (c *Client) EditEvent(ctx context.Context, input domain.EventInput) (*domain.Collective, error) {
	var data struct {
		EditEvent *domain.Collective `json:"editEvent"`
	}
	err := c.Execute(ctx, GraphQLRequest{
		OperationName: "editEvent",
		Query:         EditEventMutation,
		Variables:     map[string]interface{}{"event": input},
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.EditEvent == nil {
		return nil, fmt.Errorf("editEvent returned no event")
	}
	return data.EditEvent, nil
}
