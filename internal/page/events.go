package page

import (
	"context"
	"fmt"
	"strconv"

	"github.com/opencollective/frontend/internal/domain"
	"github.com/opencollective/frontend/internal/routes"
)

const defaultEventsLimit = 20

// EventsParams are the typed parameters of the events listing
type EventsParams struct {
	CollectiveSlug string `json:"collectiveSlug"`
	Limit          int    `json:"limit"`
	Offset         int    `json:"offset"`
}

// DeriveEventsParams coerces the events listing input. The root path has no
// slug and lists the events of defaultSlug.
func DeriveEventsParams(raw RawInput, defaultSlug string) EventsParams {
	slug := raw.Get("collectiveSlug")
	if slug == "" {
		slug = defaultSlug
	}
	offset, _ := parseInt(raw.Get("offset"))
	return EventsParams{
		CollectiveSlug: slug,
		Limit:          clamp(intOr(raw.Get("limit"), defaultEventsLimit), 1, maxSearchLimit),
		Offset:         max(offset, 0),
	}
}

// EventLink is an event of a listing with its page
type EventLink struct {
	Event domain.Collective `json:"event"`
	Href  string            `json:"href"`
}

// EventsView is the view model of the events listing
type EventsView struct {
	Params     EventsParams `json:"params"`
	Events     []EventLink  `json:"events"`
	CreateHref string       `json:"createHref,omitempty"`
}

// Events lists the events of a collective
type Events struct {
	base
	params EventsParams
	events []domain.Collective
}

// NewEvents builds the events controller
func NewEvents(deps Deps, raw RawInput) Controller {
	return &Events{
		base:   newBase(deps, routes.PageEvents),
		params: DeriveEventsParams(raw, deps.DefaultCollectiveSlug),
	}
}

// Params returns the derived parameters
func (e *Events) Params() EventsParams {
	return e.params
}

func (e *Events) Load(ctx context.Context) error {
	return e.lc.Load(ctx, func(ctx context.Context) error {
		if e.params.CollectiveSlug == "" {
			return fmt.Errorf("no collective to list events for")
		}
		events, err := e.deps.Backend.Events(ctx, e.params.CollectiveSlug, e.params.Limit, e.params.Offset)
		if err != nil {
			return fmt.Errorf("failed to load events of %q: %w", e.params.CollectiveSlug, err)
		}
		e.events = events
		return nil
	})
}

func (e *Events) View() View {
	data := EventsView{Params: e.params, Events: make([]EventLink, 0, len(e.events))}
	for _, ev := range e.events {
		data.Events = append(data.Events, EventLink{
			Event: ev,
			Href: e.href(routes.PageEvent, map[string]string{
				"collectiveSlug": e.params.CollectiveSlug,
				"eventSlug":      ev.Slug,
			}),
		})
	}
	data.CreateHref = e.href(routes.PageCreateEvent, map[string]string{"collectiveSlug": e.params.CollectiveSlug})
	return View{Template: "events", Title: "Events", Data: data}
}

// EventParams are the typed parameters of the event page
type EventParams struct {
	CollectiveSlug string `json:"collectiveSlug"`
	EventSlug      string `json:"eventSlug"`
}

// DeriveEventParams reads the event page input
func DeriveEventParams(raw RawInput) EventParams {
	return EventParams{
		CollectiveSlug: raw.Get("collectiveSlug"),
		EventSlug:      raw.Get("eventSlug"),
	}
}

// TierLink is a ticket tier with its order page
type TierLink struct {
	Tier domain.Tier `json:"tier"`
	Href string      `json:"href"`
}

// EventView is the view model of the event page
type EventView struct {
	Params   EventParams        `json:"params"`
	Event    *domain.Collective `json:"event"`
	Tiers    []TierLink         `json:"tiers"`
	EditHref string             `json:"editHref,omitempty"`
}

// EventPage shows one event with its tickets
type EventPage struct {
	base
	params EventParams
	event  *domain.Collective
}

// NewEvent builds the event controller
func NewEvent(deps Deps, raw RawInput) Controller {
	return &EventPage{
		base:   newBase(deps, routes.PageEvent),
		params: DeriveEventParams(raw),
	}
}

func (e *EventPage) Load(ctx context.Context) error {
	return e.lc.Load(ctx, func(ctx context.Context) error {
		event, err := e.deps.Backend.Event(ctx, e.params.EventSlug)
		if err != nil {
			return fmt.Errorf("failed to load event %q: %w", e.params.EventSlug, err)
		}
		e.event = event
		return nil
	})
}

func (e *EventPage) View() View {
	if e.event == nil {
		return View{Template: "event"}
	}
	data := EventView{
		Params: e.params,
		Event:  e.event,
		Tiers:  make([]TierLink, 0, len(e.event.Tiers)),
		EditHref: e.href(routes.PageEditEvent, map[string]string{
			"collectiveSlug": e.params.CollectiveSlug,
			"eventSlug":      e.params.EventSlug,
		}),
	}
	for _, t := range e.event.Tiers {
		data.Tiers = append(data.Tiers, TierLink{
			Tier: t,
			Href: e.href(routes.PageCreateEventOrder, map[string]string{
				"collectiveSlug": e.params.CollectiveSlug,
				"eventSlug":      e.params.EventSlug,
				"TierId":         strconv.Itoa(t.ID),
			}),
		})
	}
	return View{Template: "event", Title: e.event.Name, Data: data}
}
