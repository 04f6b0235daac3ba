package page

import (
	"context"
	"fmt"
	"strings"

	"github.com/opencollective/frontend/internal/domain"
	"github.com/opencollective/frontend/internal/routes"
)

const (
	MsgEventCreated = "Event created"
	MsgEventSaved   = "Event saved"
	MsgEventError   = "An error occured 😳. The event could not be saved. Please try again in a few."
)

// EventFormView is the view model of the create and edit event pages
type EventFormView struct {
	Parent *domain.Collective `json:"parent"`
	Event  *domain.Collective `json:"event,omitempty"`
	Edit   bool               `json:"edit"`
}

// EventEditor creates an event under a collective, or edits an existing one
type EventEditor struct {
	base
	collectiveSlug string
	eventSlug      string
	parent         *domain.Collective
	event          *domain.Collective
}

// NewCreateEvent builds the create event controller
func NewCreateEvent(deps Deps, raw RawInput) Controller {
	return &EventEditor{
		base:           newBase(deps, routes.PageCreateEvent),
		collectiveSlug: raw.Get("collectiveSlug"),
	}
}

// NewEditEvent builds the edit event controller
func NewEditEvent(deps Deps, raw RawInput) Controller {
	return &EventEditor{
		base:           newBase(deps, routes.PageEditEvent),
		collectiveSlug: raw.Get("collectiveSlug"),
		eventSlug:      raw.Get("eventSlug"),
	}
}

func (e *EventEditor) editing() bool {
	return e.eventSlug != ""
}

func (e *EventEditor) Load(ctx context.Context) error {
	return e.lc.Load(ctx, func(ctx context.Context) error {
		if e.editing() {
			event, err := e.deps.Backend.Event(ctx, e.eventSlug)
			if err != nil {
				return fmt.Errorf("failed to load event %q: %w", e.eventSlug, err)
			}
			e.event = event
			e.parent = event.ParentCollective
			if e.parent != nil {
				return nil
			}
		}
		parent, err := e.deps.Backend.Collective(ctx, e.collectiveSlug)
		if err != nil {
			return fmt.Errorf("failed to load collective %q: %w", e.collectiveSlug, err)
		}
		e.parent = parent
		return nil
	})
}

func (e *EventEditor) View() View {
	title := "Create a new event"
	if e.editing() {
		title = "Edit event"
	}
	return View{
		Template: "eventform",
		Title:    title,
		Data:     EventFormView{Parent: e.parent, Event: e.event, Edit: e.editing()},
	}
}

func (e *EventEditor) NewForm() interface{} {
	return &EventForm{}
}

// EventInput assembles the createEvent/editEvent payload
func (e *EventEditor) EventInput(f *EventForm) domain.EventInput {
	input := domain.EventInput{
		Slug:            strings.TrimSpace(f.Slug),
		Name:            strings.TrimSpace(f.Name),
		Description:     f.Description,
		LongDescription: f.LongDescription,
		StartsAt:        f.StartsAt,
		EndsAt:          f.EndsAt,
		Timezone:        f.Timezone,
	}
	if f.LocationName != "" || f.LocationAddress != "" {
		input.Location = &domain.Location{Name: f.LocationName, Address: f.LocationAddress}
	}
	if e.event != nil {
		input.ID = e.event.ID
		if input.Slug == "" {
			input.Slug = e.event.Slug
		}
	}
	if e.parent != nil {
		input.ParentCollectiveID = e.parent.ID
	}
	return input
}

func (e *EventEditor) Submit(ctx context.Context, form interface{}) (*Redirect, error) {
	f, ok := form.(*EventForm)
	if !ok {
		return nil, fmt.Errorf("unexpected event form %T", form)
	}
	return e.lc.Submit(ctx, MsgEventError, func(ctx context.Context) (Submission, error) {
		input := e.EventInput(f)

		var saved *domain.Collective
		var err error
		msg := MsgEventCreated
		if e.editing() {
			saved, err = e.deps.Backend.EditEvent(ctx, input)
			msg = MsgEventSaved
		} else {
			saved, err = e.deps.Backend.CreateEvent(ctx, input)
		}
		if err != nil {
			return Submission{}, err
		}

		return Submission{
			Redirect: Redirect{
				Route: routes.PageEvent,
				Params: map[string]string{
					"collectiveSlug": e.collectiveSlug,
					"eventSlug":      saved.Slug,
				},
				ScrollTop: true,
			},
			Message: msg,
		}, nil
	})
}
