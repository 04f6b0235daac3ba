package errors

import (
	"fmt"

	"github.com/opencollective/frontend/internal/domain"
)

// ErrNotFound is returned when the remote API has no entity for the requested identifier
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrInvalidStateTransition is returned when a page lifecycle is driven out of order
type ErrInvalidStateTransition struct {
	From domain.PageState
	To   domain.PageState
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrNoRoute is returned when a path or a page name has no entry in a route table
type ErrNoRoute struct {
	Path string
	Name string
}

func (e *ErrNoRoute) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("no route named %q", e.Name)
	}
	return fmt.Sprintf("no route matches %s", e.Path)
}

// ErrMissingParam is returned when reversing a route without one of its required parameters
type ErrMissingParam struct {
	Route string
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("route %s requires param %s", e.Route, e.Param)
}
