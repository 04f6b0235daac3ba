package domain

import "strings"

// PageState represents the lifecycle state of a page controller
type PageState string

const (
	PageStateInitializing     PageState = "INITIALIZING"
	PageStateLoading          PageState = "LOADING"
	PageStateReady            PageState = "READY"
	PageStateError            PageState = "ERROR"
	PageStateSubmitting       PageState = "SUBMITTING"
	PageStateSubmittedSuccess PageState = "SUBMITTED_SUCCESS"
	PageStateSubmittedError   PageState = "SUBMITTED_ERROR"
)

// IsValid checks if the page state is valid
func (s PageState) IsValid() bool {
	switch s {
	case PageStateInitializing,
		PageStateLoading,
		PageStateReady,
		PageStateError,
		PageStateSubmitting,
		PageStateSubmittedSuccess,
		PageStateSubmittedError:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a state transition is valid
func (s PageState) CanTransitionTo(next PageState) bool {
	switch s {
	case PageStateInitializing:
		return next == PageStateLoading
	case PageStateLoading:
		return next == PageStateReady || next == PageStateError
	case PageStateReady, PageStateSubmittedError:
		return next == PageStateSubmitting
	case PageStateSubmitting:
		return next == PageStateSubmittedSuccess || next == PageStateSubmittedError
	case PageStateError, PageStateSubmittedSuccess:
		return false // Terminal states
	default:
		return false
	}
}

// Interval is the recurrence of a contribution
type Interval string

const (
	IntervalNone  Interval = ""
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

// ParseInterval lowercases s, drops a trailing "ly" and clamps the result to
// month, year or none.
func ParseInterval(s string) Interval {
	v := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "ly")
	switch Interval(v) {
	case IntervalMonth, IntervalYear:
		return Interval(v)
	default:
		return IntervalNone
	}
}

// OrderType is the type of a synthesized tier
type OrderType string

const (
	OrderTypeContribution OrderType = "CONTRIBUTION"
	OrderTypeDonation     OrderType = "DONATION"
	OrderTypePayment      OrderType = "PAYMENT"
)

// OrderTypeForVerb maps the verb of a checkout URL to the default tier type
func OrderTypeForVerb(verb string) OrderType {
	switch verb {
	case "pay":
		return OrderTypePayment
	case "donate":
		return OrderTypeDonation
	default:
		return OrderTypeContribution
	}
}

// CollectiveType is the kind of a collective account
type CollectiveType string

const (
	CollectiveTypeUser         CollectiveType = "USER"
	CollectiveTypeOrganization CollectiveType = "ORGANIZATION"
	CollectiveTypeCollective   CollectiveType = "COLLECTIVE"
	CollectiveTypeEvent        CollectiveType = "EVENT"
)

// IsValid checks if the collective type is valid
func (t CollectiveType) IsValid() bool {
	switch t {
	case CollectiveTypeUser, CollectiveTypeOrganization, CollectiveTypeCollective, CollectiveTypeEvent:
		return true
	default:
		return false
	}
}
