package page

import (
	"context"
	stderrors "errors"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/opencollective/frontend/internal/domain"
	"github.com/opencollective/frontend/pkg/errors"
)

// ErrSubmissionInFlight is returned when a page instance is submitted again
// while a previous submission has not completed.
var ErrSubmissionInFlight = stderrors.New("page: submission already in flight")

// Result is the banner shown after a submission. Exactly one of Success and
// Error is set once a submission completed.
type Result struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

func succeeded(msg string) Result { return Result{Success: msg} }
func failed(msg string) Result    { return Result{Error: msg} }

// IsZero reports whether no submission completed yet
func (r Result) IsZero() bool {
	return r.Success == "" && r.Error == ""
}

// Redirect is where the browser goes after a successful submission: either a
// whole-context navigation to an external URL or an in-app route transition.
type Redirect struct {
	External  string            `json:"external,omitempty"`
	Route     string            `json:"route,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	ScrollTop bool              `json:"scrollTop,omitempty"`
}

// IsExternal reports whether the redirect leaves the site
func (r Redirect) IsExternal() bool {
	return r.External != ""
}

// Submission is what a successful submit callback hands back
type Submission struct {
	Redirect Redirect
	Message  string
}

// Lifecycle drives a page controller through
// Initializing → Loading → {Ready, Error} and
// Ready → Submitting → {SubmittedSuccess, SubmittedError} → Submitting.
type Lifecycle struct {
	mu      sync.Mutex
	state   domain.PageState
	result  Result
	loadErr error
	acquire func() (release func(), ok bool)
	logger  *zap.Logger
}

// NewLifecycle starts a lifecycle in the Initializing state. guard may be nil,
// in which case only this instance is protected against overlapping submits.
func NewLifecycle(guard *InstanceGuard, formID string, logger *zap.Logger) *Lifecycle {
	l := &Lifecycle{
		state:  domain.PageStateInitializing,
		logger: logger,
	}
	if guard != nil && formID != "" {
		l.acquire = func() (func(), bool) { return guard.TryAcquire(formID) }
	} else {
		sem := semaphore.NewWeighted(1)
		l.acquire = func() (func(), bool) {
			if !sem.TryAcquire(1) {
				return nil, false
			}
			return func() { sem.Release(1) }, true
		}
	}
	return l
}

// State returns the current state
func (l *Lifecycle) State() domain.PageState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Result returns the current submission result
func (l *Lifecycle) Result() Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.result
}

// LoadError returns the error that moved the page to the Error state
func (l *Lifecycle) LoadError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadErr
}

func (l *Lifecycle) transition(to domain.PageState) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.state.CanTransitionTo(to) {
		return &errors.ErrInvalidStateTransition{From: l.state, To: to}
	}
	l.state = to
	return nil
}

// Load runs fetch once. A failure is terminal for this instance: the page
// shows its error view and nothing retries.
func (l *Lifecycle) Load(ctx context.Context, fetch func(ctx context.Context) error) error {
	if err := l.transition(domain.PageStateLoading); err != nil {
		return err
	}

	if err := fetch(ctx); err != nil {
		l.mu.Lock()
		l.loadErr = err
		l.mu.Unlock()
		if terr := l.transition(domain.PageStateError); terr != nil {
			return terr
		}
		return err
	}

	return l.transition(domain.PageStateReady)
}

// Submit runs submit unless another submission of the same page instance is
// in flight. Failures of submit are never returned: they become the
// SubmittedError state with a display message. The returned error only
// reports lifecycle misuse.
func (l *Lifecycle) Submit(ctx context.Context, fallback string, submit func(ctx context.Context) (Submission, error)) (*Redirect, error) {
	release, ok := l.acquire()
	if !ok {
		return nil, ErrSubmissionInFlight
	}
	defer release()

	if err := l.transition(domain.PageStateSubmitting); err != nil {
		return nil, err
	}

	sub, err := submit(ctx)
	if err != nil {
		l.logger.Warn("Submission failed", zap.Error(err))
		l.mu.Lock()
		l.result = failed(ErrorMessage(err, fallback))
		l.mu.Unlock()
		return nil, l.transition(domain.PageStateSubmittedError)
	}

	l.mu.Lock()
	l.result = succeeded(sub.Message)
	l.mu.Unlock()
	if err := l.transition(domain.PageStateSubmittedSuccess); err != nil {
		return nil, err
	}
	return &sub.Redirect, nil
}

// userError is implemented by failures whose message is written for the
// visitor, such as errors returned by the API itself
type userError interface {
	UserMessage() string
}

// ErrorMessage turns a submission failure into the message shown to the
// user, without the transport prefixes. Only messages coming from the API
// are shown; anything else (network failures, decoding errors) gets fallback.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var msg string
	var ue userError
	switch raw := err.Error(); {
	case stderrors.As(err, &ue):
		msg = ue.UserMessage()
	case strings.HasPrefix(raw, "GraphQL error: "), strings.HasPrefix(raw, "Error:"):
		msg = raw
	default:
		return fallback
	}

	msg = strings.ReplaceAll(msg, "GraphQL error: ", "")
	msg = strings.Replace(msg, "Error:", "", 1)
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return fallback
	}
	return msg
}

// InstanceGuard serializes submissions of the same rendered form across
// requests, keyed by the form id embedded in the page.
type InstanceGuard struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

// NewInstanceGuard creates an empty guard
func NewInstanceGuard() *InstanceGuard {
	return &InstanceGuard{sems: make(map[string]*semaphore.Weighted)}
}

// TryAcquire reserves the form id. It fails when a submission holding the
// same id has not released it yet.
func (g *InstanceGuard) TryAcquire(id string) (func(), bool) {
	g.mu.Lock()
	sem, ok := g.sems[id]
	if !ok {
		sem = semaphore.NewWeighted(1)
		g.sems[id] = sem
	}
	g.mu.Unlock()

	if !sem.TryAcquire(1) {
		return nil, false
	}
	return func() {
		g.mu.Lock()
		if g.sems[id] == sem {
			delete(g.sems, id)
		}
		g.mu.Unlock()
		sem.Release(1)
	}, true
}

// IsValidURL reports whether s is an absolute http(s) URL
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
