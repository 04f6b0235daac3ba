package handlers

import (
	"bytes"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opencollective/frontend/internal/api/middleware"
	"github.com/opencollective/frontend/internal/domain"
	"github.com/opencollective/frontend/internal/metrics"
	"github.com/opencollective/frontend/internal/page"
	"github.com/opencollective/frontend/internal/routes"
	"github.com/opencollective/frontend/internal/view"
	"github.com/opencollective/frontend/pkg/errors"
)

const (
	msgLoadFailed       = "We could not load this page. Please try again in a few."
	msgSubmissionBusy   = "Your previous submission is still being processed."
	formIDHeader        = "X-Form-Id"
	formIDField         = "formId"
	defaultRedirectPath = "/"
)

// PageHandler serves the pages of the route table
type PageHandler struct {
	Registry *page.Registry
	Routes   *routes.Table
	Assets   *routes.Table
	Renderer *view.Renderer
	Metrics  *metrics.Metrics
	Guard    *page.InstanceGuard

	// Backend serves requests without a session
	Backend               middleware.Backend
	Host                  string
	DefaultCollectiveSlug string

	Logger *zap.Logger
}

// SubmitResponse is the JSON answer to a successful submission
type SubmitResponse struct {
	Location string        `json:"location"`
	Redirect page.Redirect `json:"redirect"`
	Result   page.Result   `json:"result"`
}

func (h *PageHandler) controller(c *gin.Context, m routes.Match, formID string) (page.Controller, error) {
	deps := page.Deps{
		Backend:               h.Backend,
		Routes:                h.Routes,
		Assets:                h.Assets,
		Guard:                 h.Guard,
		FormID:                formID,
		Host:                  h.Host,
		DefaultCollectiveSlug: h.DefaultCollectiveSlug,
		Logger:                h.Logger.With(zap.String("request_id", middleware.GetRequestID(c))),
	}
	if b, ok := middleware.GetBackendFromContext(c); ok {
		deps.Backend = b
	}
	if user, ok := middleware.GetUserFromContext(c); ok {
		deps.User = user
	}
	if store, ok := middleware.GetStoreFromContext(c); ok {
		deps.Store = store
	}
	return h.Registry.New(m.Name, deps, page.RawInput(m.Params()))
}

// Render handles GET: load the page data and render the view
func (h *PageHandler) Render(c *gin.Context, m routes.Match) {
	formID := uuid.New().String()
	ctl, err := h.controller(c, m, formID)
	if err != nil {
		h.NotFound(c)
		return
	}

	if err := ctl.Load(c.Request.Context()); err != nil {
		h.loadFailed(c, m, err)
		return
	}
	h.respond(c, http.StatusOK, m, ctl, formID, nil)
}

// Submit handles POST: load the page, bind the form and run the submission.
// Success answers with a 303 to the next page, failure re-renders the form.
func (h *PageHandler) Submit(c *gin.Context, m routes.Match) {
	formID := c.PostForm(formIDField)
	if formID == "" {
		formID = c.GetHeader(formIDHeader)
	}
	if _, err := uuid.Parse(formID); err != nil {
		formID = uuid.New().String()
	}

	ctl, err := h.controller(c, m, formID)
	if err != nil {
		h.NotFound(c)
		return
	}
	sub, ok := ctl.(page.Submitter)
	if !ok {
		c.Header("Allow", "GET, HEAD")
		c.String(http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := c.Request.Context()
	if err := ctl.Load(ctx); err != nil {
		h.loadFailed(c, m, err)
		return
	}

	form := sub.NewForm()
	if err := c.ShouldBind(form); err != nil {
		h.recordSubmission(m.Name, metrics.OutcomeInvalid)
		h.respond(c, http.StatusUnprocessableEntity, m, ctl, formID, &page.Result{Error: page.ValidationMessage(err)})
		return
	}
	if mb, ok := form.(page.MapBinder); ok {
		mb.BindMap(c.PostFormMap)
	}

	redirect, err := sub.Submit(ctx, form)
	switch {
	case stderrors.Is(err, page.ErrSubmissionInFlight):
		h.recordSubmission(m.Name, metrics.OutcomeInFlight)
		h.respond(c, http.StatusConflict, m, ctl, formID, &page.Result{Error: msgSubmissionBusy})
		return
	case err != nil:
		h.Logger.Error("Submission failed", zap.String("page", m.Name), zap.Error(err))
		h.recordSubmission(m.Name, metrics.OutcomeError)
		h.respond(c, http.StatusInternalServerError, m, ctl, formID, &page.Result{Error: msgLoadFailed})
		return
	case redirect == nil:
		h.recordSubmission(m.Name, metrics.OutcomeError)
		h.respond(c, http.StatusUnprocessableEntity, m, ctl, formID, nil)
		return
	}

	h.recordSubmission(m.Name, metrics.OutcomeSuccess)
	location := h.location(*redirect)
	if wantsJSON(c) {
		c.JSON(http.StatusOK, SubmitResponse{
			Location: location,
			Redirect: *redirect,
			Result:   ctl.Lifecycle().Result(),
		})
		return
	}
	c.Redirect(http.StatusSeeOther, location)
}

// location turns a redirect into the URL the browser goes to next
func (h *PageHandler) location(r page.Redirect) string {
	if r.IsExternal() {
		return r.External
	}
	path, err := h.Routes.Reverse(r.Route, r.Params)
	if err != nil {
		h.Logger.Warn("Cannot build redirect", zap.String("route", r.Route), zap.Error(err))
		return defaultRedirectPath
	}
	return path
}

func (h *PageHandler) recordSubmission(pageName, outcome string) {
	if h.Metrics != nil {
		h.Metrics.RecordSubmission(pageName, outcome)
	}
}

func (h *PageHandler) respond(c *gin.Context, status int, m routes.Match, ctl page.Controller, formID string, override *page.Result) {
	v := ctl.View()
	data := view.PageData{
		Page:   m.Name,
		Title:  v.Title,
		Path:   c.Request.URL.RequestURI(),
		State:  string(ctl.Lifecycle().State()),
		FormID: formID,
		Result: ctl.Lifecycle().Result(),
		Data:   v.Data,
		Lang:   view.ParseAcceptLanguage(c.GetHeader("Accept-Language")),
	}
	if override != nil {
		data.Result = *override
	}
	h.write(c, status, v.Template, data)
}

func (h *PageHandler) loadFailed(c *gin.Context, m routes.Match, err error) {
	status := http.StatusInternalServerError
	msg := msgLoadFailed
	var notFound *errors.ErrNotFound
	if stderrors.As(err, &notFound) {
		status = http.StatusNotFound
		msg = "This " + notFound.Resource + " does not exist."
	} else {
		h.Logger.Error("Failed to load page", zap.String("page", m.Name), zap.Error(err))
	}

	h.write(c, status, view.TemplateError, view.PageData{
		Page:  m.Name,
		Title: "Error",
		Path:  c.Request.URL.RequestURI(),
		State: string(domain.PageStateError),
		Error: msg,
		Lang:  view.ParseAcceptLanguage(c.GetHeader("Accept-Language")),
	})
}

// NotFound renders the not found page
func (h *PageHandler) NotFound(c *gin.Context) {
	h.write(c, http.StatusNotFound, view.TemplateNotFound, view.PageData{
		Page:  "notfound",
		Title: "Page not found",
		Path:  c.Request.URL.Path,
		Lang:  view.ParseAcceptLanguage(c.GetHeader("Accept-Language")),
	})
}

func (h *PageHandler) write(c *gin.Context, status int, template string, data view.PageData) {
	if wantsJSON(c) {
		c.JSON(status, data)
		return
	}

	var buf bytes.Buffer
	if err := h.Renderer.Render(&buf, template, data); err != nil {
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
