package page

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/opencollective/frontend/internal/domain"
	"github.com/opencollective/frontend/internal/routes"
	"github.com/opencollective/frontend/internal/storage"
)

const (
	MsgOrderSuccess         = "Order processed successfully"
	MsgOrderSuccessRedirect = "Order processed successfully. Redirecting you to %s..."
	MsgOrderError           = "An error occured 😳. The order didn't go through. Please try again in a few."

	defaultTierButton      = "donate"
	defaultTierDescription = "Thank you for your kind donation 🙏"
)

// defaultPresets are offered only when the URL did not fix an amount
var defaultPresets = []int{1000, 5000, 10000}

var defaultTierNames = map[domain.OrderType]string{
	domain.OrderTypeContribution: "contribution",
	domain.OrderTypePayment:      "payment",
	domain.OrderTypeDonation:     "Contribute",
}

// CheckoutParams are the typed parameters of the checkout pages
type CheckoutParams struct {
	Slug        string           `json:"slug"`
	TierID      int              `json:"TierId,omitempty"`
	Quantity    int              `json:"quantity"`
	TotalAmount int              `json:"totalAmount"`
	Interval    domain.Interval  `json:"interval,omitempty"`
	Description string           `json:"description,omitempty"`
	Verb        string           `json:"verb,omitempty"`
	DefaultType domain.OrderType `json:"defaultType"`
	Redeem      bool             `json:"redeem,omitempty"`
	Redirect    string           `json:"redirect,omitempty"`
}

// DeriveCheckoutParams coerces the raw input of createOrder, orderTier and
// createEventOrder. The amount path segment is in major units.
func DeriveCheckoutParams(raw RawInput) CheckoutParams {
	slug := raw.Get("eventSlug")
	if slug == "" {
		slug = raw.Get("collectiveSlug")
	}

	total, ok := parseInt(raw.Get("totalAmount"))
	if !ok || total == 0 {
		total = 0
		if amount, ok := parseInt(raw.Get("amount")); ok {
			total = amount * 100
		}
	}
	if total < 0 {
		total = 0
	}

	tierID, _ := parseInt(raw.Get("TierId"))

	return CheckoutParams{
		Slug:        slug,
		TierID:      tierID,
		Quantity:    max(intOr(raw.Get("quantity"), 1), 1),
		TotalAmount: total,
		Interval:    domain.ParseInterval(raw.Get("interval")),
		Description: Sanitize(decodeComponent(raw.Get("description"))),
		Verb:        raw.Get("verb"),
		DefaultType: domain.OrderTypeForVerb(raw.Get("verb")),
		Redeem:      parseBool(raw.Get("redeem")),
		Redirect:    raw.Get("redirect"),
	}
}

// CheckoutView is the view model of the checkout pages
type CheckoutView struct {
	Params       CheckoutParams     `json:"params"`
	Collective   *domain.Collective `json:"collective"`
	Draft        domain.OrderDraft  `json:"order"`
	TierName     string             `json:"tierName"`
	MatchingFund string             `json:"matchingFund,omitempty"`
	LoggedIn     bool               `json:"loggedIn"`
	BackHref     string             `json:"backHref,omitempty"`
}

// Checkout creates an order for a collective, a tier or an event ticket
type Checkout struct {
	base
	params       CheckoutParams
	collective   *domain.Collective
	draft        domain.OrderDraft
	matchingFund string
	referral     int
}

// NewCheckout builds the checkout controller
func NewCheckout(deps Deps, raw RawInput) Controller {
	return &Checkout{
		base:   newBase(deps, "checkout"),
		params: DeriveCheckoutParams(raw),
	}
}

// Params returns the derived parameters
func (c *Checkout) Params() CheckoutParams {
	return c.params
}

// Draft returns the order being edited
func (c *Checkout) Draft() domain.OrderDraft {
	return c.draft
}

// MatchingFund returns the matching fund shown with the form
func (c *Checkout) MatchingFund() string {
	return c.matchingFund
}

func (c *Checkout) Load(ctx context.Context) error {
	return c.lc.Load(ctx, func(ctx context.Context) error {
		collective, err := c.deps.Backend.Collective(ctx, c.params.Slug)
		if err != nil {
			return fmt.Errorf("failed to load collective %q: %w", c.params.Slug, err)
		}
		c.collective = collective
		c.draft = c.newDraft()
		c.mergeLocalState(ctx)
		return nil
	})
}

func (c *Checkout) newDraft() domain.OrderDraft {
	draft := domain.OrderDraft{
		Quantity:    c.params.Quantity,
		Interval:    c.params.Interval,
		Description: c.params.Description,
	}
	if c.params.TotalAmount > 0 {
		total := c.params.TotalAmount
		draft.TotalAmount = &total
	}

	if tier, ok := c.collective.TierByID(c.params.TierID); ok && c.params.TierID != 0 {
		draft.Tier = tier
		return draft
	}

	description := c.params.Description
	if description == "" {
		description = defaultTierDescription
	}
	draft.Tier = domain.Tier{
		Type:        c.params.DefaultType,
		Name:        defaultTierNames[c.params.DefaultType],
		Currency:    c.collective.Currency,
		Interval:    c.params.Interval,
		Button:      defaultTierButton,
		Description: description,
	}
	if draft.TotalAmount == nil {
		draft.Tier.Presets = append([]int(nil), defaultPresets...)
	}
	return draft
}

// mergeLocalState reads the visitor's referral and matching fund. The
// visitor store takes precedence over the collective settings. Store
// failures only lose the extra state.
func (c *Checkout) mergeLocalState(ctx context.Context) {
	if store := c.deps.Store; store != nil {
		if v, ok, err := store.Get(ctx, storage.KeyReferral); err != nil {
			c.deps.Logger.Warn("Failed to read referral", zap.Error(err))
		} else if ok {
			c.referral, _ = strconv.Atoi(strings.TrimSpace(v))
		}
		if v, ok, err := store.Get(ctx, storage.KeyMatchingFund); err != nil {
			c.deps.Logger.Warn("Failed to read matching fund", zap.Error(err))
		} else if ok && v != "" {
			c.matchingFund = v
		}
	}
	if c.matchingFund == "" {
		c.matchingFund = c.collective.MatchingFund()
	}
}

// TierName is the singular name used in the page heading
func (c *Checkout) TierName() string {
	if name := strings.TrimSuffix(c.draft.Tier.Name, "s"); name != "" {
		return name
	}
	return "backer"
}

func (c *Checkout) View() View {
	v := View{Template: "checkout", Data: CheckoutView{Params: c.params}}
	if c.collective == nil {
		return v
	}
	v.Title = "Contribute - " + c.collective.Name
	v.Data = CheckoutView{
		Params:       c.params,
		Collective:   c.collective,
		Draft:        c.draft,
		TierName:     c.TierName(),
		MatchingFund: c.matchingFund,
		LoggedIn:     c.deps.User != nil,
		BackHref:     c.href(routes.PageCollective, map[string]string{"slug": c.collective.Slug}),
	}
	return v
}

func (c *Checkout) NewForm() interface{} {
	return &OrderForm{}
}

func (c *Checkout) Submit(ctx context.Context, form interface{}) (*Redirect, error) {
	f, ok := form.(*OrderForm)
	if !ok {
		return nil, fmt.Errorf("unexpected checkout form %T", form)
	}
	return c.lc.Submit(ctx, MsgOrderError, func(ctx context.Context) (Submission, error) {
		order := c.OrderInput(f)
		created, err := c.deps.Backend.CreateOrder(ctx, order)
		if err != nil {
			return Submission{}, err
		}
		return c.submission(order, created), nil
	})
}

// OrderInput assembles the createOrder payload from the draft and the form
func (c *Checkout) OrderInput(f *OrderForm) domain.OrderInput {
	order := domain.OrderInput{
		Quantity:      c.draft.Quantity,
		Interval:      c.draft.Interval,
		Description:   c.draft.Description,
		PublicMessage: f.PublicMessage,
		Collective:    domain.Ref{ID: c.collective.ID, Slug: c.collective.Slug},
		PaymentMethod: domain.ProjectPaymentMethod(f.PaymentMethod),
	}
	if f.Quantity > 0 {
		order.Quantity = f.Quantity
	}
	if f.Interval != "" {
		order.Interval = domain.ParseInterval(f.Interval)
	}

	switch {
	case f.TotalAmount > 0:
		order.TotalAmount = f.TotalAmount
	case c.draft.TotalAmount != nil:
		order.TotalAmount = *c.draft.TotalAmount
	default:
		order.TotalAmount = c.draft.Tier.Amount * order.Quantity
	}

	if c.draft.Tier.ID != 0 {
		order.Tier = &domain.TierRef{ID: c.draft.Tier.ID}
	}
	if c.referral > 0 {
		order.Referral = &domain.Ref{ID: c.referral}
	}
	// A logged in user is identified by the session token.
	if c.deps.User == nil && f.Email != "" {
		order.User = &domain.UserInput{
			Email:     f.Email,
			FirstName: f.FirstName,
			LastName:  f.LastName,
		}
	}
	return order
}

func (c *Checkout) submission(order domain.OrderInput, created *domain.Order) Submission {
	if IsValidURL(c.params.Redirect) {
		target, _ := url.Parse(c.params.Redirect)
		q := target.Query()
		q.Set("transactionid", strconv.Itoa(created.FirstTransactionID()))
		q.Set("status", created.Status)
		target.RawQuery = q.Encode()
		return Submission{
			Redirect: Redirect{External: target.String()},
			Message:  fmt.Sprintf(MsgOrderSuccessRedirect, target.Hostname()),
		}
	}

	params := map[string]string{
		"slug":           created.FromCollective.Slug,
		"status":         created.Status,
		"CollectiveId":   strconv.Itoa(order.Collective.ID),
		"collectiveType": string(c.collective.Type),
		"OrderId":        strconv.Itoa(created.ID),
		"totalAmount":    strconv.Itoa(order.TotalAmount),
	}
	if order.Tier != nil {
		params["TierId"] = strconv.Itoa(order.Tier.ID)
	}
	if order.PaymentMethod != nil {
		params["paymentMethodType"] = order.PaymentMethod.Type
	}
	return Submission{
		Redirect: Redirect{Route: routes.PageCollective, Params: params, ScrollTop: true},
		Message:  MsgOrderSuccess,
	}
}
