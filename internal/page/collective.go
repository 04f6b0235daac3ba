package page

import (
	"context"
	"fmt"

	"github.com/opencollective/frontend/internal/domain"
	"github.com/opencollective/frontend/internal/routes"
)

// Order statuses reported back by the checkout
const (
	OrderStatusPending = "PENDING"
	OrderStatusPaid    = "PAID"
	OrderStatusActive  = "ACTIVE"
	OrderStatusError   = "ERROR"
)

// CollectiveParams are the typed parameters of the collective page. The
// order fields are set when the checkout redirects here.
type CollectiveParams struct {
	Slug              string `json:"slug"`
	Status            string `json:"status,omitempty"`
	OrderID           int    `json:"OrderId,omitempty"`
	TierID            int    `json:"TierId,omitempty"`
	TotalAmount       int    `json:"totalAmount,omitempty"`
	PaymentMethodType string `json:"paymentMethodType,omitempty"`
}

// DeriveCollectiveParams coerces the collective page input
func DeriveCollectiveParams(raw RawInput) CollectiveParams {
	orderID, _ := parseInt(raw.Get("OrderId"))
	tierID, _ := parseInt(raw.Get("TierId"))
	total, _ := parseInt(raw.Get("totalAmount"))
	return CollectiveParams{
		Slug:              raw.Get("slug"),
		Status:            Sanitize(raw.Get("status")),
		OrderID:           orderID,
		TierID:            tierID,
		TotalAmount:       max(total, 0),
		PaymentMethodType: Sanitize(raw.Get("paymentMethodType")),
	}
}

// OrderBanner reports the outcome of the order that led to the page
type OrderBanner struct {
	Status  string `json:"status"`
	OrderID int    `json:"orderId"`
	Message string `json:"message"`
	Error   bool   `json:"error"`
}

// CollectiveView is the view model of the collective page
type CollectiveView struct {
	Collective     *domain.Collective `json:"collective"`
	Banner         *OrderBanner       `json:"banner,omitempty"`
	ContributeHref string             `json:"contributeHref,omitempty"`
	EventsHref     string             `json:"eventsHref,omitempty"`
	TierHrefs      map[int]string     `json:"tierHrefs,omitempty"`
}

// CollectivePage shows a collective
type CollectivePage struct {
	base
	params     CollectiveParams
	collective *domain.Collective
}

// NewCollective builds the collective controller
func NewCollective(deps Deps, raw RawInput) Controller {
	return &CollectivePage{
		base:   newBase(deps, routes.PageCollective),
		params: DeriveCollectiveParams(raw),
	}
}

// Params returns the derived parameters
func (c *CollectivePage) Params() CollectiveParams {
	return c.params
}

func (c *CollectivePage) Load(ctx context.Context) error {
	return c.lc.Load(ctx, func(ctx context.Context) error {
		collective, err := c.deps.Backend.Collective(ctx, c.params.Slug)
		if err != nil {
			return fmt.Errorf("failed to load collective %q: %w", c.params.Slug, err)
		}
		c.collective = collective
		return nil
	})
}

// Banner returns the order banner, nil when the page was not reached from
// the checkout
func (c *CollectivePage) Banner() *OrderBanner {
	if c.params.Status == "" {
		return nil
	}
	b := &OrderBanner{Status: c.params.Status, OrderID: c.params.OrderID}
	switch c.params.Status {
	case OrderStatusPending:
		b.Message = "Your order is pending. We will let you know once it has been processed."
	case OrderStatusError:
		b.Message = "There was a problem processing your order."
		b.Error = true
	default:
		b.Message = "Thank you for your contribution!"
	}
	return b
}

func (c *CollectivePage) View() View {
	if c.collective == nil {
		return View{Template: "collective"}
	}
	data := CollectiveView{
		Collective: c.collective,
		Banner:     c.Banner(),
		ContributeHref: c.href(routes.PageCreateOrder, map[string]string{
			"collectiveSlug": c.collective.Slug,
			"verb":           "donate",
		}),
		EventsHref: c.href(routes.PageEvents, map[string]string{"collectiveSlug": c.collective.Slug}),
		TierHrefs:  make(map[int]string, len(c.collective.Tiers)),
	}
	for _, t := range c.collective.Tiers {
		data.TierHrefs[t.ID] = c.href(routes.PageOrderTier, map[string]string{
			"collectiveSlug": c.collective.Slug,
			"TierId":         fmt.Sprint(t.ID),
		})
	}
	return View{Template: "collective", Title: c.collective.Name, Data: data}
}
