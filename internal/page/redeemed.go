package page

import (
	"context"

	"go.uber.org/zap"

	"github.com/opencollective/frontend/internal/domain"
	"github.com/opencollective/frontend/internal/routes"
)

// Suggested collectives shown after redeeming a gift card: the open source
// host, by balance.
var redeemedSuggestions = domain.CollectivesQuery{
	HostCollectiveID: 11004,
	OrderBy:          "balance",
	OrderDirection:   "DESC",
	Limit:            12,
}

// RedeemedParams are the typed parameters of the redeemed page
type RedeemedParams struct {
	Amount      *float64 `json:"amount,omitempty"`
	Name        string   `json:"name"`
	EmitterSlug string   `json:"emitterSlug"`
	EmitterName string   `json:"emitterName"`
}

// DeriveRedeemedParams sanitizes every displayed value
func DeriveRedeemedParams(raw RawInput) RedeemedParams {
	return RedeemedParams{
		Amount:      parseNumber(raw.Get("amount")),
		Name:        Sanitize(raw.Get("name")),
		EmitterSlug: Sanitize(raw.Get("emitterSlug")),
		EmitterName: Sanitize(raw.Get("emitterName")),
	}
}

// RedeemedView is the view model of the redeemed page
type RedeemedView struct {
	Params      RedeemedParams      `json:"params"`
	EmitterHref string              `json:"emitterHref,omitempty"`
	Suggestions []domain.Collective `json:"suggestions"`
}

// Redeemed confirms a redeemed gift card
type Redeemed struct {
	base
	params      RedeemedParams
	suggestions []domain.Collective
}

// NewRedeemed builds the redeemed controller
func NewRedeemed(deps Deps, raw RawInput) Controller {
	return &Redeemed{
		base:   newBase(deps, routes.PageRedeemed),
		params: DeriveRedeemedParams(raw),
	}
}

// Params returns the derived parameters
func (r *Redeemed) Params() RedeemedParams {
	return r.params
}

// Load never fails: the page has no primary entity and the suggestions are
// optional.
func (r *Redeemed) Load(ctx context.Context) error {
	return r.lc.Load(ctx, func(ctx context.Context) error {
		suggestions, err := r.deps.Backend.Collectives(ctx, redeemedSuggestions)
		if err != nil {
			r.deps.Logger.Warn("Failed to load suggested collectives", zap.Error(err))
			return nil
		}
		r.suggestions = suggestions
		return nil
	})
}

func (r *Redeemed) View() View {
	data := RedeemedView{Params: r.params, Suggestions: r.suggestions}
	if data.Suggestions == nil {
		data.Suggestions = []domain.Collective{}
	}
	if r.params.EmitterSlug != "" {
		data.EmitterHref = r.href(routes.PageCollective, map[string]string{"slug": r.params.EmitterSlug})
	}
	return View{Template: "redeemed", Title: "Gift card redeemed", Data: data}
}
