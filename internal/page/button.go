package page

import (
	"context"
	"fmt"
	"strings"

	"github.com/opencollective/frontend/internal/domain"
	"github.com/opencollective/frontend/internal/routes"
)

// ButtonView is the view model of the donate button page
type ButtonView struct {
	Collective *domain.Collective `json:"collective"`
	ScriptURL  string             `json:"scriptUrl"`
	ImageURL   string             `json:"imageUrl"`
	Snippet    string             `json:"snippet"`
}

// Button shows how to embed the donate button of a collective
type Button struct {
	base
	collectiveSlug string
	collective     *domain.Collective
}

// NewButton builds the button controller
func NewButton(deps Deps, raw RawInput) Controller {
	return &Button{
		base:           newBase(deps, routes.PageButton),
		collectiveSlug: raw.Get("collectiveSlug"),
	}
}

func (b *Button) Load(ctx context.Context) error {
	return b.lc.Load(ctx, func(ctx context.Context) error {
		collective, err := b.deps.Backend.Collective(ctx, b.collectiveSlug)
		if err != nil {
			return fmt.Errorf("failed to load collective %q: %w", b.collectiveSlug, err)
		}
		b.collective = collective
		return nil
	})
}

func (b *Button) asset(name string, params map[string]string) string {
	if b.deps.Assets == nil {
		return ""
	}
	path, err := b.deps.Assets.Reverse(name, params)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(b.deps.Host, "/") + path
}

// Snippet is the HTML to paste into a website
func (b *Button) Snippet() string {
	script := b.asset(routes.AssetDonateButtonScript, map[string]string{"collectiveSlug": b.collectiveSlug})
	return fmt.Sprintf(`<script src="%s" color="white"></script>`, script)
}

func (b *Button) View() View {
	data := ButtonView{
		Collective: b.collective,
		ScriptURL:  b.asset(routes.AssetDonateButtonScript, map[string]string{"collectiveSlug": b.collectiveSlug}),
		ImageURL: b.asset(routes.AssetDonateButtonImage, map[string]string{
			"collectiveSlug": b.collectiveSlug,
			"size":           "",
		}),
		Snippet: b.Snippet(),
	}
	title := "Donate button"
	if b.collective != nil {
		title = "Donate button - " + b.collective.Name
	}
	return View{Template: "button", Title: title, Data: data}
}
