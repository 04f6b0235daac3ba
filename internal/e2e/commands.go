package e2e

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/opencollective/frontend/internal/backend"
	"github.com/opencollective/frontend/internal/domain"
)

const stripeIframeSelector = ".__PrivateStripeElement iframe"

// CardParams is the credit card typed into the Stripe element. Empty fields
// are left untouched.
type CardParams struct {
	CreditCardNumber string
	ExpirationDate   string
	CVCCode          string
	PostalCode       string
}

// DefaultCard is Stripe's always accepted test card
var DefaultCard = CardParams{
	CreditCardNumber: "4242424242424242",
	ExpirationDate:   "1250",
	CVCCode:          "123",
	PostalCode:       "42222",
}

// Finder is satisfied by both *rod.Page and *rod.Element
type Finder interface {
	Element(selector string) (*rod.Element, error)
}

// Login signs in an existing account, DefaultTestUserEmail when email is
// empty, and lands on redirect. Test accounts get the signin link straight
// from the API.
func (s *Session) Login(ctx context.Context, email, redirect string) (backend.SigninUser, error) {
	if email == "" {
		email = DefaultTestUserEmail
	}
	user := backend.SigninUser{Email: email}
	return user, s.signin(ctx, user, redirect)
}

// Signup creates an account, with a random email unless one is given, and
// signs it in
func (s *Session) Signup(ctx context.Context, user backend.SigninUser, redirect string) (backend.SigninUser, error) {
	if user.Email == "" {
		user.Email = RandomEmail()
	}
	if redirect == "" {
		redirect = "/"
	}
	return user, s.signin(ctx, user, redirect)
}

func (s *Session) signin(ctx context.Context, user backend.SigninUser, redirect string) error {
	link, err := s.API.Signin(ctx, user, redirect)
	if err != nil {
		return err
	}
	if link == "" {
		return fmt.Errorf("no signin link returned for %s, is it a test account?", user.Email)
	}
	return s.Visit(ctx, link)
}

// CreateCollective creates a "TestOrg" collective administered by email
// (DefaultTestUserEmail when empty)
func CreateCollective(ctx context.Context, api *backend.Client, typ domain.CollectiveType, email string) (*domain.Collective, error) {
	if typ == "" {
		typ = domain.CollectiveTypeOrganization
	}
	if email == "" {
		email = DefaultTestUserEmail
	}

	link, err := api.Signin(ctx, backend.SigninUser{Email: email}, "")
	if err != nil {
		return nil, err
	}
	token, err := backend.TokenFromRedirect(link)
	if err != nil {
		return nil, err
	}

	return api.WithToken(token).CreateCollective(ctx, domain.CollectiveInput{
		Name:  "TestOrg",
		Type:  typ,
		Tiers: []domain.Tier{},
	})
}

// AddCreditCardToCollective saves DefaultCard as a payment method of the
// collective
func (s *Session) AddCreditCardToCollective(ctx context.Context, collectiveSlug string) error {
	if _, err := s.Login(ctx, "", "/"+collectiveSlug+"/edit/payment-methods"); err != nil {
		return err
	}

	page := s.Page.Context(ctx).Timeout(s.timeout)
	if err := click(page, ".editPaymentMethodsActions button"); err != nil {
		return err
	}
	if err := s.FillStripeInput(ctx, nil, DefaultCard); err != nil {
		return err
	}
	if err := click(page, `button[type="submit"]`); err != nil {
		return err
	}
	return page.WaitIdle(2 * time.Second)
}

// FillStripeInput types card into the Stripe element found in container, or
// anywhere on the page when container is nil
func (s *Session) FillStripeInput(ctx context.Context, container Finder, card CardParams) error {
	if container == nil {
		container = s.Page.Context(ctx).Timeout(s.timeout)
	}

	iframe, err := container.Element(stripeIframeSelector)
	if err != nil {
		return fmt.Errorf("stripe element not found: %w", err)
	}
	frame, err := iframe.Frame()
	if err != nil {
		return fmt.Errorf("failed to enter stripe iframe: %w", err)
	}
	inputs, err := frame.Elements("input")
	if err != nil {
		return fmt.Errorf("failed to list stripe inputs: %w", err)
	}

	for i, value := range card.fields() {
		if value == "" {
			continue
		}
		if i >= len(inputs) {
			return fmt.Errorf("stripe element has %d inputs, need %d", len(inputs), i+1)
		}
		if err := inputs[i].SelectAllText(); err != nil {
			return err
		}
		if err := inputs[i].Input(value); err != nil {
			return fmt.Errorf("failed to type stripe input %d: %w", i, err)
		}
	}
	return nil
}

// fields maps the card onto the element's inputs; input 0 is Stripe's hidden one
func (c CardParams) fields() map[int]string {
	return map[int]string{
		1: c.CreditCardNumber,
		2: c.ExpirationDate,
		3: c.CVCCode,
		4: c.PostalCode,
	}
}

// CheckStepsProgress verifies the steps of a multi-step form: each enabled
// step must lack the "disabled" class, each disabled step must carry it
func (s *Session) CheckStepsProgress(ctx context.Context, enabled, disabled []string) error {
	page := s.Page.Context(ctx).Timeout(s.timeout)
	classes := make(map[string]string, len(enabled)+len(disabled))
	for _, step := range append(append([]string(nil), enabled...), disabled...) {
		el, err := page.Element(".step-" + step)
		if err != nil {
			return fmt.Errorf("step %q not found: %w", step, err)
		}
		class, err := el.Attribute("class")
		if err != nil {
			return err
		}
		if class != nil {
			classes[step] = *class
		}
	}
	return checkSteps(classes, enabled, disabled)
}

func checkSteps(classes map[string]string, enabled, disabled []string) error {
	var problems []string
	for _, step := range enabled {
		if hasClass(classes[step], "disabled") {
			problems = append(problems, fmt.Sprintf("step %q is disabled", step))
		}
	}
	for _, step := range disabled {
		if !hasClass(classes[step], "disabled") {
			problems = append(problems, fmt.Sprintf("step %q is enabled", step))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("unexpected steps progress: %s", strings.Join(problems, ", "))
	}
	return nil
}

func hasClass(classAttr, class string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == class {
			return true
		}
	}
	return false
}

// FillInputField types value into the input of the named form field
func (s *Session) FillInputField(ctx context.Context, fieldName, value string) error {
	el, err := s.Page.Context(ctx).Timeout(s.timeout).Element(".inputField." + fieldName + " input")
	if err != nil {
		return fmt.Errorf("input field %q not found: %w", fieldName, err)
	}
	return el.Input(value)
}

func click(page *rod.Page, selector string) error {
	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("%s not found: %w", selector, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}
