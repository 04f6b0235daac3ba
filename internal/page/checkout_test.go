package page

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencollective/frontend/internal/backend"
	"github.com/opencollective/frontend/internal/config"
	"github.com/opencollective/frontend/internal/domain"
	"github.com/opencollective/frontend/internal/routes"
	"github.com/opencollective/frontend/internal/storage"
)

func TestDeriveCheckoutParams_TotalAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  RawInput
		want int
	}{
		{"amount in major units", RawInput{"amount": "25"}, 2500},
		{"nothing", RawInput{}, 0},
		{"total wins", RawInput{"totalAmount": "1234", "amount": "25"}, 1234},
		{"zero total falls back to amount", RawInput{"totalAmount": "0", "amount": "3"}, 300},
		{"leading digits", RawInput{"amount": "10usd"}, 1000},
		{"garbage", RawInput{"amount": "abc", "totalAmount": "x"}, 0},
		{"negative", RawInput{"totalAmount": "-5"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveCheckoutParams(tt.raw).TotalAmount)
		})
	}
}

func TestDeriveCheckoutParams(t *testing.T) {
	p := DeriveCheckoutParams(RawInput{
		"collectiveSlug": "webpack",
		"eventSlug":      "meetup",
		"TierId":         "7",
		"quantity":       "3",
		"interval":       "Monthly",
		"description":    "Hello%20%3Cb%3Eworld%3C%2Fb%3E",
		"verb":           "pay",
		"redeem":         "true",
		"redirect":       "https://example.com",
	})
	assert.Equal(t, "meetup", p.Slug)
	assert.Equal(t, 7, p.TierID)
	assert.Equal(t, 3, p.Quantity)
	assert.Equal(t, domain.IntervalMonth, p.Interval)
	assert.Equal(t, "Hello world", p.Description)
	assert.Equal(t, domain.OrderTypePayment, p.DefaultType)
	assert.True(t, p.Redeem)
	assert.Equal(t, "https://example.com", p.Redirect)

	p = DeriveCheckoutParams(RawInput{"collectiveSlug": "webpack", "quantity": "0", "interval": "weekly"})
	assert.Equal(t, "webpack", p.Slug)
	assert.Equal(t, 1, p.Quantity)
	assert.Equal(t, domain.IntervalNone, p.Interval)
	assert.Equal(t, domain.OrderTypeContribution, p.DefaultType)
	assert.False(t, p.Redeem)
}

func TestDeriveCheckoutParams_Idempotent(t *testing.T) {
	raw := RawInput{
		"collectiveSlug": "webpack",
		"amount":         "25",
		"interval":       "yearly",
		"description":    "<script>alert(1)</script>thanks",
		"verb":           "donate",
	}
	first := DeriveCheckoutParams(raw)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, DeriveCheckoutParams(raw))
	}
	assert.Equal(t, "thanks", first.Description)
}

func loadedCheckout(t *testing.T, b *fakeBackend, deps Deps, raw RawInput) *Checkout {
	t.Helper()
	deps.Backend = b
	c := NewCheckout(deps, raw).(*Checkout)
	require.NoError(t, c.Load(context.Background()))
	require.Equal(t, domain.PageStateReady, c.Lifecycle().State())
	return c
}

func TestCheckout_SynthesizedTier(t *testing.T) {
	b := &fakeBackend{collectives: map[string]*domain.Collective{"webpack": testCollective()}}

	c := loadedCheckout(t, b, testDeps(b), RawInput{"collectiveSlug": "webpack", "verb": "donate"})
	tier := c.Draft().Tier
	assert.Equal(t, domain.OrderTypeDonation, tier.Type)
	assert.Equal(t, "Contribute", tier.Name)
	assert.Equal(t, []int{1000, 5000, 10000}, tier.Presets)
	assert.Equal(t, "USD", tier.Currency)
	assert.Equal(t, defaultTierDescription, tier.Description)
	assert.Nil(t, c.Draft().TotalAmount)

	c = loadedCheckout(t, b, testDeps(b), RawInput{"collectiveSlug": "webpack", "verb": "contribute", "amount": "25"})
	assert.Empty(t, c.Draft().Tier.Presets)
	require.NotNil(t, c.Draft().TotalAmount)
	assert.Equal(t, 2500, *c.Draft().TotalAmount)
	assert.Equal(t, "contribution", c.TierName())
}

func TestCheckout_TierByID(t *testing.T) {
	b := &fakeBackend{collectives: map[string]*domain.Collective{"webpack": testCollective()}}
	c := loadedCheckout(t, b, testDeps(b), RawInput{"collectiveSlug": "webpack", "TierId": "7"})
	assert.Equal(t, 7, c.Draft().Tier.ID)
	assert.Equal(t, "Backer", c.TierName())

	c = loadedCheckout(t, b, testDeps(b), RawInput{"collectiveSlug": "webpack", "TierId": "99"})
	assert.Zero(t, c.Draft().Tier.ID)
}

func TestCheckout_LoadError(t *testing.T) {
	b := &fakeBackend{collectives: map[string]*domain.Collective{}}
	c := NewCheckout(testDeps(b), RawInput{"collectiveSlug": "missing"}).(*Checkout)
	assert.Error(t, c.Load(context.Background()))
	assert.Equal(t, domain.PageStateError, c.Lifecycle().State())
	assert.Equal(t, "checkout", c.View().Template)
}

func TestCheckout_MatchingFund(t *testing.T) {
	collective := testCollective()
	collective.Settings = map[string]interface{}{"matchingFund": "from-settings"}
	b := &fakeBackend{collectives: map[string]*domain.Collective{"webpack": collective}}

	c := loadedCheckout(t, b, testDeps(b), RawInput{"collectiveSlug": "webpack"})
	assert.Equal(t, "from-settings", c.MatchingFund())

	deps := testDeps(b)
	deps.Store = storage.Memory{storage.KeyMatchingFund: "from-store"}
	c = loadedCheckout(t, b, deps, RawInput{"collectiveSlug": "webpack"})
	assert.Equal(t, "from-store", c.MatchingFund())
}

func TestCheckout_SubmitAnonymousInAppRedirect(t *testing.T) {
	b := &fakeBackend{
		collectives: map[string]*domain.Collective{"webpack": testCollective()},
		order: &domain.Order{
			ID:             1001,
			Status:         "PAID",
			FromCollective: domain.Ref{ID: 5, Slug: "jane"},
			Transactions:   []domain.Transaction{{ID: 77}},
		},
	}
	deps := testDeps(b)
	deps.Store = storage.Memory{storage.KeyReferral: "12"}
	c := loadedCheckout(t, b, deps, RawInput{"collectiveSlug": "webpack", "TierId": "7", "quantity": "2"})

	redirect, err := c.Submit(context.Background(), &OrderForm{
		Email:     "jane@example.com",
		FirstName: "Jane",
		PaymentMethod: map[string]interface{}{
			"type":     "creditcard",
			"token":    "tok_123",
			"service":  "stripe",
			"save":     "on",
			"cvc":      "123",
			"number":   "4242424242424242",
			"currency": "USD",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, redirect)
	assert.Equal(t, domain.PageStateSubmittedSuccess, c.Lifecycle().State())
	assert.Equal(t, MsgOrderSuccess, c.Lifecycle().Result().Success)

	require.Len(t, b.orders, 1)
	order := b.orders[0]
	assert.Equal(t, 2, order.Quantity)
	assert.Equal(t, 1000, order.TotalAmount)
	assert.Equal(t, &domain.TierRef{ID: 7}, order.Tier)
	assert.Equal(t, &domain.Ref{ID: 12}, order.Referral)
	require.NotNil(t, order.User)
	assert.Equal(t, "jane@example.com", order.User.Email)
	require.NotNil(t, order.PaymentMethod)
	assert.Equal(t, "tok_123", order.PaymentMethod.Token)
	require.NotNil(t, order.PaymentMethod.Save)
	assert.True(t, *order.PaymentMethod.Save)

	assert.False(t, redirect.IsExternal())
	assert.True(t, redirect.ScrollTop)
	assert.Equal(t, routes.PageCollective, redirect.Route)
	assert.Equal(t, map[string]string{
		"slug":              "jane",
		"status":            "PAID",
		"CollectiveId":      "42",
		"collectiveType":    "COLLECTIVE",
		"OrderId":           "1001",
		"TierId":            "7",
		"totalAmount":       "1000",
		"paymentMethodType": "creditcard",
	}, redirect.Params)

	path, err := routes.Pages().Reverse(redirect.Route, redirect.Params)
	require.NoError(t, err)
	assert.Contains(t, path, "/jane?")
	assert.Contains(t, path, "OrderId=1001")
}

func TestCheckout_SubmitLoggedInDropsUser(t *testing.T) {
	b := &fakeBackend{
		collectives: map[string]*domain.Collective{"webpack": testCollective()},
		order:       &domain.Order{ID: 1, FromCollective: domain.Ref{Slug: "me"}},
	}
	deps := testDeps(b)
	deps.User = &domain.User{ID: 3, Email: "me@example.com"}
	deps.Store = storage.Memory{storage.KeyReferral: "0"}
	c := loadedCheckout(t, b, deps, RawInput{"collectiveSlug": "webpack", "amount": "10"})

	_, err := c.Submit(context.Background(), &OrderForm{Email: "someone@example.com"})
	require.NoError(t, err)
	require.Len(t, b.orders, 1)
	assert.Nil(t, b.orders[0].User)
	assert.Nil(t, b.orders[0].Referral)
	assert.Nil(t, b.orders[0].PaymentMethod)
	assert.Equal(t, 1000, b.orders[0].TotalAmount)
}

func TestCheckout_SubmitExternalRedirect(t *testing.T) {
	b := &fakeBackend{
		collectives: map[string]*domain.Collective{"webpack": testCollective()},
		order: &domain.Order{
			ID:           9,
			Status:       "PAID",
			Transactions: []domain.Transaction{{ID: 77}},
		},
	}
	c := loadedCheckout(t, b, testDeps(b), RawInput{
		"collectiveSlug": "webpack",
		"amount":         "5",
		"redirect":       "https://shop.example.com/thanks?ref=abc",
	})

	redirect, err := c.Submit(context.Background(), &OrderForm{})
	require.NoError(t, err)
	require.True(t, redirect.IsExternal())

	u, err := url.Parse(redirect.External)
	require.NoError(t, err)
	assert.Equal(t, "shop.example.com", u.Host)
	assert.Equal(t, "77", u.Query().Get("transactionid"))
	assert.Equal(t, "PAID", u.Query().Get("status"))
	assert.Equal(t, "abc", u.Query().Get("ref"))
	assert.Equal(t, "Order processed successfully. Redirecting you to shop.example.com...", c.Lifecycle().Result().Success)
}

func TestCheckout_InvalidRedirectFallsBackInApp(t *testing.T) {
	b := &fakeBackend{
		collectives: map[string]*domain.Collective{"webpack": testCollective()},
		order:       &domain.Order{ID: 9, FromCollective: domain.Ref{Slug: "jane"}},
	}
	c := loadedCheckout(t, b, testDeps(b), RawInput{"collectiveSlug": "webpack", "redirect": "not a url"})

	redirect, err := c.Submit(context.Background(), &OrderForm{})
	require.NoError(t, err)
	assert.False(t, redirect.IsExternal())
	assert.Equal(t, routes.PageCollective, redirect.Route)
}

func TestCheckout_SubmitErrorStripsPrefix(t *testing.T) {
	b := &fakeBackend{
		collectives: map[string]*domain.Collective{"webpack": testCollective()},
		orderErr:    stderrors.New("GraphQL error: Your card was declined."),
	}
	c := loadedCheckout(t, b, testDeps(b), RawInput{"collectiveSlug": "webpack"})

	redirect, err := c.Submit(context.Background(), &OrderForm{})
	require.NoError(t, err)
	assert.Nil(t, redirect)
	assert.Equal(t, domain.PageStateSubmittedError, c.Lifecycle().State())
	assert.Equal(t, "Your card was declined.", c.Lifecycle().Result().Error)

	b.orderErr = stderrors.New("GraphQL error: ")
	_, err = c.Submit(context.Background(), &OrderForm{})
	require.NoError(t, err)
	assert.Equal(t, MsgOrderError, c.Lifecycle().Result().Error)
}

// unreachableOrders serves the collective from the fake and sends orders to
// an API that is down
type unreachableOrders struct {
	*fakeBackend
	client *backend.Client
}

func (u unreachableOrders) CreateOrder(ctx context.Context, order domain.OrderInput) (*domain.Order, error) {
	return u.client.CreateOrder(ctx, order)
}

func TestCheckout_SubmitAPIDownHidesDetails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	apiURL := srv.URL
	srv.Close()

	b := unreachableOrders{
		fakeBackend: &fakeBackend{collectives: map[string]*domain.Collective{"webpack": testCollective()}},
		client:      backend.NewClient(config.APIConfig{URL: apiURL, Key: "SUPERSECRETKEY"}, zap.NewNop()),
	}
	c := NewCheckout(testDeps(b), RawInput{"collectiveSlug": "webpack"}).(*Checkout)
	require.NoError(t, c.Load(context.Background()))

	redirect, err := c.Submit(context.Background(), &OrderForm{})
	require.NoError(t, err)
	assert.Nil(t, redirect)
	assert.Equal(t, domain.PageStateSubmittedError, c.Lifecycle().State())
	assert.Equal(t, MsgOrderError, c.Lifecycle().Result().Error)
	assert.NotContains(t, c.Lifecycle().Result().Error, "SUPERSECRETKEY")
}

func TestCheckout_SubmitWrongForm(t *testing.T) {
	b := &fakeBackend{collectives: map[string]*domain.Collective{"webpack": testCollective()}}
	c := loadedCheckout(t, b, testDeps(b), RawInput{"collectiveSlug": "webpack"})
	_, err := c.Submit(context.Background(), &EventForm{})
	assert.Error(t, err)
	assert.Empty(t, b.orders)
}

func TestCheckout_ConcurrentSubmitRejected(t *testing.T) {
	b := &fakeBackend{
		collectives: map[string]*domain.Collective{"webpack": testCollective()},
		order:       &domain.Order{ID: 1, FromCollective: domain.Ref{Slug: "jane"}},
		block:       make(chan struct{}),
		entered:     make(chan struct{}, 1),
	}
	c := loadedCheckout(t, b, testDeps(b), RawInput{"collectiveSlug": "webpack"})

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), &OrderForm{})
		done <- err
	}()
	<-b.entered

	_, err := c.Submit(context.Background(), &OrderForm{})
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(b.block)
	require.NoError(t, <-done)
	assert.Len(t, b.orders, 1)
}
