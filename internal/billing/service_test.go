package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"easyminutes/internal/plan"
	"easyminutes/internal/subscription"
	"easyminutes/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

type fakeStripe struct {
	checkoutParams *stripe.CheckoutSessionParams
	portalParams   *stripe.BillingPortalSessionParams
	customerParams *stripe.CustomerParams
	customerErr    error
}

func (f *fakeStripe) NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.checkoutParams = params
	return &stripe.CheckoutSession{URL: "https://checkout.example/cs_123"}, nil
}

func (f *fakeStripe) NewPortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	f.portalParams = params
	return &stripe.BillingPortalSession{URL: "https://portal.example/ps_123"}, nil
}

func (f *fakeStripe) NewCustomer(params *stripe.CustomerParams) (*stripe.Customer, error) {
	if f.customerErr != nil {
		return nil, f.customerErr
	}
	f.customerParams = params
	return &stripe.Customer{ID: "cus_new"}, nil
}

type fakeUserRepo struct {
	users map[int]*user.User
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int]*user.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, name, email, passwordHash string) (*user.User, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id int) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByExternalCustomerID(ctx context.Context, externalCustomerID string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (r *fakeUserRepo) SetExternalCustomerID(ctx context.Context, userID int, externalCustomerID string) error {
	u, ok := r.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.ExternalCustomerID = externalCustomerID
	return nil
}

type fakeSubRepo struct {
	sub *subscription.Subscription
	err error
}

func (r *fakeSubRepo) GetByUserID(ctx context.Context, userID int) (*subscription.Subscription, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.sub == nil {
		return nil, subscription.ErrNotFound
	}
	return r.sub, nil
}

func (r *fakeSubRepo) GetByExternalSubscriptionID(ctx context.Context, id string) (*subscription.Subscription, error) {
	return nil, subscription.ErrNotFound
}

func (r *fakeSubRepo) UpsertByUserID(ctx context.Context, userID int, u subscription.Upsert) (*subscription.Subscription, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeSubRepo) UpdateByExternalSubscriptionID(ctx context.Context, id string, u subscription.Upsert) (*subscription.Subscription, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeSubRepo) IncrementMeetingsUsed(ctx context.Context, userID int) error {
	return nil
}

func (r *fakeSubRepo) CountActiveByPlan(ctx context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}

func testPriceMap(t *testing.T) plan.PriceMap {
	t.Helper()
	m, err := plan.NewPriceMap(map[string]string{
		"price_starter": "starter",
		"price_pro":     "pro",
	})
	require.NoError(t, err)
	return m
}

func TestStartCheckoutCreatesCustomerAndSession(t *testing.T) {
	users := newFakeUserRepo(&user.User{ID: 1, Name: "Ana", Email: "ana@example.com"})
	api := &fakeStripe{}
	svc := newService(users, &fakeSubRepo{}, testPriceMap(t), api, "sk_test", "https://app.example/")

	url, err := svc.StartCheckout(context.Background(), 1, plan.TypePro)

	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/cs_123", url)

	// The customer was created once and stored for webhook resolution.
	require.NotNil(t, api.customerParams)
	assert.Equal(t, "ana@example.com", *api.customerParams.Email)
	assert.Equal(t, "cus_new", users.users[1].ExternalCustomerID)

	require.NotNil(t, api.checkoutParams)
	assert.Equal(t, "cus_new", *api.checkoutParams.Customer)
	assert.Equal(t, string(stripe.CheckoutSessionModeSubscription), *api.checkoutParams.Mode)
	assert.Equal(t, "price_pro", *api.checkoutParams.LineItems[0].Price)
	assert.Equal(t, "price_pro", api.checkoutParams.Metadata["price_id"])
	assert.Equal(t, "https://app.example/billing/success", *api.checkoutParams.SuccessURL)
}

func TestStartCheckoutReusesExistingCustomer(t *testing.T) {
	users := newFakeUserRepo(&user.User{ID: 1, Email: "ana@example.com", ExternalCustomerID: "cus_existing"})
	api := &fakeStripe{}
	svc := newService(users, &fakeSubRepo{}, testPriceMap(t), api, "sk_test", "https://app.example")

	_, err := svc.StartCheckout(context.Background(), 1, plan.TypeStarter)

	require.NoError(t, err)
	assert.Nil(t, api.customerParams, "existing customer must be reused")
	assert.Equal(t, "cus_existing", *api.checkoutParams.Customer)
}

func TestStartCheckoutRejectsFreeAndUnknownPlans(t *testing.T) {
	users := newFakeUserRepo(&user.User{ID: 1, Email: "ana@example.com"})
	svc := newService(users, &fakeSubRepo{}, testPriceMap(t), &fakeStripe{}, "sk_test", "https://app.example")

	_, err := svc.StartCheckout(context.Background(), 1, plan.TypeFree)
	assert.ErrorIs(t, err, ErrPlanNotPurchasable)

	_, err = svc.StartCheckout(context.Background(), 1, plan.Type("platinum"))
	assert.ErrorIs(t, err, ErrPlanNotPurchasable)

	// Valid plan but no configured price.
	_, err = svc.StartCheckout(context.Background(), 1, plan.TypeEnterprise)
	assert.ErrorIs(t, err, ErrPriceNotConfigured)
}

func TestStartCheckoutWithoutSecretKey(t *testing.T) {
	users := newFakeUserRepo(&user.User{ID: 1, Email: "ana@example.com"})
	svc := newService(users, &fakeSubRepo{}, testPriceMap(t), &fakeStripe{}, "", "https://app.example")

	_, err := svc.StartCheckout(context.Background(), 1, plan.TypePro)
	assert.ErrorIs(t, err, ErrBillingUnconfigured)
}

func TestOpenPortalRequiresCustomer(t *testing.T) {
	users := newFakeUserRepo(&user.User{ID: 1, Email: "ana@example.com"})
	api := &fakeStripe{}
	svc := newService(users, &fakeSubRepo{}, testPriceMap(t), api, "sk_test", "https://app.example")

	_, err := svc.OpenPortal(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoBillingCustomer)

	users.users[1].ExternalCustomerID = "cus_existing"
	url, err := svc.OpenPortal(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example/ps_123", url)
	assert.Equal(t, "cus_existing", *api.portalParams.Customer)
}

func TestPlansIncludeConfiguredPrices(t *testing.T) {
	svc := newService(newFakeUserRepo(), &fakeSubRepo{}, testPriceMap(t), &fakeStripe{}, "sk_test", "https://app.example")

	views := svc.Plans()
	require.Len(t, views, len(plan.Types()))

	byType := make(map[plan.Type]PlanView, len(views))
	for _, v := range views {
		byType[v.Type] = v
	}
	assert.Equal(t, "price_pro", byType[plan.TypePro].PriceID)
	assert.Empty(t, byType[plan.TypeFree].PriceID)
	assert.True(t, byType[plan.TypePro].Limits.HasAudioTranscription)
}

func TestStatusWithoutSubscriptionIsFreeTier(t *testing.T) {
	svc := newService(newFakeUserRepo(), &fakeSubRepo{}, testPriceMap(t), &fakeStripe{}, "sk_test", "https://app.example")

	view, err := svc.Status(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, plan.TypeFree, view.PlanType)
	assert.Equal(t, subscription.StatusInactive, view.Status)
	assert.False(t, view.Limits.CanSave)
}

func TestStatusReportsRemainingMeetings(t *testing.T) {
	periodEnd := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	subs := &fakeSubRepo{sub: &subscription.Subscription{
		UserID:           1,
		PlanType:         plan.TypePro,
		Status:           subscription.StatusActive,
		MeetingsUsed:     30,
		MeetingsLimit:    100,
		CurrentPeriodEnd: &periodEnd,
	}}
	svc := newService(newFakeUserRepo(), subs, testPriceMap(t), &fakeStripe{}, "sk_test", "https://app.example")

	view, err := svc.Status(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 70, view.MeetingsRemaining)
	require.NotNil(t, view.CurrentPeriodEnd)
	assert.Equal(t, "2026-10-01T00:00:00Z", *view.CurrentPeriodEnd)
}

func TestStatusUnlimitedPlan(t *testing.T) {
	subs := &fakeSubRepo{sub: &subscription.Subscription{
		UserID:        1,
		PlanType:      plan.TypeEnterprise,
		Status:        subscription.StatusActive,
		MeetingsUsed:  5000,
		MeetingsLimit: plan.UnlimitedMeetings,
	}}
	svc := newService(newFakeUserRepo(), subs, testPriceMap(t), &fakeStripe{}, "sk_test", "https://app.example")

	view, err := svc.Status(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, plan.UnlimitedMeetings, view.MeetingsRemaining)
}
