package billing

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"easyminutes/internal/plan"
	"easyminutes/internal/subscription"
	"easyminutes/internal/user"

	"github.com/stripe/stripe-go/v79"
	portalsession "github.com/stripe/stripe-go/v79/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
)

var (
	ErrPlanNotPurchasable  = errors.New("plan cannot be purchased")
	ErrPriceNotConfigured  = errors.New("no price configured for plan")
	ErrNoBillingCustomer   = errors.New("user has no billing customer")
	ErrBillingUnconfigured = errors.New("billing is not configured")
)

// Init wires the global Stripe API key. Call once at startup.
func Init(secretKey string) {
	stripe.Key = secretKey
}

// stripeAPI is the slice of the Stripe client the service needs. The live
// implementation delegates to the SDK's package-level constructors.
type stripeAPI interface {
	NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	NewPortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error)
	NewCustomer(params *stripe.CustomerParams) (*stripe.Customer, error)
}

type liveStripe struct{}

func (liveStripe) NewCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return checkoutsession.New(params)
}

func (liveStripe) NewPortalSession(params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	return portalsession.New(params)
}

func (liveStripe) NewCustomer(params *stripe.CustomerParams) (*stripe.Customer, error) {
	return customer.New(params)
}

// PlanView is the catalog entry exposed to the frontend pricing page.
type PlanView struct {
	Type    plan.Type   `json:"type"`
	PriceID string      `json:"price_id,omitempty"`
	Limits  plan.Limits `json:"limits"`
}

// StatusView summarizes the caller's billing state for the account page.
type StatusView struct {
	PlanType          plan.Type           `json:"plan_type"`
	Status            subscription.Status `json:"status"`
	MeetingsUsed      int                 `json:"meetings_used"`
	MeetingsLimit     int                 `json:"meetings_limit"`
	MeetingsRemaining int                 `json:"meetings_remaining"`
	CurrentPeriodEnd  *string             `json:"current_period_end,omitempty"`
	Limits            plan.Limits         `json:"limits"`
}

type Service struct {
	users       user.Repository
	subs        subscription.Repository
	prices      plan.PriceMap
	api         stripeAPI
	frontendURL string
	configured  bool
}

func NewService(users user.Repository, subs subscription.Repository, prices plan.PriceMap, secretKey, frontendURL string) *Service {
	return newService(users, subs, prices, liveStripe{}, secretKey, frontendURL)
}

func newService(users user.Repository, subs subscription.Repository, prices plan.PriceMap, api stripeAPI, secretKey, frontendURL string) *Service {
	return &Service{
		users:       users,
		subs:        subs,
		prices:      prices,
		api:         api,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		configured:  secretKey != "",
	}
}

// StartCheckout creates a checkout session for the given plan and returns its
// URL. The price id travels in the session metadata so the webhook can map
// the completed checkout back to a plan.
func (s *Service) StartCheckout(ctx context.Context, userID int, planType plan.Type) (string, error) {
	if !s.configured {
		return "", ErrBillingUnconfigured
	}
	if planType == plan.TypeFree || !plan.Valid(planType) {
		return "", ErrPlanNotPurchasable
	}

	priceID, ok := s.prices.PriceForPlan(planType)
	if !ok {
		return "", ErrPriceNotConfigured
	}

	customerID, err := s.ensureCustomer(ctx, userID)
	if err != nil {
		return "", err
	}

	mode := stripe.CheckoutSessionModeSubscription
	if planType == plan.TypeOneTime {
		mode = stripe.CheckoutSessionModePayment
	}

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(mode)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.frontendURL + "/billing/success"),
		CancelURL:  stripe.String(s.frontendURL + "/billing/cancel"),
	}
	params.AddMetadata("price_id", priceID)

	sess, err := s.api.NewCheckoutSession(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// OpenPortal returns a customer portal URL where the user manages or cancels
// the subscription. Downgrades land through the webhook, never here.
func (s *Service) OpenPortal(ctx context.Context, userID int) (string, error) {
	if !s.configured {
		return "", ErrBillingUnconfigured
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.ExternalCustomerID == "" {
		return "", ErrNoBillingCustomer
	}

	sess, err := s.api.NewPortalSession(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(u.ExternalCustomerID),
		ReturnURL: stripe.String(s.frontendURL + "/settings/billing"),
	})
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// Plans lists the purchasable catalog with the configured price ids.
func (s *Service) Plans() []PlanView {
	views := make([]PlanView, 0, len(plan.Types()))
	for _, t := range plan.Types() {
		view := PlanView{Type: t, Limits: plan.LimitsFor(t)}
		if priceID, ok := s.prices.PriceForPlan(t); ok {
			view.PriceID = priceID
		}
		views = append(views, view)
	}
	return views
}

// Status returns the caller's current entitlement summary. Users without a
// subscription row get the free-tier view rather than an error.
func (s *Service) Status(ctx context.Context, userID int) (*StatusView, error) {
	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			return &StatusView{
				PlanType: plan.TypeFree,
				Status:   subscription.StatusInactive,
				Limits:   plan.LimitsFor(plan.TypeFree),
			}, nil
		}
		return nil, err
	}

	view := &StatusView{
		PlanType:      sub.PlanType,
		Status:        sub.Status,
		MeetingsUsed:  sub.MeetingsUsed,
		MeetingsLimit: sub.MeetingsLimit,
		Limits:        plan.LimitsFor(sub.PlanType),
	}
	if sub.MeetingsLimit == plan.UnlimitedMeetings {
		view.MeetingsRemaining = plan.UnlimitedMeetings
	} else if remaining := sub.MeetingsLimit - sub.MeetingsUsed; remaining > 0 {
		view.MeetingsRemaining = remaining
	}
	if sub.CurrentPeriodEnd != nil {
		end := sub.CurrentPeriodEnd.UTC().Format(time.RFC3339)
		view.CurrentPeriodEnd = &end
	}
	return view, nil
}

// ensureCustomer finds or creates the provider customer for the user and
// stores its id, so later webhooks can resolve the user by customer id.
func (s *Service) ensureCustomer(ctx context.Context, userID int) (string, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.ExternalCustomerID != "" {
		return u.ExternalCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(u.Email),
		Name:  stripe.String(u.Name),
	}
	params.AddMetadata("user_id", strconv.Itoa(u.ID))

	cust, err := s.api.NewCustomer(params)
	if err != nil {
		return "", err
	}

	if err := s.users.SetExternalCustomerID(ctx, u.ID, cust.ID); err != nil {
		return "", err
	}
	return cust.ID, nil
}
