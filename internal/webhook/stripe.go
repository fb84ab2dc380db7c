package webhook

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v79"
	stripewebhook "github.com/stripe/stripe-go/v79/webhook"
)

// StripeProvider adapts Stripe deliveries. Signature verification is
// delegated to the Stripe SDK, which checks the Stripe-Signature header
// against the raw body.
type StripeProvider struct {
	secret string
}

func NewStripeProvider(secret string) *StripeProvider {
	return &StripeProvider{secret: secret}
}

func (p *StripeProvider) Name() string {
	return "stripe"
}

func (p *StripeProvider) VerifySignature(body []byte, header http.Header) error {
	if p.secret == "" {
		return ErrMissingSecret
	}

	signature := header.Get("Stripe-Signature")
	if signature == "" {
		return fmt.Errorf("%w: missing Stripe-Signature header", ErrBadSignature)
	}

	if _, err := stripewebhook.ConstructEventWithOptions(body, signature, p.secret, stripewebhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	return nil
}

func (p *StripeProvider) ParseEvent(body []byte) (*Event, error) {
	var event stripe.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	ev := &Event{Type: string(event.Type)}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		ev.Kind = KindCheckoutCompleted
		if sess.Customer != nil {
			ev.CustomerID = sess.Customer.ID
		}
		ev.CustomerEmail = sess.CustomerEmail
		if ev.CustomerEmail == "" && sess.CustomerDetails != nil {
			ev.CustomerEmail = sess.CustomerDetails.Email
		}
		if sess.Subscription != nil {
			ev.SubscriptionID = sess.Subscription.ID
		}
		// Checkout sessions do not expand line items; the price id rides
		// along in metadata set when the session is created.
		ev.PriceID = sess.Metadata["price_id"]

	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		switch event.Type {
		case "customer.subscription.created":
			ev.Kind = KindSubscriptionCreated
		case "customer.subscription.updated":
			ev.Kind = KindSubscriptionUpdated
		default:
			ev.Kind = KindSubscriptionCancelled
		}
		ev.SubscriptionID = sub.ID
		if sub.Customer != nil {
			ev.CustomerID = sub.Customer.ID
		}
		ev.Status = string(sub.Status)
		if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
			ev.PriceID = sub.Items.Data[0].Price.ID
		}
		ev.PeriodStart = unixTime(sub.CurrentPeriodStart)
		ev.PeriodEnd = unixTime(sub.CurrentPeriodEnd)

	case "invoice.payment_succeeded":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		// Only billing-cycle invoices are renewals; the initial invoice
		// is already covered by checkout.session.completed.
		if inv.BillingReason != stripe.InvoiceBillingReasonSubscriptionCycle {
			ev.Kind = KindUnknown
			return ev, nil
		}
		ev.Kind = KindSubscriptionRenewed
		if inv.Subscription != nil {
			ev.SubscriptionID = inv.Subscription.ID
		}
		if inv.Customer != nil {
			ev.CustomerID = inv.Customer.ID
		}
		ev.PeriodStart = unixTime(inv.PeriodStart)
		ev.PeriodEnd = unixTime(inv.PeriodEnd)

	default:
		ev.Kind = KindUnknown
	}

	return ev, nil
}

func unixTime(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
