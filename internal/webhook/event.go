package webhook

import (
	"net/http"
	"time"
)

type EventKind string

const (
	KindCheckoutCompleted     EventKind = "checkout_completed"
	KindSubscriptionCreated   EventKind = "subscription_created"
	KindSubscriptionUpdated   EventKind = "subscription_updated"
	KindSubscriptionCancelled EventKind = "subscription_cancelled"
	KindSubscriptionRenewed   EventKind = "subscription_renewed"
	KindUnknown               EventKind = "unknown"
)

// Event is the provider-neutral form of one webhook delivery. Fields a
// provider does not send stay zero; the reconciler only writes what is
// present.
type Event struct {
	Kind EventKind
	// Type is the raw provider event name, kept for logging and metrics.
	Type string

	CustomerID     string
	CustomerEmail  string
	PriceID        string
	SubscriptionID string
	Status         string

	PeriodStart *time.Time
	PeriodEnd   *time.Time
}

// Provider adapts one payment provider to the reconciler. Adding a provider
// means implementing this interface, not duplicating the state machine.
type Provider interface {
	Name() string
	// VerifySignature authenticates the raw, unparsed request body. It
	// must fail closed on a missing secret or missing header.
	VerifySignature(body []byte, header http.Header) error
	ParseEvent(body []byte) (*Event, error)
}
