package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// LemonSqueezyProvider verifies and parses Lemon Squeezy-style webhooks:
// an HMAC-SHA256 hex digest of the raw body in the X-Signature header.
type LemonSqueezyProvider struct {
	secret string
}

func NewLemonSqueezyProvider(secret string) *LemonSqueezyProvider {
	return &LemonSqueezyProvider{secret: secret}
}

func (p *LemonSqueezyProvider) Name() string {
	return "lemonsqueezy"
}

// VerifySignature recomputes the HMAC over the raw body. It must never run
// on re-serialized JSON: re-encoding can change bytes and break the digest.
func (p *LemonSqueezyProvider) VerifySignature(body []byte, header http.Header) error {
	if p.secret == "" {
		return ErrMissingSecret
	}

	signature := header.Get("X-Signature")
	if signature == "" {
		return fmt.Errorf("%w: missing X-Signature header", ErrBadSignature)
	}

	mac := hmac.New(sha256.New, []byte(p.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}

	return nil
}

type lemonSqueezyEnvelope struct {
	Type      string `json:"type"`
	EventName string `json:"event_name"`
	Meta      struct {
		EventName string `json:"event_name"`
	} `json:"meta"`
	Data struct {
		ID                 string     `json:"id"`
		CustomerID         string     `json:"customer_id"`
		CustomerEmail      string     `json:"customer_email"`
		ProductPriceID     string     `json:"product_price_id"`
		SubscriptionID     string     `json:"subscription_id"`
		Status             string     `json:"status"`
		CurrentPeriodStart *time.Time `json:"current_period_start"`
		CurrentPeriodEnd   *time.Time `json:"current_period_end"`
	} `json:"data"`
}

func (p *LemonSqueezyProvider) ParseEvent(body []byte) (*Event, error) {
	var envelope lemonSqueezyEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	eventName := envelope.Type
	if eventName == "" {
		eventName = envelope.EventName
	}
	if eventName == "" {
		eventName = envelope.Meta.EventName
	}

	ev := &Event{
		Kind:           classifyLemonSqueezy(eventName),
		Type:           eventName,
		CustomerID:     envelope.Data.CustomerID,
		CustomerEmail:  envelope.Data.CustomerEmail,
		PriceID:        envelope.Data.ProductPriceID,
		SubscriptionID: envelope.Data.SubscriptionID,
		Status:         envelope.Data.Status,
		PeriodStart:    envelope.Data.CurrentPeriodStart,
		PeriodEnd:      envelope.Data.CurrentPeriodEnd,
	}

	// Subscription events carry their own id as the subscription id.
	if ev.SubscriptionID == "" && strings.HasPrefix(string(ev.Kind), "subscription_") {
		ev.SubscriptionID = envelope.Data.ID
	}

	return ev, nil
}

func classifyLemonSqueezy(eventName string) EventKind {
	switch strings.ReplaceAll(eventName, ".", "_") {
	case "checkout_completed", "order_created":
		return KindCheckoutCompleted
	case "subscription_created":
		return KindSubscriptionCreated
	case "subscription_updated":
		return KindSubscriptionUpdated
	case "subscription_cancelled", "subscription_canceled":
		return KindSubscriptionCancelled
	case "subscription_renewed", "subscription_payment_success":
		return KindSubscriptionRenewed
	default:
		return KindUnknown
	}
}
