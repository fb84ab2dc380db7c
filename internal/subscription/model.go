package subscription

import (
	"time"

	"easyminutes/internal/plan"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusTrialing Status = "trialing"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
	StatusInactive Status = "inactive"
)

// Subscription is the single durable billing record for a user. Rows are
// upserted by user id on webhook delivery and never hard-deleted.
type Subscription struct {
	ID                     int        `db:"id" json:"id"`
	UserID                 int        `db:"user_id" json:"user_id"`
	ExternalCustomerID     string     `db:"external_customer_id" json:"external_customer_id"`
	ExternalSubscriptionID string     `db:"external_subscription_id" json:"external_subscription_id"`
	PlanType               plan.Type  `db:"plan_type" json:"plan_type"`
	Status                 Status     `db:"status" json:"status"`
	MeetingsUsed           int        `db:"meetings_used" json:"meetings_used"`
	MeetingsLimit          int        `db:"meetings_limit" json:"meetings_limit"`
	CurrentPeriodStart     *time.Time `db:"current_period_start" json:"current_period_start,omitempty"`
	CurrentPeriodEnd       *time.Time `db:"current_period_end" json:"current_period_end,omitempty"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}

// Active reports whether the subscription still grants plan entitlements.
func (s *Subscription) Active() bool {
	return s.Status == StatusActive || s.Status == StatusTrialing
}

// Upsert carries the fields present in a single webhook event. Nil fields are
// left untouched by the store, so a partial event (e.g. a cancellation with
// only a status) never clobbers plan or limits written by an earlier event.
type Upsert struct {
	ExternalCustomerID     *string
	ExternalSubscriptionID *string
	PlanType               *plan.Type
	Status                 *Status
	MeetingsUsed           *int
	MeetingsLimit          *int
	CurrentPeriodStart     *time.Time
	CurrentPeriodEnd       *time.Time
}

// MapProviderStatus translates a provider status string into the internal
// enum. Anything unrecognized maps to inactive so a new provider status can
// never accidentally grant access.
func MapProviderStatus(providerStatus string) Status {
	switch providerStatus {
	case "active", "paid":
		return StatusActive
	case "trialing", "on_trial":
		return StatusTrialing
	case "past_due", "unpaid":
		return StatusPastDue
	case "cancelled", "canceled", "expired":
		return StatusCanceled
	default:
		return StatusInactive
	}
}
