package webhook

import "errors"

var (
	// Authentication failures: rejected with 401, no side effects.
	ErrBadSignature  = errors.New("invalid webhook signature")
	ErrMissingSecret = errors.New("webhook secret not configured")

	// Data problems that redelivery cannot fix: logged and acknowledged
	// with 200 so the provider stops retrying.
	ErrUnknownEvent         = errors.New("unknown event type")
	ErrBadPayload           = errors.New("malformed event payload")
	ErrUnknownPrice         = errors.New("unknown price id")
	ErrUserNotResolved      = errors.New("user not resolved from event")
	ErrSubscriptionMissing  = errors.New("no subscription row for event")
	ErrMissingSubscriptionID = errors.New("event carries no subscription id")
)

// Acknowledgeable reports whether the error is a business-data problem that
// should be swallowed with a success response. Everything else is treated as
// an infrastructure failure and surfaced so the provider redelivers.
func Acknowledgeable(err error) bool {
	return errors.Is(err, ErrUnknownEvent) ||
		errors.Is(err, ErrBadPayload) ||
		errors.Is(err, ErrUnknownPrice) ||
		errors.Is(err, ErrUserNotResolved) ||
		errors.Is(err, ErrSubscriptionMissing) ||
		errors.Is(err, ErrMissingSubscriptionID)
}
