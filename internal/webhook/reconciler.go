package webhook

import (
	"context"
	"errors"
	"fmt"

	"easyminutes/internal/logger"
	"easyminutes/internal/plan"
	"easyminutes/internal/subscription"
	"easyminutes/internal/user"
)

// Reconciler applies verified payment events to the subscription store.
// Deliveries are at-least-once and may arrive out of order; every apply is
// an idempotent partial upsert keyed by user or external subscription id,
// never by event id. Ordering policy is last-applied-wins: a stale event can
// only touch the fields it actually carries.
type Reconciler struct {
	subs   subscription.Repository
	users  user.Repository
	prices plan.PriceMap
}

func NewReconciler(subs subscription.Repository, users user.Repository, prices plan.PriceMap) *Reconciler {
	return &Reconciler{subs: subs, users: users, prices: prices}
}

func (r *Reconciler) Apply(ctx context.Context, ev *Event) error {
	switch ev.Kind {
	case KindCheckoutCompleted:
		return r.applyCheckoutCompleted(ctx, ev)
	case KindSubscriptionCreated:
		return r.applySubscriptionCreated(ctx, ev)
	case KindSubscriptionUpdated:
		return r.applySubscriptionUpdated(ctx, ev)
	case KindSubscriptionCancelled:
		return r.applySubscriptionCancelled(ctx, ev)
	case KindSubscriptionRenewed:
		return r.applySubscriptionRenewed(ctx, ev)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
}

// applyCheckoutCompleted creates or reactivates the user's subscription:
// status active, usage reset, limits from the plan the price id maps to.
func (r *Reconciler) applyCheckoutCompleted(ctx context.Context, ev *Event) error {
	u, err := r.resolveUser(ctx, ev)
	if err != nil {
		return err
	}

	planType, ok := r.prices.PlanForPrice(ev.PriceID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPrice, ev.PriceID)
	}

	limits := plan.LimitsFor(planType)
	status := subscription.StatusActive
	used := 0
	meetingsLimit := limits.MeetingsLimit

	upsert := subscription.Upsert{
		PlanType:           &planType,
		Status:             &status,
		MeetingsUsed:       &used,
		MeetingsLimit:      &meetingsLimit,
		CurrentPeriodStart: ev.PeriodStart,
		CurrentPeriodEnd:   ev.PeriodEnd,
	}
	if ev.CustomerID != "" {
		upsert.ExternalCustomerID = &ev.CustomerID
	}
	if ev.SubscriptionID != "" {
		upsert.ExternalSubscriptionID = &ev.SubscriptionID
	}

	if _, err := r.subs.UpsertByUserID(ctx, u.ID, upsert); err != nil {
		return err
	}

	if ev.CustomerID != "" && u.ExternalCustomerID != ev.CustomerID {
		if err := r.users.SetExternalCustomerID(ctx, u.ID, ev.CustomerID); err != nil {
			return err
		}
	}

	logger.Infof("webhook: checkout completed for user %d, plan %s", u.ID, planType)
	return nil
}

// applySubscriptionCreated records external ids only; entitlements were
// already granted by checkout.completed, and replays must not regress them.
func (r *Reconciler) applySubscriptionCreated(ctx context.Context, ev *Event) error {
	if ev.SubscriptionID == "" {
		return ErrMissingSubscriptionID
	}

	upsert := subscription.Upsert{}
	if ev.CustomerID != "" {
		upsert.ExternalCustomerID = &ev.CustomerID
	}

	_, err := r.subs.UpdateByExternalSubscriptionID(ctx, ev.SubscriptionID, upsert)
	if errors.Is(err, subscription.ErrNotFound) {
		// Created arrived before checkout completed. Attach the ids to
		// the user's row so the later events can find it.
		u, resolveErr := r.resolveUser(ctx, ev)
		if resolveErr != nil {
			return resolveErr
		}
		upsert.ExternalSubscriptionID = &ev.SubscriptionID
		_, err = r.subs.UpsertByUserID(ctx, u.ID, upsert)
	}
	return err
}

func (r *Reconciler) applySubscriptionUpdated(ctx context.Context, ev *Event) error {
	if ev.SubscriptionID == "" {
		return ErrMissingSubscriptionID
	}

	status := subscription.MapProviderStatus(ev.Status)
	_, err := r.subs.UpdateByExternalSubscriptionID(ctx, ev.SubscriptionID, subscription.Upsert{
		Status:             &status,
		CurrentPeriodStart: ev.PeriodStart,
		CurrentPeriodEnd:   ev.PeriodEnd,
	})
	if errors.Is(err, subscription.ErrNotFound) {
		return fmt.Errorf("%w: %q", ErrSubscriptionMissing, ev.SubscriptionID)
	}
	return err
}

// applySubscriptionCancelled only flips the status; usage counters and plan
// fields stay untouched, and reapplying it is a no-op.
func (r *Reconciler) applySubscriptionCancelled(ctx context.Context, ev *Event) error {
	if ev.SubscriptionID == "" {
		return ErrMissingSubscriptionID
	}

	status := subscription.StatusCanceled
	_, err := r.subs.UpdateByExternalSubscriptionID(ctx, ev.SubscriptionID, subscription.Upsert{
		Status: &status,
	})
	if errors.Is(err, subscription.ErrNotFound) {
		return fmt.Errorf("%w: %q", ErrSubscriptionMissing, ev.SubscriptionID)
	}
	return err
}

// applySubscriptionRenewed starts a new billing period: usage back to zero,
// status active, fresh period bounds.
func (r *Reconciler) applySubscriptionRenewed(ctx context.Context, ev *Event) error {
	if ev.SubscriptionID == "" {
		return ErrMissingSubscriptionID
	}

	status := subscription.StatusActive
	used := 0
	_, err := r.subs.UpdateByExternalSubscriptionID(ctx, ev.SubscriptionID, subscription.Upsert{
		Status:             &status,
		MeetingsUsed:       &used,
		CurrentPeriodStart: ev.PeriodStart,
		CurrentPeriodEnd:   ev.PeriodEnd,
	})
	if errors.Is(err, subscription.ErrNotFound) {
		return fmt.Errorf("%w: %q", ErrSubscriptionMissing, ev.SubscriptionID)
	}
	return err
}

func (r *Reconciler) resolveUser(ctx context.Context, ev *Event) (*user.User, error) {
	if ev.CustomerEmail != "" {
		u, err := r.users.FindByEmail(ctx, ev.CustomerEmail)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
	}

	if ev.CustomerID != "" {
		u, err := r.users.FindByExternalCustomerID(ctx, ev.CustomerID)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, user.ErrUserNotFound) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: email=%q customer=%q", ErrUserNotResolved, ev.CustomerEmail, ev.CustomerID)
}
