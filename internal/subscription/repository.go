package subscription

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound = errors.New("subscription not found")
)

type SQLRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) GetByUserID(ctx context.Context, userID int) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `
		SELECT *
		FROM subscriptions
		WHERE user_id = $1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sub, err
}

func (r *SQLRepository) GetByExternalSubscriptionID(ctx context.Context, externalSubscriptionID string) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `
		SELECT *
		FROM subscriptions
		WHERE external_subscription_id = $1
	`, externalSubscriptionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sub, err
}

// UpsertByUserID inserts or updates the single subscription row for a user.
// Only non-nil fields of u are written; COALESCE keeps existing values for
// the rest, which makes webhook replays and partial events safe.
func (r *SQLRepository) UpsertByUserID(ctx context.Context, userID int, u Upsert) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO subscriptions (user_id, external_customer_id, external_subscription_id, plan_type, status, meetings_used, meetings_limit, current_period_start, current_period_end)
		VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, 'free'), COALESCE($5, 'inactive'), COALESCE($6, 0), COALESCE($7, 0), $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			external_customer_id = COALESCE($2, subscriptions.external_customer_id),
			external_subscription_id = COALESCE($3, subscriptions.external_subscription_id),
			plan_type = COALESCE($4, subscriptions.plan_type),
			status = COALESCE($5, subscriptions.status),
			meetings_used = COALESCE($6, subscriptions.meetings_used),
			meetings_limit = COALESCE($7, subscriptions.meetings_limit),
			current_period_start = COALESCE($8, subscriptions.current_period_start),
			current_period_end = COALESCE($9, subscriptions.current_period_end),
			updated_at = NOW()
		RETURNING id, user_id, external_customer_id, external_subscription_id, plan_type, status, meetings_used, meetings_limit, current_period_start, current_period_end, created_at, updated_at
	`, userID, u.ExternalCustomerID, u.ExternalSubscriptionID, u.PlanType, u.Status,
		u.MeetingsUsed, u.MeetingsLimit, u.CurrentPeriodStart, u.CurrentPeriodEnd).StructScan(sub)

	return sub, err
}

// UpdateByExternalSubscriptionID applies a partial update to the row owning
// the provider's subscription id. Returns ErrNotFound when no checkout has
// created the row yet, so the caller can acknowledge instead of retrying.
func (r *SQLRepository) UpdateByExternalSubscriptionID(ctx context.Context, externalSubscriptionID string, u Upsert) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE subscriptions SET
			external_customer_id = COALESCE($2, external_customer_id),
			plan_type = COALESCE($3, plan_type),
			status = COALESCE($4, status),
			meetings_used = COALESCE($5, meetings_used),
			meetings_limit = COALESCE($6, meetings_limit),
			current_period_start = COALESCE($7, current_period_start),
			current_period_end = COALESCE($8, current_period_end),
			updated_at = NOW()
		WHERE external_subscription_id = $1
		RETURNING id, user_id, external_customer_id, external_subscription_id, plan_type, status, meetings_used, meetings_limit, current_period_start, current_period_end, created_at, updated_at
	`, externalSubscriptionID, u.ExternalCustomerID, u.PlanType, u.Status,
		u.MeetingsUsed, u.MeetingsLimit, u.CurrentPeriodStart, u.CurrentPeriodEnd).StructScan(sub)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sub, err
}

// IncrementMeetingsUsed consumes one metered meeting. The WHERE clause
// re-checks status and quota so a concurrent renewal or cancellation cannot
// push usage past the limit.
func (r *SQLRepository) IncrementMeetingsUsed(ctx context.Context, userID int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET meetings_used = meetings_used + 1,
		    updated_at = NOW()
		WHERE user_id = $1
		  AND status IN ('active', 'trialing')
		  AND (meetings_limit = -1 OR meetings_used < meetings_limit)
	`, userID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLRepository) CountActiveByPlan(ctx context.Context) (map[string]int, error) {
	rows := []struct {
		PlanType string `db:"plan_type"`
		Count    int    `db:"count"`
	}{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT plan_type, COUNT(*) AS count
		FROM subscriptions
		WHERE status IN ('active', 'trialing')
		GROUP BY plan_type
	`)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.PlanType] = row.Count
	}
	return counts, nil
}
