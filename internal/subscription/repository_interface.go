package subscription

import "context"

type Repository interface {
	GetByUserID(ctx context.Context, userID int) (*Subscription, error)
	GetByExternalSubscriptionID(ctx context.Context, externalSubscriptionID string) (*Subscription, error)
	UpsertByUserID(ctx context.Context, userID int, u Upsert) (*Subscription, error)
	UpdateByExternalSubscriptionID(ctx context.Context, externalSubscriptionID string, u Upsert) (*Subscription, error)
	IncrementMeetingsUsed(ctx context.Context, userID int) error
	CountActiveByPlan(ctx context.Context) (map[string]int, error)
}
