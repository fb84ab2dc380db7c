package minutes

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Minute) (*Minute, error)
	GetByID(ctx context.Context, userID int, id uuid.UUID) (*Minute, error)
	GetByShareToken(ctx context.Context, token string) (*Minute, error)
	ListByUser(ctx context.Context, userID int) ([]*Minute, error)
	Update(ctx context.Context, userID int, id uuid.UUID, req UpdateRequest) (*Minute, error)
	Delete(ctx context.Context, userID int, id uuid.UUID) error
	SetShareToken(ctx context.Context, userID int, id uuid.UUID, token string) error
}
