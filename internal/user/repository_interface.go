package user

import "context"

type Repository interface {
	Create(ctx context.Context, name, email, passwordHash string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	FindByExternalCustomerID(ctx context.Context, externalCustomerID string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SetExternalCustomerID(ctx context.Context, userID int, externalCustomerID string) error
}
