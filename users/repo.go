package users

import "context"

// AccountRepo is the credential store. Implementations must enforce email
// uniqueness themselves and report a violation as errors.ErrDuplicateAccount;
// lookups that match nothing return errors.ErrNotFound.
type AccountRepo interface {
	Create(ctx context.Context, account *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	LinkFederatedID(ctx context.Context, id, federatedID string) error
}
