package fakeuserrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/storefront-api/internal/errors"
	"github.com/jrsteele09/storefront-api/users"
)

var _ users.AccountRepo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory AccountRepo. The email index is checked and
// written under the same lock, so concurrent Creates for one email yield
// exactly one success.
type FakeUserRepo struct {
	accounts map[string]*users.Account
	emailIds map[string]string // email to account id
	lock     sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		accounts: make(map[string]*users.Account),
		emailIds: make(map[string]string),
	}
}

func emailKey(email string) string {
	return users.NormalizeEmail(email)
}

func (ur *FakeUserRepo) Create(ctx context.Context, account *users.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ur.lock.Lock()
	defer ur.lock.Unlock()

	key := emailKey(account.Email)
	if _, exists := ur.emailIds[key]; exists {
		return errors.ErrDuplicateAccount
	}

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.DateJoined.IsZero() {
		account.DateJoined = time.Now().UTC()
	}
	account.Email = key
	stored := *account
	ur.accounts[stored.ID] = &stored
	ur.emailIds[key] = stored.ID
	return nil
}

func (ur *FakeUserRepo) GetByEmail(ctx context.Context, email string) (*users.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIds[emailKey(email)]
	if !ok {
		return nil, errors.ErrNotFound
	}
	account := *ur.accounts[id]
	return &account, nil
}

func (ur *FakeUserRepo) GetByID(ctx context.Context, id string) (*users.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ur.lock.RLock()
	defer ur.lock.RUnlock()

	stored, ok := ur.accounts[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	account := *stored
	return &account, nil
}

func (ur *FakeUserRepo) LinkFederatedID(ctx context.Context, id, federatedID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ur.lock.Lock()
	defer ur.lock.Unlock()

	stored, ok := ur.accounts[id]
	if !ok {
		return errors.ErrNotFound
	}
	for otherID, other := range ur.accounts {
		if otherID != id && other.FederatedID == federatedID {
			return errors.ErrDuplicateAccount
		}
	}
	stored.FederatedID = federatedID
	return nil
}

// Count returns the number of stored accounts.
func (ur *FakeUserRepo) Count() int {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	return len(ur.accounts)
}
