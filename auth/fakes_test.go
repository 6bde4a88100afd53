package auth_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/storefront-api/federated"
	"github.com/jrsteele09/storefront-api/internal/errors"
	"github.com/jrsteele09/storefront-api/users"
)

type fakeVerifier struct {
	identities map[string]*federated.Identity
}

func (v *fakeVerifier) Verify(_ context.Context, idToken string) (*federated.Identity, error) {
	id, ok := v.identities[idToken]
	if !ok {
		return nil, errors.ErrInvalidFederatedToken
	}
	copied := *id
	return &copied, nil
}

func (v *fakeVerifier) Exchange(ctx context.Context, code string) (*federated.Identity, error) {
	return v.Verify(ctx, code)
}

type fakeRecorder struct {
	mu            sync.Mutex
	registrations []string
	logins        []string
}

func (r *fakeRecorder) RecordRegistration(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations = append(r.registrations, outcome)
}

func (r *fakeRecorder) RecordLogin(method, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, method+"/"+outcome)
}

// lateDuplicateRepo misses the email on lookup but loses the insert, as when
// another registration commits in between.
type lateDuplicateRepo struct {
	users.AccountRepo
}

func (r *lateDuplicateRepo) GetByEmail(context.Context, string) (*users.Account, error) {
	return nil, errors.ErrNotFound
}

func (r *lateDuplicateRepo) Create(context.Context, *users.Account) error {
	return errors.Kind(errors.ErrDuplicateAccount, errors.New("accounts_email_key"))
}

type failingRepo struct {
	users.AccountRepo
}

func (r *failingRepo) GetByEmail(context.Context, string) (*users.Account, error) {
	return nil, errors.New("connection refused")
}

type slowHasher struct {
	delay time.Duration
}

func (h slowHasher) Hash(string) (string, error) {
	time.Sleep(h.delay)
	return "hash", nil
}

func (h slowHasher) Verify(string, string) (bool, error) {
	time.Sleep(h.delay)
	return false, nil
}

// exactEmailRepo matches emails byte for byte, like a plain text column with a
// unique index.
type exactEmailRepo struct {
	mu       sync.Mutex
	accounts map[string]*users.Account
	nextID   int
}

func newExactEmailRepo() *exactEmailRepo {
	return &exactEmailRepo{accounts: map[string]*users.Account{}}
}

func (r *exactEmailRepo) Create(_ context.Context, account *users.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[account.Email]; exists {
		return errors.ErrDuplicateAccount
	}
	r.nextID++
	account.ID = fmt.Sprintf("acct-%d", r.nextID)
	stored := *account
	r.accounts[account.Email] = &stored
	return nil
}

func (r *exactEmailRepo) GetByEmail(_ context.Context, email string) (*users.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[email]
	if !ok {
		return nil, errors.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *exactEmailRepo) GetByID(_ context.Context, id string) (*users.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.ID == id {
			copied := *account
			return &copied, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (r *exactEmailRepo) LinkFederatedID(_ context.Context, id, federatedID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.ID == id {
			account.FederatedID = federatedID
			return nil
		}
	}
	return errors.ErrNotFound
}

func (r *exactEmailRepo) emails() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.accounts))
	for email := range r.accounts {
		out = append(out, email)
	}
	return out
}
