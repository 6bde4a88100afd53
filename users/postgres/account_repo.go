// Package postgres stores accounts in PostgreSQL.
package postgres

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jrsteele09/storefront-api/internal/errors"
	"github.com/jrsteele09/storefront-api/internal/store"
	"github.com/jrsteele09/storefront-api/users"
	"github.com/samber/oops"
)

var _ users.AccountRepo = (*AccountRepo)(nil)

const accountColumns = `id, first_name, last_name, username, email, password_hash, federated_id, date_joined`

// AccountRepo implements users.AccountRepo. Email uniqueness is the
// accounts_email_key constraint; the insert is never preceded by a lookup.
// Emails are folded with users.NormalizeEmail before they reach a query.
type AccountRepo struct {
	pool store.Pool
}

func NewAccountRepo(pool store.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Create(ctx context.Context, account *users.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	account.Email = users.NormalizeEmail(account.Email)

	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (id, first_name, last_name, username, email, password_hash, federated_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING date_joined`,
		account.ID, account.FirstName, account.LastName, account.Username,
		account.Email, account.PasswordHash, account.FederatedID,
	).Scan(&account.DateJoined)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Kind(errors.ErrDuplicateAccount, oops.Code("ACCOUNT_DUPLICATE").With("email", account.Email).Wrap(err))
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").With("email", account.Email).Wrap(err)
	}
	return nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*users.Account, error) {
	email = users.NormalizeEmail(email)
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	account, err := scanAccount(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrNotFound
		}
		return nil, oops.Code("ACCOUNT_LOOKUP_FAILED").With("email", email).Wrap(err)
	}
	return account, nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*users.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	account, err := scanAccount(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrNotFound
		}
		return nil, oops.Code("ACCOUNT_LOOKUP_FAILED").With("id", id).Wrap(err)
	}
	return account, nil
}

func (r *AccountRepo) LinkFederatedID(ctx context.Context, id, federatedID string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE accounts SET federated_id = $2 WHERE id = $1`, id, federatedID)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Kind(errors.ErrDuplicateAccount, oops.Code("ACCOUNT_DUPLICATE").With("id", id).Wrap(err))
		}
		return oops.Code("ACCOUNT_LINK_FAILED").With("id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*users.Account, error) {
	var a users.Account
	if err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Username, &a.Email, &a.PasswordHash, &a.FederatedID, &a.DateJoined); err != nil {
		return nil, err
	}
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
