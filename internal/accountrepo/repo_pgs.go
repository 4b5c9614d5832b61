// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/go-petr/card-bank/internal/domain"
	"github.com/go-petr/card-bank/pkg/dbpkg"
	"github.com/go-petr/card-bank/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    accounts (owner, card_number, cvv, balance)
VALUES
    ($1, $2, $3, 0)
RETURNING id, owner, card_number, cvv, balance, created_at
`

// Create creates an account with zero balance and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, arg.Owner, arg.CardNumber, arg.CVV)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.CardNumber,
		&a.CVV,
		&a.Balance,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "accounts_owner_fkey":
				return a, domain.ErrOwnerNotFound
			case "accounts_card_number_key":
				return a, domain.ErrCardNumberAlreadyExists
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const existsByCardNumberQuery = `
SELECT EXISTS (
	SELECT 1 FROM accounts WHERE card_number = $1
)
`

// ExistsByCardNumber reports whether any account holds the given card number.
func (r *RepoPGS) ExistsByCardNumber(ctx context.Context, cardNumber string) (bool, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, existsByCardNumberQuery, cardNumber)

	var exists bool

	if err := row.Scan(&exists); err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	return exists, nil
}

const getByCardNumberQuery = `
SELECT
	id, owner, card_number, cvv, balance, created_at
FROM accounts
WHERE card_number = $1
`

// GetByCardNumber returns the account with the given card number.
func (r *RepoPGS) GetByCardNumber(ctx context.Context, cardNumber string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getByCardNumberQuery, cardNumber)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.CardNumber,
		&a.CVV,
		&a.Balance,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const listByOwnerQuery = `
SELECT
	id, owner, card_number, cvv, balance, created_at
FROM accounts
WHERE owner = $1
ORDER BY id
`

// ListByOwner returns all accounts of the given owner.
func (r *RepoPGS) ListByOwner(ctx context.Context, owner string) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByOwnerQuery, owner)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.Owner, &a.CardNumber, &a.CVV, &a.Balance, &a.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE card_number = $2
RETURNING id, owner, card_number, cvv, balance, created_at
`

// AddBalance atomically increases the balance of the account with the given
// card number and returns the changed account.
//
// The read-modify-write happens inside the single UPDATE statement, so
// concurrent movements against the same account are serialized by the row lock.
func (r *RepoPGS) AddBalance(ctx context.Context, amount, cardNumber string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, addBalanceQuery, amount, cardNumber)

	return scanBalanceChange(l, row)
}

const subtractBalanceQuery = `
UPDATE accounts
SET balance = balance - $1
WHERE card_number = $2 AND cvv = $3
RETURNING id, owner, card_number, cvv, balance, created_at
`

// SubtractBalance atomically decreases the balance of the account matching
// both the card number and the CVV and returns the changed account.
//
// A missing account and a wrong CVV are both reported as ErrBadCredentials.
// The accounts_balance_check constraint rejects overdrafts against the same
// row version the decrement reads, closing the check-then-act gap.
func (r *RepoPGS) SubtractBalance(ctx context.Context, amount, cardNumber, cvv string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, subtractBalanceQuery, amount, cardNumber, cvv)

	return scanBalanceChange(l, row)
}

func scanBalanceChange(l *zerolog.Logger, row *sql.Row) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.CardNumber,
		&a.CVV,
		&a.Balance,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrBadCredentials
		}

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				return a, domain.ErrInsufficientBalance
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}
