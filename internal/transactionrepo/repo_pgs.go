// Package transactionrepo manages repository layer of transactions.
package transactionrepo

import (
	"context"
	"database/sql"

	"github.com/go-petr/card-bank/internal/accountrepo"
	"github.com/go-petr/card-bank/internal/domain"
	"github.com/go-petr/card-bank/pkg/dbpkg"
	"github.com/go-petr/card-bank/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns transaction RepoPGS scoped to an ongoing db transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns transaction RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createQuery = `
INSERT INTO
    transactions (account_id, type, amount, notes)
VALUES
    ($1, $2, $3, $4)
RETURNING id, account_id, type, amount, notes, created_at
`

// Create creates the transaction record and then returns it.
func (r *RepoPGS) Create(ctx context.Context, accountID int64, txType, amount, notes string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, accountID, txType, amount, notes)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.Type,
		&t.Amount,
		&t.Notes,
		&t.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transactions_account_id_fkey":
				return t, domain.ErrAccountNotFound
			case "transactions_amount_check":
				return t, domain.ErrInvalidAmount
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
	id, account_id, type, amount, notes, created_at
FROM transactions
WHERE id = $1
`

// Get returns the transaction with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.Type,
		&t.Amount,
		&t.Notes,
		&t.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listQuery = `
SELECT
	id, account_id, type, amount, notes, created_at
FROM transactions
WHERE account_id = $1
ORDER BY id DESC
LIMIT $2 OFFSET $3
`

// List returns the specified page of the account's transactions, newest first.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, arg.AccountID, arg.Limit, arg.Offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID,
			&t.AccountID,
			&t.Type,
			&t.Amount,
			&t.Notes,
			&t.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

// Deposit increases the account balance and appends the matching transaction
// record within a single db transaction.
//
// Either both writes commit or neither is observable.
func (r *RepoPGS) Deposit(ctx context.Context, cardNumber, amount string) (domain.TransactionTxResult, error) {
	return r.move(ctx, domain.Deposit, func(ctx context.Context, accounts *accountrepo.RepoPGS) (domain.Account, error) {
		return accounts.AddBalance(ctx, amount, cardNumber)
	}, amount)
}

// Withdraw decreases the account balance and appends the matching transaction
// record within a single db transaction.
//
// The account is matched by card number and CVV together; overdrafts are
// rejected by the balance check constraint before anything is written.
func (r *RepoPGS) Withdraw(ctx context.Context, cardNumber, cvv, amount string) (domain.TransactionTxResult, error) {
	return r.move(ctx, domain.Withdraw, func(ctx context.Context, accounts *accountrepo.RepoPGS) (domain.Account, error) {
		return accounts.SubtractBalance(ctx, amount, cardNumber, cvv)
	}, amount)
}

func (r *RepoPGS) move(
	ctx context.Context,
	txType string,
	changeBalance func(context.Context, *accountrepo.RepoPGS) (domain.Account, error),
	amount string,
) (domain.TransactionTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransactionTxResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	accountRepo := accountrepo.NewRepoPGS(tx)
	transactionRepo := NewTxRepoPGS(tx)

	result.Account, err = changeBalance(ctx, accountRepo)
	if err != nil {
		return result, err
	}

	notes := "Account Balance " + result.Account.Balance

	result.Transaction, err = transactionRepo.Create(ctx, result.Account.ID, txType, amount, notes)
	if err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.TransactionTxResult{}, errorspkg.ErrInternal
	}

	return result, nil
}
