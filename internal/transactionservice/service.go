// Package transactionservice manages business logic layer of transactions.
package transactionservice

import (
	"context"

	"github.com/go-petr/card-bank/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo provides data access layer interface needed by transaction service layer.
//
// Deposit and Withdraw apply the balance change and append the transaction
// record as one atomic unit keyed by the account row.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Repo interface {
	Deposit(ctx context.Context, cardNumber, amount string) (domain.TransactionTxResult, error)
	Withdraw(ctx context.Context, cardNumber, cvv, amount string) (domain.TransactionTxResult, error)
	List(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error)
}

// AccountGetter resolves card numbers to accounts.
type AccountGetter interface {
	GetByCardNumber(ctx context.Context, cardNumber string) (domain.Account, error)
}

// Service facilitates transaction service layer logic.
type Service struct {
	repo     Repo
	accounts AccountGetter
}

// New returns transaction service struct to manage transaction bussines logic.
func New(tr Repo, ag AccountGetter) *Service {
	return &Service{
		repo:     tr,
		accounts: ag,
	}
}

func validAmount(ctx context.Context, amount string) error {
	l := zerolog.Ctx(ctx)

	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.ErrInvalidAmount
	}

	if amountDecimal.LessThanOrEqual(decimal.Zero) {
		l.Info().Msg("non-positive amount rejected")
		return domain.ErrInvalidAmount
	}

	return nil
}

// Deposit adds the amount to the balance of the account with the given card
// number and records the movement.
func (s *Service) Deposit(ctx context.Context, cardNumber, amount string) (domain.TransactionTxResult, error) {
	if err := validAmount(ctx, amount); err != nil {
		return domain.TransactionTxResult{}, err
	}

	result, err := s.repo.Deposit(ctx, cardNumber, amount)
	if err != nil {
		return domain.TransactionTxResult{}, err
	}

	return result, nil
}

// Withdraw subtracts the amount from the balance of the account matching the
// given card number and CVV and records the movement.
//
// Unknown card numbers and wrong CVVs both surface as ErrBadCredentials.
func (s *Service) Withdraw(ctx context.Context, cardNumber, cvv, amount string) (domain.TransactionTxResult, error) {
	if err := validAmount(ctx, amount); err != nil {
		return domain.TransactionTxResult{}, err
	}

	result, err := s.repo.Withdraw(ctx, cardNumber, cvv, amount)
	if err != nil {
		return domain.TransactionTxResult{}, err
	}

	return result, nil
}

// List returns the given page of the account's transactions after checking
// that the account belongs to the owner.
func (s *Service) List(ctx context.Context, owner, cardNumber string, pageSize, pageID int32) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	account, err := s.accounts.GetByCardNumber(ctx, cardNumber)
	if err != nil {
		return nil, err
	}

	if account.Owner != owner {
		l.Warn().Msg("transactions of a foreign account requested")
		return nil, domain.ErrAccountOwnerMismatch
	}

	arg := domain.ListTransactionsParams{
		AccountID: account.ID,
		Limit:     pageSize,
		Offset:    (pageID - 1) * pageSize,
	}

	transactions, err := s.repo.List(ctx, arg)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}
