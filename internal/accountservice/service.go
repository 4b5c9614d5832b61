// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/go-petr/card-bank/internal/domain"
	"github.com/go-petr/card-bank/pkg/randompkg"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	ExistsByCardNumber(ctx context.Context, cardNumber string) (bool, error)
	ListByOwner(ctx context.Context, owner string) ([]domain.Account, error)
}

// OwnerGetter resolves the owner of an account to an existing user.
type OwnerGetter interface {
	Get(ctx context.Context, email string) (domain.User, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo   Repo
	owners OwnerGetter
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo, og OwnerGetter) *Service {
	return &Service{
		repo:   ar,
		owners: og,
	}
}

// Create provisions an account with zero balance and a unique card number
// for the given owner.
//
// Card number candidates are drawn until one is free. The loop is unbounded
// but terminates almost surely given the 16-digit space; an insert that still
// hits the uniqueness constraint (two writers passing the existence check with
// the same candidate) retries with a fresh candidate as well.
func (s *Service) Create(ctx context.Context, owner string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if _, err := s.owners.Get(ctx, owner); err != nil {
		if err == domain.ErrUserNotFound {
			return domain.Account{}, domain.ErrOwnerNotFound
		}

		return domain.Account{}, err
	}

	for {
		cardNumber := randompkg.CardNumber()

		exists, err := s.repo.ExistsByCardNumber(ctx, cardNumber)
		if err != nil {
			return domain.Account{}, err
		}

		if exists {
			l.Info().Msg("card number collision, retrying with a fresh candidate")
			continue
		}

		arg := domain.CreateAccountParams{
			Owner:      owner,
			CardNumber: cardNumber,
			CVV:        randompkg.CVV(),
		}

		account, err := s.repo.Create(ctx, arg)
		if err == domain.ErrCardNumberAlreadyExists {
			l.Info().Msg("card number collision on insert, retrying with a fresh candidate")
			continue
		}

		return account, err
	}
}

// List returns all accounts that are owned by the given user.
func (s *Service) List(ctx context.Context, owner string) ([]domain.Account, error) {
	if _, err := s.owners.Get(ctx, owner); err != nil {
		if err == domain.ErrUserNotFound {
			return nil, domain.ErrOwnerNotFound
		}

		return nil, err
	}

	accounts, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	return accounts, nil
}
