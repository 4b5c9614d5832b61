// Package test provides shared test helpers.
package test

import (
	"context"
	"testing"

	"github.com/go-petr/card-bank/internal/accountrepo"
	"github.com/go-petr/card-bank/internal/domain"
	"github.com/go-petr/card-bank/internal/transactionrepo"
	"github.com/go-petr/card-bank/internal/userrepo"
	"github.com/go-petr/card-bank/pkg/dbpkg"
	"github.com/go-petr/card-bank/pkg/passpkg"
	"github.com/go-petr/card-bank/pkg/randompkg"
)

// SeedUser creates a random User inside a test transaction.
func SeedUser(t *testing.T, tx dbpkg.SQLInterface) domain.User {
	t.Helper()

	hashedPassword, err := passpkg.Hash(randompkg.String(32))
	if err != nil {
		t.Fatalf("passpkg.Hash(randompkg.String(32)) returned error: %v", err)
	}

	arg := domain.CreateUserParams{
		Name:           randompkg.Owner(),
		Email:          randompkg.Email(),
		Phone:          randompkg.Phone(),
		HashedPassword: hashedPassword,
	}

	userRepo := userrepo.NewRepoPGS(tx)

	user, err := userRepo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("userRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return user
}

// SeedAccount creates an Account with a random card inside a test transaction.
func SeedAccount(t *testing.T, tx dbpkg.SQLInterface, owner string) domain.Account {
	t.Helper()

	arg := domain.CreateAccountParams{
		Owner:      owner,
		CardNumber: randompkg.CardNumber(),
		CVV:        randompkg.CVV(),
	}

	accountRepo := accountrepo.NewRepoPGS(tx)

	account, err := accountRepo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return account
}

// SeedAccountWithBalance creates an Account and deposits the given amount
// inside a test transaction.
func SeedAccountWithBalance(t *testing.T, tx dbpkg.SQLInterface, owner, balance string) domain.Account {
	t.Helper()

	account := SeedAccount(t, tx, owner)

	accountRepo := accountrepo.NewRepoPGS(tx)

	funded, err := accountRepo.AddBalance(context.Background(), balance, account.CardNumber)
	if err != nil {
		stmt := `accountRepo.AddBalance(context.Background(), %v, %v) returned error: %v`
		t.Fatalf(stmt, balance, account.CardNumber, err)
	}

	return funded
}

// SeedTransaction creates a Transaction inside a test transaction.
func SeedTransaction(t *testing.T, tx dbpkg.SQLInterface, accountID int64, txType, amount, notes string) domain.Transaction {
	t.Helper()

	transactionRepo := transactionrepo.NewTxRepoPGS(tx)

	transaction, err := transactionRepo.Create(context.Background(), accountID, txType, amount, notes)
	if err != nil {
		stmt := `transactionRepo.Create(context.Background(), %v, %v, %v, %v) returned error: %v`
		t.Fatalf(stmt, accountID, txType, amount, notes, err)
	}

	return transaction
}

// SeedTransactions creates count deposit Transactions with random amounts
// inside a test transaction.
func SeedTransactions(t *testing.T, tx dbpkg.SQLInterface, count int, accountID int64) []domain.Transaction {
	t.Helper()

	transactions := make([]domain.Transaction, count)

	for i := range transactions {
		amount := randompkg.MoneyAmountBetween(1, 1000)
		transactions[i] = SeedTransaction(t, tx, accountID, domain.Deposit, amount, "Account Balance "+amount)
	}

	return transactions
}
