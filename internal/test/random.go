package test

import (
	"time"

	"github.com/go-petr/card-bank/internal/domain"
	"github.com/go-petr/card-bank/pkg/randompkg"
)

// RandomAccount returns a random account owned by the given owner.
func RandomAccount(owner string) domain.Account {
	return domain.Account{
		ID:         int64(randompkg.IntBetween(1, 100)),
		Owner:      owner,
		CardNumber: randompkg.CardNumber(),
		CVV:        randompkg.CVV(),
		Balance:    randompkg.MoneyAmountBetween(1000, 10_000),
		CreatedAt:  time.Now().Truncate(time.Second).UTC(),
	}
}

// RandomUser returns a random user with the given hashed password.
func RandomUser(hashedPassword string) domain.User {
	return domain.User{
		ID:             int64(randompkg.IntBetween(1, 100)),
		Name:           randompkg.Owner(),
		Email:          randompkg.Email(),
		Phone:          randompkg.Phone(),
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now().Truncate(time.Second).UTC(),
	}
}

// RandomTransaction returns a random transaction of the given type for the
// given account.
func RandomTransaction(accountID int64, txType string) domain.Transaction {
	return domain.Transaction{
		ID:        int64(randompkg.IntBetween(1, 100)),
		AccountID: accountID,
		Type:      txType,
		Amount:    randompkg.MoneyAmountBetween(1, 1000),
		Notes:     "Account Balance " + randompkg.MoneyAmountBetween(1000, 10_000),
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}
