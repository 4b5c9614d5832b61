package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrOwnerNotFound indicates that the owner for the account is not found.
	ErrOwnerNotFound = errors.New("owner not found")
	// ErrCardNumberAlreadyExists indicates a card number collision on account creation.
	ErrCardNumberAlreadyExists = errors.New("card number already exists")
	// ErrAccountOwnerMismatch indicates that the account is not owned by the given user.
	ErrAccountOwnerMismatch = errors.New("account does not belong to the user")
)

// Account holds card credentials and the current balance for its owner.
//
// The balance is mutated only by deposit and withdraw operations and
// is never negative.
type Account struct {
	ID         int64     `json:"id"`
	Owner      string    `json:"owner"`
	CardNumber string    `json:"card_number"`
	CVV        string    `json:"cvv"`
	Balance    string    `json:"balance"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateAccountParams is the input data to create an account.
type CreateAccountParams struct {
	Owner      string `json:"owner"`
	CardNumber string `json:"card_number"`
	CVV        string `json:"cvv"`
}
