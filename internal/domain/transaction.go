package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidAmount indicates a malformed or non-positive amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrBadCredentials indicates that no account matches the given card credentials.
	// Unknown card numbers and wrong CVVs are deliberately indistinguishable.
	ErrBadCredentials = errors.New("bad credentials")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Transaction type names as stored in the transactions table.
const (
	Deposit  = "DEPOSIT"
	Withdraw = "WITHDRAW"
)

// Transaction holds a single immutable balance movement of an account.
type Transaction struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Type      string    `json:"type"`
	Amount    string    `json:"amount"` // magnitude of the movement, always positive
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// ListTransactionsParams is the input data to page through an account's transactions.
type ListTransactionsParams struct {
	AccountID int64 `json:"account_id"`
	Limit     int32 `json:"limit"`
	Offset    int32 `json:"offset"`
}

// TransactionTxResult is the result of the deposit or withdraw db transaction.
type TransactionTxResult struct {
	Transaction Transaction `json:"transaction"`
	Account     Account     `json:"account"`
}
