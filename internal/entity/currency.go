package entity

import (
	"time"

	"github.com/stunity/backend/pkg/enum"
)

type TransactionType string

var (
	TransactionCredit = enum.New(TransactionType("credit"))
	TransactionDebit  = enum.New(TransactionType("debit"))
)

// CurrencyAccount holds a user's spendable coin balance. The balance is
// always equal to the sum of all transaction amounts of the user.
type CurrencyAccount struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID  string `gorm:"primaryKey"`
	Balance int64
}

// CurrencyTransaction is an append-only ledger entry. Amount is positive
// for credits and negative for debits.
type CurrencyTransaction struct {
	Base

	UserID   string `gorm:"index"`
	Amount   int64
	Type     TransactionType
	Source   string
	SourceID string
}
