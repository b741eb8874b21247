// Package model defines the core domain models used throughout the application.
package model

import (
	"time"
)

// TransactionType describes the movement of money a bank message reports.
type TransactionType string

// Transaction type constants.
const (
	TypeDebit      TransactionType = "DEBIT"
	TypeCredit     TransactionType = "CREDIT"
	TypeTransfer   TransactionType = "TRANSFER"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeDebit, TypeCredit, TypeTransfer, TypeWithdrawal:
		return true
	}
	return false
}

// TransactionInfo is the structured result of parsing one bank notification
// message. It is created once by a parser and never mutated afterwards.
type TransactionInfo struct {
	Timestamp   time.Time
	Type        TransactionType
	Currency    string
	CardLast4   string
	Merchant    string
	Description string
	Reference   string
	BankName    string
	RawMessage  string
	Balance     *float64
	Amount      float64
}

// DefaultCurrency is assumed when a message does not state one.
const DefaultCurrency = "COP"
