// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TransactionDirection indicates whether money left or entered the account.
type TransactionDirection string

// Transaction direction constants.
const (
	DirectionDebit  TransactionDirection = "debit"
	DirectionCredit TransactionDirection = "credit"
)

// Transaction represents a single bank-statement row from any source.
// Amount is a magnitude; Direction carries the debit/credit semantics.
type Transaction struct {
	Date        time.Time
	Description string
	Category    Category // assigned by the classifier, empty until then
	Direction   TransactionDirection
	Amount      float64
}

// IsDebit reports whether the transaction is an outflow.
func (t *Transaction) IsDebit() bool {
	return t.Direction == DirectionDebit
}

// IsCredit reports whether the transaction is an inflow.
func (t *Transaction) IsCredit() bool {
	return t.Direction == DirectionCredit
}

// GenerateHash creates a unique hash for duplicate detection across
// uploaded statement files.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Description,
		t.Direction)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
