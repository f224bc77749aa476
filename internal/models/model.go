package models

import "fmt"

// Transaction is a node in the tangle. Validates lists the 0-2 earlier
// transactions this one references; ValidatedBy lists the transactions that
// reference this one and only ever grows. Confirmation is derived from
// ValidatedBy at read time, never stored.
type Transaction struct {
	ID          string   `json:"id"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	Amount      int64    `json:"amount"`
	Timestamp   int64    `json:"timestamp"`
	Validates   []string `json:"validates"`
	ValidatedBy []string `json:"validatedBy"`
	Hash        string   `json:"hash"`
}

// Account holds a wallet balance plus the transaction history shown on the
// dashboard. Token is the bearer credential issued at registration.
type Account struct {
	ID           string        `json:"id"`
	Address      string        `json:"address"`
	Balance      int64         `json:"balance"`
	Token        string        `json:"token"`
	Transactions []Transaction `json:"transactions"`
}

// SimulatedHash builds the decorative fingerprint carried by every
// transaction. It is never verified anywhere.
func SimulatedHash(id string, timestamp int64) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("hash_%s_%d", short, timestamp)
}
