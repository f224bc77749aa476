package tangle

import "github.com/Ssnowzx/Wallet-0201N/internal/models"

// ConfirmationThreshold is the number of incoming references a transaction
// needs before it counts as confirmed.
const ConfirmationThreshold = 2

// IsConfirmed derives confirmation from the ValidatedBy set. There is no
// stored confirmation flag anywhere; this predicate is the only source of
// truth.
func IsConfirmed(tx models.Transaction) bool {
	return len(tx.ValidatedBy) >= ConfirmationThreshold
}

// Pending returns the transactions from pool that are still eligible to be
// validated, preserving order.
func Pending(pool []models.Transaction) []models.Transaction {
	pending := make([]models.Transaction, 0, len(pool))
	for _, tx := range pool {
		if !IsConfirmed(tx) {
			pending = append(pending, tx)
		}
	}
	return pending
}
