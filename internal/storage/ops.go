package storage

import (
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/Ssnowzx/Wallet-0201N/internal/models"
)

// Op is one operation inside an atomic commit. Operations are applied in
// order and see the writes of earlier operations in the same commit.
type Op interface {
	apply(txn *badger.Txn) error
}

// InsertTransaction writes a new transaction record and its recency index
// entry.
func InsertTransaction(tx models.Transaction) Op {
	return &insertTransactionOp{tx: tx}
}

type insertTransactionOp struct {
	tx models.Transaction
}

func (o *insertTransactionOp) apply(txn *badger.Txn) error {
	// the validatedBy set lives in the vb: keyspace, not in the record;
	// whatever the record is seeded with becomes membership keys
	record := o.tx
	record.ValidatedBy = nil
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := txn.Set(txKey(o.tx.ID), data); err != nil {
		return err
	}
	if err := txn.Set(tsKey(o.tx.Timestamp, o.tx.ID), []byte(o.tx.ID)); err != nil {
		return err
	}
	for _, validatorID := range o.tx.ValidatedBy {
		if err := txn.Set(vbKey(o.tx.ID, validatorID), []byte{}); err != nil {
			return err
		}
	}
	return nil
}

// AppendValidatedBy unions validatorID into the target transaction's
// validatedBy set by writing one membership key. Writing the same key
// twice is a no-op, and concurrent commits appending different validators
// write distinct keys without ever rewriting a shared record, so they
// commute and both survive.
func AppendValidatedBy(txID, validatorID string) Op {
	return &appendValidatedByOp{txID: txID, validatorID: validatorID}
}

type appendValidatedByOp struct {
	txID        string
	validatorID string
}

func (o *appendValidatedByOp) apply(txn *badger.Txn) error {
	// the target record itself is read but never written here
	if _, err := txn.Get(txKey(o.txID)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errors.New("cannot validate unknown transaction " + o.txID)
		}
		return err
	}
	return txn.Set(vbKey(o.txID, o.validatorID), []byte{})
}

// PutAccount writes the full account record and refreshes its address and
// token index entries.
func PutAccount(acct models.Account) Op {
	return &putAccountOp{acct: acct}
}

type putAccountOp struct {
	acct models.Account
}

func (o *putAccountOp) apply(txn *badger.Txn) error {
	data, err := json.Marshal(o.acct)
	if err != nil {
		return err
	}
	if err := txn.Set(acctKey(o.acct.ID), data); err != nil {
		return err
	}
	if err := txn.Set(addrKey(o.acct.Address), []byte(o.acct.ID)); err != nil {
		return err
	}
	return txn.Set(tokenKey(o.acct.Token), []byte(o.acct.ID))
}
