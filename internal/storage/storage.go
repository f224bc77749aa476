package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/Ssnowzx/Wallet-0201N/internal/fault"
	"github.com/Ssnowzx/Wallet-0201N/internal/models"
)

// Key layout:
//
//	tx:<id>              -> Transaction JSON (validatedBy not stored here)
//	vb:<id>:<validator>  -> membership key, one per incoming reference
//	ts:<padded>:<id>     -> tx id (recency index, lexicographic = chronological)
//	acct:<id>            -> Account JSON
//	addr:<address>       -> account id
//	tok:<token>          -> account id
//
// validatedBy lives in the vb: keyspace, one blind-written key per member.
// Appends from concurrent commits write distinct keys, never read-modify-
// write a shared record, so they commute and both survive; the set is
// materialized on every read.
const (
	txPrefix    = "tx:"
	vbPrefix    = "vb:"
	tsPrefix    = "ts:"
	acctPrefix  = "acct:"
	addrPrefix  = "addr:"
	tokenPrefix = "tok:"
)

// Store is the durable transaction and account store backed by BadgerDB.
// Every mutation goes through Commit, which applies a batch of operations in
// a single Badger transaction, all-or-nothing.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
}

func NewStore(db *badger.DB, logger zerolog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func txKey(id string) []byte { return []byte(txPrefix + id) }

func vbKey(txID, validatorID string) []byte {
	return []byte(vbPrefix + txID + ":" + validatorID)
}

func tsKey(ts int64, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", tsPrefix, ts, id))
}
func acctKey(id string) []byte { return []byte(acctPrefix + id) }

func addrKey(address string) []byte { return []byte(addrPrefix + address) }

func tokenKey(token string) []byte { return []byte(tokenPrefix + token) }

// GetTransaction is a point read by ID.
func (s *Store) GetTransaction(id string) (models.Transaction, error) {
	var tx models.Transaction
	err := s.db.View(func(txn *badger.Txn) error {
		if err := readJSON(txn, txKey(id), &tx); err != nil {
			return err
		}
		return materializeValidatedBy(txn, &tx)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Transaction{}, fault.ErrTransactionNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("tx_id", id).Msg("Failed to read transaction")
		return models.Transaction{}, err
	}
	return tx, nil
}

// QueryRecent returns up to limit transactions, newest first, walking the
// recency index backwards. This is the bounded window tip selection reads.
func (s *Store) QueryRecent(limit int) ([]models.Transaction, error) {
	txs := make([]models.Transaction, 0, limit)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		iter := txn.NewIterator(opts)

		ids := make([]string, 0, limit)
		prefix := []byte(tsPrefix)
		// seek past the end of the ts: keyspace, then walk down
		for iter.Seek([]byte(tsPrefix + "\xff")); iter.ValidForPrefix(prefix) && len(ids) < limit; iter.Next() {
			val, err := iter.Item().ValueCopy(nil)
			if err != nil {
				iter.Close()
				return err
			}
			ids = append(ids, string(val))
		}
		iter.Close()

		for _, id := range ids {
			var tx models.Transaction
			if err := readJSON(txn, txKey(id), &tx); err != nil {
				return err
			}
			if err := materializeValidatedBy(txn, &tx); err != nil {
				return err
			}
			txs = append(txs, tx)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to query recent transactions")
		return nil, err
	}
	return txs, nil
}

// Transactions returns every transaction in the store. The simulated ledger
// stays small; replenishment and the stats endpoint read it whole.
func (s *Store) Transactions() ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := txn.NewIterator(opts)

		prefix := []byte(txPrefix)
		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			var tx models.Transaction
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &tx)
			})
			if err != nil {
				iter.Close()
				return err
			}
			txs = append(txs, tx)
		}
		iter.Close()

		for i := range txs {
			if err := materializeValidatedBy(txn, &txs[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read all transactions")
		return nil, err
	}
	return txs, nil
}

// TransactionsPage returns one page of transactions plus the total count.
func (s *Store) TransactionsPage(page, limit int) ([]models.Transaction, int, error) {
	if page < 1 || limit < 1 {
		return nil, 0, fault.ErrInvalidPage
	}
	all, err := s.Transactions()
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	offset := (page - 1) * limit
	if offset >= total {
		return []models.Transaction{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

// GetAccount is a point read by account ID.
func (s *Store) GetAccount(id string) (models.Account, error) {
	var acct models.Account
	err := s.db.View(func(txn *badger.Txn) error {
		return readJSON(txn, acctKey(id), &acct)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Account{}, fault.ErrAccountNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", id).Msg("Failed to read account")
		return models.Account{}, err
	}
	return acct, nil
}

// AccountByAddress resolves an address through the addr: index.
func (s *Store) AccountByAddress(address string) (models.Account, error) {
	return s.accountByIndex(addrKey(address))
}

// AccountByToken resolves a bearer token through the tok: index.
func (s *Store) AccountByToken(token string) (models.Account, error) {
	return s.accountByIndex(tokenKey(token))
}

func (s *Store) accountByIndex(key []byte) (models.Account, error) {
	var acct models.Account
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return readJSON(txn, acctKey(string(id)), &acct)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Account{}, fault.ErrAccountNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to resolve account index")
		return models.Account{}, err
	}
	return acct, nil
}

// Commit applies ops in order inside one Badger transaction. Either every
// operation lands or none do. A conflict with a concurrent commit surfaces
// as fault.ErrCommitFailed; the caller may retry.
func (s *Store) Commit(ops []Op) error {
	if len(ops) == 0 {
		return nil
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, op := range ops {
			if err := op.apply(txn); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Int("ops", len(ops)).Msg("Commit failed")
		return fault.ErrCommitFailed
	}
	return nil
}

// materializeValidatedBy rebuilds the validatedBy set from the vb: keyspace.
// The stored record never carries the set; this is the only way to read it.
func materializeValidatedBy(txn *badger.Txn, tx *models.Transaction) error {
	ids := []string{}
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	iter := txn.NewIterator(opts)
	defer iter.Close()

	prefix := []byte(vbPrefix + tx.ID + ":")
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		key := iter.Item().Key()
		ids = append(ids, string(key[len(prefix):]))
	}
	tx.ValidatedBy = ids
	return nil
}

func readJSON(txn *badger.Txn, key []byte, out interface{}) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}
