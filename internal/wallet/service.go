package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ssnowzx/Wallet-0201N/internal/fault"
	"github.com/Ssnowzx/Wallet-0201N/internal/models"
	"github.com/Ssnowzx/Wallet-0201N/internal/storage"
	"github.com/Ssnowzx/Wallet-0201N/internal/tangle"
)

// DefaultTipWindow bounds how many recent transactions tip selection reads.
const DefaultTipWindow = 200

// DefaultStartingBalance is credited to a newly registered account.
const DefaultStartingBalance = 100

// Service runs the transaction issuance protocol: it validates a transfer
// request, selects tips for the new transaction and commits everything in
// one atomic batch.
type Service struct {
	store    *storage.Store
	selector tangle.Selector
	window   int
	logger   zerolog.Logger
}

func NewService(store *storage.Store, selector tangle.Selector, window int, logger zerolog.Logger) *Service {
	if window <= 0 {
		window = DefaultTipWindow
	}
	return &Service{store: store, selector: selector, window: window, logger: logger}
}

// Authenticate resolves a bearer token to its account.
func (s *Service) Authenticate(token string) (models.Account, error) {
	if token == "" {
		return models.Account{}, fault.ErrMissingToken
	}
	acct, err := s.store.AccountByToken(token)
	if errors.Is(err, fault.ErrAccountNotFound) {
		return models.Account{}, fault.ErrUnknownToken
	}
	return acct, err
}

// Register creates a new account with a fresh address and bearer token.
func (s *Service) Register(startingBalance int64) (models.Account, error) {
	if startingBalance < 0 {
		return models.Account{}, fault.ErrInvalidAmount
	}
	if startingBalance == 0 {
		startingBalance = DefaultStartingBalance
	}
	acct := models.Account{
		ID:           uuid.NewString(),
		Address:      NewAccountAddress(),
		Balance:      startingBalance,
		Token:        uuid.NewString(),
		Transactions: []models.Transaction{},
	}
	if err := s.store.Commit([]storage.Op{storage.PutAccount(acct)}); err != nil {
		return models.Account{}, err
	}
	s.logger.Info().Str("account_id", acct.ID).Str("address", acct.Address).Msg("Account registered")
	return acct, nil
}

// Issue performs one transfer. All preconditions are checked before any
// write; the transfer itself is a single atomic commit covering the new
// transaction, the validatedBy appends on its tips and both balance updates.
// Returns the new transaction's ID and the IDs it validates.
func (s *Service) Issue(ctx context.Context, token, toAddress string, amount int64) (string, []string, error) {
	sender, err := s.Authenticate(token)
	if err != nil {
		return "", nil, err
	}

	if amount <= 0 {
		return "", nil, fault.ErrInvalidAmount
	}
	if toAddress == "" {
		return "", nil, fault.ErrMissingRecipient
	}
	if sender.Balance < amount {
		return "", nil, fault.ErrInsufficientBalance
	}
	if toAddress == sender.Address {
		return "", nil, fault.ErrSelfTransfer
	}

	recipient, err := s.store.AccountByAddress(toAddress)
	if errors.Is(err, fault.ErrAccountNotFound) {
		return "", nil, fault.ErrRecipientNotFound
	}
	if err != nil {
		return "", nil, err
	}
	if recipient.ID == "" {
		return "", nil, fault.ErrInconsistentAccount
	}

	pool, err := s.store.QueryRecent(s.window)
	if err != nil {
		return "", nil, err
	}
	tips := s.selector.SelectTips(pool)
	if len(tips) < tangle.MaxTips {
		s.logger.Warn().Int("tips", len(tips)).Msg("Fewer than 2 pending tips available")
	}

	now := time.Now().UnixMilli()
	tx := models.Transaction{
		ID:          uuid.NewString(),
		From:        sender.Address,
		To:          toAddress,
		Amount:      amount,
		Timestamp:   now,
		Validates:   tips,
		ValidatedBy: []string{},
	}
	tx.Hash = models.SimulatedHash(tx.ID, now)

	ops := make([]storage.Op, 0, len(tips)+3)
	ops = append(ops, storage.InsertTransaction(tx))
	for _, tipID := range tips {
		ops = append(ops, storage.AppendValidatedBy(tipID, tx.ID))
	}

	sender.Balance -= amount
	sender.Transactions = append(sender.Transactions, tx)
	ops = append(ops, storage.PutAccount(sender))

	recipient.Balance += amount
	recipient.Transactions = append(recipient.Transactions, tx)
	ops = append(ops, storage.PutAccount(recipient))

	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	if err := s.store.Commit(ops); err != nil {
		return "", nil, err
	}

	s.logger.Info().
		Str("tx_id", tx.ID).
		Str("from", sender.Address).
		Str("to", toAddress).
		Int64("amount", amount).
		Strs("validates", tips).
		Msg("Transaction issued")
	return tx.ID, tips, nil
}
