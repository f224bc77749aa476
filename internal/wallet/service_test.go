package wallet

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ssnowzx/Wallet-0201N/internal/fault"
	"github.com/Ssnowzx/Wallet-0201N/internal/models"
	"github.com/Ssnowzx/Wallet-0201N/internal/storage"
	"github.com/Ssnowzx/Wallet-0201N/internal/tangle"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return storage.NewStore(db, zerolog.Nop())
}

func newTestService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	store := newTestStore(t)
	selector := tangle.NewPrioritySelector(IsSyntheticAddress)
	return NewService(store, selector, DefaultTipWindow, zerolog.Nop()), store
}

func seedPendingTx(t *testing.T, store *storage.Store, id, from string, ts int64) {
	t.Helper()
	tx := models.Transaction{
		ID: id, From: from, To: "addr_sink", Amount: 1,
		Timestamp: ts, Validates: []string{}, ValidatedBy: []string{},
		Hash: models.SimulatedHash(id, ts),
	}
	require.NoError(t, store.Commit([]storage.Op{storage.InsertTransaction(tx)}))
}

func TestRegisterAssignsDistinctAddresses(t *testing.T) {
	svc, _ := newTestService(t)

	a, err := svc.Register(0)
	require.NoError(t, err)
	b, err := svc.Register(0)
	require.NoError(t, err)

	assert.Equal(t, int64(DefaultStartingBalance), a.Balance)
	assert.NotEqual(t, a.Address, b.Address)
	assert.NotEqual(t, a.Token, b.Token)
	assert.False(t, IsSyntheticAddress(a.Address))
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	acct, err := svc.Register(50)
	require.NoError(t, err)

	got, err := svc.Authenticate(acct.Token)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)

	_, err = svc.Authenticate("")
	assert.ErrorIs(t, err, fault.ErrMissingToken)

	_, err = svc.Authenticate("nope")
	assert.ErrorIs(t, err, fault.ErrUnknownToken)
}

func TestIssueTransferWithTwoRealTips(t *testing.T) {
	svc, store := newTestService(t)
	sender, err := svc.Register(100)
	require.NoError(t, err)
	recipient, err := svc.Register(100)
	require.NoError(t, err)

	seedPendingTx(t, store, "tip1", "addr_other1", 1000)
	seedPendingTx(t, store, "tip2", "addr_other2", 1001)

	txID, validates, err := svc.Issue(context.Background(), sender.Token, recipient.Address, 30)
	require.NoError(t, err)
	require.Len(t, validates, 2)
	assert.ElementsMatch(t, []string{"tip1", "tip2"}, validates)

	gotSender, err := store.GetAccount(sender.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), gotSender.Balance)
	require.Len(t, gotSender.Transactions, 1)
	assert.Equal(t, txID, gotSender.Transactions[0].ID)

	gotRecipient, err := store.GetAccount(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(130), gotRecipient.Balance)
	require.Len(t, gotRecipient.Transactions, 1)

	for _, tipID := range validates {
		tip, err := store.GetTransaction(tipID)
		require.NoError(t, err)
		assert.Contains(t, tip.ValidatedBy, txID)
	}

	tx, err := store.GetTransaction(txID)
	require.NoError(t, err)
	assert.Equal(t, sender.Address, tx.From)
	assert.Equal(t, recipient.Address, tx.To)
	assert.Equal(t, int64(30), tx.Amount)
	assert.Empty(t, tx.ValidatedBy)
	assert.Equal(t, models.SimulatedHash(tx.ID, tx.Timestamp), tx.Hash)
}

func TestIssueInsufficientBalance(t *testing.T) {
	svc, store := newTestService(t)
	sender, err := svc.Register(10)
	require.NoError(t, err)
	recipient, err := svc.Register(100)
	require.NoError(t, err)

	_, _, err = svc.Issue(context.Background(), sender.Token, recipient.Address, 30)
	assert.ErrorIs(t, err, fault.ErrInsufficientBalance)

	// no mutation happened
	gotSender, err := store.GetAccount(sender.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), gotSender.Balance)
	assert.Empty(t, gotSender.Transactions)

	gotRecipient, err := store.GetAccount(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), gotRecipient.Balance)

	all, err := store.Transactions()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestIssueSelfTransfer(t *testing.T) {
	svc, store := newTestService(t)
	sender, err := svc.Register(100)
	require.NoError(t, err)

	_, _, err = svc.Issue(context.Background(), sender.Token, sender.Address, 10)
	assert.ErrorIs(t, err, fault.ErrSelfTransfer)

	all, err := store.Transactions()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestIssueInvalidArguments(t *testing.T) {
	svc, _ := newTestService(t)
	sender, err := svc.Register(100)
	require.NoError(t, err)

	_, _, err = svc.Issue(context.Background(), sender.Token, "addr_x", 0)
	assert.ErrorIs(t, err, fault.ErrInvalidAmount)

	_, _, err = svc.Issue(context.Background(), sender.Token, "addr_x", -5)
	assert.ErrorIs(t, err, fault.ErrInvalidAmount)

	_, _, err = svc.Issue(context.Background(), sender.Token, "", 10)
	assert.ErrorIs(t, err, fault.ErrMissingRecipient)
}

func TestIssueUnknownRecipient(t *testing.T) {
	svc, _ := newTestService(t)
	sender, err := svc.Register(100)
	require.NoError(t, err)

	_, _, err = svc.Issue(context.Background(), sender.Token, "addr_nobody", 10)
	assert.ErrorIs(t, err, fault.ErrRecipientNotFound)
}

func TestIssueWithEmptyPool(t *testing.T) {
	svc, store := newTestService(t)
	sender, err := svc.Register(100)
	require.NoError(t, err)
	recipient, err := svc.Register(100)
	require.NoError(t, err)

	txID, validates, err := svc.Issue(context.Background(), sender.Token, recipient.Address, 10)
	require.NoError(t, err)

	// a sparse tangle is valid: no tips means no references
	assert.Empty(t, validates)
	tx, err := store.GetTransaction(txID)
	require.NoError(t, err)
	assert.Empty(t, tx.Validates)
}

func TestIssuePrefersRealTips(t *testing.T) {
	svc, store := newTestService(t)
	sender, err := svc.Register(100)
	require.NoError(t, err)
	recipient, err := svc.Register(100)
	require.NoError(t, err)

	seedPendingTx(t, store, "real1", "addr_r1", 1000)
	seedPendingTx(t, store, "real2", "addr_r2", 1001)
	seedPendingTx(t, store, "dummy1", SyntheticAddressPrefix+"a", 1002)
	seedPendingTx(t, store, "dummy2", SyntheticAddressPrefix+"b", 1003)

	_, validates, err := svc.Issue(context.Background(), sender.Token, recipient.Address, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"real1", "real2"}, validates)
}
