package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/amirphl/topup-gateway/models"
	testingutil "github.com/amirphl/topup-gateway/testing"
	"github.com/amirphl/topup-gateway/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Accounts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	accounts := store.Accounts()

	t.Run("EnsureCreatesWithZeroBalance", func(t *testing.T) {
		account, created, err := accounts.Ensure(ctx, &models.Account{AccountID: "100", Balance: decimal.NewFromInt(99)})
		require.NoError(t, err)
		assert.True(t, created)
		assert.True(t, account.Balance.IsZero())
	})

	t.Run("EnsureKeepsExistingReferrer", func(t *testing.T) {
		_, _, err := accounts.Ensure(ctx, &models.Account{AccountID: "200", ReferrerID: utils.ToPtr("100")})
		require.NoError(t, err)

		account, created, err := accounts.Ensure(ctx, &models.Account{AccountID: "200", ReferrerID: utils.ToPtr("300")})
		require.NoError(t, err)
		assert.False(t, created)
		require.NotNil(t, account.ReferrerID)
		assert.Equal(t, "100", *account.ReferrerID)
	})

	t.Run("Credit", func(t *testing.T) {
		account, err := accounts.Credit(ctx, "100", decimal.RequireFromString("12.50"))
		require.NoError(t, err)
		assert.Equal(t, "12.50", utils.FormatAmount(account.Balance))

		account, err = accounts.Credit(ctx, "100", decimal.RequireFromString("0.50"))
		require.NoError(t, err)
		assert.Equal(t, "13.00", utils.FormatAmount(account.Balance))
	})

	t.Run("CreditUnknownAccount", func(t *testing.T) {
		_, err := accounts.Credit(ctx, "missing", decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("CountReferred", func(t *testing.T) {
		count, err := accounts.CountReferred(ctx, "100")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("ByAccountIDMissing", func(t *testing.T) {
		account, err := accounts.ByAccountID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, account)
	})
}

func TestMemoryStore_PendingOrders(t *testing.T) {
	ctx := context.Background()
	orders := NewMemoryStore().PendingOrders()

	order := testingutil.NewTestPendingOrder("100", decimal.NewFromInt(100))
	require.NoError(t, orders.Save(ctx, order))

	t.Run("DuplicateReference", func(t *testing.T) {
		dup := *order
		assert.ErrorIs(t, orders.Save(ctx, &dup), ErrDuplicateOrderRef)
	})

	t.Run("ByOrderRefDoesNotConsume", func(t *testing.T) {
		found, err := orders.ByOrderRef(ctx, order.OrderRef)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "100", found.AccountID)
	})

	t.Run("PopOnce", func(t *testing.T) {
		popped, err := orders.Pop(ctx, order.OrderRef)
		require.NoError(t, err)
		require.NotNil(t, popped)
		assert.True(t, decimal.NewFromInt(100).Equal(popped.Amount))

		popped, err = orders.Pop(ctx, order.OrderRef)
		require.NoError(t, err)
		assert.Nil(t, popped)
	})
}

func TestMemoryStore_ConcurrentPop(t *testing.T) {
	ctx := context.Background()
	orders := NewMemoryStore().PendingOrders()

	order := testingutil.NewTestPendingOrder("100", decimal.NewFromInt(50))
	require.NoError(t, orders.Save(ctx, order))

	const workers = 32
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			popped, err := orders.Pop(ctx, order.OrderRef)
			assert.NoError(t, err)
			if popped != nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestMemoryStore_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, _, err := store.Accounts().Ensure(ctx, &models.Account{AccountID: "100"})
	require.NoError(t, err)
	order := testingutil.NewTestPendingOrder("100", decimal.NewFromInt(100))
	require.NoError(t, store.PendingOrders().Save(ctx, order))

	boom := errors.New("boom")
	err = store.WithTransaction(ctx, func(txCtx context.Context) error {
		popped, err := store.PendingOrders().Pop(txCtx, order.OrderRef)
		require.NoError(t, err)
		require.NotNil(t, popped)

		_, err = store.Accounts().Credit(txCtx, "100", popped.Amount)
		require.NoError(t, err)
		require.NoError(t, store.LedgerEntries().Save(txCtx, &models.LedgerEntry{
			AccountID: "100",
			OrderRef:  order.OrderRef,
			Kind:      models.LedgerEntryKindDeposit,
			Amount:    popped.Amount,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The order is back and nothing was credited
	found, err := store.PendingOrders().ByOrderRef(ctx, order.OrderRef)
	require.NoError(t, err)
	assert.NotNil(t, found)

	account, err := store.Accounts().ByAccountID(ctx, "100")
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())

	entries, err := store.LedgerEntries().ListByAccount(ctx, "100", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemoryStore_TransactionPanic(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.WithTransaction(ctx, func(txCtx context.Context) error {
		_, _, err := store.Accounts().Ensure(txCtx, &models.Account{AccountID: "100"})
		require.NoError(t, err)
		panic("unexpected")
	})
	require.Error(t, err)

	account, err := store.Accounts().ByAccountID(ctx, "100")
	require.NoError(t, err)
	assert.Nil(t, account)
}

func TestMemoryStore_LedgerPaging(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryStore().LedgerEntries()

	for i := 1; i <= 5; i++ {
		require.NoError(t, ledger.Save(ctx, &models.LedgerEntry{
			AccountID: "100",
			OrderRef:  "ref",
			Kind:      models.LedgerEntryKindDeposit,
			Amount:    decimal.NewFromInt(int64(i)),
		}))
	}
	require.NoError(t, ledger.Save(ctx, &models.LedgerEntry{AccountID: "200", Amount: decimal.NewFromInt(7)}))

	entries, err := ledger.ListByAccount(ctx, "100", 2, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, decimal.NewFromInt(4).Equal(entries[0].Amount))
	assert.True(t, decimal.NewFromInt(3).Equal(entries[1].Amount))
	assert.Greater(t, entries[0].ID, entries[1].ID)
}
