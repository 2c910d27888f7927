package businessflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/amirphl/topup-gateway/models"
	"github.com/amirphl/topup-gateway/repository"
	testingutil "github.com/amirphl/topup-gateway/testing"
	"github.com/amirphl/topup-gateway/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// settleInParallel settles n top-ups of the referrer and n top-ups of an account it referred
// at the same time, so every settlement credits the referrer.
func settleInParallel(t *testing.T, flow *PaymentFlowImpl, accounts repository.AccountRepository, ledger repository.LedgerEntryRepository) {
	t.Helper()
	ctx := context.Background()
	const n = 10

	_, _, err := accounts.Ensure(ctx, &models.Account{AccountID: "2002"})
	require.NoError(t, err)
	_, _, err = accounts.Ensure(ctx, &models.Account{AccountID: "1001", ReferrerID: utils.ToPtr("2002")})
	require.NoError(t, err)

	f := &paymentFixture{flow: flow, signer: NewSigner(testSecretKey)}
	var refs, amounts []string
	for range n {
		own, err := flow.CreateOrder(ctx, "2002", decimal.NewFromInt(10), nil)
		require.NoError(t, err)
		referred, err := flow.CreateOrder(ctx, "1001", decimal.NewFromInt(100), nil)
		require.NoError(t, err)
		refs = append(refs, own.OrderRef, referred.OrderRef)
		amounts = append(amounts, own.Amount, referred.Amount)
	}

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range refs {
		wg.Add(1)
		go func(req string, amount string) {
			defer wg.Done()
			<-start
			ack, err := flow.HandleCallback(ctx, f.callback(req, amount, utils.TransactionStatusApproved), nil)
			if assert.NoError(t, err) {
				assert.Equal(t, string(CallbackAccept), ack.Status)
			}
		}(refs[i], amounts[i])
	}
	close(start)
	wg.Wait()

	referrer, err := accounts.ByAccountID(ctx, "2002")
	require.NoError(t, err)
	assert.Equal(t, "200.00", utils.FormatAmount(referrer.Balance))

	referred, err := accounts.ByAccountID(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, "1000.00", utils.FormatAmount(referred.Balance))

	entries, err := ledger.ListByAccount(ctx, "2002", 4*n, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2*n)
	var bonuses, deposits int
	for _, entry := range entries {
		switch entry.Kind {
		case models.LedgerEntryKindDeposit:
			deposits++
		case models.LedgerEntryKindReferralBonus:
			bonuses++
		}
	}
	assert.Equal(t, n, deposits)
	assert.Equal(t, n, bonuses)
}

func TestPaymentFlow_ParallelSettlementsCreditSharedAccount(t *testing.T) {
	t.Run("MemoryStore", func(t *testing.T) {
		f := newPaymentFixture(t)
		settleInParallel(t, f.flow, f.store.Accounts(), f.store.LedgerEntries())
	})

	t.Run("Postgres", func(t *testing.T) {
		err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
			accounts := repository.NewAccountRepository(testDB.DB)
			ledger := repository.NewLedgerEntryRepository(testDB.DB)
			flow := NewPaymentFlow(
				accounts,
				repository.NewPendingOrderRepository(testDB.DB),
				ledger,
				repository.NewGormTransactor(testDB.DB),
				testWayForPayConfig(), testReferralConfig(), testClock,
			)
			settleInParallel(t, flow.(*PaymentFlowImpl), accounts, ledger)
			return nil
		})
		if errors.Is(err, testingutil.ErrDatabaseUnavailable) {
			t.Skipf("skipping postgres test: %v", err)
		}
		require.NoError(t, err)
	})
}
