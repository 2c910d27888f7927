package businessflow

import (
	"context"
	"testing"

	"github.com/amirphl/topup-gateway/app/dto"
	"github.com/amirphl/topup-gateway/models"
	"github.com/amirphl/topup-gateway/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingPaymentFlow records CreateOrder calls and delegates to the real flow
type countingPaymentFlow struct {
	PaymentFlow
	calls   int
	amounts []decimal.Decimal
}

func (c *countingPaymentFlow) CreateOrder(ctx context.Context, accountID string, amount decimal.Decimal, metadata *ClientMetadata) (*dto.CreateOrderResponse, error) {
	c.calls++
	c.amounts = append(c.amounts, amount)
	return c.PaymentFlow.CreateOrder(ctx, accountID, amount, metadata)
}

func newTestDialogFlow(t *testing.T) (TopupDialogFlow, *countingPaymentFlow, repository.DialogStateRepository) {
	t.Helper()
	f := newPaymentFixture(t)
	f.account(t, "1001", nil)
	payments := &countingPaymentFlow{PaymentFlow: f.flow}
	states := repository.NewMemoryDialogStateRepository(0)
	return NewTopupDialogFlow(states, f.store.Accounts(), payments), payments, states
}

func TestTopupDialogFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("StartThenValidAmount", func(t *testing.T) {
		flow, payments, states := newTestDialogFlow(t)

		res, err := flow.Start(ctx, "1001")
		require.NoError(t, err)
		assert.Equal(t, string(models.DialogStateAwaitingAmount), res.State)

		res, err = flow.SubmitAmount(ctx, "1001", " 150,50 ", nil)
		require.NoError(t, err)
		assert.Equal(t, string(models.DialogStateIdle), res.State)
		require.NotNil(t, res.Order)
		assert.Equal(t, "150.50", res.Order.Amount)
		assert.Equal(t, 1, payments.calls)

		state, err := states.Get(ctx, "1001")
		require.NoError(t, err)
		assert.Equal(t, models.DialogStateIdle, state)
	})

	t.Run("SubmitWhileIdle", func(t *testing.T) {
		flow, payments, _ := newTestDialogFlow(t)

		_, err := flow.SubmitAmount(ctx, "1001", "100", nil)
		assert.True(t, IsNotAwaitingAmount(err))
		assert.Zero(t, payments.calls)
	})

	t.Run("NonNumericTextReturnsToIdle", func(t *testing.T) {
		flow, payments, _ := newTestDialogFlow(t)
		_, err := flow.Start(ctx, "1001")
		require.NoError(t, err)

		_, err = flow.SubmitAmount(ctx, "1001", "a hundred", nil)
		assert.True(t, IsInvalidAmount(err))
		assert.Zero(t, payments.calls)

		_, err = flow.SubmitAmount(ctx, "1001", "100", nil)
		assert.True(t, IsNotAwaitingAmount(err))
	})

	t.Run("OutOfRangeAmountReturnsToIdle", func(t *testing.T) {
		flow, payments, states := newTestDialogFlow(t)
		_, err := flow.Start(ctx, "1001")
		require.NoError(t, err)

		_, err = flow.SubmitAmount(ctx, "1001", "0", nil)
		assert.True(t, IsInvalidAmount(err))
		assert.Equal(t, 1, payments.calls)

		state, err := states.Get(ctx, "1001")
		require.NoError(t, err)
		assert.Equal(t, models.DialogStateIdle, state)
	})

	t.Run("ExponentTextNeverCreatesOrder", func(t *testing.T) {
		for _, text := range []string{"1e3", "1e20000000", "-10"} {
			flow, payments, _ := newTestDialogFlow(t)
			_, err := flow.Start(ctx, "1001")
			require.NoError(t, err)

			_, err = flow.SubmitAmount(ctx, "1001", text, nil)
			assert.True(t, IsInvalidAmount(err), text)
			assert.Zero(t, payments.calls, text)
		}
	})

	t.Run("Cancel", func(t *testing.T) {
		flow, payments, _ := newTestDialogFlow(t)
		_, err := flow.Start(ctx, "1001")
		require.NoError(t, err)

		res, err := flow.Cancel(ctx, "1001")
		require.NoError(t, err)
		assert.Equal(t, string(models.DialogStateIdle), res.State)

		_, err = flow.SubmitAmount(ctx, "1001", "100", nil)
		assert.True(t, IsNotAwaitingAmount(err))
		assert.Zero(t, payments.calls)
	})

	t.Run("StartForUnknownAccount", func(t *testing.T) {
		flow, _, _ := newTestDialogFlow(t)

		_, err := flow.Start(ctx, "ghost")
		assert.True(t, IsUnknownAccount(err))
	})
}
