package businessflow

import (
	"context"

	"github.com/amirphl/topup-gateway/app/dto"
	"github.com/amirphl/topup-gateway/models"
	"github.com/amirphl/topup-gateway/repository"
	"github.com/amirphl/topup-gateway/utils"
)

// TopupDialogFlow drives the "top up" conversation: the bot asks for an amount,
// the user types it, and a payment link comes back.
//
//	Idle --Start--> AwaitingAmount --SubmitAmount/Cancel--> Idle
type TopupDialogFlow interface {
	Start(ctx context.Context, accountID string) (*dto.TopupDialogResponse, error)
	SubmitAmount(ctx context.Context, accountID, text string, metadata *ClientMetadata) (*dto.TopupDialogResponse, error)
	Cancel(ctx context.Context, accountID string) (*dto.TopupDialogResponse, error)
}

// TopupDialogFlowImpl implements the top-up dialog flow
type TopupDialogFlowImpl struct {
	states      repository.DialogStateRepository
	accountRepo repository.AccountRepository
	payments    PaymentFlow
}

// NewTopupDialogFlow creates a new top-up dialog flow instance
func NewTopupDialogFlow(states repository.DialogStateRepository, accountRepo repository.AccountRepository, payments PaymentFlow) TopupDialogFlow {
	return &TopupDialogFlowImpl{
		states:      states,
		accountRepo: accountRepo,
		payments:    payments,
	}
}

// Start puts the account into AwaitingAmount
func (tf *TopupDialogFlowImpl) Start(ctx context.Context, accountID string) (*dto.TopupDialogResponse, error) {
	if accountID == "" {
		return nil, NewBusinessError("TOPUP_DIALOG_FAILED", "Top-up dialog failed", ErrAccountRequired)
	}
	account, err := tf.accountRepo.ByAccountID(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError("TOPUP_DIALOG_FAILED", "Failed to load account", err)
	}
	if account == nil {
		return nil, NewBusinessError("TOPUP_DIALOG_FAILED", "Top-up dialog failed", ErrUnknownAccount)
	}

	if err := tf.states.Set(ctx, accountID, models.DialogStateAwaitingAmount); err != nil {
		return nil, NewBusinessError("TOPUP_DIALOG_FAILED", "Failed to store dialog state", err)
	}
	return tf.response(accountID, models.DialogStateAwaitingAmount, nil), nil
}

// SubmitAmount consumes the user's reply. The dialog returns to Idle whatever the text was;
// an order is created only when the text is a valid amount.
func (tf *TopupDialogFlowImpl) SubmitAmount(ctx context.Context, accountID, text string, metadata *ClientMetadata) (*dto.TopupDialogResponse, error) {
	state, err := tf.states.Get(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError("TOPUP_DIALOG_FAILED", "Failed to read dialog state", err)
	}
	if state != models.DialogStateAwaitingAmount {
		return nil, NewBusinessError("TOPUP_DIALOG_FAILED", "Top-up dialog is not waiting for an amount", ErrNotAwaitingAmount)
	}

	if err := tf.states.Clear(ctx, accountID); err != nil {
		return nil, NewBusinessError("TOPUP_DIALOG_FAILED", "Failed to reset dialog state", err)
	}

	amount, err := utils.ParseAmount(text)
	if err != nil {
		return nil, NewBusinessError("TOPUP_DIALOG_FAILED", "Amount is not a number", ErrInvalidAmount)
	}

	order, err := tf.payments.CreateOrder(ctx, accountID, amount, metadata)
	if err != nil {
		return nil, err
	}
	return tf.response(accountID, models.DialogStateIdle, order), nil
}

// Cancel abandons the dialog
func (tf *TopupDialogFlowImpl) Cancel(ctx context.Context, accountID string) (*dto.TopupDialogResponse, error) {
	if err := tf.states.Clear(ctx, accountID); err != nil {
		return nil, NewBusinessError("TOPUP_DIALOG_FAILED", "Failed to reset dialog state", err)
	}
	return tf.response(accountID, models.DialogStateIdle, nil), nil
}

func (tf *TopupDialogFlowImpl) response(accountID string, state models.DialogState, order *dto.CreateOrderResponse) *dto.TopupDialogResponse {
	return &dto.TopupDialogResponse{
		AccountID: accountID,
		State:     string(state),
		Order:     order,
	}
}
