// Package businessflow contains the core business logic and use cases for payment workflows
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/amirphl/topup-gateway/app/dto"
	"github.com/amirphl/topup-gateway/config"
	"github.com/amirphl/topup-gateway/models"
	"github.com/amirphl/topup-gateway/repository"
	"github.com/amirphl/topup-gateway/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentFlow handles the complete payment business logic
type PaymentFlow interface {
	CreateOrder(ctx context.Context, accountID string, amount decimal.Decimal, metadata *ClientMetadata) (*dto.CreateOrderResponse, error)
	PaymentPage(ctx context.Context, orderRef string, amount string) (*dto.PaymentPayload, error)
	HandleCallback(ctx context.Context, req *dto.WayForPayCallbackRequest, metadata *ClientMetadata) (*dto.WayForPayCallbackResponse, error)
}

// PaymentFlowImpl implements the payment business flow
type PaymentFlowImpl struct {
	accountRepo repository.AccountRepository
	orderRepo   repository.PendingOrderRepository
	ledgerRepo  repository.LedgerEntryRepository
	tx          repository.Transactor

	signer    *Signer
	responder *CallbackResponder

	wfpCfg      config.WayForPayConfig
	referralCfg config.ReferralConfig
	now         utils.Clock
}

// NewPaymentFlow creates a new payment flow instance; a nil clock means utils.UTCNow
func NewPaymentFlow(
	accountRepo repository.AccountRepository,
	orderRepo repository.PendingOrderRepository,
	ledgerRepo repository.LedgerEntryRepository,
	tx repository.Transactor,
	wfpCfg config.WayForPayConfig,
	referralCfg config.ReferralConfig,
	now utils.Clock,
) PaymentFlow {
	if now == nil {
		now = utils.UTCNow
	}
	signer := NewSigner(wfpCfg.SecretKey)
	return &PaymentFlowImpl{
		accountRepo: accountRepo,
		orderRepo:   orderRepo,
		ledgerRepo:  ledgerRepo,
		tx:          tx,
		signer:      signer,
		responder:   NewCallbackResponder(signer, now),
		wfpCfg:      wfpCfg,
		referralCfg: referralCfg,
		now:         now,
	}
}

// CreateOrder registers a pending order for the account and returns the signed payment form
func (p *PaymentFlowImpl) CreateOrder(ctx context.Context, accountID string, amount decimal.Decimal, metadata *ClientMetadata) (*dto.CreateOrderResponse, error) {
	if accountID == "" {
		return nil, NewBusinessError("CREATE_ORDER_FAILED", "Create order failed", ErrAccountRequired)
	}
	if err := validateAmount(amount); err != nil {
		return nil, NewBusinessError("CREATE_ORDER_FAILED", "Create order failed", err)
	}

	account, err := p.accountRepo.ByAccountID(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError("CREATE_ORDER_FAILED", "Failed to load account", err)
	}
	if account == nil {
		return nil, NewBusinessError("CREATE_ORDER_FAILED", "Create order failed", ErrUnknownAccount)
	}

	order := &models.PendingOrder{
		OrderRef:  uuid.NewString(),
		AccountID: account.AccountID,
		Amount:    amount,
		Currency:  p.wfpCfg.Currency,
		OrderDate: p.now().Unix(),
	}
	if err := p.orderRepo.Save(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicateOrderRef) {
			err = ErrDuplicateOrder
		}
		return nil, NewBusinessError("CREATE_ORDER_FAILED", "Failed to save pending order", err)
	}

	ordersCreatedTotal.Inc()
	log.Printf("Pending order %s created for account %s: %s %s (%s)",
		order.OrderRef, order.AccountID, utils.FormatAmount(order.Amount), order.Currency, metadata)

	payload := p.buildPayload(order)
	return &dto.CreateOrderResponse{
		OrderRef:    order.OrderRef,
		Amount:      payload.Amount,
		Currency:    order.Currency,
		RedirectURL: p.redirectURL(order),
		Payload:     *payload,
	}, nil
}

// PaymentPage rebuilds the signed form of a pending order for the browser redirect
func (p *PaymentFlowImpl) PaymentPage(ctx context.Context, orderRef string, amount string) (*dto.PaymentPayload, error) {
	requested, err := utils.ParseAmount(amount)
	if err != nil || validateAmount(requested) != nil {
		return nil, NewBusinessError("PAYMENT_PAGE_FAILED", "Payment page failed", ErrInvalidAmount)
	}

	order, err := p.orderRepo.ByOrderRef(ctx, orderRef)
	if err != nil {
		return nil, NewBusinessError("PAYMENT_PAGE_FAILED", "Failed to load pending order", err)
	}
	if order == nil {
		return nil, NewBusinessError("PAYMENT_PAGE_FAILED", "Payment page failed", ErrOrderNotFound)
	}
	if !order.Amount.Equal(requested) {
		return nil, NewBusinessError("PAYMENT_PAGE_FAILED", "Payment page failed", ErrAmountMismatch)
	}

	return p.buildPayload(order), nil
}

// HandleCallback verifies a provider notification and settles the order at most once.
// Rejections are returned as signed acknowledgements; only malformed input and storage
// failures are returned as errors.
func (p *PaymentFlowImpl) HandleCallback(ctx context.Context, req *dto.WayForPayCallbackRequest, metadata *ClientMetadata) (*dto.WayForPayCallbackResponse, error) {
	if err := p.validateCallbackRequest(req); err != nil {
		return nil, NewBusinessError("PAYMENT_CALLBACK_VALIDATION_FAILED", "Payment callback validation failed", err)
	}

	if !p.signer.Verify(req.MerchantSignature,
		req.MerchantAccount, req.OrderReference, req.Amount, req.Currency,
		req.AuthCode, req.CardPan, req.TransactionStatus, req.ReasonCode,
	) {
		return p.reject(req, "bad_signature", metadata), nil
	}
	if req.MerchantAccount != p.wfpCfg.MerchantAccount {
		return p.reject(req, "foreign_merchant", metadata), nil
	}
	if req.TransactionStatus != utils.TransactionStatusApproved {
		return p.reject(req, "declined", metadata), nil
	}

	settled := false
	err := p.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		order, err := p.orderRepo.Pop(txCtx, req.OrderReference)
		if err != nil {
			return err
		}
		if order == nil {
			return nil
		}
		settled = true

		if req.Currency != order.Currency {
			log.Printf("Callback for order %s reports currency %s, order was created in %s", order.OrderRef, req.Currency, order.Currency)
		}
		if reported, err := decimal.NewFromString(req.Amount.String()); err != nil || !utils.InAmountRange(reported) || !reported.Equal(order.Amount) {
			log.Printf("Callback for order %s reports amount %s, crediting stored amount %s",
				order.OrderRef, req.Amount, utils.FormatAmount(order.Amount))
		}

		return p.settle(txCtx, order)
	})
	if err != nil {
		log.Printf("Settlement of order %s failed (%s): %v", req.OrderReference, metadata, err)
		return nil, NewBusinessError("PAYMENT_SETTLEMENT_FAILED", "Failed to settle order", err)
	}

	reason := "approved"
	if !settled {
		reason = "duplicate"
		log.Printf("Callback for order %s has no pending order, acknowledging without changes (%s)", req.OrderReference, metadata)
	}
	callbacksTotal.WithLabelValues(string(CallbackAccept), reason).Inc()

	return p.responder.Build(req.OrderReference, CallbackAccept), nil
}

// settle credits the owner and, when referred, the referrer; it must run inside a transaction
func (p *PaymentFlowImpl) settle(ctx context.Context, order *models.PendingOrder) error {
	owner, _, err := p.accountRepo.Ensure(ctx, &models.Account{AccountID: order.AccountID})
	if err != nil {
		return err
	}

	if _, err := p.credit(ctx, order.AccountID, order.OrderRef, order.Amount, models.LedgerEntryKindDeposit); err != nil {
		return err
	}

	if !owner.HasReferrer() {
		return nil
	}
	bonus := utils.ShareOf(order.Amount, p.referralCfg.BonusRate)
	if !bonus.IsPositive() {
		return nil
	}
	_, err = p.credit(ctx, *owner.ReferrerID, order.OrderRef, bonus, models.LedgerEntryKindReferralBonus)
	return err
}

func (p *PaymentFlowImpl) credit(ctx context.Context, accountID, orderRef string, amount decimal.Decimal, kind models.LedgerEntryKind) (*models.Account, error) {
	account, err := p.accountRepo.Credit(ctx, accountID, amount)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
		}
		return nil, err
	}

	entry := &models.LedgerEntry{
		AccountID:    accountID,
		OrderRef:     orderRef,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: account.Balance,
	}
	if err := p.ledgerRepo.Save(ctx, entry); err != nil {
		return nil, err
	}

	creditedAmountTotal.WithLabelValues(string(kind)).Add(amount.InexactFloat64())
	log.Printf("Account %s credited %s (%s, order %s), balance %s",
		accountID, utils.FormatAmount(amount), kind, orderRef, utils.FormatAmount(account.Balance))

	return account, nil
}

func (p *PaymentFlowImpl) reject(req *dto.WayForPayCallbackRequest, reason string, metadata *ClientMetadata) *dto.WayForPayCallbackResponse {
	callbacksTotal.WithLabelValues(string(CallbackReject), reason).Inc()
	log.Printf("Callback for order %s rejected: %s (status=%s, %s)", req.OrderReference, reason, req.TransactionStatus, metadata)
	return p.responder.Build(req.OrderReference, CallbackReject)
}

// validateCallbackRequest checks the fields every notification must carry
func (p *PaymentFlowImpl) validateCallbackRequest(req *dto.WayForPayCallbackRequest) error {
	if req == nil {
		return ErrCallbackRequestNil
	}
	if req.MerchantAccount == "" {
		return ErrMerchantAccountRequired
	}
	if req.OrderReference == "" {
		return ErrOrderReferenceRequired
	}
	if req.Amount == "" {
		return ErrCallbackAmountRequired
	}
	if req.Currency == "" {
		return ErrCurrencyRequired
	}
	if req.TransactionStatus == "" {
		return ErrTransactionStatusRequired
	}
	if req.MerchantSignature == "" {
		return ErrMerchantSignatureRequired
	}
	return nil
}

// buildPayload assembles and signs the hosted payment form of an order
func (p *PaymentFlowImpl) buildPayload(order *models.PendingOrder) *dto.PaymentPayload {
	amount := utils.FormatAmount(order.Amount)
	payload := &dto.PaymentPayload{
		MerchantAccount:    p.wfpCfg.MerchantAccount,
		MerchantDomainName: p.wfpCfg.MerchantDomainName,
		OrderReference:     order.OrderRef,
		OrderDate:          order.OrderDate,
		Amount:             amount,
		Currency:           order.Currency,
		ProductName:        []string{p.wfpCfg.ProductName},
		ProductCount:       []int{1},
		ProductPrice:       []string{amount},
		ServiceURL:         p.wfpCfg.ServiceURL,
		ReturnURL:          p.wfpCfg.ReturnURL,
		Language:           p.wfpCfg.Language,
		PayURL:             p.wfpCfg.PayURL,
	}
	payload.MerchantSignature = p.signer.Sign(
		payload.MerchantAccount, payload.MerchantDomainName,
		payload.OrderReference, payload.OrderDate,
		payload.Amount, payload.Currency,
		payload.ProductName, payload.ProductCount, payload.ProductPrice,
	)
	return payload
}

func (p *PaymentFlowImpl) redirectURL(order *models.PendingOrder) string {
	query := url.Values{}
	query.Set("order_ref", order.OrderRef)
	query.Set("amount", utils.FormatAmount(order.Amount))
	return p.wfpCfg.PaymentPageURL + "?" + query.Encode()
}

func validateAmount(amount decimal.Decimal) error {
	if !utils.InAmountRange(amount) || !amount.IsPositive() || !utils.HasMinorUnitScale(amount) {
		return ErrInvalidAmount
	}
	return nil
}
