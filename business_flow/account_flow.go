package businessflow

import (
	"context"
	"log"

	"github.com/amirphl/topup-gateway/app/dto"
	"github.com/amirphl/topup-gateway/config"
	"github.com/amirphl/topup-gateway/models"
	"github.com/amirphl/topup-gateway/repository"
	"github.com/amirphl/topup-gateway/utils"
	"github.com/shopspring/decimal"
)

const (
	defaultHistoryPageSize = 20
	maxHistoryPageSize     = 100
)

// AccountFlow serves the bot's account commands: /start, balance, referral and history
type AccountFlow interface {
	RegisterAccount(ctx context.Context, req *dto.RegisterAccountRequest, metadata *ClientMetadata) (*dto.RegisterAccountResponse, error)
	GetBalance(ctx context.Context, accountID string) (*dto.BalanceResponse, error)
	GetReferralInfo(ctx context.Context, accountID string) (*dto.ReferralInfoResponse, error)
	GetHistory(ctx context.Context, accountID string, query *dto.HistoryQuery) (*dto.HistoryResponse, error)
}

// AccountFlowImpl implements the account business flow
type AccountFlowImpl struct {
	accountRepo repository.AccountRepository
	ledgerRepo  repository.LedgerEntryRepository
	tx          repository.Transactor
	referralCfg config.ReferralConfig
	currency    string
}

// NewAccountFlow creates a new account flow instance
func NewAccountFlow(
	accountRepo repository.AccountRepository,
	ledgerRepo repository.LedgerEntryRepository,
	tx repository.Transactor,
	referralCfg config.ReferralConfig,
	currency string,
) AccountFlow {
	return &AccountFlowImpl{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		tx:          tx,
		referralCfg: referralCfg,
		currency:    currency,
	}
}

// RegisterAccount creates the account on first contact. The referrer is kept only when it
// is an existing account other than the new one, and is never changed afterwards.
func (af *AccountFlowImpl) RegisterAccount(ctx context.Context, req *dto.RegisterAccountRequest, metadata *ClientMetadata) (*dto.RegisterAccountResponse, error) {
	if req == nil || req.AccountID == "" {
		return nil, NewBusinessError("ACCOUNT_REGISTRATION_FAILED", "Account registration failed", ErrAccountRequired)
	}

	var (
		stored  *models.Account
		created bool
	)
	err := af.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		referrerID, err := af.resolveReferrer(txCtx, req.AccountID, utils.Deref(req.ReferrerID))
		if err != nil {
			return err
		}

		stored, created, err = af.accountRepo.Ensure(txCtx, &models.Account{
			AccountID:    req.AccountID,
			ReferrerID:   referrerID,
			ReferralLink: af.referralLink(req.AccountID),
		})
		return err
	})
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_REGISTRATION_FAILED", "Failed to register account", err)
	}

	if created {
		log.Printf("Account %s registered (referrer=%s, %s)", stored.AccountID, utils.Deref(stored.ReferrerID), metadata)
	}

	return &dto.RegisterAccountResponse{
		Account: ToAccountDTO(stored),
		Created: created,
	}, nil
}

func (af *AccountFlowImpl) resolveReferrer(ctx context.Context, accountID, referrerID string) (*string, error) {
	if referrerID == "" || referrerID == accountID {
		return nil, nil
	}
	referrer, err := af.accountRepo.ByAccountID(ctx, referrerID)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		log.Printf("Ignoring unknown referrer %s for account %s", referrerID, accountID)
		return nil, nil
	}
	return utils.ToPtr(referrer.AccountID), nil
}

func (af *AccountFlowImpl) referralLink(accountID string) string {
	return af.referralCfg.LinkBase + "ref=" + accountID
}

func (af *AccountFlowImpl) GetBalance(ctx context.Context, accountID string) (*dto.BalanceResponse, error) {
	account, err := af.loadAccount(ctx, accountID, "BALANCE_FETCH_FAILED")
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{
		AccountID: account.AccountID,
		Balance:   utils.FormatAmount(account.Balance),
		Currency:  af.currency,
	}, nil
}

func (af *AccountFlowImpl) GetReferralInfo(ctx context.Context, accountID string) (*dto.ReferralInfoResponse, error) {
	account, err := af.loadAccount(ctx, accountID, "REFERRAL_INFO_FAILED")
	if err != nil {
		return nil, err
	}

	referred, err := af.accountRepo.CountReferred(ctx, account.AccountID)
	if err != nil {
		return nil, NewBusinessError("REFERRAL_INFO_FAILED", "Failed to count referred accounts", err)
	}

	link := account.ReferralLink
	if link == "" {
		link = af.referralLink(account.AccountID)
	}

	return &dto.ReferralInfoResponse{
		AccountID:     account.AccountID,
		ReferralLink:  link,
		BonusPercent:  af.referralCfg.BonusRate.Mul(decimal.NewFromInt(100)).String(),
		ReferredCount: referred,
	}, nil
}

// GetHistory lists ledger entries newest first
func (af *AccountFlowImpl) GetHistory(ctx context.Context, accountID string, query *dto.HistoryQuery) (*dto.HistoryResponse, error) {
	account, err := af.loadAccount(ctx, accountID, "HISTORY_FETCH_FAILED")
	if err != nil {
		return nil, err
	}

	page, pageSize := 1, defaultHistoryPageSize
	if query != nil {
		if query.Page > 0 {
			page = query.Page
		}
		if query.PageSize > 0 {
			pageSize = min(query.PageSize, maxHistoryPageSize)
		}
	}

	entries, err := af.ledgerRepo.ListByAccount(ctx, account.AccountID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("HISTORY_FETCH_FAILED", "Failed to list ledger entries", err)
	}

	items := make([]dto.LedgerEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, ToLedgerEntryDTO(entry))
	}

	return &dto.HistoryResponse{
		AccountID: account.AccountID,
		Page:      page,
		PageSize:  pageSize,
		Items:     items,
	}, nil
}

func (af *AccountFlowImpl) loadAccount(ctx context.Context, accountID, code string) (*models.Account, error) {
	if accountID == "" {
		return nil, NewBusinessError(code, "Account id is required", ErrAccountRequired)
	}
	account, err := af.accountRepo.ByAccountID(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError(code, "Failed to load account", err)
	}
	if account == nil {
		return nil, NewBusinessError(code, "Account not found", ErrUnknownAccount)
	}
	return account, nil
}
