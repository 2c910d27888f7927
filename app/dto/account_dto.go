// Package dto contains Data Transfer Objects for API request and response structures
package dto

import "time"

// RegisterAccountRequest is sent by the bot on /start, optionally with the ref= payload
type RegisterAccountRequest struct {
	AccountID  string  `json:"account_id" validate:"required,max=64"`
	ReferrerID *string `json:"referrer_id,omitempty" validate:"omitempty,max=64"`
}

// AccountDTO is the public view of an account
type AccountDTO struct {
	AccountID    string    `json:"account_id"`
	Balance      string    `json:"balance"`
	ReferrerID   *string   `json:"referrer_id,omitempty"`
	ReferralLink string    `json:"referral_link"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterAccountResponse struct {
	Account AccountDTO `json:"account"`
	Created bool       `json:"created"`
}

type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
	Currency  string `json:"currency"`
}

type ReferralInfoResponse struct {
	AccountID     string `json:"account_id"`
	ReferralLink  string `json:"referral_link"`
	BonusPercent  string `json:"bonus_percent"`
	ReferredCount int64  `json:"referred_count"`
}

// HistoryQuery pages through ledger entries
type HistoryQuery struct {
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" validate:"omitempty,min=1,max=100"`
}

type LedgerEntryDTO struct {
	UUID         string    `json:"uuid"`
	OrderRef     string    `json:"order_ref"`
	Kind         string    `json:"kind"`
	Amount       string    `json:"amount"`
	BalanceAfter string    `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

type HistoryResponse struct {
	AccountID string           `json:"account_id"`
	Page      int              `json:"page"`
	PageSize  int              `json:"page_size"`
	Items     []LedgerEntryDTO `json:"items"`
}
