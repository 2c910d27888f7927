// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/amirphl/topup-gateway/models"
	"github.com/shopspring/decimal"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// AccountRepository defines operations for balance accounts
type AccountRepository interface {
	ByAccountID(ctx context.Context, accountID string) (*models.Account, error)
	// Ensure inserts the account with a zero balance when absent and returns the stored row.
	// An existing account is returned untouched, referrer included.
	Ensure(ctx context.Context, account *models.Account) (stored *models.Account, created bool, err error)
	// Credit atomically adds amount to the balance and returns the updated account
	Credit(ctx context.Context, accountID string, amount decimal.Decimal) (*models.Account, error)
	CountReferred(ctx context.Context, referrerID string) (int64, error)
}

// PendingOrderRepository defines operations for unsettled top-up orders
type PendingOrderRepository interface {
	Save(ctx context.Context, order *models.PendingOrder) error
	ByOrderRef(ctx context.Context, orderRef string) (*models.PendingOrder, error)
	// Pop deletes and returns the order; nil means another caller already took it or it never existed
	Pop(ctx context.Context, orderRef string) (*models.PendingOrder, error)
}

// LedgerEntryRepository defines operations for balance history
type LedgerEntryRepository interface {
	Save(ctx context.Context, entry *models.LedgerEntry) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.LedgerEntry, error)
}

// DialogStateRepository stores where each account is in the top-up conversation
type DialogStateRepository interface {
	// Get returns DialogStateIdle for accounts with no stored state
	Get(ctx context.Context, accountID string) (models.DialogState, error)
	Set(ctx context.Context, accountID string, state models.DialogState) error
	Clear(ctx context.Context, accountID string) error
}

// Transactor runs fn so that every repository call made with the passed context commits or rolls back together
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(context.Context) error) error
}
