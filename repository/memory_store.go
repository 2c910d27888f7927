package repository

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/amirphl/topup-gateway/models"
	"github.com/amirphl/topup-gateway/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memoryTxKey struct{}

// MemoryStore keeps accounts, pending orders and ledger entries in process memory.
// A single mutex guards all three, and WithTransaction holds it for the whole callback,
// restoring a snapshot when the callback fails.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	orders   map[string]models.PendingOrder
	entries  []models.LedgerEntry
	nextID   uint
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]models.Account),
		orders:   make(map[string]models.PendingOrder),
	}
}

// Accounts returns the store's AccountRepository view
func (s *MemoryStore) Accounts() AccountRepository { return &memoryAccounts{s} }

// PendingOrders returns the store's PendingOrderRepository view
func (s *MemoryStore) PendingOrders() PendingOrderRepository { return &memoryOrders{s} }

// LedgerEntries returns the store's LedgerEntryRepository view
func (s *MemoryStore) LedgerEntries() LedgerEntryRepository { return &memoryLedger{s} }

// lock acquires the store mutex unless ctx is already inside one of its transactions
func (s *MemoryStore) lock(ctx context.Context) func() {
	if owner, ok := ctx.Value(memoryTxKey{}).(*MemoryStore); ok && owner == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithTransaction runs fn while holding the store lock
func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(context.Context) error) (err error) {
	if owner, ok := ctx.Value(memoryTxKey{}).(*MemoryStore); ok && owner == s {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := maps.Clone(s.accounts)
	orders := maps.Clone(s.orders)
	entries := slices.Clone(s.entries)
	nextID := s.nextID
	rollback := func() {
		s.accounts, s.orders, s.entries, s.nextID = accounts, orders, entries, nextID
	}

	defer func() {
		if r := recover(); r != nil {
			rollback()
			err = fmt.Errorf("panic in transaction: %v", r)
		}
	}()

	if err := fn(context.WithValue(ctx, memoryTxKey{}, s)); err != nil {
		rollback()
		return err
	}
	return nil
}

type memoryAccounts struct{ s *MemoryStore }

func (r *memoryAccounts) ByAccountID(ctx context.Context, accountID string) (*models.Account, error) {
	defer r.s.lock(ctx)()
	account, ok := r.s.accounts[accountID]
	if !ok {
		return nil, nil
	}
	return &account, nil
}

func (r *memoryAccounts) Ensure(ctx context.Context, account *models.Account) (*models.Account, bool, error) {
	defer r.s.lock(ctx)()
	if current, ok := r.s.accounts[account.AccountID]; ok {
		return &current, false, nil
	}

	now := utils.UTCNow()
	row := *account
	row.Balance = decimal.Zero
	row.CreatedAt = now
	row.UpdatedAt = now
	r.s.accounts[row.AccountID] = row
	return &row, true, nil
}

func (r *memoryAccounts) Credit(ctx context.Context, accountID string, amount decimal.Decimal) (*models.Account, error) {
	defer r.s.lock(ctx)()
	account, ok := r.s.accounts[accountID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	account.Balance = account.Balance.Add(amount)
	account.UpdatedAt = utils.UTCNow()
	r.s.accounts[accountID] = account
	return &account, nil
}

func (r *memoryAccounts) CountReferred(ctx context.Context, referrerID string) (int64, error) {
	defer r.s.lock(ctx)()
	var count int64
	for _, account := range r.s.accounts {
		if account.ReferrerID != nil && *account.ReferrerID == referrerID {
			count++
		}
	}
	return count, nil
}

type memoryOrders struct{ s *MemoryStore }

func (r *memoryOrders) Save(ctx context.Context, order *models.PendingOrder) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.orders[order.OrderRef]; ok {
		return ErrDuplicateOrderRef
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = utils.UTCNow()
	}
	r.s.orders[order.OrderRef] = *order
	return nil
}

func (r *memoryOrders) ByOrderRef(ctx context.Context, orderRef string) (*models.PendingOrder, error) {
	defer r.s.lock(ctx)()
	order, ok := r.s.orders[orderRef]
	if !ok {
		return nil, nil
	}
	return &order, nil
}

func (r *memoryOrders) Pop(ctx context.Context, orderRef string) (*models.PendingOrder, error) {
	defer r.s.lock(ctx)()
	order, ok := r.s.orders[orderRef]
	if !ok {
		return nil, nil
	}
	delete(r.s.orders, orderRef)
	return &order, nil
}

type memoryLedger struct{ s *MemoryStore }

func (r *memoryLedger) Save(ctx context.Context, entry *models.LedgerEntry) error {
	defer r.s.lock(ctx)()
	r.s.nextID++
	entry.ID = r.s.nextID
	if entry.UUID == uuid.Nil {
		entry.UUID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = utils.UTCNow()
	}
	r.s.entries = append(r.s.entries, *entry)
	return nil
}

func (r *memoryLedger) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.LedgerEntry, error) {
	defer r.s.lock(ctx)()
	var entries []*models.LedgerEntry
	for i := len(r.s.entries) - 1; i >= 0; i-- {
		if r.s.entries[i].AccountID != accountID {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		entry := r.s.entries[i]
		entries = append(entries, &entry)
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	return entries, nil
}
