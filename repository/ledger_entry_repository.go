package repository

import (
	"context"

	"github.com/amirphl/topup-gateway/models"
	"gorm.io/gorm"
)

// LedgerEntryRepositoryImpl implements LedgerEntryRepository interface
type LedgerEntryRepositoryImpl struct {
	*BaseRepository[models.LedgerEntry]
}

// NewLedgerEntryRepository creates a new ledger entry repository
func NewLedgerEntryRepository(db *gorm.DB) LedgerEntryRepository {
	return &LedgerEntryRepositoryImpl{
		BaseRepository: NewBaseRepository[models.LedgerEntry](db),
	}
}

// ListByAccount returns the account's entries, newest first
func (r *LedgerEntryRepositoryImpl) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.LedgerEntry, error) {
	db := r.getDB(ctx)
	var entries []*models.LedgerEntry

	query := db.Where("account_id = ?", accountID).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
