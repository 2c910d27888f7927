package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/topup-gateway/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PendingOrderRepositoryImpl implements PendingOrderRepository interface
type PendingOrderRepositoryImpl struct {
	*BaseRepository[models.PendingOrder]
}

// NewPendingOrderRepository creates a new pending order repository
func NewPendingOrderRepository(db *gorm.DB) PendingOrderRepository {
	return &PendingOrderRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PendingOrder](db),
	}
}

// Save inserts a new pending order; the reference must be unused
func (r *PendingOrderRepositoryImpl) Save(ctx context.Context, order *models.PendingOrder) error {
	err := r.BaseRepository.Save(ctx, order)
	if isDuplicateKey(err) {
		return ErrDuplicateOrderRef
	}
	return err
}

// ByOrderRef finds a pending order without consuming it
func (r *PendingOrderRepositoryImpl) ByOrderRef(ctx context.Context, orderRef string) (*models.PendingOrder, error) {
	db := r.getDB(ctx)
	var order models.PendingOrder
	err := db.Where("order_ref = ?", orderRef).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// Pop deletes the pending order and returns the deleted row.
// Postgres serializes concurrent deletes of the same row, so only one caller sees it.
func (r *PendingOrderRepositoryImpl) Pop(ctx context.Context, orderRef string) (*models.PendingOrder, error) {
	db := r.getDB(ctx)

	var order models.PendingOrder
	result := db.Clauses(clause.Returning{}).Where("order_ref = ?", orderRef).Delete(&order)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to pop pending order %s: %w", orderRef, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return &order, nil
}
