package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/topup-gateway/models"
	"github.com/amirphl/topup-gateway/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepositoryImpl implements AccountRepository interface
type AccountRepositoryImpl struct {
	*BaseRepository[models.Account]
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &AccountRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Account](db),
	}
}

// ByAccountID finds an account by its chat account id
func (r *AccountRepositoryImpl) ByAccountID(ctx context.Context, accountID string) (*models.Account, error) {
	db := r.getDB(ctx)
	var account models.Account
	err := db.Where("account_id = ?", accountID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// Ensure inserts the account if it does not exist yet
func (r *AccountRepositoryImpl) Ensure(ctx context.Context, account *models.Account) (stored *models.Account, created bool, err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return nil, false, err
	}
	defer func() { err = finish(db, shouldCommit, err) }()

	row := *account
	row.Balance = decimal.Zero
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to ensure account %s: %w", account.AccountID, result.Error)
	}
	created = result.RowsAffected == 1

	var current models.Account
	if err = db.Where("account_id = ?", account.AccountID).First(&current).Error; err != nil {
		return nil, false, fmt.Errorf("failed to load account %s: %w", account.AccountID, err)
	}

	return &current, created, nil
}

// Credit adds amount to the account balance in a single UPDATE
func (r *AccountRepositoryImpl) Credit(ctx context.Context, accountID string, amount decimal.Decimal) (*models.Account, error) {
	db := r.getDB(ctx)

	var account models.Account
	result := db.Model(&account).
		Clauses(clause.Returning{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": utils.UTCNow(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to credit account %s: %w", accountID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrAccountNotFound
	}

	return &account, nil
}

// CountReferred counts accounts registered through referrerID's link
func (r *AccountRepositoryImpl) CountReferred(ctx context.Context, referrerID string) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.Account{}).Where("referrer_id = ?", referrerID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
