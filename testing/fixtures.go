// Package testing provides test utilities and database setup for the repository tests
package testing

import (
	"fmt"
	"time"

	"github.com/amirphl/topup-gateway/models"
	"github.com/amirphl/topup-gateway/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestAccount inserts an account with the given balance and optional referrer
func (tf *TestFixtures) CreateTestAccount(accountID string, balance decimal.Decimal, referrerID *string) (*models.Account, error) {
	account := &models.Account{
		AccountID:    accountID,
		Balance:      balance,
		ReferrerID:   referrerID,
		ReferralLink: "https://t.me/topup_test_bot?start=ref=" + accountID,
	}
	if err := tf.DB.DB.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create account %s: %w", accountID, err)
	}
	return account, nil
}

// NewTestPendingOrder builds an unsaved pending order for accountID
func NewTestPendingOrder(accountID string, amount decimal.Decimal) *models.PendingOrder {
	return &models.PendingOrder{
		OrderRef:  uuid.NewString(),
		AccountID: accountID,
		Amount:    amount,
		Currency:  utils.HryvniaCurrency,
		OrderDate: time.Now().Unix(),
	}
}
