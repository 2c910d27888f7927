package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a chat user's internal balance, keyed by the chat account id
type Account struct {
	AccountID string          `gorm:"type:varchar(64);primaryKey" json:"account_id"`
	Balance   decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"balance"`

	// Referral information; a referrer is never the account itself
	ReferrerID   *string `gorm:"type:varchar(64);index" json:"referrer_id,omitempty"`
	ReferralLink string  `gorm:"type:varchar(255)" json:"referral_link"`

	// Audit fields
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// HasReferrer reports whether a referral bonus is owed on this account's top-ups
func (a *Account) HasReferrer() bool {
	return a.ReferrerID != nil && *a.ReferrerID != "" && *a.ReferrerID != a.AccountID
}
