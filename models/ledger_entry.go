package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerEntryKind represents why a balance was credited
type LedgerEntryKind string

const (
	LedgerEntryKindDeposit       LedgerEntryKind = "deposit"        // Owner's settled top-up
	LedgerEntryKindReferralBonus LedgerEntryKind = "referral_bonus" // Referrer's share of someone else's top-up
)

// LedgerEntry is an append-only record of a single balance credit
type LedgerEntry struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	AccountID string          `gorm:"type:varchar(64);not null;index" json:"account_id"`
	OrderRef  string          `gorm:"type:varchar(64);not null;index" json:"order_ref"`
	Kind      LedgerEntryKind `gorm:"type:varchar(20);not null" json:"kind"`

	Amount       decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"balance_after"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// BeforeCreate ensures UUID is set
func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.UUID == uuid.Nil {
		e.UUID = uuid.New()
	}
	return nil
}
