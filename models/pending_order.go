package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingOrder is a top-up that has been offered to the provider and not yet settled.
// It is deleted, not updated, when the provider confirms the payment.
type PendingOrder struct {
	OrderRef  string          `gorm:"type:varchar(64);primaryKey" json:"order_ref"`
	AccountID string          `gorm:"type:varchar(64);not null;index" json:"account_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency  string          `gorm:"type:varchar(3);not null;default:'UAH'" json:"currency"`

	// Unix seconds sent as orderDate; part of the outbound signature
	OrderDate int64 `gorm:"not null" json:"order_date"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for GORM
func (PendingOrder) TableName() string {
	return "pending_orders"
}
