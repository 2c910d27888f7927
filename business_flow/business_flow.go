// Package businessflow contains the business logic for the application.
package businessflow

import (
	"github.com/amirphl/topup-gateway/app/dto"
	"github.com/amirphl/topup-gateway/models"
	"github.com/amirphl/topup-gateway/utils"
)

// ClientMetadata holds client information attached to log lines
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// String renders the metadata for log lines
func (cm *ClientMetadata) String() string {
	if cm == nil {
		return "-"
	}
	return "ip=" + cm.IPAddress + " request_id=" + cm.RequestID
}

// ToAccountDTO converts an account to its API form
func ToAccountDTO(account *models.Account) dto.AccountDTO {
	return dto.AccountDTO{
		AccountID:    account.AccountID,
		Balance:      utils.FormatAmount(account.Balance),
		ReferrerID:   account.ReferrerID,
		ReferralLink: account.ReferralLink,
		CreatedAt:    account.CreatedAt,
	}
}

// ToLedgerEntryDTO converts a ledger entry to its API form
func ToLedgerEntryDTO(entry *models.LedgerEntry) dto.LedgerEntryDTO {
	return dto.LedgerEntryDTO{
		UUID:         entry.UUID.String(),
		OrderRef:     entry.OrderRef,
		Kind:         string(entry.Kind),
		Amount:       utils.FormatAmount(entry.Amount),
		BalanceAfter: utils.FormatAmount(entry.BalanceAfter),
		CreatedAt:    entry.CreatedAt,
	}
}
