package models

import (
	"testing"

	"github.com/amirphl/topup-gateway/utils"
	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "accounts", Account{}.TableName())
	assert.Equal(t, "pending_orders", PendingOrder{}.TableName())
	assert.Equal(t, "ledger_entries", LedgerEntry{}.TableName())
}

func TestAccountHasReferrer(t *testing.T) {
	tests := []struct {
		name     string
		account  Account
		expected bool
	}{
		{name: "no referrer", account: Account{AccountID: "1"}, expected: false},
		{name: "empty referrer", account: Account{AccountID: "1", ReferrerID: utils.ToPtr("")}, expected: false},
		{name: "self referrer", account: Account{AccountID: "1", ReferrerID: utils.ToPtr("1")}, expected: false},
		{name: "referrer", account: Account{AccountID: "1", ReferrerID: utils.ToPtr("2")}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.account.HasReferrer())
		})
	}
}

func TestDialogStateValid(t *testing.T) {
	assert.True(t, DialogStateIdle.Valid())
	assert.True(t, DialogStateAwaitingAmount.Valid())
	assert.False(t, DialogState("typing").Valid())
}
