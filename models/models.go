// Package models defines the persisted entities of the top-up gateway
package models

// All returns every model managed by auto-migration
func All() []any {
	return []any{
		&Account{},
		&PendingOrder{},
		&LedgerEntry{},
	}
}
