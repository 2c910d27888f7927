package models

// DialogState is the position of an account in the top-up conversation
type DialogState string

const (
	DialogStateIdle           DialogState = "idle"
	DialogStateAwaitingAmount DialogState = "awaiting_amount"
)

// Valid reports whether s is a known dialog state
func (s DialogState) Valid() bool {
	return s == DialogStateIdle || s == DialogStateAwaitingAmount
}
