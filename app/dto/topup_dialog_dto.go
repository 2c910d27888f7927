// Package dto contains Data Transfer Objects for API request and response structures
package dto

// SubmitAmountRequest carries the raw text the user typed while the bot was waiting for an amount
type SubmitAmountRequest struct {
	Text string `json:"text" validate:"max=64"`
}

// TopupDialogResponse tells the bot which state the dialog is in and, after a valid amount, the order
type TopupDialogResponse struct {
	AccountID string               `json:"account_id"`
	State     string               `json:"state"`
	Order     *CreateOrderResponse `json:"order,omitempty"`
}
