// Package businessflow contains the core business logic and use cases for top-up workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Order-related errors
	ErrInvalidAmount   = errors.New("amount must be positive with at most two fractional digits")
	ErrDuplicateOrder  = errors.New("order reference already exists")
	ErrUnknownAccount  = errors.New("unknown account")
	ErrOrderNotFound   = errors.New("order not found")
	ErrAmountMismatch  = errors.New("amount does not match the order")
	ErrAccountRequired = errors.New("account id is required")

	// Callback errors
	ErrBadRequest = errors.New("malformed callback")

	ErrCallbackRequestNil        = fmt.Errorf("%w: callback request is nil", ErrBadRequest)
	ErrMerchantAccountRequired   = fmt.Errorf("%w: merchantAccount is required", ErrBadRequest)
	ErrOrderReferenceRequired    = fmt.Errorf("%w: orderReference is required", ErrBadRequest)
	ErrCallbackAmountRequired    = fmt.Errorf("%w: amount is required", ErrBadRequest)
	ErrCurrencyRequired          = fmt.Errorf("%w: currency is required", ErrBadRequest)
	ErrTransactionStatusRequired = fmt.Errorf("%w: transactionStatus is required", ErrBadRequest)
	ErrMerchantSignatureRequired = fmt.Errorf("%w: merchantSignature is required", ErrBadRequest)

	// Dialog errors
	ErrNotAwaitingAmount = errors.New("not waiting for an amount")

	// Bot errors
	ErrBotUnauthorized = errors.New("bot credentials are invalid")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsInvalidAmount(err error) bool {
	return errors.Is(err, ErrInvalidAmount)
}

func IsDuplicateOrder(err error) bool {
	return errors.Is(err, ErrDuplicateOrder)
}

func IsUnknownAccount(err error) bool {
	return errors.Is(err, ErrUnknownAccount)
}

func IsOrderNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}

func IsAmountMismatch(err error) bool {
	return errors.Is(err, ErrAmountMismatch)
}

func IsAccountRequired(err error) bool {
	return errors.Is(err, ErrAccountRequired)
}

func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

func IsNotAwaitingAmount(err error) bool {
	return errors.Is(err, ErrNotAwaitingAmount)
}

func IsBotUnauthorized(err error) bool {
	return errors.Is(err, ErrBotUnauthorized)
}

// ErrorCode returns the BusinessError code carried by err, or an empty string
func ErrorCode(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
