// Package dto contains Data Transfer Objects for API request and response structures
package dto

import (
	"encoding/json"
)

// CreateOrderRequest is sent by the bot once the user has typed a top-up amount.
// Amount is a decimal string such as "150" or "150.50".
type CreateOrderRequest struct {
	AccountID string `json:"account_id" validate:"required,max=64"`
	Amount    string `json:"amount" validate:"required,max=32"`
}

// PaymentPayload is the signed form posted to the provider's hosted payment page
type PaymentPayload struct {
	MerchantAccount    string   `json:"merchantAccount"`
	MerchantDomainName string   `json:"merchantDomainName"`
	MerchantSignature  string   `json:"merchantSignature"`
	OrderReference     string   `json:"orderReference"`
	OrderDate          int64    `json:"orderDate"`
	Amount             string   `json:"amount"`
	Currency           string   `json:"currency"`
	ProductName        []string `json:"productName"`
	ProductCount       []int    `json:"productCount"`
	ProductPrice       []string `json:"productPrice"`
	ServiceURL         string   `json:"serviceUrl,omitempty"`
	ReturnURL          string   `json:"returnUrl,omitempty"`
	Language           string   `json:"language,omitempty"`
	PayURL             string   `json:"-"`
}

// CreateOrderResponse carries the link the bot hands to the user
type CreateOrderResponse struct {
	OrderRef    string         `json:"order_ref"`
	Amount      string         `json:"amount"`
	Currency    string         `json:"currency"`
	RedirectURL string         `json:"redirect_url"`
	Payload     PaymentPayload `json:"payload"`
}

// PaymentPageQuery is the query of the browser-facing redirect page
type PaymentPageQuery struct {
	OrderRef string `query:"order_ref" validate:"required,max=64"`
	Amount   string `query:"amount" validate:"required,max=32"`
}

// WayForPayCallbackRequest is the provider's service URL notification.
// Amount and ReasonCode stay as json.Number so the signed text is exactly what was sent.
type WayForPayCallbackRequest struct {
	MerchantAccount   string      `json:"merchantAccount"`
	OrderReference    string      `json:"orderReference"`
	MerchantSignature string      `json:"merchantSignature"`
	Amount            json.Number `json:"amount"`
	Currency          string      `json:"currency"`
	AuthCode          string      `json:"authCode"`
	Email             string      `json:"email,omitempty"`
	Phone             string      `json:"phone,omitempty"`
	CreatedDate       int64       `json:"createdDate,omitempty"`
	ProcessingDate    int64       `json:"processingDate,omitempty"`
	CardPan           string      `json:"cardPan"`
	CardType          string      `json:"cardType,omitempty"`
	IssuerBankCountry string      `json:"issuerBankCountry,omitempty"`
	IssuerBankName    string      `json:"issuerBankName,omitempty"`
	TransactionStatus string      `json:"transactionStatus"`
	Reason            string      `json:"reason,omitempty"`
	ReasonCode        json.Number `json:"reasonCode"`
	Fee               json.Number `json:"fee,omitempty"`
	PaymentSystem     string      `json:"paymentSystem,omitempty"`
}

// WayForPayCallbackResponse acknowledges a notification; status is accept or reject
type WayForPayCallbackResponse struct {
	OrderReference string `json:"orderReference"`
	Status         string `json:"status"`
	Time           int64  `json:"time"`
	Signature      string `json:"signature"`
}
