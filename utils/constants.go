package utils

import (
	"time"
)

// Request-scoped context keys
type ctxKey string

const (
	RequestIDKey  ctxKey = "request_id"
	UserAgentKey  ctxKey = "user_agent"
	IPAddressKey  ctxKey = "ip_address"
	EndpointKey   ctxKey = "endpoint"
	TimeoutKey    ctxKey = "timeout"
	CancelFuncKey ctxKey = "cancel_func"
)

// Token constants
const (
	// BotAccessTokenTTL is the default lifetime of a bot access token (24 hours)
	BotAccessTokenTTL = 24 * time.Hour

	// DefaultRequestTimeout bounds a single handler's business call
	DefaultRequestTimeout = 30 * time.Second
)

// Payment constants
const (
	// HryvniaCurrency is the only currency the merchant account settles in
	HryvniaCurrency = "UAH"

	// DefaultReferralBonusRate is the share of a settled top-up credited to the referrer (10%)
	DefaultReferralBonusRate = "0.10"

	// DefaultProductName is the single line item shown on the hosted payment form
	DefaultProductName = "Top-up balance"

	// DefaultPayURL is the provider's hosted payment form endpoint
	DefaultPayURL = "https://secure.wayforpay.com/pay"

	// TransactionStatusApproved is the only provider status that settles an order
	TransactionStatusApproved = "Approved"
)
