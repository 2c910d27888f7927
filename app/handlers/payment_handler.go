package handlers

import (
	"bytes"
	"html/template"
	"log"

	"github.com/amirphl/topup-gateway/app/dto"
	businessflow "github.com/amirphl/topup-gateway/business_flow"
	"github.com/amirphl/topup-gateway/utils"
	"github.com/gofiber/fiber/v3"
)

// paymentPageTemplate posts the signed payload to the hosted payment form as soon as it loads
var paymentPageTemplate = template.Must(template.New("pay").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Redirecting to payment</title></head>
<body onload="document.forms[0].submit()">
<form method="post" action="{{.PayURL}}" accept-charset="utf-8">
<input type="hidden" name="merchantAccount" value="{{.MerchantAccount}}">
<input type="hidden" name="merchantDomainName" value="{{.MerchantDomainName}}">
<input type="hidden" name="merchantSignature" value="{{.MerchantSignature}}">
<input type="hidden" name="orderReference" value="{{.OrderReference}}">
<input type="hidden" name="orderDate" value="{{.OrderDate}}">
<input type="hidden" name="amount" value="{{.Amount}}">
<input type="hidden" name="currency" value="{{.Currency}}">
{{range .ProductName}}<input type="hidden" name="productName[]" value="{{.}}">
{{end}}{{range .ProductCount}}<input type="hidden" name="productCount[]" value="{{.}}">
{{end}}{{range .ProductPrice}}<input type="hidden" name="productPrice[]" value="{{.}}">
{{end}}{{if .ServiceURL}}<input type="hidden" name="serviceUrl" value="{{.ServiceURL}}">
{{end}}{{if .ReturnURL}}<input type="hidden" name="returnUrl" value="{{.ReturnURL}}">
{{end}}{{if .Language}}<input type="hidden" name="language" value="{{.Language}}">
{{end}}<noscript><button type="submit">Pay</button></noscript>
</form>
</body>
</html>
`))

var paymentErrorTemplate = template.Must(template.New("pay-error").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Payment unavailable</title></head>
<body><p>{{.}}</p></body>
</html>
`))

// PaymentHandlerInterface defines the contract for payment handlers
type PaymentHandlerInterface interface {
	CreateOrder(c fiber.Ctx) error
	PaymentPage(c fiber.Ctx) error
	WayForPayCallback(c fiber.Ctx) error
}

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	baseHandler
	paymentFlow businessflow.PaymentFlow
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentFlow businessflow.PaymentFlow) *PaymentHandler {
	return &PaymentHandler{
		baseHandler: newBaseHandler(),
		paymentFlow: paymentFlow,
	}
}

// CreateOrder registers a pending order for the bot and returns the redirect link
func (h *PaymentHandler) CreateOrder(c fiber.Ctx) error {
	var req dto.CreateOrderRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Amount must be a positive number with at most two decimals", "INVALID_AMOUNT", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/bot/orders")
	defer cancel()

	result, err := h.paymentFlow.CreateOrder(ctx, req.AccountID, amount, h.clientMetadata(c))
	if err != nil {
		return h.orderError(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Order created successfully", result)
}

func (h *PaymentHandler) orderError(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsInvalidAmount(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Amount must be a positive number with at most two decimals", "INVALID_AMOUNT", nil)
	case businessflow.IsAccountRequired(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Account id is required", "ACCOUNT_REQUIRED", nil)
	case businessflow.IsUnknownAccount(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
	case businessflow.IsDuplicateOrder(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Order reference already exists", "DUPLICATE_ORDER", nil)
	}

	log.Println("Order creation failed", err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, "Order creation failed", "ORDER_CREATION_FAILED", nil)
}

// PaymentPage renders the self-submitting form that hands the browser over to the provider
func (h *PaymentHandler) PaymentPage(c fiber.Ctx) error {
	var query dto.PaymentPageQuery
	if err := c.Bind().Query(&query); err != nil {
		return h.renderPaymentError(c, fiber.StatusBadRequest, "Invalid payment link.")
	}
	if err := h.validator.Struct(&query); err != nil {
		return h.renderPaymentError(c, fiber.StatusBadRequest, "Invalid payment link.")
	}

	ctx, cancel := h.createRequestContext(c, "/pay")
	defer cancel()

	payload, err := h.paymentFlow.PaymentPage(ctx, query.OrderRef, query.Amount)
	if err != nil {
		switch {
		case businessflow.IsOrderNotFound(err):
			return h.renderPaymentError(c, fiber.StatusNotFound, "This payment link has expired or was already used.")
		case businessflow.IsAmountMismatch(err), businessflow.IsInvalidAmount(err):
			return h.renderPaymentError(c, fiber.StatusBadRequest, "Invalid payment link.")
		}
		log.Println("Payment page failed", err)
		return h.renderPaymentError(c, fiber.StatusInternalServerError, "Payment is temporarily unavailable.")
	}

	var body bytes.Buffer
	if err := paymentPageTemplate.Execute(&body, payload); err != nil {
		log.Println("Payment page rendering failed", err)
		return h.renderPaymentError(c, fiber.StatusInternalServerError, "Payment is temporarily unavailable.")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusOK).Send(body.Bytes())
}

func (h *PaymentHandler) renderPaymentError(c fiber.Ctx, statusCode int, message string) error {
	var body bytes.Buffer
	if err := paymentErrorTemplate.Execute(&body, message); err != nil {
		return c.Status(statusCode).SendString(message)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(statusCode).Send(body.Bytes())
}

// WayForPayCallback receives the provider's service URL notification and answers with a signed acknowledgement
func (h *PaymentHandler) WayForPayCallback(c fiber.Ctx) error {
	var req dto.WayForPayCallbackRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Failed to parse callback data", "CALLBACK_DATA_PARSE_ERROR", err.Error())
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/payments/wayforpay/callback")
	defer cancel()

	ack, err := h.paymentFlow.HandleCallback(ctx, &req, h.clientMetadata(c))
	if err != nil {
		if businessflow.IsBadRequest(err) {
			log.Println("Malformed payment callback", err)
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Malformed payment callback", "CALLBACK_BAD_REQUEST", err.Error())
		}

		log.Println("Payment callback processing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Payment callback processing failed", "PAYMENT_CALLBACK_FAILED", nil)
	}

	return c.Status(fiber.StatusOK).JSON(ack)
}
