package handlers

import (
	"log"

	"github.com/amirphl/topup-gateway/app/dto"
	businessflow "github.com/amirphl/topup-gateway/business_flow"
	"github.com/gofiber/fiber/v3"
)

type AccountHandlerInterface interface {
	Register(c fiber.Ctx) error
	GetBalance(c fiber.Ctx) error
	GetReferralInfo(c fiber.Ctx) error
	GetHistory(c fiber.Ctx) error
}

// AccountHandler serves the bot's account commands
type AccountHandler struct {
	baseHandler
	flow businessflow.AccountFlow
}

func NewAccountHandler(flow businessflow.AccountFlow) *AccountHandler {
	return &AccountHandler{baseHandler: newBaseHandler(), flow: flow}
}

// Register creates the account on /start, optionally with the referrer from the start payload
func (h *AccountHandler) Register(c fiber.Ctx) error {
	var req dto.RegisterAccountRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/bot/accounts")
	defer cancel()

	res, err := h.flow.RegisterAccount(ctx, &req, h.clientMetadata(c))
	if err != nil {
		return h.accountError(c, err, "Account registration failed", "ACCOUNT_REGISTRATION_FAILED")
	}

	status := fiber.StatusOK
	if res.Created {
		status = fiber.StatusCreated
	}
	return h.SuccessResponse(c, status, "Account registered successfully", res)
}

func (h *AccountHandler) GetBalance(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/bot/accounts/:id/balance")
	defer cancel()

	res, err := h.flow.GetBalance(ctx, c.Params("id"))
	if err != nil {
		return h.accountError(c, err, "Failed to retrieve balance", "BALANCE_RETRIEVAL_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Balance retrieved successfully", res)
}

func (h *AccountHandler) GetReferralInfo(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/bot/accounts/:id/referral")
	defer cancel()

	res, err := h.flow.GetReferralInfo(ctx, c.Params("id"))
	if err != nil {
		return h.accountError(c, err, "Failed to retrieve referral info", "REFERRAL_INFO_RETRIEVAL_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Referral info retrieved successfully", res)
}

// GetHistory lists the account's balance credits, newest first
func (h *AccountHandler) GetHistory(c fiber.Ctx) error {
	var query dto.HistoryQuery
	if err := c.Bind().Query(&query); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &query); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/bot/accounts/:id/history")
	defer cancel()

	res, err := h.flow.GetHistory(ctx, c.Params("id"), &query)
	if err != nil {
		return h.accountError(c, err, "Failed to retrieve history", "HISTORY_RETRIEVAL_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "History retrieved successfully", res)
}

func (h *AccountHandler) accountError(c fiber.Ctx, err error, message, code string) error {
	switch {
	case businessflow.IsAccountRequired(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Account id is required", "ACCOUNT_REQUIRED", nil)
	case businessflow.IsUnknownAccount(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
	}
	log.Println(message, err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, message, code, nil)
}
