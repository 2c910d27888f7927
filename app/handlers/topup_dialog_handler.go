package handlers

import (
	"log"

	"github.com/amirphl/topup-gateway/app/dto"
	businessflow "github.com/amirphl/topup-gateway/business_flow"
	"github.com/gofiber/fiber/v3"
)

type TopupDialogHandlerInterface interface {
	Start(c fiber.Ctx) error
	SubmitAmount(c fiber.Ctx) error
	Cancel(c fiber.Ctx) error
}

// TopupDialogHandler exposes the top-up conversation to the bot
type TopupDialogHandler struct {
	baseHandler
	flow businessflow.TopupDialogFlow
}

func NewTopupDialogHandler(flow businessflow.TopupDialogFlow) *TopupDialogHandler {
	return &TopupDialogHandler{baseHandler: newBaseHandler(), flow: flow}
}

func (h *TopupDialogHandler) Start(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/bot/topup/:id/start")
	defer cancel()

	res, err := h.flow.Start(ctx, c.Params("id"))
	if err != nil {
		return h.dialogError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Waiting for amount", res)
}

// SubmitAmount passes the user's reply to the dialog; a valid amount yields the payment link
func (h *TopupDialogHandler) SubmitAmount(c fiber.Ctx) error {
	var req dto.SubmitAmountRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/bot/topup/:id/amount")
	defer cancel()

	res, err := h.flow.SubmitAmount(ctx, c.Params("id"), req.Text, h.clientMetadata(c))
	if err != nil {
		return h.dialogError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Order created successfully", res)
}

func (h *TopupDialogHandler) Cancel(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/bot/topup/:id/cancel")
	defer cancel()

	res, err := h.flow.Cancel(ctx, c.Params("id"))
	if err != nil {
		return h.dialogError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Top-up cancelled", res)
}

func (h *TopupDialogHandler) dialogError(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsNotAwaitingAmount(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Top-up dialog is not waiting for an amount", "NOT_AWAITING_AMOUNT", nil)
	case businessflow.IsInvalidAmount(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Amount must be a positive number with at most two decimals", "INVALID_AMOUNT", nil)
	case businessflow.IsAccountRequired(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Account id is required", "ACCOUNT_REQUIRED", nil)
	case businessflow.IsUnknownAccount(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
	}
	log.Println("Top-up dialog failed", err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, "Top-up dialog failed", "TOPUP_DIALOG_FAILED", nil)
}
