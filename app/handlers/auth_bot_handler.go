package handlers

import (
	"log"

	"github.com/amirphl/topup-gateway/app/dto"
	businessflow "github.com/amirphl/topup-gateway/business_flow"
	"github.com/gofiber/fiber/v3"
)

type AuthBotHandlerInterface interface {
	Login(c fiber.Ctx) error
	Refresh(c fiber.Ctx) error
}

type AuthBotHandler struct {
	baseHandler
	flow businessflow.BotAuthFlow
}

func NewAuthBotHandler(flow businessflow.BotAuthFlow) *AuthBotHandler {
	return &AuthBotHandler{baseHandler: newBaseHandler(), flow: flow}
}

// Login authenticates a bot and returns tokens
func (h *AuthBotHandler) Login(c fiber.Ctx) error {
	var req dto.BotLoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/bot/auth/login")
	defer cancel()

	res, err := h.flow.Verify(ctx, &req, h.clientMetadata(c))
	if err != nil {
		log.Println("Bot login failed", err)
		if businessflow.IsBotUnauthorized(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Login failed", "BOT_LOGIN_FAILED", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Login failed", "BOT_LOGIN_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", res)
}

// Refresh exchanges a refresh token for a new token pair
func (h *AuthBotHandler) Refresh(c fiber.Ctx) error {
	var req dto.BotRefreshRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/bot/auth/refresh")
	defer cancel()

	res, err := h.flow.Refresh(ctx, &req, h.clientMetadata(c))
	if err != nil {
		log.Println("Bot token refresh failed", err)
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Token refresh failed", "BOT_REFRESH_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Token refreshed successfully", res)
}
