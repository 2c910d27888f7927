package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirphl/topup-gateway/app/dto"
	"github.com/amirphl/topup-gateway/app/handlers"
	"github.com/amirphl/topup-gateway/app/middleware"
	"github.com/amirphl/topup-gateway/app/services"
	businessflow "github.com/amirphl/topup-gateway/business_flow"
	"github.com/amirphl/topup-gateway/config"
	"github.com/amirphl/topup-gateway/repository"
	"github.com/amirphl/topup-gateway/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testBotUsername = "topup_bot"
	testBotPassword = "bot-password-123"
)

func newTestRouter(t *testing.T) Router {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testBotPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.ProductionConfig{
		Server: config.ServerConfig{
			BodyLimit:    1024 * 1024,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
		},
		Security: config.SecurityConfig{
			AuthRateLimit:   100,
			GlobalRateLimit: 1000,
			RateLimitWindow: time.Minute,
			CSPPolicy:       "default-src 'self'; script-src 'self' 'unsafe-inline'; form-action 'self' https://secure.wayforpay.com",
			XFrameOptions:   "DENY",
			ReferrerPolicy:  "no-referrer",
		},
		Metrics:    config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Deployment: config.DeploymentConfig{Environment: "test", Version: "test"},
		WayForPay: config.WayForPayConfig{
			MerchantAccount:    "test_merch_n1",
			MerchantDomainName: "topup.example.com",
			SecretKey:          "test-merchant-secret",
			PayURL:             utils.DefaultPayURL,
			PaymentPageURL:     "https://topup.example.com/pay",
			Currency:           utils.HryvniaCurrency,
			ProductName:        utils.DefaultProductName,
		},
		Referral: config.ReferralConfig{
			BonusRate: decimal.RequireFromString(utils.DefaultReferralBonusRate),
			LinkBase:  "https://t.me/topup_test_bot?start=",
		},
		Bot: config.BotConfig{Username: testBotUsername, PasswordHash: string(hash)},
	}

	tokens, err := services.NewTokenService(time.Minute, time.Hour, "test-issuer", "test-audience", false, "", "", "test-secret-key-for-jwt-signing-32-chars")
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	paymentFlow := businessflow.NewPaymentFlow(store.Accounts(), store.PendingOrders(), store.LedgerEntries(), store, cfg.WayForPay, cfg.Referral, nil)
	accountFlow := businessflow.NewAccountFlow(store.Accounts(), store.LedgerEntries(), store, cfg.Referral, cfg.WayForPay.Currency)
	dialogFlow := businessflow.NewTopupDialogFlow(repository.NewMemoryDialogStateRepository(time.Minute), store.Accounts(), paymentFlow)

	r := NewFiberRouter(cfg, Handlers{
		Payment:     handlers.NewPaymentHandler(paymentFlow),
		Account:     handlers.NewAccountHandler(accountFlow),
		TopupDialog: handlers.NewTopupDialogHandler(dialogFlow),
		AuthBot:     handlers.NewAuthBotHandler(businessflow.NewBotAuthFlow(cfg.Bot, tokens)),
	}, middleware.NewAuthMiddleware(tokens))
	r.SetupRoutes()
	return r
}

func request(t *testing.T, r Router, method, target, token string, body any) (*http.Response, dto.APIResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.GetApp().Test(req)
	require.NoError(t, err)

	var res dto.APIResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if json.Valid(raw) {
		require.NoError(t, json.Unmarshal(raw, &res))
	}
	return resp, res
}

func errorCode(res dto.APIResponse) string {
	detail, _ := res.Error.(map[string]any)
	code, _ := detail["code"].(string)
	return code
}

func login(t *testing.T, r Router) dto.BotLoginResponse {
	t.Helper()
	resp, res := request(t, r, http.MethodPost, "/api/v1/bot/auth/login", "", dto.BotLoginRequest{Username: testBotUsername, Password: testBotPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := json.Marshal(res.Data)
	require.NoError(t, err)
	var out dto.BotLoginResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t)

	t.Run("Health", func(t *testing.T) {
		resp, res := request(t, r, http.MethodGet, "/api/v1/health", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, res.Success)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, _ := request(t, r, http.MethodGet, "/metrics", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("NotFound", func(t *testing.T) {
		resp, res := request(t, r, http.MethodGet, "/api/v1/nothing-here", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", errorCode(res))
	})

	t.Run("BotRoutesRequireToken", func(t *testing.T) {
		resp, res := request(t, r, http.MethodPost, "/api/v1/bot/accounts", "", dto.RegisterAccountRequest{AccountID: "1001"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "MISSING_AUTHORIZATION_HEADER", errorCode(res))

		resp, res = request(t, r, http.MethodPost, "/api/v1/bot/orders", "garbage", dto.CreateOrderRequest{AccountID: "1001", Amount: "10"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "TOKEN_INVALID", errorCode(res))
	})

	t.Run("WrongBotPassword", func(t *testing.T) {
		resp, res := request(t, r, http.MethodPost, "/api/v1/bot/auth/login", "", dto.BotLoginRequest{Username: testBotUsername, Password: "wrong-password"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "BOT_LOGIN_FAILED", errorCode(res))
	})

	t.Run("RefreshTokenCannotCallAPI", func(t *testing.T) {
		session := login(t, r).Session

		resp, res := request(t, r, http.MethodGet, "/api/v1/bot/accounts/1001/balance", session.RefreshToken, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "TOKEN_WRONG_TYPE", errorCode(res))
	})

	t.Run("BotFlowWithToken", func(t *testing.T) {
		token := login(t, r).Session.AccessToken

		resp, _ := request(t, r, http.MethodPost, "/api/v1/bot/accounts", token, dto.RegisterAccountRequest{AccountID: "1001"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, _ = request(t, r, http.MethodPost, "/api/v1/bot/topup/1001/start", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, res := request(t, r, http.MethodPost, "/api/v1/bot/topup/1001/amount", token, dto.SubmitAmountRequest{Text: "75"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.True(t, res.Success)

		resp, _ = request(t, r, http.MethodGet, "/api/v1/bot/accounts/1001/balance", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("CallbackIsPublic", func(t *testing.T) {
		resp, res := request(t, r, http.MethodPost, "/api/v1/payments/wayforpay/callback", "", map[string]any{"merchantAccount": "test_merch_n1"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "CALLBACK_BAD_REQUEST", errorCode(res))
	})

	t.Run("PaymentPageSetsCSP", func(t *testing.T) {
		resp, _ := request(t, r, http.MethodGet, "/pay?order_ref=missing&amount=10", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "https://secure.wayforpay.com")
	})
}
