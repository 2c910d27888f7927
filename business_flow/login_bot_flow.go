package businessflow

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/amirphl/topup-gateway/app/dto"
	"github.com/amirphl/topup-gateway/app/services"
	"github.com/amirphl/topup-gateway/config"
	"github.com/amirphl/topup-gateway/utils"
	"golang.org/x/crypto/bcrypt"
)

// BotAuthFlow represents the bot authentication flow used by handlers
type BotAuthFlow interface {
	Verify(ctx context.Context, req *dto.BotLoginRequest, metadata *ClientMetadata) (*dto.BotLoginResponse, error)
	Refresh(ctx context.Context, req *dto.BotRefreshRequest, metadata *ClientMetadata) (*dto.BotLoginResponse, error)
}

// BotAuthFlowImpl implements the bot authentication flow
type BotAuthFlowImpl struct {
	botCfg       config.BotConfig
	tokenService services.TokenService
}

// NewBotAuthFlow creates a new bot authentication flow instance
func NewBotAuthFlow(botCfg config.BotConfig, tokenService services.TokenService) BotAuthFlow {
	return &BotAuthFlowImpl{
		botCfg:       botCfg,
		tokenService: tokenService,
	}
}

func (bf *BotAuthFlowImpl) Verify(ctx context.Context, req *dto.BotLoginRequest, metadata *ClientMetadata) (*dto.BotLoginResponse, error) {
	if req == nil || len(req.Username) == 0 || len(req.Password) == 0 {
		return nil, NewBusinessError("BOT_LOGIN_VALIDATION_FAILED", "Bot login validation failed", ErrBotUnauthorized)
	}

	// Both checks always run so a wrong username costs as much as a wrong password
	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(bf.botCfg.Username)) == 1
	passwordErr := bcrypt.CompareHashAndPassword([]byte(bf.botCfg.PasswordHash), []byte(req.Password))
	if !usernameOK || passwordErr != nil {
		return nil, NewBusinessError("BOT_INCORRECT_CREDENTIALS", "Incorrect bot credentials", ErrBotUnauthorized)
	}

	accessToken, refreshToken, err := bf.tokenService.GenerateBotTokens(bf.botCfg.Username)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate tokens", err)
	}

	return &dto.BotLoginResponse{
		Username: bf.botCfg.Username,
		Session:  bf.session(accessToken, refreshToken),
	}, nil
}

func (bf *BotAuthFlowImpl) Refresh(ctx context.Context, req *dto.BotRefreshRequest, metadata *ClientMetadata) (*dto.BotLoginResponse, error) {
	if req == nil || req.RefreshToken == "" {
		return nil, NewBusinessError("BOT_REFRESH_VALIDATION_FAILED", "Bot refresh validation failed", ErrBotUnauthorized)
	}

	accessToken, refreshToken, err := bf.tokenService.RefreshBotTokens(req.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("BOT_REFRESH_FAILED", "Failed to refresh tokens", ErrBotUnauthorized)
	}

	return &dto.BotLoginResponse{
		Username: bf.botCfg.Username,
		Session:  bf.session(accessToken, refreshToken),
	}, nil
}

func (bf *BotAuthFlowImpl) session(accessToken, refreshToken string) dto.BotSessionDTO {
	return dto.BotSessionDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(bf.tokenService.AccessTokenTTL().Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    utils.UTCNow().Format(time.RFC3339),
	}
}
