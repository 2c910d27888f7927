// Package dto contains Data Transfer Objects for API request and response structures
package dto

type BotSessionDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	CreatedAt    string `json:"created_at"`
}

type BotLoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=255"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

type BotLoginResponse struct {
	Username string        `json:"username"`
	Session  BotSessionDTO `json:"session"`
}

type BotRefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
