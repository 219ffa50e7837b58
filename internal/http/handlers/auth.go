package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lms-backend/internal/http/response"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"github.com/yungbote/lms-backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !decodeStrict(c, ah.log, &req) {
		return
	}
	u, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondAggregateError(c, ah.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"user": u})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeStrict(c, ah.log, &req) {
		return
	}
	accessToken, u, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondAggregateError(c, ah.log, err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_in":   int(ah.authService.GetAccessTTL().Seconds()),
		"user":         u,
	})
}
