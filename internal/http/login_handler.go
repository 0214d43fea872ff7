package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coupon-api/internal/domain"
	"coupon-api/internal/service"
)

// LoginHandler maneja login y logout.
type LoginHandler struct {
	logger   *zap.Logger
	loginSvc *service.LoginService
}

func NewLoginHandler(logger *zap.Logger, loginSvc *service.LoginService) *LoginHandler {
	return &LoginHandler{
		logger:   logger,
		loginSvc: loginSvc,
	}
}

// Login maneja POST /login.
func (h *LoginHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	token, err := h.loginSvc.Login(c.Request.Context(), req.Email, req.Password, role)
	if err != nil {
		if errors.Is(err, service.ErrInvalidLogin) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Logout maneja POST /logout. Destruir un token ausente tambien es 200.
func (h *LoginHandler) Logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}
	h.loginSvc.Logout(token)
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}
