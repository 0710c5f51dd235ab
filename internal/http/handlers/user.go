package handlers

import (
	"net/http"

	"carvfi/internal/http/middleware"
	"carvfi/internal/service"

	"github.com/gin-gonic/gin"
)

// GetUser returns the user for a wallet, creating it on first sight.
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.Engagement.ResolveUser(c.Request.Context(), c.Param("walletAddress"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type profileRequest struct {
	Username *string `json:"username" binding:"omitempty,max=64"`
	Email    *string `json:"email" binding:"omitempty,max=254"`
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.Engagement.UpdateProfile(c.Request.Context(), c.Param("userId"), service.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type walletAuthRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
}

// AuthWallet opens a session for a wallet and returns a bearer token.
func (h *Handler) AuthWallet(c *gin.Context) {
	var req walletAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.Engagement.ResolveUser(c.Request.Context(), req.WalletAddress)
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := service.GenerateJWT(user.ID, user.WalletAddress)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user, err := h.Engagement.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
