package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ChatStats(c *gin.Context) {
	stats, err := h.Engagement.ChatStats(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type chatMessageRequest struct {
	UserID        string `json:"userId"`
	Message       string `json:"message" binding:"required"`
	WalletAddress string `json:"walletAddress" binding:"required"`
}

// SendMessage answers a chat message. The wallet address identifies the
// sender; userId is accepted for compatibility and otherwise ignored.
func (h *Handler) SendMessage(c *gin.Context) {
	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.Engagement.SendMessage(c.Request.Context(), req.WalletAddress, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ChatHistory(c *gin.Context) {
	msgs, err := h.Engagement.ChatHistory(c.Request.Context(), c.Param("userId"), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}
