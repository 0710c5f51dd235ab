package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TodayCheckIn returns today's check-in or null.
func (h *Handler) TodayCheckIn(c *gin.Context) {
	checkIn, err := h.Engagement.TodayCheckIn(c.Request.Context(), c.Param("walletAddress"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkIn)
}

type checkInRequest struct {
	WalletAddress        string `json:"walletAddress" binding:"required"`
	TransactionSignature string `json:"transactionSignature" binding:"required"`
}

func (h *Handler) CheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := h.Engagement.CheckIn(c.Request.Context(), req.WalletAddress, req.TransactionSignature)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
