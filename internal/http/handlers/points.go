package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Transactions lists the user's ledger, newest first. Without ?limit the whole
// log is returned; X-Total-Count always carries the full entry count.
func (h *Handler) Transactions(c *gin.Context) {
	txs, total, err := h.Engagement.ListTransactions(c.Request.Context(), c.Param("userId"), queryLimit(c), queryOffset(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header(totalCountHeader, strconv.Itoa(total))
	c.JSON(http.StatusOK, txs)
}

func (h *Handler) Leaderboard(c *gin.Context) {
	entries, err := h.Engagement.Leaderboard(c.Request.Context(), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

func (h *Handler) Rank(c *gin.Context) {
	rank, err := h.Engagement.Rank(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rank)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.Engagement.Stats(c.Request.Context(), c.Param("walletAddress"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
