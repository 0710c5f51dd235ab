package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) PartnerProjects(c *gin.Context) {
	projects, err := h.Engagement.PartnerProjects(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Handler) TwitterActivities(c *gin.Context) {
	acts, err := h.Engagement.TwitterActivities(c.Request.Context(), c.Param("userId"), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acts)
}

type twitterRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *Handler) ConnectTwitter(c *gin.Context) {
	var req twitterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Engagement.ConnectTwitter(c.Request.Context(), req.UserID))
}

func (h *Handler) VerifyTwitter(c *gin.Context) {
	var req twitterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := h.Engagement.VerifyTwitter(c.Request.Context(), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
