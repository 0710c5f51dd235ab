package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"carvfi/internal/logger"
	"carvfi/internal/service"

	"github.com/gin-gonic/gin"
)

const totalCountHeader = "X-Total-Count"

type Handler struct {
	Engagement *service.EngagementService
}

func NewHandler(svc *service.EngagementService) *Handler {
	return &Handler{Engagement: svc}
}

// respondError maps service errors onto the public error shape. Unknown
// errors are logged and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already checked in today"})
	case errors.Is(err, service.ErrDailyLimitReached):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Daily message limit reached"})
	case errors.Is(err, service.ErrInvalidWallet):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet address"})
	case errors.Is(err, service.ErrMissingProof),
		errors.Is(err, service.ErrInvalidMessage),
		errors.Is(err, service.ErrUsernameLocked),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		logger.WithContext(c.Request.Context()).Errorw("request failed",
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

// queryLimit reads ?limit=N; zero means "use the default".
func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func queryOffset(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("offset"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
