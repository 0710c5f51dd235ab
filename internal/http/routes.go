package http

import (
	"carvfi/internal/config"
	"carvfi/internal/http/handlers"
	"carvfi/internal/http/middleware"
	"carvfi/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the engine with the shared middleware stack.
func NewRouter(cfg *config.Config) *gin.Engine {
	switch cfg.GinMode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.GinMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.Recovery(), middleware.Metrics())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	return r
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, hub *ws.Hub, cfg *config.Config) {
	// Health checks (no rate limiting)
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/ws", ws.HandleWS(hub, cfg.AllowedOrigins))

	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit("api", cfg.APIRateLimit, cfg.APIRateWindow))
	api.GET("/health", health.Health)

	// Session
	api.POST("/auth/wallet", middleware.RedisRateLimit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow), h.AuthWallet)
	api.GET("/me", middleware.JWT(), h.Me)

	// Users
	api.GET("/user/:walletAddress", h.GetUser)
	api.POST("/user/profile/:userId", h.UpdateProfile)

	// Check-ins
	api.GET("/checkin/today/:walletAddress", h.TodayCheckIn)
	api.POST("/checkin", h.CheckIn)

	// Chat
	api.GET("/chat/stats/:userId", h.ChatStats)
	api.GET("/chat/history/:userId", h.ChatHistory)
	api.POST("/chat/message", h.SendMessage)

	// Social tasks
	twitter := api.Group("/twitter")
	{
		twitter.GET("/projects", h.PartnerProjects)
		twitter.GET("/activities/:userId", h.TwitterActivities)
		twitter.POST("/connect", h.ConnectTwitter)
		twitter.POST("/verify", h.VerifyTwitter)
	}

	// Points
	api.GET("/points/transactions/:userId", h.Transactions)
	api.GET("/leaderboard", h.Leaderboard)
	api.GET("/leaderboard/rank/:userId", h.Rank)
	api.GET("/stats/:walletAddress", h.Stats)
}
