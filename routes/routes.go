package routes

import (
	"net/http"
	"time"

	userRepo "solace/database/repository/user"
	"solace/handlers"
	"solace/middleware"
	"solace/realtime"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the endpoint handlers and their shared deps.
type HandlerBundle struct {
	UserRepo userRepo.UserRepository

	Match   *handlers.MatchHandler
	Booking *handlers.BookingHandler
	Safety  *handlers.SafetyHandler
	Message *handlers.MessageHandler
	Payment *handlers.PaymentHandler
	Admin   *handlers.AdminHandler
	Gateway *realtime.Gateway
}

// RegisterMatchRoutes registers discovery endpoints.
func RegisterMatchRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/matches")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("/find", hb.Match.FindMatches)
		api.GET("/recommendations", hb.Match.GetRecommended)
		api.GET("/:friendId", hb.Match.GetMatchDetails)
	}
}

// RegisterBookingRoutes registers the booking lifecycle, check-ins,
// and the per-booking message log.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("", hb.Booking.Create)
		api.GET("", hb.Booking.List)
		api.GET("/:id", hb.Booking.Get)
		api.PUT("/:id/status", hb.Booking.UpdateStatus)
		api.PUT("/:id/cancel", hb.Booking.Cancel)
		api.POST("/:id/review", hb.Booking.SubmitReview)
		api.POST("/:id/dispute", hb.Booking.OpenDispute)

		api.POST("/:id/checkin", hb.Safety.CheckIn)

		api.GET("/:id/messages", hb.Message.List)
		api.POST("/:id/messages", hb.Message.Send)
	}
}

// RegisterSafetyRoutes registers the check-in monitor surface.
func RegisterSafetyRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/safety")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("/sos", hb.Safety.TriggerSOS)
		api.GET("/status/:bookingId", hb.Safety.GetStatus)
		api.GET("/checkin/:bookingId", hb.Safety.CheckInHistory)
		api.POST("/verify-code", hb.Safety.VerifyCode)
	}
}

// RegisterMessageRoutes registers the cross-booking inbox.
func RegisterMessageRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/messages")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.GET("/conversations", hb.Message.Conversations)
		api.GET("/unread", hb.Message.UnreadCount)
		api.PUT("/read/:bookingId", hb.Message.MarkRead)
	}
}

// RegisterPaymentRoutes registers intents, confirmation, and earnings.
func RegisterPaymentRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		api.POST("/create-intent", hb.Payment.CreateIntent)
		api.POST("/confirm", hb.Payment.Confirm)
		api.GET("/earnings", hb.Payment.Earnings)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthMiddleware(hb.UserRepo))
		adminGroup.Use(middleware.AdminAuthMiddleware())
		adminGroup.PUT("/disputes/:bookingId/resolve", hb.Admin.ResolveDispute)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterMatchRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterSafetyRoutes(r, hb)
	RegisterMessageRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)

	// WebSocket entry; the gateway authenticates via token query param.
	r.GET("/ws", hb.Gateway.ServeWS)
}
