package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"consultdesk/handlers"
	"consultdesk/middleware"
)

// RegisterBookingRoutes sets up the consulting booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.POST("", hb.Bookings.Create)
		api.GET("/verify", hb.Bookings.Verify)
		api.POST("/free-busy", hb.Bookings.FreeBusy)
		api.POST("/events", hb.Bookings.CreateEvent)
		api.GET("/:id", hb.Bookings.Get)

		// Refunds require the admin token.
		api.POST("/:id/refund", middleware.AdminAuthMiddleware(), hb.Bookings.Refund)
	}
}

// RegisterOrderRoutes sets up the sponsorship order endpoints.
func RegisterOrderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/orders")
	{
		api.POST("", hb.Orders.Create)
		api.GET("/verify", hb.Orders.Verify)
		api.GET("/:id", hb.Orders.Get)

		api.POST("/:id/refund", middleware.AdminAuthMiddleware(), hb.Orders.Refund)
	}
}

// RegisterDonationRoutes sets up the donation endpoints.
func RegisterDonationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/donations")
	{
		api.POST("", hb.Donations.Create)
		api.GET("/verify", hb.Donations.Verify)
		api.GET("/:id", hb.Donations.Get)
	}
}

// RegisterCouponRoutes sets up the coupon preview endpoint.
func RegisterCouponRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/coupons")
	{
		api.POST("/validate", hb.Coupons.Validate)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, hb)
	RegisterOrderRoutes(r, hb)
	RegisterDonationRoutes(r, hb)
	RegisterCouponRoutes(r, hb)
}
