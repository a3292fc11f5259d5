package routes

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"trekora_back_end/internal/handlers/bookings"
	"trekora_back_end/internal/handlers/review"
	"trekora_back_end/internal/handlers/tour"
	"trekora_back_end/internal/handlers/user"
	"trekora_back_end/internal/middleware"
)

func RegisterRoutes(r *gin.Engine) {
	origins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Session-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// ===== Auth =====
	auth := api.Group("/auth")
	{
		auth.POST("/signup", middleware.SignupRateLimit(), user.Signup)
		auth.POST("/login", middleware.LoginRateLimit(), user.Login)
		auth.POST("/google/mobile", user.GoogleMobileLogin)
		auth.GET("/:provider", user.BeginAuth)
		auth.GET("/:provider/callback", user.CallbackAuth)

		authed := auth.Group("")
		authed.Use(middleware.AuthRequired())
		{
			authed.GET("/me", user.Me)
			authed.POST("/logout", user.Logout)
		}
	}

	// ===== Tours (public) =====
	api.GET("/tours", tour.GetAllTours)
	api.GET("/tours/top-5", tour.GetTopTours)
	api.GET("/tours/search", tour.SearchTours)
	api.GET("/tours/stats", tour.GetTourStats)
	api.GET("/tours/monthly-plan/:year", tour.GetMonthlyPlan)
	api.GET("/tours/:id", tour.GetTourByID)
	api.GET("/tours/:id/reviews", review.GetReviewsByTour)
	api.GET("/tours/:id/availability", bookings.GetTourAvailability)
	api.GET("/tours/:id/availability/watch", bookings.WatchAvailability)
	api.GET("/availability", bookings.GetAllAvailability)

	// ===== Webhook Stripe (signature vérifiée dans le handler, pas de JWT) =====
	api.POST("/webhook/stripe", bookings.StripeWebhook)

	// ===== Routes authentifiées =====
	authed := api.Group("")
	authed.Use(middleware.AuthRequired())
	{
		// Réservation
		authed.POST("/tours/:id/checkout", bookings.CreateCheckoutSession)
		authed.GET("/my-bookings", bookings.GetMyBookings)

		// Avis
		authed.POST("/tours/:id/reviews", review.CreateReview)
		authed.GET("/my-reviews", review.GetMyReviews)
		authed.PATCH("/reviews/:id", review.UpdateReview)
		authed.DELETE("/reviews/:id", review.DeleteReview)
	}

	// ===== Gestion des tours (guides seniors et admins) =====
	manage := api.Group("/tours")
	manage.Use(middleware.AuthRequired(), middleware.RestrictTo("lead-guide", "admin"))
	{
		manage.POST("", tour.CreateTour)
		manage.PATCH("/:id", tour.UpdateTour)
		manage.DELETE("/:id", tour.DeleteTour)
		manage.POST("/:id/images", tour.UploadTourImages)
	}

	// ===== Administration des réservations =====
	admin := api.Group("/bookings")
	admin.Use(middleware.AuthRequired(), middleware.RequireAdmin)
	{
		admin.GET("", bookings.GetAllBookings)
		admin.GET("/conflicts", bookings.GetBookingConflicts)
		admin.GET("/:id", bookings.GetBookingByID)
		admin.POST("", bookings.CreateBooking)
		admin.PATCH("/:id", bookings.UpdateBooking)
		admin.DELETE("/:id", bookings.DeleteBooking)
	}
}
