package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"medislot/handlers"
	"medislot/middleware"
	"medislot/models"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health.HealthHandler)
}

// RegisterAvailabilityRoutes registers grid creation and query endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/availability")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/:doctorId/:date", hb.Availability.GetGridHandler)
		api.POST("", middleware.RequireRole(models.RoleDoctor), hb.Availability.CreateOwnAvailabilityHandler)
	}
}

// RegisterSlotRoutes registers the soft lock endpoints.
func RegisterSlotRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/slots")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/lock/:doctorId/:date/:slotTime", hb.Booking.PeekLockHandler)

		patient := api.Group("")
		patient.Use(middleware.RequireRole(models.RolePatient))
		patient.POST("/lock", hb.Booking.LockSlotHandler)
		patient.POST("/unlock", hb.Booking.UnlockSlotHandler)
	}
}

// RegisterAppointmentRoutes registers the patient booking endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(models.RolePatient))
		api.POST("", hb.Booking.ConfirmBookingHandler)
		api.POST("/cancel", hb.Booking.CancelHandler)
		api.GET("/mine", hb.Booking.MyAppointmentsHandler)
	}
}

// RegisterDoctorRoutes registers endpoints for the doctor's own appointments.
func RegisterDoctorRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/doctor")
	{
		api.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(models.RoleDoctor))
		api.GET("/appointments", hb.Booking.DoctorAppointmentsHandler)
		api.POST("/appointments/complete", hb.Booking.CompleteHandler)
	}
}

// RegisterPaymentRoutes registers the payment collaborator endpoints.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payment")
	{
		api.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(models.RolePatient))
		api.POST("/create-order", hb.Payment.CreateOrderHandler)
		api.POST("/verify", hb.Payment.VerifyHandler)
		api.POST("/revert", hb.Payment.RevertHandler)
	}
}

// RegisterRealtimeRoutes registers the slot event stream. Browsers' EventSource cannot send an
// Authorization header, and the stream only carries slot addresses, so it is public.
func RegisterRealtimeRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/realtime/stream", hb.Realtime.StreamHandler)
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthMiddleware(), middleware.RequireRole(models.RoleAdmin))
		adminGroup.POST("/availability", hb.Availability.CreateAvailabilityForDoctorHandler)
		adminGroup.POST("/appointments/revert", hb.Booking.RevertHandler)
	}
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

	RegisterHealthRoute(r, hb)
	RegisterAvailabilityRoutes(r, hb)
	RegisterSlotRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterDoctorRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterRealtimeRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
