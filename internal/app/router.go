package app

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"freight/internal/handler"
	"freight/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	BookingHandler     *handler.BookingHandler
	NegotiationHandler *handler.NegotiationHandler
	InvoiceHandler     *handler.InvoiceHandler
	CustomerHandler    *handler.CustomerHandler
	OwnerHandler       *handler.OwnerHandler
	DriverHandler      *handler.DriverHandler
	RedisClient        *redis.Client
	NewRelicApp        *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(cors.Default())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Customer routes.
		customers := v1.Group("/customers")
		{
			customers.POST("/register", deps.CustomerHandler.Register)
			customers.GET("", deps.CustomerHandler.GetAll)
			customers.GET("/:id/bookings", deps.BookingHandler.HistoryForCustomer)
			customers.GET("/:id/invoices", deps.InvoiceHandler.ListForCustomer)
		}

		// Owner routes.
		owners := v1.Group("/owners")
		{
			owners.POST("/register", deps.OwnerHandler.Register)
			owners.POST("/:id/vehicles", deps.OwnerHandler.RegisterVehicle)
			owners.GET("/:id/vehicles", deps.OwnerHandler.ListVehicles)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.POST("/:id/location", deps.DriverHandler.UpdateLocation)
			drivers.POST("/:id/online", deps.DriverHandler.GoOnline)
			drivers.POST("/:id/offline", deps.DriverHandler.GoOffline)
			drivers.POST("/:id/photos", deps.DriverHandler.UploadPhoto)
			drivers.GET("/:id/bookings", deps.BookingHandler.HistoryForDriver)
			drivers.GET("/:id/negotiations", deps.NegotiationHandler.ListForDriver)
		}

		// Booking routes.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.Create)
			bookings.GET("/nearby", deps.BookingHandler.ListNearby)
			bookings.GET("/:id", deps.BookingHandler.Get)
			bookings.POST("/:id/cancel", deps.BookingHandler.Cancel)
			bookings.POST("/:id/decline", deps.BookingHandler.Decline)
			bookings.POST("/:id/accept", deps.NegotiationHandler.Accept)
			bookings.POST("/:id/start", deps.BookingHandler.StartTrip)
			bookings.POST("/:id/end", deps.BookingHandler.EndTrip)

			// Negotiation routes.
			bookings.POST("/:id/negotiations", deps.NegotiationHandler.Propose)
			bookings.POST("/:id/negotiations/decline", deps.NegotiationHandler.Decline)
			bookings.GET("/:id/negotiations", deps.NegotiationHandler.ListForBooking)

			// Invoice routes.
			bookings.POST("/:id/invoice", deps.InvoiceHandler.Compile)
			bookings.GET("/:id/invoice", deps.InvoiceHandler.View)
		}
	}

	return router
}
