package api

import (
	"log"
	stdhttp "net/http"

	intconfig "busbooking/internal/config"
	"busbooking/internal/domain"
	h "busbooking/internal/http/handlers"
	"busbooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, hd h.Handler) *gin.Engine {
	if err := h.RegisterValidators(); err != nil {
		log.Printf("warning: failed to register validators: %v", err)
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"message":    "route not found",
			"code":       "not_found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": middleware.GetRequestID(c),
		})
	})

	authn := middleware.Authenticate(hd.Auth)
	only := func(roles ...domain.Role) gin.HandlerFunc { return middleware.RequireRoles(roles...) }

	api := r.Group("/api")
	{
		api.GET("/health", hd.Health)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/signup", hd.Signup)
		auth.POST("/login", hd.Login)

		// Commuters
		commuters := api.Group("/commuters")
		commuters.GET("/trips/:id/seats", hd.SeatMatrix)
		commuter := commuters.Group("", authn, only(domain.RoleCommuter))
		commuter.POST("/book-seat", hd.BookSeat)
		commuter.POST("/payments", hd.Pay)
		commuter.GET("/payments/:bookingId", hd.GetPayment)
		commuter.PUT("/cancel-booking", hd.CancelBooking)
		commuter.GET("/my-bookings", hd.MyBookings)
		commuter.GET("/bookings/:id/e-ticket", hd.ETicket)

		// Trips
		trips := api.Group("/trips")
		trips.GET("/:id", hd.GetTrip)
		trips.POST("", authn, only(domain.RoleAdmin), hd.CreateTrip)

		// Bookings (admin)
		bookings := api.Group("/bookings", authn, only(domain.RoleAdmin))
		bookings.GET("/trips/:tripId/bookings", hd.TripBookings)
		bookings.DELETE("/bookings/:bookingId/cancel", hd.AdminCancelBooking)

		// Operators
		operators := api.Group("/operators", authn)
		operators.GET("/bookings", only(domain.RoleOperator), hd.OperatorBookings)
		operators.POST("/cancel-trip", only(domain.RoleOperator, domain.RoleAdmin), hd.CancelTrip)
	}

	return r
}
