// README: HTTP router registration.
package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gocab/internal/http/handlers"
	"gocab/internal/http/middleware"
	"gocab/internal/modules/dispatch"
	"gocab/internal/modules/location"
	"gocab/internal/modules/ride"
	"gocab/internal/mq"
)

type RouterDeps struct {
	Rides       *ride.Service
	Coordinator *dispatch.Coordinator
	Location    *location.Service
	Bus         *mq.Publisher
	JWTSecret   string
	Log         *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.Logging(deps.Log))
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) { c.String(nethttp.StatusOK, "OK") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rideHandler := handlers.NewRideHandler(deps.Rides, deps.Coordinator, deps.Bus)
	driverHandler := handlers.NewDriverHandler(deps.Location)

	api := r.Group("/api", middleware.Auth(deps.JWTSecret))

	rides := api.Group("/rides")
	rides.POST("", rideHandler.Create)
	rides.GET("/pending", middleware.RequireRole(middleware.RoleDriver), rideHandler.ListPending)
	rides.GET("/current", middleware.RequireRole(middleware.RoleDriver), rideHandler.Current)
	rides.GET("/history", middleware.RequireRole(middleware.RoleDriver), rideHandler.History)
	rides.GET("/:id", rideHandler.Get)
	rides.POST("/:id/accept", middleware.RequireRole(middleware.RoleDriver), rideHandler.Accept)
	rides.POST("/:id/decline", middleware.RequireRole(middleware.RoleDriver), rideHandler.Decline)
	rides.POST("/:id/start", middleware.RequireRole(middleware.RoleDriver), rideHandler.Start)
	rides.POST("/:id/complete", middleware.RequireRole(middleware.RoleDriver), rideHandler.Complete)
	rides.POST("/:id/cancel", rideHandler.Cancel)

	drivers := api.Group("/drivers", middleware.RequireRole(middleware.RoleDriver))
	drivers.PUT("/location", driverHandler.UpdateLocation)
	drivers.POST("/availability", driverHandler.SetAvailability)

	return r
}
