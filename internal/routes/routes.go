package routes

import (
	"io"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"bus_info/internal/controllers"
	"bus_info/internal/middleware"
)

// Deps is everything the router hands requests to.
type Deps struct {
	Auth     *middleware.Auth
	Health   *controllers.HealthController
	Users    *controllers.AuthController
	Journeys *controllers.JourneyController
	Stops    *controllers.StopController
	Routes   *controllers.RouteController

	Organizations *controllers.OrganizationController

	CORSOrigins []string
	// access log destination; nil disables request logging
	AccessLog io.Writer
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if d.AccessLog != nil {
		r.Use(ginlog.SetLogger(
			ginlog.WithWriter(d.AccessLog),
			ginlog.WithUTC(true),
			ginlog.WithSkipPath([]string{"/health"}),
		))
	}
	r.Use(middleware.CORS(d.CORSOrigins))

	r.GET("/health", d.Health.Health)
	AuthRoutes(r, d)
	CommuterRoutes(r, d)
	AdminRoutes(r, d)

	return r
}
