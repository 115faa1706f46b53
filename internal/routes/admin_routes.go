package routes

import (
	"github.com/gin-gonic/gin"

	"bus_info/internal/models"
)

func AdminRoutes(r *gin.Engine, d Deps) {
	admin := r.Group("/admin")
	admin.Use(d.Auth.RequireRole(models.RoleAdmin))
	{
		admin.POST("/stops", d.Stops.CreateStop)

		admin.GET("/routes", d.Routes.ListAllRoutes)
		admin.POST("/routes", d.Routes.CreateRoute)
		admin.PATCH("/routes/:name", d.Routes.UpdateRoute)
		admin.DELETE("/routes/:name", d.Routes.DeleteRoute)
		admin.PUT("/routes/:name/stops", d.Routes.ReplaceRouteStops)
		admin.POST("/routes/:name/schedules", d.Routes.AddSchedules)

		admin.POST("/organizations/categories", d.Organizations.CreateCategory)
		admin.POST("/organizations", d.Organizations.CreateOrganization)
	}
}
