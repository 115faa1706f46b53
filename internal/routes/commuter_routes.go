package routes

import (
	"github.com/gin-gonic/gin"
)

// CommuterRoutes is the public, rider-facing API.
func CommuterRoutes(r *gin.Engine, d Deps) {
	api := r.Group("/api")
	{
		api.GET("/journeys", d.Journeys.FindJourneys)
		api.GET("/searches/last", d.Journeys.LastSearch)

		api.GET("/stops", d.Stops.ListStops)
		api.GET("/stops/names", d.Stops.StopNames)
		api.GET("/stops/nearest", d.Stops.NearestStops)
		api.GET("/stops/:code", d.Stops.GetStop)

		api.GET("/routes", d.Routes.ListRoutes)
		api.GET("/routes/:name", d.Routes.GetRoute)
		api.GET("/routes/:name/stops", d.Routes.RouteStops)
		api.GET("/routes/:name/geometry", d.Routes.RouteGeometry)

		api.GET("/organizations", d.Organizations.ListOrganizations)
		api.GET("/organizations/categories", d.Organizations.ListCategories)
		api.GET("/organizations/:id", d.Organizations.GetOrganization)
	}
}
