package controllers

import (
	"encoding/binary"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"

	"bus_info/internal/geo"
	"bus_info/internal/middleware"
	"bus_info/internal/models"
	"bus_info/internal/repository"
	"bus_info/internal/schedule"
)

// RouteResponse mirrors models.Route with the stored WKB path rendered as GeoJSON.
type RouteResponse struct {
	Name                string          `json:"name"`
	OriginStopCode      string          `json:"origin_stop_code,omitempty"`
	DestinationStopCode string          `json:"destination_stop_code,omitempty"`
	Description         string          `json:"description,omitempty"`
	Color               string          `json:"color,omitempty"`
	IsActive            bool            `json:"is_active"`
	Geometry            json.RawMessage `json:"geometry,omitempty"`
}

// toRouteResponse converts a models.Route to a RouteResponse
func toRouteResponse(route models.Route) RouteResponse {
	resp := RouteResponse{
		Name:                route.Name,
		OriginStopCode:      route.OriginStopCode,
		DestinationStopCode: route.DestinationStopCode,
		Description:         route.Description,
		Color:               route.Color,
		IsActive:            route.IsActive,
	}
	geometry, err := convertWKBToGeoJSON(route.Geometry)
	if err != nil {
		logrus.WithError(err).WithField("route", route.Name).Warn("stored route geometry is unreadable")
	} else if geometry != "" {
		resp.Geometry = json.RawMessage(geometry)
	}
	return resp
}

// parseAndConvertGeometry parses a GeoJSON string into a geom.T and returns WKB bytes
func parseAndConvertGeometry(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, err
	}
	return wkb.Marshal(g, binary.LittleEndian)
}

// convertWKBToGeoJSON converts WKB bytes into a GeoJSON string
func convertWKBToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type RouteController struct {
	store *repository.Store
}

func NewRouteController(store *repository.Store) *RouteController {
	return &RouteController{store: store}
}

// ListRoutes returns the active routes; admins may pass all=true to include retired ones.
// ListRoutes lists the routes in service.
func (rc *RouteController) ListRoutes(c *gin.Context) {
	rc.listRoutes(c, true)
}

// ListAllRoutes lists routes for operators; all=true includes retired ones.
func (rc *RouteController) ListAllRoutes(c *gin.Context) {
	rc.listRoutes(c, c.Query("all") != "true")
}

func (rc *RouteController) listRoutes(c *gin.Context, activeOnly bool) {
	routes, err := rc.store.ListRoutes(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err, "listing routes")
		return
	}

	routeResponses := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		routeResponses = append(routeResponses, toRouteResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"routes": routeResponses})
}

func (rc *RouteController) GetRoute(c *gin.Context) {
	route, err := rc.store.RouteByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err, "loading route")
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(route)})
}

// RouteStops lists the stops of a route, optionally cut to the part between from and to.
func (rc *RouteController) RouteStops(c *gin.Context) {
	stops, err := rc.store.StopsBetween(c.Request.Context(), c.Param("name"), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err, "loading route stops")
		return
	}

	resp := make([]stopResponse, 0, len(stops))
	for _, s := range stops {
		resp = append(resp, toStopResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"route": c.Param("name"), "stops": resp})
}

// RouteGeometry draws the route, or the part between from and to, as a GeoJSON
// FeatureCollection of its path and stops.
func (rc *RouteController) RouteGeometry(c *gin.Context) {
	name := c.Param("name")
	stops, err := rc.store.StopsBetween(c.Request.Context(), name, c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err, "loading route stops")
		return
	}

	fc, err := geo.RouteFeatureCollection(name, stops)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, fc)
}

type createRouteInput struct {
	Name        string `json:"name" binding:"required,max=31"`
	Description string `json:"description" binding:"max=500"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
	IsActive    *bool  `json:"is_active"`
	// GeoJSON path, used until the route gets a stop sequence
	Geometry string   `json:"geometry"`
	Stops    []string `json:"stops" binding:"omitempty,dive,required"`
}

// CreateRoute adds a route and, when stops are given, its stop sequence.
func (rc *RouteController) CreateRoute(c *gin.Context) {
	var input createRouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.Log(c).WithError(err).Warn("CreateRoute: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	wkbGeom, err := parseAndConvertGeometry(input.Geometry)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid geometry: " + err.Error()})
		return
	}

	route := models.Route{
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		IsActive:    input.IsActive == nil || *input.IsActive,
		Geometry:    wkbGeom,
	}
	ctx := c.Request.Context()
	if err := rc.store.CreateRoute(ctx, &route); err != nil {
		respondError(c, err, "creating route")
		return
	}

	if len(input.Stops) > 0 {
		if _, err := rc.store.ReplaceRouteStops(ctx, route.Name, input.Stops); err != nil {
			respondError(c, err, "setting route stops")
			return
		}
		if route, err = rc.store.RouteByName(ctx, route.Name); err != nil {
			respondError(c, err, "loading route")
			return
		}
	}

	middleware.Log(c).WithField("route", route.Name).Info("route created")
	c.JSON(http.StatusCreated, gin.H{"route": toRouteResponse(route)})
}

// ReplaceRouteStops rewrites the ordered stop sequence of a route.
func (rc *RouteController) ReplaceRouteStops(c *gin.Context) {
	var input struct {
		Stops []string `json:"stops" binding:"required,dive,required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	routeStops, err := rc.store.ReplaceRouteStops(c.Request.Context(), c.Param("name"), input.Stops)
	if err != nil {
		respondError(c, err, "replacing route stops")
		return
	}

	resp := make([]gin.H, 0, len(routeStops))
	for _, rs := range routeStops {
		resp = append(resp, gin.H{"order": rs.StopOrder, "stop": toStopResponse(rs.Stop)})
	}
	c.JSON(http.StatusOK, gin.H{"route": c.Param("name"), "stops": resp})
}

// UpdateRoute toggles whether a route is offered to riders.
func (rc *RouteController) UpdateRoute(c *gin.Context) {
	var input struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := rc.store.SetRouteActive(c.Request.Context(), c.Param("name"), *input.IsActive); err != nil {
		respondError(c, err, "updating route")
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": c.Param("name"), "is_active": *input.IsActive})
}

// DeleteRoute removes a route with its stop sequence and timetable.
func (rc *RouteController) DeleteRoute(c *gin.Context) {
	if err := rc.store.DeleteRoute(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, err, "deleting route")
		return
	}
	middleware.Log(c).WithField("route", c.Param("name")).Info("route deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Route deleted successfully"})
}

type arrivalInput struct {
	StopCode    string              `json:"stop_code" binding:"required"`
	ArrivalTime *schedule.TimeOfDay `json:"arrival_time" binding:"required"`
}

type addSchedulesInput struct {
	TripID string `json:"trip_id" binding:"max=63"`
	// packed weekday bits, bit 0 = Monday; omitted means every day
	ServiceDays *int           `json:"service_days"`
	Arrivals    []arrivalInput `json:"arrivals" binding:"required,min=2,dive"`
}

// AddSchedules adds one trip to the route's timetable.
func (rc *RouteController) AddSchedules(c *gin.Context) {
	var input addSchedulesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	days := schedule.AllDays
	if input.ServiceDays != nil {
		days = *input.ServiceDays
	}

	arrivals := make([]repository.Arrival, 0, len(input.Arrivals))
	for _, a := range input.Arrivals {
		arrivals = append(arrivals, repository.Arrival{StopCode: a.StopCode, ArrivalTime: *a.ArrivalTime})
	}

	entries, err := rc.store.AddSchedules(c.Request.Context(), c.Param("name"), input.TripID, days, arrivals)
	if err != nil {
		respondError(c, err, "adding schedules")
		return
	}

	tripID := input.TripID
	if len(entries) > 0 {
		tripID = entries[0].TripID
	}
	c.JSON(http.StatusCreated, gin.H{"trip_id": tripID, "entries": len(entries)})
}
