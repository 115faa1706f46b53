package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bus_info/internal/middleware"
	"bus_info/internal/models"
	"bus_info/internal/repository"
)

type StopController struct {
	store *repository.Store
}

func NewStopController(store *repository.Store) *StopController {
	return &StopController{store: store}
}

// ListStops searches by name or address when q is given and pages through all stops otherwise.
func (sc *StopController) ListStops(c *gin.Context) {
	var q struct {
		Query  string `form:"q"`
		Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
		Offset int    `form:"offset" binding:"omitempty,min=0"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	if q.Query != "" {
		stops, err := sc.store.SearchStops(ctx, q.Query, q.Limit, q.Offset)
		if err != nil {
			respondError(c, err, "searching stops")
			return
		}
		c.JSON(http.StatusOK, gin.H{"stops": stops})
		return
	}

	stops, err := sc.store.ListStops(ctx, q.Limit, q.Offset)
	if err != nil {
		respondError(c, err, "listing stops")
		return
	}
	total, err := sc.store.CountStops(ctx)
	if err != nil {
		respondError(c, err, "counting stops")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stops": stops, "total": total})
}

// NearestStops lists the stops closest to a point, e.g. the rider's location.
func (sc *StopController) NearestStops(c *gin.Context) {
	var q struct {
		Lat   *float64 `form:"lat" binding:"required,min=-90,max=90"`
		Lng   *float64 `form:"lng" binding:"required,min=-180,max=180"`
		Limit int      `form:"limit" binding:"omitempty,min=1,max=50"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nearest, err := sc.store.NearestStops(c.Request.Context(), *q.Lat, *q.Lng, q.Limit)
	if err != nil {
		respondError(c, err, "finding nearest stops")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stops": nearest})
}

func (sc *StopController) GetStop(c *gin.Context) {
	stop, err := sc.store.StopByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err, "loading stop")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stop": stop})
}

// StopNames lists the distinct names riders choose origins and destinations from.
func (sc *StopController) StopNames(c *gin.Context) {
	names, err := sc.store.DisplayNames(c.Request.Context())
	if err != nil {
		respondError(c, err, "listing stop names")
		return
	}
	c.JSON(http.StatusOK, gin.H{"names": names})
}

type createStopInput struct {
	Code            string   `json:"code" binding:"required,max=32"`
	Name            string   `json:"name" binding:"required,max=63"`
	Address         string   `json:"address" binding:"max=127"`
	AddressDistance float64  `json:"address_distance" binding:"min=0"`
	Latitude        *float64 `json:"latitude" binding:"required,latitude"`
	Longitude       *float64 `json:"longitude" binding:"required,longitude"`
	IsActive        *bool    `json:"is_active"`
	SideIdentifier  string   `json:"side_identifier" binding:"max=50"`
}

// CreateStop adds a boarding point to the catalog.
func (sc *StopController) CreateStop(c *gin.Context) {
	var input createStopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stop := models.Stop{
		Code:            input.Code,
		Name:            input.Name,
		Address:         input.Address,
		AddressDistance: input.AddressDistance,
		Latitude:        *input.Latitude,
		Longitude:       *input.Longitude,
		IsActive:        input.IsActive == nil || *input.IsActive,
		SideIdentifier:  input.SideIdentifier,
	}
	if err := sc.store.CreateStop(c.Request.Context(), &stop); err != nil {
		respondError(c, err, "creating stop")
		return
	}
	middleware.Log(c).WithField("stop", stop.Code).Info("stop created")
	c.JSON(http.StatusCreated, gin.H{"stop": stop})
}
