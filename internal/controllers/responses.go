package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bus_info/internal/middleware"
	"bus_info/internal/models"
	"bus_info/internal/repository"
	"bus_info/internal/routefinder"
	"bus_info/internal/schedule"
)

type stopResponse struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Side      string  `json:"side,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type segmentResponse struct {
	Route           string             `json:"route"`
	TripID          string             `json:"trip_id"`
	From            stopResponse       `json:"from"`
	To              stopResponse       `json:"to"`
	DepartureTime   schedule.TimeOfDay `json:"departure_time"`
	ArrivalTime     schedule.TimeOfDay `json:"arrival_time"`
	DurationMinutes int                `json:"duration_minutes"`
}

type journeyResponse struct {
	DepartureTime   schedule.TimeOfDay `json:"departure_time"`
	ArrivalTime     schedule.TimeOfDay `json:"arrival_time"`
	DurationMinutes int                `json:"duration_minutes"`
	Transfers       int                `json:"transfers"`
	Direct          bool               `json:"direct"`
	Segments        []segmentResponse  `json:"segments"`
}

func toStopResponse(s models.Stop) stopResponse {
	return stopResponse{
		Code:      s.Code,
		Name:      s.Name,
		Side:      s.SideIdentifier,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
	}
}

func toJourneyResponse(j routefinder.JourneyOption) journeyResponse {
	segments := make([]segmentResponse, 0, len(j.Segments))
	for _, seg := range j.Segments {
		segments = append(segments, segmentResponse{
			Route:           seg.RouteName,
			TripID:          seg.TripID,
			From:            toStopResponse(seg.Origin),
			To:              toStopResponse(seg.Destination),
			DepartureTime:   seg.DepartureTime,
			ArrivalTime:     seg.ArrivalTime,
			DurationMinutes: minutes(seg.TravelDuration),
		})
	}
	return journeyResponse{
		DepartureTime:   j.DepartureTime,
		ArrivalTime:     j.ArrivalTime,
		DurationMinutes: minutes(j.TotalDuration),
		Transfers:       j.Transfers,
		Direct:          j.IsDirect(),
		Segments:        segments,
	}
}

func minutes(d time.Duration) int {
	return int(d / time.Minute)
}

// respondError maps domain errors onto HTTP statuses; anything unknown is logged and hidden.
func respondError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrUnknownStop),
		errors.Is(err, repository.ErrInvalidServiceDays),
		errors.Is(err, repository.ErrUnknownCategory),
		errors.Is(err, routefinder.ErrEmptyStopName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		middleware.Log(c).WithError(err).Warn(action + ": timed out")
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": action + " timed out"})
	default:
		middleware.Log(c).WithError(err).Error(action + " failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": action + " failed"})
	}
}
