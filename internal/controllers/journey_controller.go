package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bus_info/internal/middleware"
	"bus_info/internal/models"
	"bus_info/internal/routefinder"
	"bus_info/internal/schedule"
)

type journeyFinder interface {
	FindRoutes(ctx context.Context, originName, destinationName string, departure *schedule.TimeOfDay, maxResults int) ([]routefinder.JourneyOption, error)
}

type searchHistory interface {
	RecordSearch(ctx context.Context, userID int64, origin, destination string) error
	LastSearch(ctx context.Context, userID int64) (models.RouteSearch, error)
}

type JourneyController struct {
	finder         journeyFinder
	history        searchHistory
	defaultResults int
	timeout        time.Duration
}

func NewJourneyController(finder journeyFinder, history searchHistory, defaultResults int, timeout time.Duration) *JourneyController {
	return &JourneyController{finder: finder, history: history, defaultResults: defaultResults, timeout: timeout}
}

type journeyQuery struct {
	From      string `form:"from" binding:"required"`
	To        string `form:"to" binding:"required"`
	Departure string `form:"departure"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=20"`
	UserID    int64  `form:"user_id" binding:"omitempty,min=1"`
}

// FindJourneys runs a journey search between two stop names.
func (jc *JourneyController) FindJourneys(c *gin.Context) {
	var q journeyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var departure *schedule.TimeOfDay
	if q.Departure != "" {
		t, err := schedule.ParseTimeOfDay(q.Departure)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		departure = &t
	}
	limit := q.Limit
	if limit == 0 {
		limit = jc.defaultResults
	}

	ctx := c.Request.Context()
	if jc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, jc.timeout)
		defer cancel()
	}

	journeys, err := jc.finder.FindRoutes(ctx, q.From, q.To, departure, limit)
	if err != nil {
		respondError(c, err, "journey search")
		return
	}

	if q.UserID > 0 {
		if err := jc.history.RecordSearch(c.Request.Context(), q.UserID, q.From, q.To); err != nil {
			middleware.Log(c).WithError(err).WithField("user_id", q.UserID).Warn("could not record search")
		}
	}

	resp := make([]journeyResponse, 0, len(journeys))
	for _, j := range journeys {
		resp = append(resp, toJourneyResponse(j))
	}
	middleware.Log(c).WithFields(logrus.Fields{
		"from":     q.From,
		"to":       q.To,
		"journeys": len(resp),
	}).Info("journey search")
	c.JSON(http.StatusOK, gin.H{"journeys": resp, "count": len(resp)})
}

// LastSearch returns the user's previous journey query so it can be repeated.
func (jc *JourneyController) LastSearch(c *gin.Context) {
	var q struct {
		UserID int64 `form:"user_id" binding:"required,min=1"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	search, err := jc.history.LastSearch(c.Request.Context(), q.UserID)
	if err != nil {
		respondError(c, err, "loading last search")
		return
	}
	c.JSON(http.StatusOK, gin.H{"search": gin.H{
		"from":        search.Origin,
		"to":          search.Destination,
		"searched_at": search.CreatedAt,
	}})
}
