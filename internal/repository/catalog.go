package repository

import (
	"context"

	"gorm.io/gorm"

	"bus_info/internal/models"
)

// Catalog answers the journey finder's queries.
type Catalog struct {
	db *gorm.DB
}

func (c *Catalog) RoutesServingBoth(ctx context.Context, originName, destinationName string) ([]models.Route, error) {
	serving := c.db.WithContext(ctx).
		Model(&models.RouteStop{}).
		Select("route_stops.route_name").
		Joins("JOIN stops ON stops.code = route_stops.stop_code AND stops.deleted_at IS NULL").
		Where("stops.name IN ?", []string{originName, destinationName}).
		Group("route_stops.route_name").
		Having("COUNT(DISTINCT stops.name) = ?", 2)

	var routes []models.Route
	err := c.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("name IN (?)", serving).
		Order("name").
		Find(&routes).Error
	return routes, err
}

func (c *Catalog) RouteStops(ctx context.Context, routeName string) ([]models.RouteStop, error) {
	var stops []models.RouteStop
	err := c.db.WithContext(ctx).
		Preload("Stop").
		Where("route_name = ?", routeName).
		Order("stop_order").
		Find(&stops).Error
	return stops, err
}

func (c *Catalog) ActiveSchedules(ctx context.Context, routeName string, stopCodes []string) ([]models.StopSchedule, error) {
	if len(stopCodes) == 0 {
		return nil, nil
	}
	var entries []models.StopSchedule
	err := c.db.WithContext(ctx).
		Where("route_name = ? AND is_active = ?", routeName, true).
		Where("stop_code IN ?", stopCodes).
		Order("trip_id, arrival_time").
		Find(&entries).Error
	return entries, err
}
