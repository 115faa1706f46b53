package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bus_info/internal/geo"
	"bus_info/internal/models"
	"bus_info/internal/schedule"
)

// ErrDuplicate is returned when a write collides with a unique key, e.g. a stop code or route name.
var ErrDuplicate = errors.New("record already exists")

// Arrival is one stop of a trip being added to the timetable.
type Arrival struct {
	StopCode    string
	ArrivalTime schedule.TimeOfDay
}

func (s *Store) ListRoutes(ctx context.Context, activeOnly bool) ([]models.Route, error) {
	q := s.db.WithContext(ctx).Order("name")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var routes []models.Route
	err := q.Find(&routes).Error
	return routes, err
}

func (s *Store) RouteByName(ctx context.Context, name string) (models.Route, error) {
	var route models.Route
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&route).Error
	return route, translate(err)
}

// StopsBetween walks the route from the first visit of originCode through the next visit
// of destinationCode, both included. Empty codes mean the start and the end of the route.
func (s *Store) StopsBetween(ctx context.Context, routeName, originCode, destinationCode string) ([]models.Stop, error) {
	if _, err := s.RouteByName(ctx, routeName); err != nil {
		return nil, err
	}
	routeStops, err := s.Catalog().RouteStops(ctx, routeName)
	if err != nil {
		return nil, err
	}

	stops := []models.Stop{}
	reached := originCode == ""
	for _, rs := range routeStops {
		if rs.StopCode == originCode {
			reached = true
		}
		if !reached {
			continue
		}
		stops = append(stops, rs.Stop)
		if len(stops) > 1 && rs.StopCode == destinationCode {
			break
		}
	}
	return stops, nil
}

func (s *Store) CreateRoute(ctx context.Context, route *models.Route) error {
	return translateWrite(s.db.WithContext(ctx).Create(route).Error)
}

// ReplaceRouteStops rewrites the route's sequence to codes (orders 1..n), updates its
// terminals and redraws its geometry.
func (s *Store) ReplaceRouteStops(ctx context.Context, routeName string, codes []string) ([]models.RouteStop, error) {
	var created []models.RouteStop
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var route models.Route
		if err := tx.Where("name = ?", routeName).First(&route).Error; err != nil {
			return translate(err)
		}

		byCode, err := stopsByCode(tx, codes)
		if err != nil {
			return err
		}

		// soft-deleted rows would still hold the (route, order) unique key
		if err := tx.Unscoped().Where("route_name = ?", routeName).Delete(&models.RouteStop{}).Error; err != nil {
			return err
		}

		ordered := make([]models.Stop, 0, len(codes))
		created = make([]models.RouteStop, 0, len(codes))
		for i, code := range codes {
			created = append(created, models.RouteStop{RouteName: routeName, StopCode: code, StopOrder: i + 1})
			ordered = append(ordered, byCode[code])
		}
		if len(created) > 0 {
			if err := tx.Omit(clause.Associations).Create(&created).Error; err != nil {
				return translateWrite(err)
			}
		}
		for i := range created {
			created[i].Stop = ordered[i]
		}

		updates := map[string]interface{}{"geometry": nil, "origin_stop_code": "", "destination_stop_code": ""}
		if len(codes) > 0 {
			updates["origin_stop_code"] = codes[0]
			updates["destination_stop_code"] = codes[len(codes)-1]
		}
		if len(ordered) >= 2 {
			wkb, err := geo.RouteWKB(ordered)
			if err != nil {
				return fmt.Errorf("drawing route %q: %w", routeName, err)
			}
			updates["geometry"] = wkb
		}
		return tx.Model(&route).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"route": routeName, "stops": len(created)}).Info("route stops replaced")
	return created, nil
}

func (s *Store) SetRouteActive(ctx context.Context, routeName string, active bool) error {
	res := s.db.WithContext(ctx).Model(&models.Route{}).Where("name = ?", routeName).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRoute removes the route with its stop sequence and timetable for good, freeing the name.
func (s *Store) DeleteRoute(ctx context.Context, routeName string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().Where("name = ?", routeName).Delete(&models.Route{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Unscoped().Where("route_name = ?", routeName).Delete(&models.RouteStop{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("route_name = ?", routeName).Delete(&models.StopSchedule{}).Error
	})
}

// AddSchedules stores one trip of the route. An empty tripID gets a generated one.
func (s *Store) AddSchedules(ctx context.Context, routeName, tripID string, serviceDays int, arrivals []Arrival) ([]models.StopSchedule, error) {
	if !schedule.ValidServiceDays(serviceDays) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidServiceDays, serviceDays)
	}
	days := schedule.ParseServiceDays(serviceDays)
	if !days.Any() {
		return nil, fmt.Errorf("%w: no weekday selected", ErrInvalidServiceDays)
	}
	if tripID == "" {
		tripID = routeName + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	}

	var entries []models.StopSchedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", routeName).First(&models.Route{}).Error; err != nil {
			return translate(err)
		}

		var onRoute []string
		if err := tx.Model(&models.RouteStop{}).Where("route_name = ?", routeName).Pluck("stop_code", &onRoute).Error; err != nil {
			return err
		}
		served := make(map[string]bool, len(onRoute))
		for _, code := range onRoute {
			served[code] = true
		}

		entries = make([]models.StopSchedule, 0, len(arrivals))
		for _, a := range arrivals {
			if !served[a.StopCode] {
				return fmt.Errorf("%w: %q is not on route %q", ErrUnknownStop, a.StopCode, routeName)
			}
			entry := models.StopSchedule{
				TripID:      tripID,
				RouteName:   routeName,
				StopCode:    a.StopCode,
				ArrivalTime: a.ArrivalTime,
				IsActive:    true,
			}
			entry.SetServiceDays(days)
			entries = append(entries, entry)
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func stopsByCode(tx *gorm.DB, codes []string) (map[string]models.Stop, error) {
	byCode := make(map[string]models.Stop, len(codes))
	if len(codes) == 0 {
		return byCode, nil
	}
	var stops []models.Stop
	if err := tx.Where("code IN ?", codes).Find(&stops).Error; err != nil {
		return nil, err
	}
	for _, stop := range stops {
		byCode[stop.Code] = stop
	}
	for _, code := range codes {
		if _, ok := byCode[code]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStop, code)
		}
	}
	return byCode, nil
}

// translateWrite maps unique-key violations from either postgres driver onto ErrDuplicate.
func translateWrite(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Detail)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
