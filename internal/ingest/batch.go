package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bus_info/internal/geo"
	"bus_info/internal/models"
)

// ErrInvalidRow marks a source record that was skipped.
var ErrInvalidRow = errors.New("invalid row")

const defaultBatchSize = 500

// Batch is a parsed catalog ready to be written in one go.
type Batch struct {
	Stops      []models.Stop
	Routes     []models.Route
	RouteStops []models.RouteStop
	Schedules  []models.StopSchedule
	Skipped    int
}

// Report summarizes what a load wrote.
type Report struct {
	Stops      int `json:"stops"`
	Routes     int `json:"routes"`
	RouteStops int `json:"route_stops"`
	Schedules  int `json:"schedules"`
	Trips      int `json:"trips"`
	Skipped    int `json:"skipped"`
}

func (b *Batch) report() Report {
	trips := make(map[string]bool)
	for _, s := range b.Schedules {
		trips[s.TripID] = true
	}
	return Report{
		Stops:      len(b.Stops),
		Routes:     len(b.Routes),
		RouteStops: len(b.RouteStops),
		Schedules:  len(b.Schedules),
		Trips:      len(trips),
		Skipped:    b.Skipped,
	}
}

// drawRoutes fills in each route's geometry from its stop sequence.
func (b *Batch) drawRoutes() {
	byCode := make(map[string]models.Stop, len(b.Stops))
	for _, s := range b.Stops {
		byCode[s.Code] = s
	}
	sequences := make(map[string][]models.RouteStop)
	for _, rs := range b.RouteStops {
		sequences[rs.RouteName] = append(sequences[rs.RouteName], rs)
	}

	for i := range b.Routes {
		seq := sequences[b.Routes[i].Name]
		sort.SliceStable(seq, func(a, c int) bool { return seq[a].StopOrder < seq[c].StopOrder })
		path := make([]models.Stop, 0, len(seq))
		for _, rs := range seq {
			path = append(path, byCode[rs.StopCode])
		}
		if len(path) < 2 {
			continue
		}
		wkb, err := geo.RouteWKB(path)
		if err != nil {
			logrus.WithError(err).WithField("route", b.Routes[i].Name).Warn("could not draw route")
			continue
		}
		b.Routes[i].Geometry = wkb
	}
}

// Loader writes parsed catalogs to the database.
type Loader struct {
	db        *gorm.DB
	batchSize int
	replace   bool
}

type LoaderOption func(*Loader)

// WithReplace wipes the existing catalog before writing.
func WithReplace() LoaderOption {
	return func(l *Loader) { l.replace = true }
}

func WithBatchSize(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

func NewLoader(db *gorm.DB, opts ...LoaderOption) *Loader {
	l := &Loader{db: db, batchSize: defaultBatchSize}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Write stores the batch in a single transaction.
func (l *Loader) Write(ctx context.Context, b *Batch) (Report, error) {
	b.drawRoutes()

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if l.replace {
			for _, model := range []interface{}{&models.StopSchedule{}, &models.RouteStop{}, &models.Route{}, &models.Stop{}} {
				if err := tx.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
					return fmt.Errorf("clearing catalog: %w", err)
				}
			}
		}
		if len(b.Stops) > 0 {
			if err := tx.CreateInBatches(&b.Stops, l.batchSize).Error; err != nil {
				return fmt.Errorf("writing stops: %w", err)
			}
		}
		if len(b.Routes) > 0 {
			if err := tx.CreateInBatches(&b.Routes, l.batchSize).Error; err != nil {
				return fmt.Errorf("writing routes: %w", err)
			}
		}
		if len(b.RouteStops) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(&b.RouteStops, l.batchSize).Error; err != nil {
				return fmt.Errorf("writing route stops: %w", err)
			}
		}
		if len(b.Schedules) > 0 {
			if err := tx.CreateInBatches(&b.Schedules, l.batchSize).Error; err != nil {
				return fmt.Errorf("writing stop schedules: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	report := b.report()
	logrus.WithFields(logrus.Fields{
		"stops":       report.Stops,
		"routes":      report.Routes,
		"route_stops": report.RouteStops,
		"schedules":   report.Schedules,
		"trips":       report.Trips,
		"skipped":     report.Skipped,
	}).Info("catalog loaded")
	return report, nil
}
