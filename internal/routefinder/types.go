package routefinder

import (
	"context"
	"strings"
	"time"

	"bus_info/internal/models"
	"bus_info/internal/schedule"
)

// Catalog is the read side of the schedule store the finder works against.
type Catalog interface {
	// RoutesServingBoth returns active routes whose stops include both display names.
	RoutesServingBoth(ctx context.Context, originName, destinationName string) ([]models.Route, error)
	// RouteStops returns the route's stop sequence with each Stop joined in.
	RouteStops(ctx context.Context, routeName string) ([]models.RouteStop, error)
	// ActiveSchedules returns the route's active schedule entries at the given stop codes.
	ActiveSchedules(ctx context.Context, routeName string, stopCodes []string) ([]models.StopSchedule, error)
}

// Sessioner hands out a Catalog bound to one read session. The session must be
// released when fn returns, whatever the outcome.
type Sessioner interface {
	ReadSession(ctx context.Context, fn func(Catalog) error) error
}

// SingleSession serves every search from the same Catalog. Useful when the
// catalog needs no per-call session, e.g. an in-memory one.
func SingleSession(c Catalog) Sessioner {
	return singleSession{c}
}

type singleSession struct{ catalog Catalog }

func (s singleSession) ReadSession(_ context.Context, fn func(Catalog) error) error {
	return fn(s.catalog)
}

// Request is a normalized search.
type Request struct {
	Origin      string
	Destination string
	Departure   schedule.TimeOfDay // earliest acceptable departure
	Weekday     time.Weekday       // selects the service calendar
}

// RouteSegment is one leg of travel on a single trip.
type RouteSegment struct {
	RouteName      string
	TripID         string
	Origin         models.Stop
	Destination    models.Stop
	DepartureTime  schedule.TimeOfDay
	ArrivalTime    schedule.TimeOfDay
	TravelDuration time.Duration
}

// JourneyOption is a complete way to get from origin to destination.
type JourneyOption struct {
	Segments      []RouteSegment
	TotalDuration time.Duration
	DepartureTime schedule.TimeOfDay
	ArrivalTime   schedule.TimeOfDay
	Transfers     int
}

func (j JourneyOption) IsDirect() bool {
	return len(j.Segments) == 1
}

// Key identifies journeys a rider could not tell apart: the same lines,
// leaving and arriving at the same times.
func (j JourneyOption) Key() string {
	names := make([]string, len(j.Segments))
	for i, seg := range j.Segments {
		names[i] = seg.RouteName
	}
	return strings.Join(names, ">") + "|" + j.DepartureTime.String() + "|" + j.ArrivalTime.String()
}

// Less orders by transfers, then total duration, then departure, then arrival.
func (j JourneyOption) Less(other JourneyOption) bool {
	if j.Transfers != other.Transfers {
		return j.Transfers < other.Transfers
	}
	if j.TotalDuration != other.TotalDuration {
		return j.TotalDuration < other.TotalDuration
	}
	if j.DepartureTime != other.DepartureTime {
		return j.DepartureTime < other.DepartureTime
	}
	return j.ArrivalTime < other.ArrivalTime
}

func newDirectJourney(routeName, tripID string, origin, destination models.Stop, departure, arrival schedule.TimeOfDay) JourneyOption {
	duration := schedule.Duration(departure, arrival)
	return JourneyOption{
		Segments: []RouteSegment{{
			RouteName:      routeName,
			TripID:         tripID,
			Origin:         origin,
			Destination:    destination,
			DepartureTime:  departure,
			ArrivalTime:    arrival,
			TravelDuration: duration,
		}},
		TotalDuration: duration,
		DepartureTime: departure,
		ArrivalTime:   arrival,
		Transfers:     0,
	}
}
