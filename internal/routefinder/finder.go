package routefinder

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"bus_info/internal/schedule"
)

// DefaultMaxResults is used when the caller asks for zero or fewer journeys.
const DefaultMaxResults = 3

// ErrEmptyStopName is returned when the origin or destination is blank.
var ErrEmptyStopName = errors.New("origin and destination stop names are required")

// Finder searches the schedule for journeys between two named stops.
// It keeps no mutable state and is safe for concurrent use.
type Finder struct {
	sessions  Sessioner
	transfers TransferSearcher
	now       func() time.Time
}

type Option func(*Finder)

// WithClock overrides the wall clock that supplies today's weekday and the default departure time.
func WithClock(now func() time.Time) Option {
	return func(f *Finder) { f.now = now }
}

// WithLocation reads the wall clock in loc, i.e. the city's time zone.
func WithLocation(loc *time.Location) Option {
	return func(f *Finder) {
		f.now = func() time.Time { return time.Now().In(loc) }
	}
}

func WithTransferSearcher(t TransferSearcher) Option {
	return func(f *Finder) { f.transfers = t }
}

func NewFinder(sessions Sessioner, opts ...Option) *Finder {
	f := &Finder{
		sessions:  sessions,
		transfers: unimplementedTransfers{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindRoutes returns up to maxResults journeys from originName to destinationName leaving no
// earlier than departure (now, when nil). Finding nothing is not an error: the result is
// an empty slice. Store failures are returned as they are, without retry.
func (f *Finder) FindRoutes(ctx context.Context, originName, destinationName string, departure *schedule.TimeOfDay, maxResults int) ([]JourneyOption, error) {
	originName = strings.TrimSpace(originName)
	destinationName = strings.TrimSpace(destinationName)
	if originName == "" || destinationName == "" {
		return nil, ErrEmptyStopName
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	now := f.now()
	req := Request{
		Origin:      originName,
		Destination: destinationName,
		Departure:   schedule.TimeOfDayFromTime(now),
		Weekday:     now.Weekday(),
	}
	if departure != nil {
		req.Departure = *departure
	}

	var results []JourneyOption
	err := f.sessions.ReadSession(ctx, func(catalog Catalog) error {
		direct, err := f.findDirectRoutes(ctx, catalog, req)
		if err != nil {
			return err
		}
		results = append(results, direct...)

		if len(results) < maxResults {
			withTransfers, err := f.transfers.FindTransfers(ctx, catalog, req, maxResults-len(results))
			switch {
			case errors.Is(err, ErrTransferSearchNotImplemented):
				// nothing to add
			case err != nil:
				return err
			}
			results = append(results, withTransfers...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ranked := rankJourneys(results, maxResults)
	logrus.WithFields(logrus.Fields{
		"origin":      req.Origin,
		"destination": req.Destination,
		"departure":   req.Departure,
		"weekday":     req.Weekday,
		"candidates":  len(results),
		"returned":    len(ranked),
	}).Debug("journey search finished")
	return ranked, nil
}
