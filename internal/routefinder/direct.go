package routefinder

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"bus_info/internal/models"
)

const secondsPerDay = int(24 * time.Hour / time.Second)

// occurrence is one position of a named stop in a route's sequence.
type occurrence struct {
	index int // position in the ordered sequence
	stop  models.RouteStop
}

// tripVisits maps a route position to the trip's visit there.
type tripVisits map[int]models.StopSchedule

func (v tripVisits) at(o occurrence) (models.StopSchedule, bool) {
	visit, ok := v[o.index]
	return visit, ok
}

func (f *Finder) findDirectRoutes(ctx context.Context, catalog Catalog, req Request) ([]JourneyOption, error) {
	routes, err := catalog.RoutesServingBoth(ctx, req.Origin, req.Destination)
	if err != nil {
		return nil, fmt.Errorf("loading routes serving %q and %q: %w", req.Origin, req.Destination, err)
	}

	var journeys []JourneyOption
	for _, route := range routes {
		found, err := f.matchRoute(ctx, catalog, route.Name, req)
		if err != nil {
			return nil, err
		}
		journeys = append(journeys, found...)
	}
	return journeys, nil
}

func (f *Finder) matchRoute(ctx context.Context, catalog Catalog, routeName string, req Request) ([]JourneyOption, error) {
	log := logrus.WithField("route", routeName)

	stops, err := catalog.RouteStops(ctx, routeName)
	if err != nil {
		return nil, fmt.Errorf("loading stops of route %q: %w", routeName, err)
	}
	sort.SliceStable(stops, func(i, j int) bool { return stops[i].StopOrder < stops[j].StopOrder })

	origins := findOccurrences(stops, req.Origin)
	destinations := findOccurrences(stops, req.Destination)
	if len(origins) == 0 || len(destinations) == 0 {
		log.Debug("route lists both stops but the sequence does not, skipping")
		return nil, nil
	}

	entries, err := catalog.ActiveSchedules(ctx, routeName, occurrenceCodes(origins, destinations))
	if err != nil {
		return nil, fmt.Errorf("loading schedules of route %q: %w", routeName, err)
	}
	if !hasServiceOn(entries, req.Weekday) {
		log.WithField("weekday", req.Weekday).Debug("route has no service at these stops today, skipping")
		return nil, nil
	}

	positions := mergeOccurrences(origins, destinations)
	trips := make(map[string]tripVisits)
	for tripID, visits := range groupTrips(entries, req.Weekday) {
		bound, complete := bindVisits(positions, visits)
		if !complete {
			log.WithField("trip", tripID).Debug("trip visits do not follow the route order")
		}
		trips[tripID] = bound
	}
	tripIDs := make([]string, 0, len(trips))
	for id := range trips {
		tripIDs = append(tripIDs, id)
	}
	sort.Strings(tripIDs)

	var journeys []JourneyOption
	for _, o := range origins {
		for _, d := range destinations {
			if d.index <= o.index {
				continue
			}
			for _, tripID := range tripIDs {
				visits := trips[tripID]
				departure, ok := visits.at(o)
				if !ok {
					continue
				}
				arrival, ok := visits.at(d)
				if !ok {
					continue
				}
				if departure.ArrivalTime < req.Departure {
					continue
				}
				if arrival.ArrivalTime <= departure.ArrivalTime {
					log.WithFields(logrus.Fields{
						"trip":      tripID,
						"departure": departure.ArrivalTime,
						"arrival":   arrival.ArrivalTime,
					}).Debug("trip does not advance between stops, skipping")
					continue
				}
				journeys = append(journeys, newDirectJourney(
					routeName, tripID, o.stop.Stop, d.stop.Stop,
					departure.ArrivalTime, arrival.ArrivalTime,
				))
			}
		}
	}
	return journeys, nil
}

// findOccurrences returns every position of the route whose stop carries name.
func findOccurrences(stops []models.RouteStop, name string) []occurrence {
	var found []occurrence
	for i, rs := range stops {
		if rs.Stop.Name == name {
			found = append(found, occurrence{index: i, stop: rs})
		}
	}
	return found
}

// mergeOccurrences joins both lists in route order, each position once.
func mergeOccurrences(groups ...[]occurrence) []occurrence {
	seen := make(map[int]bool)
	var merged []occurrence
	for _, group := range groups {
		for _, o := range group {
			if !seen[o.index] {
				seen[o.index] = true
				merged = append(merged, o)
			}
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].index < merged[j].index })
	return merged
}

// bindVisits walks the trip's visits in trip order and gives each one the next
// position of its stop code along the route. A trip that joins a loop halfway
// therefore lands on the later occurrences. Binding stops at the first visit
// with no position left; complete reports whether every visit was placed.
func bindVisits(positions []occurrence, visits []models.StopSchedule) (bound tripVisits, complete bool) {
	inTripOrder(visits)
	bound = make(tripVisits, len(visits))
	next := 0
	for _, v := range visits {
		placed := false
		for ; next < len(positions); next++ {
			if positions[next].stop.StopCode == v.StopCode {
				bound[positions[next].index] = v
				next++
				placed = true
				break
			}
		}
		if !placed {
			return bound, false
		}
	}
	return bound, true
}

// inTripOrder sorts visits by time of day and rotates them to start after the
// longest pause, so a run past midnight keeps its 23:xx visits ahead of 00:xx.
func inTripOrder(visits []models.StopSchedule) {
	sort.SliceStable(visits, func(i, j int) bool { return visits[i].ArrivalTime < visits[j].ArrivalTime })
	n := len(visits)
	if n < 2 {
		return
	}
	start := 0
	widest := int(visits[0].ArrivalTime) + secondsPerDay - int(visits[n-1].ArrivalTime)
	for i := 1; i < n; i++ {
		if gap := int(visits[i].ArrivalTime - visits[i-1].ArrivalTime); gap > widest {
			start, widest = i, gap
		}
	}
	if start > 0 {
		rotated := append(append(make([]models.StopSchedule, 0, n), visits[start:]...), visits[:start]...)
		copy(visits, rotated)
	}
}

func occurrenceCodes(groups ...[]occurrence) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, group := range groups {
		for _, o := range group {
			if !seen[o.stop.StopCode] {
				seen[o.stop.StopCode] = true
				codes = append(codes, o.stop.StopCode)
			}
		}
	}
	return codes
}

// hasServiceOn requires at least two active entries, one of them running on day.
func hasServiceOn(entries []models.StopSchedule, day time.Weekday) bool {
	active, today := 0, false
	for _, e := range entries {
		if !e.IsActive {
			continue
		}
		active++
		if e.ServiceDays().On(day) {
			today = true
		}
	}
	return active >= 2 && today
}

// groupTrips buckets entries running on day by trip id.
func groupTrips(entries []models.StopSchedule, day time.Weekday) map[string][]models.StopSchedule {
	trips := make(map[string][]models.StopSchedule)
	for _, e := range entries {
		if !e.IsActive || !e.ServiceDays().On(day) {
			continue
		}
		trips[e.TripID] = append(trips[e.TripID], e)
	}
	return trips
}
