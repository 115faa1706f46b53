package ingest

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/jamespfennell/gtfs"
	"github.com/sirupsen/logrus"

	"bus_info/internal/models"
	"bus_info/internal/schedule"
)

// LoadGTFSFile reads a GTFS static zip from disk and writes it.
func (l *Loader) LoadGTFSFile(ctx context.Context, path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, err
	}
	return l.LoadGTFS(ctx, data)
}

func (l *Loader) LoadGTFS(ctx context.Context, data []byte) (Report, error) {
	batch, err := ParseGTFS(data)
	if err != nil {
		return Report{}, err
	}
	return l.Write(ctx, batch)
}

// ParseGTFS converts a GTFS static feed into a Batch. Each direction of a GTFS route
// becomes its own route whose stop sequence is that of its longest trip.
func ParseGTFS(data []byte) (*Batch, error) {
	static, err := gtfs.ParseStatic(data, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("parsing GTFS feed: %w", err)
	}
	return fromStatic(static), nil
}

type directionKey struct {
	routeID   string
	direction int
}

func fromStatic(static *gtfs.Static) *Batch {
	batch := &Batch{}
	codes := stopCodes(static, batch)

	var keys []directionKey
	trips := make(map[directionKey][]*gtfs.ScheduledTrip)
	directions := make(map[string]int)
	for i := range static.Trips {
		trip := &static.Trips[i]
		if trip.Route == nil {
			batch.Skipped++
			continue
		}
		key := directionKey{routeID: trip.Route.Id, direction: int(trip.DirectionId)}
		if _, seen := trips[key]; !seen {
			keys = append(keys, key)
			directions[key.routeID]++
		}
		trips[key] = append(trips[key], trip)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].routeID != keys[j].routeID {
			return keys[i].routeID < keys[j].routeID
		}
		return keys[i].direction < keys[j].direction
	})

	for _, key := range keys {
		group := trips[key]
		gr := group[0].Route
		name := gr.ShortName
		if name == "" {
			name = gr.Id
		}
		if directions[key.routeID] > 1 {
			name = fmt.Sprintf("%s:%d", name, key.direction)
		}

		sequence := routeSequence(group, codes)
		route := models.Route{Name: name, Description: gr.LongName, IsActive: true}
		if gr.Color != "" {
			route.Color = "#" + gr.Color
		}
		if len(sequence) > 0 {
			route.OriginStopCode = sequence[0]
			route.DestinationStopCode = sequence[len(sequence)-1]
		}
		batch.Routes = append(batch.Routes, route)
		for i, code := range sequence {
			batch.RouteStops = append(batch.RouteStops, models.RouteStop{RouteName: name, StopCode: code, StopOrder: i + 1})
		}

		for _, trip := range group {
			addTrip(batch, name, trip, codes)
		}
	}
	return batch
}

// stopCodes adds every locatable stop to the batch and maps GTFS stop ids to catalog codes.
// stop_code is used when present and unique, the stop id otherwise.
func stopCodes(static *gtfs.Static, batch *Batch) map[string]string {
	codes := make(map[string]string, len(static.Stops))
	used := make(map[string]bool, len(static.Stops))
	for _, s := range static.Stops {
		if s.Latitude == nil || s.Longitude == nil {
			logrus.WithField("stop_id", s.Id).Warn("GTFS stop has no position, skipping")
			batch.Skipped++
			continue
		}
		code := s.Code
		if code == "" || used[code] {
			code = s.Id
		}
		if used[code] {
			batch.Skipped++
			continue
		}
		used[code] = true
		codes[s.Id] = code
		batch.Stops = append(batch.Stops, models.Stop{
			Code:      code,
			Name:      s.Name,
			Latitude:  *s.Latitude,
			Longitude: *s.Longitude,
			IsActive:  true,
		})
	}
	return codes
}

// routeSequence returns the stop codes of the group's longest trip in stop_sequence order.
func routeSequence(group []*gtfs.ScheduledTrip, codes map[string]string) []string {
	var longest *gtfs.ScheduledTrip
	for _, trip := range group {
		if longest == nil || len(trip.StopTimes) > len(longest.StopTimes) {
			longest = trip
		}
	}
	stopTimes := append([]gtfs.ScheduledStopTime(nil), longest.StopTimes...)
	sort.SliceStable(stopTimes, func(i, j int) bool { return stopTimes[i].StopSequence < stopTimes[j].StopSequence })

	sequence := make([]string, 0, len(stopTimes))
	for _, st := range stopTimes {
		if st.Stop == nil {
			continue
		}
		if code, ok := codes[st.Stop.Id]; ok {
			sequence = append(sequence, code)
		}
	}
	return sequence
}

func addTrip(batch *Batch, routeName string, trip *gtfs.ScheduledTrip, codes map[string]string) {
	if trip.Service == nil {
		logrus.WithField("trip_id", trip.ID).Warn("GTFS trip has no service, skipping")
		batch.Skipped += len(trip.StopTimes)
		return
	}
	svc := trip.Service
	days := schedule.ServiceDays{svc.Monday, svc.Tuesday, svc.Wednesday, svc.Thursday, svc.Friday, svc.Saturday, svc.Sunday}

	for _, st := range trip.StopTimes {
		if st.Stop == nil {
			batch.Skipped++
			continue
		}
		code, ok := codes[st.Stop.Id]
		if !ok {
			batch.Skipped++
			continue
		}
		entry := models.StopSchedule{
			TripID:      trip.ID,
			RouteName:   routeName,
			StopCode:    code,
			ArrivalTime: schedule.TimeOfDayFromDuration(st.ArrivalTime),
			IsActive:    true,
		}
		entry.SetServiceDays(days)
		batch.Schedules = append(batch.Schedules, entry)
	}
}
