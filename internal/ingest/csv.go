package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"bus_info/internal/models"
	"bus_info/internal/schedule"
)

// File names of a CSV bundle. StopSchedulesFile is optional.
const (
	StopsFile         = "stops.csv"
	RoutesFile        = "routes.csv"
	RouteStopsFile    = "route_stops.csv"
	StopSchedulesFile = "stop_schedules.csv"
)

// Bundle holds the readers of one CSV catalog. StopSchedules may be nil.
type Bundle struct {
	Stops         io.Reader
	Routes        io.Reader
	RouteStops    io.Reader
	StopSchedules io.Reader
}

// OpenDir opens the bundle files in dir. The returned func closes them.
func OpenDir(dir string) (Bundle, func() error, error) {
	var files []*os.File
	closeAll := func() error {
		var errs []error
		for _, f := range files {
			errs = append(errs, f.Close())
		}
		return errors.Join(errs...)
	}
	open := func(name string, optional bool) (io.Reader, error) {
		f, err := os.Open(filepath.Join(dir, name))
		if optional && errors.Is(err, os.ErrNotExist) {
			logrus.WithField("file", name).Info("optional file not found, skipping")
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		files = append(files, f)
		return f, nil
	}

	var b Bundle
	var err error
	if b.Stops, err = open(StopsFile, false); err != nil {
		closeAll()
		return Bundle{}, nil, err
	}
	if b.Routes, err = open(RoutesFile, false); err != nil {
		closeAll()
		return Bundle{}, nil, err
	}
	if b.RouteStops, err = open(RouteStopsFile, false); err != nil {
		closeAll()
		return Bundle{}, nil, err
	}
	if b.StopSchedules, err = open(StopSchedulesFile, true); err != nil {
		closeAll()
		return Bundle{}, nil, err
	}
	return b, closeAll, nil
}

// LoadCSV parses the bundle and writes it.
func (l *Loader) LoadCSV(ctx context.Context, b Bundle) (Report, error) {
	batch, err := ParseCSV(b)
	if err != nil {
		return Report{}, err
	}
	return l.Write(ctx, batch)
}

// ParseCSV reads a bundle into a Batch. Rows pointing at unknown routes or stops and
// rows with malformed values are skipped and counted; a missing column fails the parse.
func ParseCSV(b Bundle) (*Batch, error) {
	batch := &Batch{}

	stops, err := parseStops(b.Stops, batch)
	if err != nil {
		return nil, err
	}
	routes, err := parseRoutes(b.Routes, batch)
	if err != nil {
		return nil, err
	}
	stopsPerRoute, err := parseRouteStops(b.RouteStops, batch, routes, stops)
	if err != nil {
		return nil, err
	}
	if b.StopSchedules != nil {
		if err := parseStopSchedules(b.StopSchedules, batch, routes, stops, stopsPerRoute); err != nil {
			return nil, err
		}
	}
	return batch, nil
}

func parseStops(r io.Reader, batch *Batch) (map[string]bool, error) {
	t, err := newTable(StopsFile, r, "code", "name", "latitude", "longitude")
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool)
	err = t.each(func(row row) error {
		code, name := row.get("code"), row.get("name")
		if code == "" || name == "" {
			return fmt.Errorf("%w: code and name are required", ErrInvalidRow)
		}
		if known[code] {
			return fmt.Errorf("%w: duplicate stop code %q", ErrInvalidRow, code)
		}
		lat, err := row.float("latitude")
		if err != nil {
			return err
		}
		lng, err := row.float("longitude")
		if err != nil {
			return err
		}
		dist, err := row.optionalFloat("address_dist")
		if err != nil {
			return err
		}
		known[code] = true
		batch.Stops = append(batch.Stops, models.Stop{
			Code:            code,
			Name:            name,
			Address:         row.get("address"),
			AddressDistance: dist,
			Latitude:        lat,
			Longitude:       lng,
			IsActive:        row.bool("is_active", true),
			SideIdentifier:  row.get("side_identifier"),
		})
		return nil
	}, batch)
	return known, err
}

func parseRoutes(r io.Reader, batch *Batch) (map[string]bool, error) {
	t, err := newTable(RoutesFile, r, "name")
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool)
	err = t.each(func(row row) error {
		name := row.get("name")
		if name == "" {
			return fmt.Errorf("%w: name is required", ErrInvalidRow)
		}
		if known[name] {
			return fmt.Errorf("%w: duplicate route %q", ErrInvalidRow, name)
		}
		known[name] = true
		batch.Routes = append(batch.Routes, models.Route{
			Name:                name,
			OriginStopCode:      row.get("origin_stop_code"),
			DestinationStopCode: row.get("destination_stop_code"),
			Description:         row.get("description"),
			Color:               row.get("color"),
			IsActive:            row.bool("is_active", true),
		})
		return nil
	}, batch)
	return known, err
}

func parseRouteStops(r io.Reader, batch *Batch, routes, stops map[string]bool) (map[string]int, error) {
	t, err := newTable(RouteStopsFile, r, "route_name", "stop_code", "stop_order")
	if err != nil {
		return nil, err
	}
	perRoute := make(map[string]int)
	taken := make(map[string]bool)
	err = t.each(func(row row) error {
		routeName, code := row.get("route_name"), row.get("stop_code")
		if !routes[routeName] {
			return fmt.Errorf("%w: route %q not found", ErrInvalidRow, routeName)
		}
		if !stops[code] {
			return fmt.Errorf("%w: stop %q not found", ErrInvalidRow, code)
		}
		order, err := row.int("stop_order")
		if err != nil {
			return err
		}
		key := routeName + "\x00" + strconv.Itoa(order)
		if taken[key] {
			return fmt.Errorf("%w: route %q already has a stop at order %d", ErrInvalidRow, routeName, order)
		}
		taken[key] = true
		perRoute[routeName]++
		batch.RouteStops = append(batch.RouteStops, models.RouteStop{
			RouteName: routeName,
			StopCode:  code,
			StopOrder: order,
		})
		return nil
	}, batch)
	return perRoute, err
}

// parseStopSchedules groups entries by route and service days, sorts each group by arrival
// and cuts it into trips of one entry per stop on the route.
func parseStopSchedules(r io.Reader, batch *Batch, routes, stops map[string]bool, stopsPerRoute map[string]int) error {
	t, err := newTable(StopSchedulesFile, r, "route_name", "stop_code", "arrival_time")
	if err != nil {
		return err
	}

	type groupKey struct {
		route string
		days  int
	}
	var order []groupKey
	groups := make(map[groupKey][]models.StopSchedule)

	err = t.each(func(row row) error {
		routeName, code := row.get("route_name"), row.get("stop_code")
		if !routes[routeName] {
			return fmt.Errorf("%w: route %q not found", ErrInvalidRow, routeName)
		}
		if !stops[code] {
			return fmt.Errorf("%w: stop %q not found", ErrInvalidRow, code)
		}
		at, err := schedule.ParseTimeOfDay(row.get("arrival_time"))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRow, err)
		}
		days := schedule.AllDays
		if row.get("service_days") != "" {
			if days, err = row.int("service_days"); err != nil {
				return err
			}
			if !schedule.ValidServiceDays(days) || !schedule.ParseServiceDays(days).Any() {
				return fmt.Errorf("%w: service_days %d selects no valid weekday", ErrInvalidRow, days)
			}
		}

		entry := models.StopSchedule{
			RouteName:   routeName,
			StopCode:    code,
			ArrivalTime: at,
			IsActive:    row.bool("is_active", true),
		}
		entry.SetServiceDays(schedule.ParseServiceDays(days))

		key := groupKey{route: routeName, days: days}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], entry)
		return nil
	}, batch)
	if err != nil {
		return err
	}

	// trip numbers continue across the groups of a route so ids never repeat
	numbered := make(map[string]int)
	for _, key := range order {
		entries := groups[key]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].ArrivalTime < entries[j].ArrivalTime })
		n := stopsPerRoute[key.route]
		if n < 1 {
			n = 1
		}
		base := numbered[key.route]
		for i := range entries {
			entries[i].TripID = fmt.Sprintf("%s_trip_%03d", key.route, base+i/n+1)
		}
		numbered[key.route] = base + (len(entries)+n-1)/n
		batch.Schedules = append(batch.Schedules, entries...)
	}
	return nil
}

type table struct {
	name string
	r    *csv.Reader
	cols map[string]int
}

func newTable(name string, r io.Reader, required ...string) (*table, error) {
	if r == nil {
		return nil, fmt.Errorf("%s: no data", name)
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", name, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := cols[col]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", name, col)
		}
	}
	return &table{name: name, r: cr, cols: cols}, nil
}

// each calls fn for every data row. Rows failing with ErrInvalidRow are logged and
// counted in batch.Skipped; any other error stops the scan.
func (t *table) each(fn func(row) error, batch *Batch) error {
	line := 1
	for {
		rec, err := t.r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("%s line %d: %w", t.name, line, err)
		}
		if err := fn(row{t: t, rec: rec}); err != nil {
			if !errors.Is(err, ErrInvalidRow) {
				return fmt.Errorf("%s line %d: %w", t.name, line, err)
			}
			batch.Skipped++
			logrus.WithFields(logrus.Fields{"file": t.name, "line": line}).WithError(err).Warn("skipping row")
		}
	}
}

type row struct {
	t   *table
	rec []string
}

func (r row) get(col string) string {
	i, ok := r.t.cols[col]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r row) float(col string) (float64, error) {
	v, err := strconv.ParseFloat(r.get(col), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidRow, col, err)
	}
	return v, nil
}

func (r row) optionalFloat(col string) (float64, error) {
	if r.get(col) == "" {
		return 0, nil
	}
	return r.float(col)
}

func (r row) int(col string) (int, error) {
	v, err := strconv.Atoi(r.get(col))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidRow, col, err)
	}
	return v, nil
}

// bool reads "true"/"false" in any case; an empty or missing cell gives def.
func (r row) bool(col string, def bool) bool {
	v := r.get(col)
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true")
}
