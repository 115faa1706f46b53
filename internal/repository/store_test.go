package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bus_info/internal/geo"
	"bus_info/internal/models"
	"bus_info/internal/routefinder"
	"bus_info/internal/schedule"
)

var monday07 = time.Date(2026, time.October, 19, 7, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return New(db)
}

func arrival(code string, h, m int) Arrival {
	return Arrival{StopCode: code, ArrivalTime: schedule.NewTimeOfDay(h, m, 0)}
}

// seedCity builds three routes:
//
//	"1"  Depot > Central Station (CS1) > Central Market > Park
//	"2"  loop Central Station (CS2) > Park > Central Market > Central Station (CS2)
//	"3"  Depot > Park, inactive
func seedCity(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	stops := []models.Stop{
		{Code: "D1", Name: "Depot", Address: "Depot st 1", Latitude: 55.70, Longitude: 37.60, IsActive: true},
		{Code: "CS1", Name: "Central Station", Address: "Station square", Latitude: 55.75, Longitude: 37.61, IsActive: true, SideIdentifier: "A"},
		{Code: "CS2", Name: "Central Station", Address: "Station square", Latitude: 55.7502, Longitude: 37.6102, IsActive: true, SideIdentifier: "B"},
		{Code: "CM1", Name: "Central Market", Address: "Market st 5", Latitude: 55.76, Longitude: 37.62, IsActive: true},
		{Code: "P1", Name: "Park", Address: "Central avenue 10", Latitude: 55.78, Longitude: 37.65, IsActive: true},
		{Code: "X1", Name: "Central Closed", Latitude: 55.79, Longitude: 37.66, IsActive: false},
	}
	for i := range stops {
		require.NoError(t, s.CreateStop(ctx, &stops[i]))
	}

	require.NoError(t, s.CreateRoute(ctx, &models.Route{Name: "1", IsActive: true}))
	require.NoError(t, s.CreateRoute(ctx, &models.Route{Name: "2", IsActive: true}))
	require.NoError(t, s.CreateRoute(ctx, &models.Route{Name: "3", IsActive: false}))

	_, err := s.ReplaceRouteStops(ctx, "1", []string{"D1", "CS1", "CM1", "P1"})
	require.NoError(t, err)
	_, err = s.ReplaceRouteStops(ctx, "2", []string{"CS2", "P1", "CM1", "CS2"})
	require.NoError(t, err)
	_, err = s.ReplaceRouteStops(ctx, "3", []string{"D1", "P1"})
	require.NoError(t, err)

	_, err = s.AddSchedules(ctx, "1", "1_T1", schedule.AllDays, []Arrival{
		arrival("D1", 8, 0), arrival("CS1", 8, 10), arrival("CM1", 8, 25), arrival("P1", 8, 40),
	})
	require.NoError(t, err)
	_, err = s.AddSchedules(ctx, "1", "1_T2", 31, []Arrival{
		arrival("D1", 9, 0), arrival("CS1", 9, 10), arrival("CM1", 9, 30), arrival("P1", 9, 45),
	})
	require.NoError(t, err)
	_, err = s.AddSchedules(ctx, "2", "2_L1", schedule.AllDays, []Arrival{
		arrival("CS2", 8, 5), arrival("P1", 8, 20), arrival("CM1", 8, 30), arrival("CS2", 8, 45),
	})
	require.NoError(t, err)
	_, err = s.AddSchedules(ctx, "3", "3_E1", schedule.AllDays, []Arrival{
		arrival("D1", 8, 0), arrival("P1", 8, 5),
	})
	require.NoError(t, err)
}

func routeNames(routes []models.Route) []string {
	names := make([]string, len(routes))
	for i, r := range routes {
		names[i] = r.Name
	}
	return names
}

func TestCatalog_RoutesServingBoth(t *testing.T) {
	s := newTestStore(t)
	seedCity(t, s)
	ctx := context.Background()

	routes, err := s.Catalog().RoutesServingBoth(ctx, "Central Station", "Central Market")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, routeNames(routes))

	routes, err = s.Catalog().RoutesServingBoth(ctx, "Depot", "Park")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, routeNames(routes))

	routes, err = s.Catalog().RoutesServingBoth(ctx, "Depot", "Nowhere")
	require.NoError(t, err)
	assert.Empty(t, routes)
}

func TestCatalog_RouteStopsAndSchedules(t *testing.T) {
	s := newTestStore(t)
	seedCity(t, s)
	ctx := context.Background()

	stops, err := s.Catalog().RouteStops(ctx, "2")
	require.NoError(t, err)
	require.Len(t, stops, 4)
	assert.Equal(t, "CS2", stops[0].StopCode)
	assert.Equal(t, "Central Station", stops[0].Stop.Name)
	assert.Equal(t, "CS2", stops[3].StopCode)
	assert.Equal(t, 4, stops[3].StopOrder)

	entries, err := s.Catalog().ActiveSchedules(ctx, "2", []string{"CS2"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "08:05", entries[0].ArrivalTime.String())
	assert.Equal(t, "08:45", entries[1].ArrivalTime.String())
	assert.True(t, entries[0].ServiceDays().On(time.Sunday))

	entries, err = s.Catalog().ActiveSchedules(ctx, "1", nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFinderOverStore(t *testing.T) {
	s := newTestStore(t)
	seedCity(t, s)
	ctx := context.Background()
	finder := routefinder.NewFinder(s, routefinder.WithClock(func() time.Time { return monday07 }))
	from7 := schedule.NewTimeOfDay(7, 0, 0)

	journeys, err := finder.FindRoutes(ctx, "Central Station", "Central Market", &from7, 3)
	require.NoError(t, err)
	require.Len(t, journeys, 3)
	assert.Equal(t, 15*time.Minute, journeys[0].TotalDuration)
	assert.Equal(t, "1_T1", journeys[0].Segments[0].TripID)
	assert.Equal(t, 20*time.Minute, journeys[1].TotalDuration)
	assert.Equal(t, "1_T2", journeys[1].Segments[0].TripID)
	assert.Equal(t, 25*time.Minute, journeys[2].TotalDuration)
	assert.Equal(t, "2", journeys[2].Segments[0].RouteName)
	assert.Equal(t, "CS2", journeys[2].Segments[0].Origin.Code)

	// the loop reaches the station again only on its second visit
	journeys, err = finder.FindRoutes(ctx, "Central Market", "Central Station", &from7, 3)
	require.NoError(t, err)
	require.Len(t, journeys, 1)
	assert.Equal(t, "08:30", journeys[0].DepartureTime.String())
	assert.Equal(t, "08:45", journeys[0].ArrivalTime.String())

	saturday := routefinder.NewFinder(s, routefinder.WithClock(func() time.Time { return monday07.AddDate(0, 0, 5) }))
	journeys, err = saturday.FindRoutes(ctx, "Depot", "Park", &from7, 3)
	require.NoError(t, err)
	require.Len(t, journeys, 1)
	assert.Equal(t, "1_T1", journeys[0].Segments[0].TripID)
}

func TestReadSessionPropagatesError(t *testing.T) {
	s := newTestStore(t)
	boom := errors.New("boom")

	err := s.ReadSession(context.Background(), func(routefinder.Catalog) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestStops(t *testing.T) {
	s := newTestStore(t)
	seedCity(t, s)
	ctx := context.Background()

	t.Run("SearchByNameAndAddress", func(t *testing.T) {
		stops, err := s.SearchStops(ctx, "central", 10, 0)
		require.NoError(t, err)
		codes := make([]string, len(stops))
		for i, st := range stops {
			codes[i] = st.Code
		}
		assert.Equal(t, []string{"CM1", "CS1", "CS2", "P1"}, codes)
	})

	t.Run("ExactNameFirst", func(t *testing.T) {
		stops, err := s.SearchStops(ctx, "PARK", 10, 0)
		require.NoError(t, err)
		require.NotEmpty(t, stops)
		assert.Equal(t, "P1", stops[0].Code)
	})

	t.Run("Paging", func(t *testing.T) {
		stops, err := s.SearchStops(ctx, "central", 2, 2)
		require.NoError(t, err)
		require.Len(t, stops, 2)
		assert.Equal(t, "CS2", stops[0].Code)
	})

	t.Run("BlankQuery", func(t *testing.T) {
		stops, err := s.SearchStops(ctx, "  ", 10, 0)
		require.NoError(t, err)
		assert.Empty(t, stops)
	})

	t.Run("Nearest", func(t *testing.T) {
		nearest, err := s.NearestStops(ctx, 55.7501, 37.6101, 3)
		require.NoError(t, err)
		require.Len(t, nearest, 3)
		assert.Contains(t, []string{"CS1", "CS2"}, nearest[0].Stop.Code)
		assert.LessOrEqual(t, nearest[0].DistanceKm, nearest[1].DistanceKm)
		assert.LessOrEqual(t, nearest[1].DistanceKm, nearest[2].DistanceKm)
	})

	t.Run("ByCode", func(t *testing.T) {
		stop, err := s.StopByCode(ctx, "CM1")
		require.NoError(t, err)
		assert.Equal(t, "Central Market", stop.Name)

		_, err = s.StopByCode(ctx, "NOPE")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListCountNames", func(t *testing.T) {
		n, err := s.CountStops(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)

		page, err := s.ListStops(ctx, 2, 0)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "CM1", page[0].Code)

		names, err := s.DisplayNames(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Central Market", "Central Station", "Depot", "Park"}, names)
	})

	t.Run("DuplicateCode", func(t *testing.T) {
		err := s.CreateStop(ctx, &models.Stop{Code: "P1", Name: "Park again", IsActive: true})
		assert.Error(t, err)
	})
}

func TestSearchStops_Fuzzy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	stops := []models.Stop{
		{Code: "H1", Name: "Центральная районная больница", Address: "ул. Ленина 1", Latitude: 55.70, Longitude: 37.60, IsActive: true},
		{Code: "V1", Name: "Железнодорожный вокзал", Address: "Привокзальная площадь", Latitude: 55.71, Longitude: 37.61, IsActive: true},
		{Code: "V2", Name: "Вокзал", Latitude: 55.72, Longitude: 37.62, IsActive: true},
		{Code: "U1", Name: "Улица Победы", Address: "Победы 12", Latitude: 55.73, Longitude: 37.63, IsActive: true},
		{Code: "R1", Name: "Центральный рынок", Address: "Рыночная 3", Latitude: 55.74, Longitude: 37.64, IsActive: true},
	}
	for i := range stops {
		require.NoError(t, s.CreateStop(ctx, &stops[i]))
	}

	codes := func(stops []models.Stop) []string {
		out := make([]string, len(stops))
		for i, st := range stops {
			out[i] = st.Code
		}
		return out
	}

	t.Run("Typo", func(t *testing.T) {
		found, err := s.SearchStops(ctx, "бальница", 10, 0)
		require.NoError(t, err)
		require.NotEmpty(t, found)
		assert.Equal(t, "H1", found[0].Code)
	})

	t.Run("WordOrder", func(t *testing.T) {
		found, err := s.SearchStops(ctx, "рынок центральный", 10, 0)
		require.NoError(t, err)
		require.NotEmpty(t, found)
		assert.Equal(t, "R1", found[0].Code)

		found, err = s.SearchStops(ctx, "победы улица", 10, 0)
		require.NoError(t, err)
		require.NotEmpty(t, found)
		assert.Equal(t, "U1", found[0].Code)
	})

	t.Run("UpperCaseCyrillicExactFirst", func(t *testing.T) {
		found, err := s.SearchStops(ctx, "ВОКЗАЛ", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"V2", "V1"}, codes(found))
	})

	t.Run("NoMatch", func(t *testing.T) {
		found, err := s.SearchStops(ctx, "zzzz", 10, 0)
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestRoutes(t *testing.T) {
	s := newTestStore(t)
	seedCity(t, s)
	ctx := context.Background()

	t.Run("ListAndGeometry", func(t *testing.T) {
		active, err := s.ListRoutes(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, routeNames(active))

		all, err := s.ListRoutes(ctx, false)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		route, err := s.RouteByName(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "D1", route.OriginStopCode)
		assert.Equal(t, "P1", route.DestinationStopCode)
		line, err := geo.DecodeWKB(route.Geometry)
		require.NoError(t, err)
		assert.Equal(t, 4, line.NumCoords())
	})

	t.Run("StopsBetween", func(t *testing.T) {
		stops, err := s.StopsBetween(ctx, "1", "CS1", "P1")
		require.NoError(t, err)
		require.Len(t, stops, 3)
		assert.Equal(t, "CS1", stops[0].Code)
		assert.Equal(t, "P1", stops[2].Code)

		loop, err := s.StopsBetween(ctx, "2", "CS2", "CS2")
		require.NoError(t, err)
		assert.Len(t, loop, 4)

		whole, err := s.StopsBetween(ctx, "1", "", "")
		require.NoError(t, err)
		assert.Len(t, whole, 4)

		_, err = s.StopsBetween(ctx, "99", "", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ReplaceStops", func(t *testing.T) {
		_, err := s.ReplaceRouteStops(ctx, "3", []string{"D1", "NOPE"})
		assert.ErrorIs(t, err, ErrUnknownStop)

		created, err := s.ReplaceRouteStops(ctx, "3", []string{"D1", "CM1", "P1"})
		require.NoError(t, err)
		require.Len(t, created, 3)
		assert.Equal(t, "Central Market", created[1].Stop.Name)

		_, err = s.ReplaceRouteStops(ctx, "99", []string{"D1"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("AddSchedules", func(t *testing.T) {
		_, err := s.AddSchedules(ctx, "1", "", 128, nil)
		assert.ErrorIs(t, err, ErrInvalidServiceDays)

		_, err = s.AddSchedules(ctx, "1", "", 0, []Arrival{arrival("D1", 10, 0), arrival("P1", 10, 30)})
		assert.ErrorIs(t, err, ErrInvalidServiceDays)

		_, err = s.AddSchedules(ctx, "1", "", schedule.AllDays, []Arrival{arrival("X1", 10, 0)})
		assert.ErrorIs(t, err, ErrUnknownStop)

		entries, err := s.AddSchedules(ctx, "1", "", 96, []Arrival{arrival("D1", 10, 0), arrival("P1", 10, 30)})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Regexp(t, `^1_[0-9a-f]{12}$`, entries[0].TripID)
		assert.Equal(t, entries[0].TripID, entries[1].TripID)
		assert.Equal(t, 96, entries[0].ServiceDays().Pack())
	})

	t.Run("ActivateAndDelete", func(t *testing.T) {
		require.NoError(t, s.SetRouteActive(ctx, "3", true))
		routes, err := s.Catalog().RoutesServingBoth(ctx, "Depot", "Park")
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "3"}, routeNames(routes))
		assert.ErrorIs(t, s.SetRouteActive(ctx, "99", true), ErrNotFound)

		require.NoError(t, s.DeleteRoute(ctx, "2"))
		_, err = s.RouteByName(ctx, "2")
		assert.ErrorIs(t, err, ErrNotFound)
		stops, err := s.Catalog().RouteStops(ctx, "2")
		require.NoError(t, err)
		assert.Empty(t, stops)
		assert.ErrorIs(t, s.DeleteRoute(ctx, "2"), ErrNotFound)

		// the name is free again
		require.NoError(t, s.CreateRoute(ctx, &models.Route{Name: "2", IsActive: true}))
	})
}

func TestSearchHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.LastSearch(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.RecordSearch(ctx, 42, "Depot", "Park"))
	require.NoError(t, s.RecordSearch(ctx, 42, "Park", "Central Market"))
	require.NoError(t, s.RecordSearch(ctx, 7, "Depot", "Central Market"))

	last, err := s.LastSearch(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Park", last.Origin)
	assert.Equal(t, "Central Market", last.Destination)
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := models.User{Name: "Ops", Email: "ops@example.com", Password: "hash", Role: models.RoleAdmin}
	require.NoError(t, s.CreateUser(ctx, &user))
	assert.NotZero(t, user.ID)

	found, err := s.UserByEmail(ctx, "ops@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, found.Role)

	_, err = s.UserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, s.CreateUser(ctx, &models.User{Email: "ops@example.com", Password: "x"}))
}
