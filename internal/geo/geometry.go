package geo

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"

	"bus_info/internal/models"
)

// SRID of every geometry produced here (WGS 84, lng/lat order).
const SRID = 4326

var ErrTooFewStops = errors.New("a route line needs at least two stops")

// LineFromStops draws a path through the stops in the given order.
func LineFromStops(stops []models.Stop) (*geom.LineString, error) {
	if len(stops) < 2 {
		return nil, ErrTooFewStops
	}
	coords := make([]float64, 0, 2*len(stops))
	for _, s := range stops {
		coords = append(coords, s.Longitude, s.Latitude)
	}
	return geom.NewLineStringFlat(geom.XY, coords).SetSRID(SRID), nil
}

// EncodeWKB returns little-endian WKB, the form models.Route.Geometry stores.
func EncodeWKB(g geom.T) ([]byte, error) {
	return wkb.Marshal(g, binary.LittleEndian)
}

// DecodeWKB parses a stored route geometry. Empty input yields a nil line.
func DecodeWKB(b []byte) (*geom.LineString, error) {
	if len(b) == 0 {
		return nil, nil
	}
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("decoding route geometry: %w", err)
	}
	line, ok := g.(*geom.LineString)
	if !ok {
		return nil, fmt.Errorf("route geometry is a %T, want a line string", g)
	}
	return line.SetSRID(SRID), nil
}

// RouteWKB is LineFromStops followed by EncodeWKB.
func RouteWKB(stops []models.Stop) ([]byte, error) {
	line, err := LineFromStops(stops)
	if err != nil {
		return nil, err
	}
	return EncodeWKB(line)
}

// RouteFeatureCollection renders the path through stops as one LineString feature
// followed by a Point feature per stop, ready to be drawn on a map.
func RouteFeatureCollection(routeName string, stops []models.Stop) (*gjson.FeatureCollection, error) {
	line, err := LineFromStops(stops)
	if err != nil {
		return nil, err
	}

	fc := &gjson.FeatureCollection{
		Features: make([]*gjson.Feature, 0, len(stops)+1),
	}
	fc.Features = append(fc.Features, &gjson.Feature{
		ID:       routeName,
		Geometry: line,
		Properties: map[string]interface{}{
			"route": routeName,
			"stops": len(stops),
		},
	})
	for i, s := range stops {
		fc.Features = append(fc.Features, &gjson.Feature{
			ID:       s.Code,
			Geometry: geom.NewPointFlat(geom.XY, []float64{s.Longitude, s.Latitude}).SetSRID(SRID),
			Properties: map[string]interface{}{
				"code":     s.Code,
				"name":     s.Name,
				"sequence": i + 1,
			},
		})
	}
	return fc, nil
}
