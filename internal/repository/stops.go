package repository

import (
	"context"
	"sort"

	"bus_info/internal/fuzzy"
	"bus_info/internal/geo"
	"bus_info/internal/models"
)

const defaultPageSize = 10

// StopDistance is a stop with its distance from a reference point.
type StopDistance struct {
	Stop       models.Stop `json:"stop"`
	DistanceKm float64     `json:"distance_km"`
}

// SearchStops fuzzy-matches query against the names and addresses of active
// stops. Exact name matches come first, then the rest by score, then by name.
func (s *Store) SearchStops(ctx context.Context, query string, limit, offset int) ([]models.Stop, error) {
	folded := fuzzy.Fold(query)
	if folded == "" {
		return []models.Stop{}, nil
	}
	if limit <= 0 {
		limit = defaultPageSize
	}

	var stops []models.Stop
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name, code").
		Find(&stops).Error
	if err != nil {
		return nil, err
	}

	type match struct {
		stop  models.Stop
		exact bool
		score int
	}
	matches := make([]match, 0, len(stops))
	for _, stop := range stops {
		score := max(fuzzy.Score(folded, stop.Name), fuzzy.Score(folded, stop.Address))
		if score == 0 {
			continue
		}
		matches = append(matches, match{stop: stop, exact: fuzzy.Fold(stop.Name) == folded, score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].exact != matches[j].exact {
			return matches[i].exact
		}
		return matches[i].score > matches[j].score
	})

	if offset < 0 {
		offset = 0
	}
	result := []models.Stop{}
	for i := offset; i < len(matches) && len(result) < limit; i++ {
		result = append(result, matches[i].stop)
	}
	return result, nil
}

// NearestStops ranks active stops by great-circle distance from (lat, lng).
func (s *Store) NearestStops(ctx context.Context, lat, lng float64, limit int) ([]StopDistance, error) {
	if limit <= 0 {
		limit = 5
	}
	var stops []models.Stop
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&stops).Error; err != nil {
		return nil, err
	}

	ranked := make([]StopDistance, 0, len(stops))
	for _, stop := range stops {
		ranked = append(ranked, StopDistance{
			Stop:       stop,
			DistanceKm: geo.Haversine(lat, lng, stop.Latitude, stop.Longitude),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].DistanceKm < ranked[j].DistanceKm })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (s *Store) StopByCode(ctx context.Context, code string) (models.Stop, error) {
	var stop models.Stop
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&stop).Error
	return stop, translate(err)
}

// ListStops pages through active stops by name.
func (s *Store) ListStops(ctx context.Context, limit, offset int) ([]models.Stop, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	var stops []models.Stop
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name, code").
		Limit(limit).
		Offset(offset).
		Find(&stops).Error
	return stops, err
}

func (s *Store) CountStops(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Stop{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

// DisplayNames returns the distinct names riders pick from, sorted.
func (s *Store) DisplayNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Model(&models.Stop{}).
		Where("is_active = ?", true).
		Distinct("name").
		Order("name").
		Pluck("name", &names).Error
	return names, err
}

func (s *Store) CreateStop(ctx context.Context, stop *models.Stop) error {
	return translateWrite(s.db.WithContext(ctx).Create(stop).Error)
}
