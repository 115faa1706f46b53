package repository

import (
	"context"

	"bus_info/internal/models"
)

// RecordSearch remembers the user's last origin and destination.
func (s *Store) RecordSearch(ctx context.Context, userID int64, origin, destination string) error {
	return s.db.WithContext(ctx).Create(&models.RouteSearch{
		UserID:      userID,
		Origin:      origin,
		Destination: destination,
	}).Error
}

func (s *Store) LastSearch(ctx context.Context, userID int64) (models.RouteSearch, error) {
	var search models.RouteSearch
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&search).Error
	return search, translate(err)
}
