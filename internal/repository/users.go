package repository

import (
	"context"

	"bus_info/internal/models"
)

func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return user, translate(err)
}

// CreateUser stores user as given; Password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return translateWrite(s.db.WithContext(ctx).Create(user).Error)
}
