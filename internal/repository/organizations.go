package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"bus_info/internal/fuzzy"
	"bus_info/internal/models"
)

// Categories pages through organization categories by name.
func (s *Store) Categories(ctx context.Context, limit, offset int) ([]models.OrganizationCategory, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	var categories []models.OrganizationCategory
	err := s.db.WithContext(ctx).
		Order("name, id").
		Limit(limit).
		Offset(offset).
		Find(&categories).Error
	return categories, err
}

func (s *Store) CountCategories(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.OrganizationCategory{}).Count(&n).Error
	return n, err
}

func (s *Store) CategoryByID(ctx context.Context, id uint) (models.OrganizationCategory, error) {
	var category models.OrganizationCategory
	err := s.db.WithContext(ctx).First(&category, id).Error
	return category, translate(err)
}

func (s *Store) CategoryByName(ctx context.Context, name string) (models.OrganizationCategory, error) {
	var category models.OrganizationCategory
	err := s.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&category).Error
	return category, translate(err)
}

func (s *Store) CreateCategory(ctx context.Context, category *models.OrganizationCategory) error {
	return translateWrite(s.db.WithContext(ctx).Create(category).Error)
}

// OrganizationsInCategory pages through one category's organizations by name.
func (s *Store) OrganizationsInCategory(ctx context.Context, categoryID uint, limit, offset int) ([]models.Organization, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	var orgs []models.Organization
	err := s.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("name, id").
		Limit(limit).
		Offset(offset).
		Find(&orgs).Error
	return orgs, err
}

// CountOrganizations counts one category's organizations, or all of them when categoryID is 0.
func (s *Store) CountOrganizations(ctx context.Context, categoryID uint) (int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Organization{})
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func (s *Store) OrganizationByID(ctx context.Context, id uint) (models.Organization, error) {
	var org models.Organization
	err := s.db.WithContext(ctx).First(&org, id).Error
	return org, translate(err)
}

// SearchOrganizations returns organizations whose name contains query, ignoring case, by name.
func (s *Store) SearchOrganizations(ctx context.Context, query string, limit int) ([]models.Organization, error) {
	folded := fuzzy.Fold(query)
	if folded == "" {
		return []models.Organization{}, nil
	}
	if limit <= 0 {
		limit = defaultPageSize
	}

	var orgs []models.Organization
	if err := s.db.WithContext(ctx).Order("name, id").Find(&orgs).Error; err != nil {
		return nil, err
	}
	found := []models.Organization{}
	for _, org := range orgs {
		if strings.Contains(fuzzy.Fold(org.Name), folded) {
			found = append(found, org)
			if len(found) == limit {
				break
			}
		}
	}
	return found, nil
}

// CreateOrganization adds a directory entry under an existing category.
func (s *Store) CreateOrganization(ctx context.Context, org *models.Organization) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.OrganizationCategory
		if err := tx.First(&category, org.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownCategory
			}
			return err
		}
		return translateWrite(tx.Omit("Category").Create(org).Error)
	})
}
