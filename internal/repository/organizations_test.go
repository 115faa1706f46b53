package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus_info/internal/models"
)

func seedDirectory(t *testing.T, s *Store) (hospitals, pharmacies models.OrganizationCategory) {
	t.Helper()
	ctx := context.Background()

	hospitals = models.OrganizationCategory{Name: "Больницы"}
	pharmacies = models.OrganizationCategory{Name: "Аптеки"}
	require.NoError(t, s.CreateCategory(ctx, &hospitals))
	require.NoError(t, s.CreateCategory(ctx, &pharmacies))

	orgs := []models.Organization{
		{Name: "Городская больница №1", Address: "ул. Ленина 1", Phone: "+7 000 000-00-01", CategoryID: hospitals.ID},
		{Name: "Детская больница", Address: "ул. Мира 4", CategoryID: hospitals.ID},
		{Name: "Аптека на Мира", Address: "ул. Мира 6", CategoryID: pharmacies.ID},
	}
	for i := range orgs {
		require.NoError(t, s.CreateOrganization(ctx, &orgs[i]))
	}
	return hospitals, pharmacies
}

func TestOrganizations(t *testing.T) {
	s := newTestStore(t)
	hospitals, pharmacies := seedDirectory(t, s)
	ctx := context.Background()

	t.Run("Categories", func(t *testing.T) {
		categories, err := s.Categories(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, categories, 2)
		assert.Equal(t, "Аптеки", categories[0].Name)

		page, err := s.Categories(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "Больницы", page[0].Name)

		n, err := s.CountCategories(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("CategoryLookups", func(t *testing.T) {
		category, err := s.CategoryByName(ctx, " Аптеки ")
		require.NoError(t, err)
		assert.Equal(t, pharmacies.ID, category.ID)

		_, err = s.CategoryByName(ctx, "Школы")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.CategoryByID(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DuplicateCategory", func(t *testing.T) {
		err := s.CreateCategory(ctx, &models.OrganizationCategory{Name: "Аптеки"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("ByCategory", func(t *testing.T) {
		orgs, err := s.OrganizationsInCategory(ctx, hospitals.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, orgs, 2)
		assert.Equal(t, "Городская больница №1", orgs[0].Name)
		assert.Equal(t, "Детская больница", orgs[1].Name)

		n, err := s.CountOrganizations(ctx, hospitals.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		n, err = s.CountOrganizations(ctx, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
	})

	t.Run("SearchIgnoresCase", func(t *testing.T) {
		orgs, err := s.SearchOrganizations(ctx, "БОЛЬНИЦА", 10)
		require.NoError(t, err)
		require.Len(t, orgs, 2)
		assert.Equal(t, "Городская больница №1", orgs[0].Name)

		orgs, err = s.SearchOrganizations(ctx, "больница", 1)
		require.NoError(t, err)
		assert.Len(t, orgs, 1)

		orgs, err = s.SearchOrganizations(ctx, " ", 10)
		require.NoError(t, err)
		assert.Empty(t, orgs)
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		err := s.CreateOrganization(ctx, &models.Organization{Name: "Школа №5", CategoryID: 999})
		assert.ErrorIs(t, err, ErrUnknownCategory)
	})

	t.Run("ByID", func(t *testing.T) {
		orgs, err := s.OrganizationsInCategory(ctx, pharmacies.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, orgs, 1)

		org, err := s.OrganizationByID(ctx, orgs[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "Аптека на Мира", org.Name)

		_, err = s.OrganizationByID(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
