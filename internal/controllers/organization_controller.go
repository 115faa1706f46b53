package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bus_info/internal/middleware"
	"bus_info/internal/models"
	"bus_info/internal/repository"
)

const directoryPageSize = 6

// OrganizationController serves the city directory shown next to the timetable.
type OrganizationController struct {
	store *repository.Store
}

func NewOrganizationController(store *repository.Store) *OrganizationController {
	return &OrganizationController{store: store}
}

type pageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

func (p pageQuery) limit() int {
	if p.Limit == 0 {
		return directoryPageSize
	}
	return p.Limit
}

func (oc *OrganizationController) ListCategories(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	categories, err := oc.store.Categories(ctx, q.limit(), q.Offset)
	if err != nil {
		respondError(c, err, "listing categories")
		return
	}
	total, err := oc.store.CountCategories(ctx)
	if err != nil {
		respondError(c, err, "counting categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "total": total})
}

// ListOrganizations searches by name when q is given, otherwise pages through one category.
func (oc *OrganizationController) ListOrganizations(c *gin.Context) {
	var q struct {
		pageQuery
		Query      string `form:"q"`
		CategoryID uint   `form:"category_id"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	if q.Query != "" {
		orgs, err := oc.store.SearchOrganizations(ctx, q.Query, q.limit())
		if err != nil {
			respondError(c, err, "searching organizations")
			return
		}
		c.JSON(http.StatusOK, gin.H{"organizations": orgs})
		return
	}
	if q.CategoryID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q or category_id is required"})
		return
	}

	category, err := oc.store.CategoryByID(ctx, q.CategoryID)
	if err != nil {
		respondError(c, err, "loading category")
		return
	}
	orgs, err := oc.store.OrganizationsInCategory(ctx, category.ID, q.limit(), q.Offset)
	if err != nil {
		respondError(c, err, "listing organizations")
		return
	}
	total, err := oc.store.CountOrganizations(ctx, category.ID)
	if err != nil {
		respondError(c, err, "counting organizations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "organizations": orgs, "total": total})
}

func (oc *OrganizationController) GetOrganization(c *gin.Context) {
	var uri struct {
		ID uint `uri:"id" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	org, err := oc.store.OrganizationByID(ctx, uri.ID)
	if err != nil {
		respondError(c, err, "loading organization")
		return
	}
	category, err := oc.store.CategoryByID(ctx, org.CategoryID)
	if err != nil {
		respondError(c, err, "loading category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"organization": org, "category": category})
}

func (oc *OrganizationController) CreateCategory(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required,max=63"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.OrganizationCategory{Name: input.Name}
	if err := oc.store.CreateCategory(c.Request.Context(), &category); err != nil {
		respondError(c, err, "creating category")
		return
	}
	middleware.Log(c).WithField("category", category.Name).Info("category created")
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

func (oc *OrganizationController) CreateOrganization(c *gin.Context) {
	var input struct {
		Name       string `json:"name" binding:"required,max=127"`
		Address    string `json:"address" binding:"max=255"`
		Phone      string `json:"phone" binding:"max=31"`
		CategoryID uint   `json:"category_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	org := models.Organization{
		Name:       input.Name,
		Address:    input.Address,
		Phone:      input.Phone,
		CategoryID: input.CategoryID,
	}
	if err := oc.store.CreateOrganization(c.Request.Context(), &org); err != nil {
		respondError(c, err, "creating organization")
		return
	}
	middleware.Log(c).WithField("organization", org.Name).Info("organization created")
	c.JSON(http.StatusCreated, gin.H{"organization": org})
}
