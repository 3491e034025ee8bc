package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"healteex/api/internal/ids"
	"healteex/api/internal/models"
	"healteex/api/internal/repository"
)

type facilityRequest struct {
	Name         string   `json:"name" binding:"required"`
	Code         string   `json:"code" binding:"required"`
	FacilityType string   `json:"facilityType" binding:"required"`
	Ownership    string   `json:"ownership" binding:"required"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	LGA          string   `json:"lga"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	ContactEmail string   `json:"contactEmail"`
	ContactPhone string   `json:"contactPhone"`
	IsActive     *bool    `json:"isActive"`
}

func (req facilityRequest) toModel(id string) models.Facility {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	return models.Facility{
		ID:           id,
		Name:         req.Name,
		Code:         req.Code,
		FacilityType: models.FacilityType(req.FacilityType),
		Ownership:    models.Ownership(req.Ownership),
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		LGA:          req.LGA,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		IsActive:     isActive,
	}
}

func (h HandlerSet) ListFacilities(c *gin.Context) {
	limit, offset := paginationParams(c)

	facilities, err := h.facilities.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if facilities == nil {
		facilities = []models.Facility{}
	}

	c.JSON(http.StatusOK, gin.H{"items": facilities})
}

func (h HandlerSet) CreateFacility(c *gin.Context) {
	var req facilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	facility := req.toModel(ids.New())
	if err := h.facilities.Create(c.Request.Context(), facility); err != nil {
		if errors.Is(err, repository.ErrFacilityCodeTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	created, err := h.facilities.GetByID(c.Request.Context(), facility.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h HandlerSet) GetFacility(c *gin.Context) {
	facility, err := h.facilities.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrFacilityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "facility_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, facility)
}

func (h HandlerSet) UpdateFacility(c *gin.Context) {
	var req facilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	facility := req.toModel(c.Param("id"))
	if err := h.facilities.Update(c.Request.Context(), facility); err != nil {
		switch {
		case errors.Is(err, repository.ErrFacilityNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "facility_not_found"})
		case errors.Is(err, repository.ErrFacilityCodeTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	updated, err := h.facilities.GetByID(c.Request.Context(), facility.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h HandlerSet) DeleteFacility(c *gin.Context) {
	if err := h.facilities.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrFacilityNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "facility_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
