package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"healteex/api/internal/ids"
	"healteex/api/internal/models"
	"healteex/api/internal/repository"
)

type medicineRequest struct {
	Name        string `json:"name" binding:"required"`
	GenericName string `json:"genericName"`
	Category    string `json:"category"`
	ATCCode     string `json:"atcCode"`
	PackSize    string `json:"packSize"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

func (req medicineRequest) toModel(id string) models.Medicine {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	return models.Medicine{
		ID:          id,
		Name:        req.Name,
		GenericName: req.GenericName,
		Category:    req.Category,
		ATCCode:     req.ATCCode,
		PackSize:    req.PackSize,
		Unit:        req.Unit,
		Description: req.Description,
		IsActive:    isActive,
	}
}

func (h HandlerSet) ListMedicines(c *gin.Context) {
	limit, offset := paginationParams(c)

	medicines, err := h.medicines.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if medicines == nil {
		medicines = []models.Medicine{}
	}

	c.JSON(http.StatusOK, gin.H{"items": medicines})
}

func (h HandlerSet) CreateMedicine(c *gin.Context) {
	var req medicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	medicine := req.toModel(ids.New())
	if err := h.medicines.Create(c.Request.Context(), medicine); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	created, err := h.medicines.GetByID(c.Request.Context(), medicine.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h HandlerSet) GetMedicine(c *gin.Context) {
	medicine, err := h.medicines.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrMedicineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "medicine_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, medicine)
}

func (h HandlerSet) UpdateMedicine(c *gin.Context) {
	var req medicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	medicine := req.toModel(c.Param("id"))
	if err := h.medicines.Update(c.Request.Context(), medicine); err != nil {
		if errors.Is(err, repository.ErrMedicineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "medicine_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.medicines.GetByID(c.Request.Context(), medicine.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h HandlerSet) DeleteMedicine(c *gin.Context) {
	if err := h.medicines.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrMedicineNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "medicine_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
