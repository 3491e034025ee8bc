package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"healteex/api/internal/ids"
	"healteex/api/internal/models"
	"healteex/api/internal/repository"
)

type integrationRequest struct {
	SystemName  string         `json:"systemName" binding:"required"`
	BaseURL     string         `json:"baseUrl" binding:"required,url"`
	AuthType    string         `json:"authType" binding:"required"`
	Credentials map[string]any `json:"credentials"`
	IsActive    *bool          `json:"isActive"`
	LastSyncAt  *time.Time     `json:"lastSyncAt"`
}

func (req integrationRequest) toModel(id string) models.IntegrationConfig {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	credentials := req.Credentials
	if credentials == nil {
		credentials = map[string]any{}
	}
	return models.IntegrationConfig{
		ID:          id,
		SystemName:  req.SystemName,
		BaseURL:     req.BaseURL,
		AuthType:    models.IntegrationAuthType(req.AuthType),
		Credentials: credentials,
		IsActive:    isActive,
		LastSyncAt:  req.LastSyncAt,
	}
}

func (h HandlerSet) ListIntegrations(c *gin.Context) {
	limit, offset := paginationParams(c)

	integrations, err := h.integrations.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if integrations == nil {
		integrations = []models.IntegrationConfig{}
	}

	c.JSON(http.StatusOK, gin.H{"items": integrations})
}

func (h HandlerSet) CreateIntegration(c *gin.Context) {
	var req integrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	integration := req.toModel(ids.New())
	if err := h.integrations.Create(c.Request.Context(), integration); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	created, err := h.integrations.GetByID(c.Request.Context(), integration.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h HandlerSet) GetIntegration(c *gin.Context) {
	integration, err := h.integrations.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrIntegrationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "integration_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, integration)
}

func (h HandlerSet) UpdateIntegration(c *gin.Context) {
	var req integrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	integration := req.toModel(c.Param("id"))
	if err := h.integrations.Update(c.Request.Context(), integration); err != nil {
		if errors.Is(err, repository.ErrIntegrationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "integration_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.integrations.GetByID(c.Request.Context(), integration.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h HandlerSet) DeleteIntegration(c *gin.Context) {
	if err := h.integrations.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrIntegrationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "integration_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
