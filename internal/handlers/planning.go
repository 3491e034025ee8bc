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

type forecastRequest struct {
	FacilityID              string    `json:"facilityId" binding:"required"`
	MedicineID              string    `json:"medicineId" binding:"required"`
	ForecastDate            time.Time `json:"forecastDate" binding:"required"`
	PeriodStart             time.Time `json:"periodStart" binding:"required"`
	PeriodEnd               time.Time `json:"periodEnd" binding:"required"`
	PredictedDemand         float64   `json:"predictedDemand"`
	ConfidenceIntervalLower *float64  `json:"confidenceIntervalLower"`
	ConfidenceIntervalUpper *float64  `json:"confidenceIntervalUpper"`
	ModelVersion            string    `json:"modelVersion"`
}

func (req forecastRequest) toModel(id string) models.Forecast {
	return models.Forecast{
		ID:                      id,
		FacilityID:              req.FacilityID,
		MedicineID:              req.MedicineID,
		ForecastDate:            req.ForecastDate,
		PeriodStart:             req.PeriodStart,
		PeriodEnd:               req.PeriodEnd,
		PredictedDemand:         req.PredictedDemand,
		ConfidenceIntervalLower: req.ConfidenceIntervalLower,
		ConfidenceIntervalUpper: req.ConfidenceIntervalUpper,
		ModelVersion:            req.ModelVersion,
	}
}

func (h HandlerSet) ListForecasts(c *gin.Context) {
	limit, offset := paginationParams(c)

	forecasts, err := h.forecasts.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if forecasts == nil {
		forecasts = []models.Forecast{}
	}

	c.JSON(http.StatusOK, gin.H{"items": forecasts})
}

func (h HandlerSet) CreateForecast(c *gin.Context) {
	var req forecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	forecast := req.toModel(ids.New())
	if err := h.forecasts.Create(c.Request.Context(), forecast); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	created, err := h.forecasts.GetByID(c.Request.Context(), forecast.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h HandlerSet) GetForecast(c *gin.Context) {
	forecast, err := h.forecasts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrForecastNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "forecast_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, forecast)
}

func (h HandlerSet) UpdateForecast(c *gin.Context) {
	var req forecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	forecast := req.toModel(c.Param("id"))
	if err := h.forecasts.Update(c.Request.Context(), forecast); err != nil {
		if errors.Is(err, repository.ErrForecastNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "forecast_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.forecasts.GetByID(c.Request.Context(), forecast.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h HandlerSet) DeleteForecast(c *gin.Context) {
	if err := h.forecasts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrForecastNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "forecast_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

type alertRequest struct {
	FacilityID  string     `json:"facilityId" binding:"required"`
	MedicineID  string     `json:"medicineId" binding:"required"`
	AlertType   string     `json:"alertType" binding:"required"`
	Status      string     `json:"status"`
	Message     string     `json:"message"`
	TriggeredAt *time.Time `json:"triggeredAt"`
	ResolvedAt  *time.Time `json:"resolvedAt"`
	ResolvedBy  *string    `json:"resolvedBy"`
}

func (req alertRequest) toModel(id string) models.Alert {
	status := models.AlertStatusOpen
	if req.Status != "" {
		status = models.AlertStatus(req.Status)
	}
	triggeredAt := time.Now().UTC()
	if req.TriggeredAt != nil {
		triggeredAt = *req.TriggeredAt
	}
	return models.Alert{
		ID:          id,
		FacilityID:  req.FacilityID,
		MedicineID:  req.MedicineID,
		AlertType:   models.AlertType(req.AlertType),
		Status:      status,
		Message:     req.Message,
		TriggeredAt: triggeredAt,
		ResolvedAt:  req.ResolvedAt,
		ResolvedBy:  req.ResolvedBy,
	}
}

func (h HandlerSet) ListAlerts(c *gin.Context) {
	limit, offset := paginationParams(c)

	alerts, err := h.alerts.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}

	c.JSON(http.StatusOK, gin.H{"items": alerts})
}

func (h HandlerSet) CreateAlert(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert := req.toModel(ids.New())
	if err := h.alerts.Create(c.Request.Context(), alert); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	created, err := h.alerts.GetByID(c.Request.Context(), alert.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h HandlerSet) GetAlert(c *gin.Context) {
	alert, err := h.alerts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, alert)
}

func (h HandlerSet) UpdateAlert(c *gin.Context) {
	var req alertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alert := req.toModel(c.Param("id"))
	if alert.Status != models.AlertStatusOpen && alert.ResolvedBy == nil {
		alert.ResolvedBy = currentUserID(c)
	}
	if err := h.alerts.Update(c.Request.Context(), alert); err != nil {
		if errors.Is(err, repository.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.alerts.GetByID(c.Request.Context(), alert.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h HandlerSet) DeleteAlert(c *gin.Context) {
	if err := h.alerts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
