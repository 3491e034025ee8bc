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

type transactionRequest struct {
	FacilityID        string     `json:"facilityId" binding:"required"`
	MedicineID        string     `json:"medicineId" binding:"required"`
	TransactionType   string     `json:"transactionType" binding:"required"`
	Quantity          float64    `json:"quantity" binding:"required"`
	BatchNumber       string     `json:"batchNumber"`
	ExpiryDate        *time.Time `json:"expiryDate"`
	SourceDestination string     `json:"sourceDestination"`
	Reference         string     `json:"reference"`
	Notes             string     `json:"notes"`
	OccurredAt        *time.Time `json:"occurredAt"`
}

func (req transactionRequest) toModel(id string, createdBy *string) models.InventoryTransaction {
	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}
	return models.InventoryTransaction{
		ID:                id,
		FacilityID:        req.FacilityID,
		MedicineID:        req.MedicineID,
		TransactionType:   models.TransactionType(req.TransactionType),
		Quantity:          req.Quantity,
		BatchNumber:       req.BatchNumber,
		ExpiryDate:        req.ExpiryDate,
		SourceDestination: req.SourceDestination,
		Reference:         req.Reference,
		Notes:             req.Notes,
		OccurredAt:        occurredAt,
		CreatedBy:         createdBy,
	}
}

func currentUserID(c *gin.Context) *string {
	userVal, exists := c.Get("current_user")
	if !exists {
		return nil
	}
	user, ok := userVal.(models.User)
	if !ok {
		return nil
	}
	return &user.ID
}

func (h HandlerSet) ListTransactions(c *gin.Context) {
	limit, offset := paginationParams(c)

	transactions, err := h.transactions.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if transactions == nil {
		transactions = []models.InventoryTransaction{}
	}

	c.JSON(http.StatusOK, gin.H{"items": transactions})
}

func (h HandlerSet) CreateTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transaction := req.toModel(ids.New(), currentUserID(c))
	if err := h.transactions.Create(c.Request.Context(), transaction); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	created, err := h.transactions.GetByID(c.Request.Context(), transaction.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h HandlerSet) GetTransaction(c *gin.Context) {
	transaction, err := h.transactions.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, transaction)
}

func (h HandlerSet) UpdateTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.transactions.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	transaction := req.toModel(existing.ID, existing.CreatedBy)
	if err := h.transactions.Update(c.Request.Context(), transaction); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.transactions.GetByID(c.Request.Context(), transaction.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h HandlerSet) DeleteTransaction(c *gin.Context) {
	if err := h.transactions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

type snapshotRequest struct {
	FacilityID  string     `json:"facilityId" binding:"required"`
	MedicineID  string     `json:"medicineId" binding:"required"`
	StockOnHand float64    `json:"stockOnHand"`
	DaysOfStock int        `json:"daysOfStock"`
	DataSource  string     `json:"dataSource"`
	RecordedAt  *time.Time `json:"recordedAt"`
}

func (req snapshotRequest) toModel(id string) models.StockSnapshot {
	recordedAt := time.Now().UTC()
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}
	return models.StockSnapshot{
		ID:          id,
		FacilityID:  req.FacilityID,
		MedicineID:  req.MedicineID,
		StockOnHand: req.StockOnHand,
		DaysOfStock: req.DaysOfStock,
		DataSource:  req.DataSource,
		RecordedAt:  recordedAt,
	}
}

func (h HandlerSet) ListSnapshots(c *gin.Context) {
	limit, offset := paginationParams(c)

	snapshots, err := h.snapshots.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if snapshots == nil {
		snapshots = []models.StockSnapshot{}
	}

	c.JSON(http.StatusOK, gin.H{"items": snapshots})
}

func (h HandlerSet) CreateSnapshot(c *gin.Context) {
	var req snapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot := req.toModel(ids.New())
	if err := h.snapshots.Create(c.Request.Context(), snapshot); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	created, err := h.snapshots.GetByID(c.Request.Context(), snapshot.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h HandlerSet) GetSnapshot(c *gin.Context) {
	snapshot, err := h.snapshots.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "snapshot_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h HandlerSet) UpdateSnapshot(c *gin.Context) {
	var req snapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snapshot := req.toModel(c.Param("id"))
	if err := h.snapshots.Update(c.Request.Context(), snapshot); err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "snapshot_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.snapshots.GetByID(c.Request.Context(), snapshot.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h HandlerSet) DeleteSnapshot(c *gin.Context) {
	if err := h.snapshots.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "snapshot_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) ExportSnapshots(c *gin.Context) {
	result, err := h.exportService.ExportSnapshots(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, result)
}
