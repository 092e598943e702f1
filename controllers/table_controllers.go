package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dineflow/pos-backend/models"
	"github.com/dineflow/pos-backend/realtime"
	"github.com/dineflow/pos-backend/utils"
)

type TableController struct {
	DB        *gorm.DB
	Publisher realtime.Publisher
}

func NewTableController(db *gorm.DB, publisher realtime.Publisher) *TableController {
	return &TableController{DB: db, Publisher: publisher}
}

func (tc *TableController) publishTable(c *gin.Context, table models.Table) {
	tc.Publisher.Publish(c.Request.Context(), realtime.Event{
		Type:     realtime.EventTableUpdate,
		OutletID: table.OutletID,
		FloorID:  table.FloorID,
		Data:     table,
	})
}

// CreateTable registers a new physical table on a floor.
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		FloorID     uint   `json:"floor_id" binding:"required"`
		TableNumber string `json:"table_number" binding:"required"`
		Capacity    int    `json:"capacity"`
		IsMergeable *bool  `json:"is_mergeable"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := actorFrom(c)
	table := models.Table{
		OutletID:    actor.OutletID,
		FloorID:     req.FloorID,
		TableNumber: req.TableNumber,
		Capacity:    req.Capacity,
		IsMergeable: true,
		Status:      models.TableAvailable,
	}
	if table.Capacity <= 0 {
		table.Capacity = 2
	}
	if req.IsMergeable != nil {
		table.IsMergeable = *req.IsMergeable
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.publishTable(c, table)
	utils.InfoLogger.Printf("table %s created on floor %d", table.TableNumber, table.FloorID)
	utils.RespondJSON(c, http.StatusCreated, "Table created", table)
}

// GetAllTables lists the outlet's tables, optionally filtered by status.
func (tc *TableController) GetAllTables(c *gin.Context) {
	actor := actorFrom(c)

	query := tc.DB.Where("outlet_id = ?", actor.OutletID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var tables []models.Table
	if err := query.Order("floor_id, table_number").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID returns one table with its floor.
func (tc *TableController) GetTableByID(c *gin.Context) {
	var table models.Table
	if err := tc.DB.Preload("Floor").First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// MarkTableClean flips a cleaning table back to available.
func (tc *TableController) MarkTableClean(c *gin.Context) {
	var table models.Table
	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockTable(tx, c.Param("table_id"), &table); err != nil {
			return err
		}
		if table.Status != models.TableCleaning {
			return ErrInvalidStatusTransition
		}
		table.Status = models.TableAvailable
		return tx.Save(&table).Error
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	tc.publishTable(c, table)
	utils.RespondJSON(c, http.StatusOK, "Table marked as clean", table)
}

// lockTable reads a table row with a write lock so concurrent transitions
// on the same table serialize.
func lockTable(tx *gorm.DB, id interface{}, table *models.Table) error {
	return withRowLock(tx).First(table, id).Error
}
