package controllers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dineflow/pos-backend/models"
	"github.com/dineflow/pos-backend/realtime"
	"github.com/dineflow/pos-backend/utils"
)

type SessionController struct {
	DB        *gorm.DB
	Publisher realtime.Publisher
}

func NewSessionController(db *gorm.DB, publisher realtime.Publisher) *SessionController {
	return &SessionController{DB: db, Publisher: publisher}
}

// StartSession opens a guest session on a table. The table row is read under
// a write lock, so of two concurrent starts one commits and the other sees
// the occupied table and fails with ErrTableUnavailable. This is the only
// writer of the actor-lock (StartedBy).
func (sc *SessionController) StartSession(c *gin.Context) {
	var req struct {
		GuestName  string `json:"guest_name"`
		GuestCount int    `json:"guest_count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := actorFrom(c)
	var table models.Table
	var session models.TableSession

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		session, table, err = startSessionTx(tx, c.Param("table_id"), req.GuestName, req.GuestCount, actor)
		return err
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sc.Publisher.Publish(c.Request.Context(), realtime.Event{
		Type:     realtime.EventTableUpdate,
		OutletID: table.OutletID,
		FloorID:  table.FloorID,
		Data:     table,
	})
	utils.InfoLogger.Printf("session %d started on table %d by actor %d", session.ID, table.ID, actor.ID)
	utils.RespondJSON(c, http.StatusCreated, "Session started", session)
}

// startSessionTx does the locked table read plus the session insert; shared
// with the dine-in order bootstrap.
func startSessionTx(tx *gorm.DB, tableID interface{}, guestName string, guestCount int, actor Actor) (models.TableSession, models.Table, error) {
	var table models.Table
	if err := lockTable(tx, tableID, &table); err != nil {
		return models.TableSession{}, models.Table{}, err
	}
	if !table.CanStartSession() {
		return models.TableSession{}, models.Table{}, ErrTableUnavailable
	}

	var active int64
	if err := tx.Model(&models.TableSession{}).
		Where("table_id = ? AND status = ?", table.ID, models.SessionActive).
		Count(&active).Error; err != nil {
		return models.TableSession{}, models.Table{}, err
	}
	if active > 0 {
		return models.TableSession{}, models.Table{}, ErrTableUnavailable
	}

	if guestCount <= 0 {
		guestCount = 1
	}
	session := models.TableSession{
		TableID:    table.ID,
		GuestName:  guestName,
		GuestCount: guestCount,
		StartedBy:  actor.ID,
		Status:     models.SessionActive,
		SessionKey: uuid.NewString(),
		StartedAt:  time.Now(),
	}
	if err := tx.Create(&session).Error; err != nil {
		return models.TableSession{}, models.Table{}, err
	}

	table.Status = models.TableOccupied
	if err := tx.Save(&table).Error; err != nil {
		return models.TableSession{}, models.Table{}, err
	}
	return session, table, nil
}

// EndSession completes the active session. Merged tables revert to available
// and the primary goes to cleaning, ready for the cleaner flow.
func (sc *SessionController) EndSession(c *gin.Context) {
	actor := actorFrom(c)
	var table models.Table

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockTable(tx, c.Param("table_id"), &table); err != nil {
			return err
		}
		session, err := activeSession(tx, table.ID)
		if err != nil {
			return err
		}
		if err := assertCanMutate(session, actor); err != nil {
			return err
		}
		return endSessionTx(tx, session, &table, models.TableCleaning)
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sc.Publisher.Publish(c.Request.Context(), realtime.Event{
		Type:     realtime.EventTableUpdate,
		OutletID: table.OutletID,
		FloorID:  table.FloorID,
		Data:     table,
	})
	utils.RespondJSON(c, http.StatusOK, "Session ended", table)
}

// MergeTables pulls extra tables into the primary's session. Every candidate
// must be available, mergeable and on the primary's floor; each pair gets its
// own reversible merge record.
func (sc *SessionController) MergeTables(c *gin.Context) {
	var req struct {
		TableIDs []uint `json:"table_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := actorFrom(c)
	var primary models.Table
	var merges []models.TableMerge

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockTable(tx, c.Param("table_id"), &primary); err != nil {
			return err
		}
		session, err := activeSession(tx, primary.ID)
		if err != nil {
			return err
		}
		if err := assertCanMutate(session, actor); err != nil {
			return err
		}

		for _, id := range req.TableIDs {
			var candidate models.Table
			if err := lockTable(tx, id, &candidate); err != nil {
				return err
			}
			if candidate.Status != models.TableAvailable {
				return ErrTableUnavailable
			}
			if !candidate.IsMergeable || candidate.FloorID != primary.FloorID {
				return ErrTableNotMergeable
			}

			merge := models.TableMerge{
				SessionID:      session.ID,
				PrimaryTableID: primary.ID,
				MergedTableID:  candidate.ID,
			}
			if err := tx.Create(&merge).Error; err != nil {
				return err
			}
			candidate.Status = models.TableOccupied
			if err := tx.Save(&candidate).Error; err != nil {
				return err
			}
			merges = append(merges, merge)
		}
		return nil
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sc.Publisher.Publish(c.Request.Context(), realtime.Event{
		Type:     realtime.EventTableUpdate,
		OutletID: primary.OutletID,
		FloorID:  primary.FloorID,
		Data:     primary,
	})
	utils.RespondJSON(c, http.StatusOK, "Tables merged", merges)
}

// UnmergeTables reverses merges for the primary's active session. With no
// table_ids in the body every merged table is released.
func (sc *SessionController) UnmergeTables(c *gin.Context) {
	var req struct {
		TableIDs []uint `json:"table_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := actorFrom(c)
	var primary models.Table

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockTable(tx, c.Param("table_id"), &primary); err != nil {
			return err
		}
		session, err := activeSession(tx, primary.ID)
		if err != nil {
			return err
		}
		if err := assertCanMutate(session, actor); err != nil {
			return err
		}

		query := tx.Where("session_id = ?", session.ID)
		if len(req.TableIDs) > 0 {
			query = query.Where("merged_table_id IN ?", req.TableIDs)
		}
		var merges []models.TableMerge
		if err := query.Find(&merges).Error; err != nil {
			return err
		}
		return releaseMerges(tx, merges)
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Tables unmerged", primary)
}

// activeSession loads the single active session for a table, with its merge
// records. Callers hold the table row lock already.
func activeSession(tx *gorm.DB, tableID uint) (*models.TableSession, error) {
	var session models.TableSession
	err := tx.Preload("Merges").
		Where("table_id = ? AND status = ?", tableID, models.SessionActive).
		First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// endSessionTx completes the session, releases all merged tables and moves
// the primary to tableStatus. Payment completion passes available directly;
// a manual end passes cleaning.
func endSessionTx(tx *gorm.DB, session *models.TableSession, table *models.Table, tableStatus string) error {
	now := time.Now()
	session.Status = models.SessionCompleted
	session.EndedAt = &now
	session.OrderID = nil
	if err := tx.Save(session).Error; err != nil {
		return err
	}

	if err := releaseMerges(tx, session.Merges); err != nil {
		return err
	}

	table.Status = tableStatus
	return tx.Save(table).Error
}

// releaseMerges reverts merged tables to available and removes the records.
func releaseMerges(tx *gorm.DB, merges []models.TableMerge) error {
	for _, merge := range merges {
		if err := tx.Model(&models.Table{}).
			Where("id = ?", merge.MergedTableID).
			Update("status", models.TableAvailable).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.TableMerge{}, merge.ID).Error; err != nil {
			return err
		}
	}
	return nil
}
