package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dineflow/pos-backend/models"
)

func TestStartSessionOccupiesTable(t *testing.T) {
	db := setupTestDB(t, "start_session")
	r := setupRouter(db)
	waiter := bearerToken(t, 1, "waiter")

	table := seedFloorAndTable(db, "A1")

	w := doRequest(r, "POST", fmt.Sprintf("/api/v1/tables/%d/session", table.ID), waiter,
		map[string]interface{}{"guest_name": "Sharma", "guest_count": 3})
	assert.Equal(t, http.StatusCreated, w.Code)
	response := parseResponse(t, w)
	assert.Equal(t, "Session started", response["message"])

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "active", data["status"])
	assert.Equal(t, float64(1), data["started_by"])
	assert.NotEmpty(t, data["session_key"])

	var fresh models.Table
	db.First(&fresh, table.ID)
	assert.Equal(t, models.TableOccupied, fresh.Status)
}

func TestStartSessionOnOccupiedTableConflicts(t *testing.T) {
	db := setupTestDB(t, "double_start")
	r := setupRouter(db)
	waiter := bearerToken(t, 1, "waiter")

	table := seedFloorAndTable(db, "A1")
	url := fmt.Sprintf("/api/v1/tables/%d/session", table.ID)

	w := doRequest(r, "POST", url, waiter, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Second start sees the occupied table and loses.
	w = doRequest(r, "POST", url, waiter, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEndSessionGoesThroughCleaning(t *testing.T) {
	db := setupTestDB(t, "end_session")
	r := setupRouter(db)
	waiter := bearerToken(t, 1, "waiter")

	table := seedFloorAndTable(db, "A1")
	url := fmt.Sprintf("/api/v1/tables/%d/session", table.ID)
	doRequest(r, "POST", url, waiter, nil)

	w := doRequest(r, "DELETE", url, waiter, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Session ended", parseResponse(t, w)["message"])

	var fresh models.Table
	db.First(&fresh, table.ID)
	assert.Equal(t, models.TableCleaning, fresh.Status)

	var session models.TableSession
	db.Where("table_id = ?", table.ID).First(&session)
	assert.Equal(t, models.SessionCompleted, session.Status)
	assert.NotNil(t, session.EndedAt)

	// The cleaner flow brings the table back into rotation.
	w = doRequest(r, "PATCH", fmt.Sprintf("/api/v1/tables/%d/clean", table.ID), waiter, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	db.First(&fresh, table.ID)
	assert.Equal(t, models.TableAvailable, fresh.Status)
}

func TestSessionLockViolation(t *testing.T) {
	db := setupTestDB(t, "session_lock")
	r := setupRouter(db)
	opener := bearerToken(t, 1, "waiter")
	other := bearerToken(t, 2, "waiter")
	cashier := bearerToken(t, 3, "cashier")

	table := seedFloorAndTable(db, "A1")
	url := fmt.Sprintf("/api/v1/tables/%d/session", table.ID)
	doRequest(r, "POST", url, opener, nil)

	// Another waiter cannot touch the session.
	w := doRequest(r, "DELETE", url, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A cashier overrides the lock.
	w = doRequest(r, "DELETE", url, cashier, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMergeAndUnmergeTables(t *testing.T) {
	db := setupTestDB(t, "merge_tables")
	r := setupRouter(db)
	waiter := bearerToken(t, 1, "waiter")

	primary := seedFloorAndTable(db, "A1")
	extra := seedFloorAndTable(db, "A2")
	fixed := seedFloorAndTable(db, "A3")
	db.Model(&fixed).Update("is_mergeable", false)

	doRequest(r, "POST", fmt.Sprintf("/api/v1/tables/%d/session", primary.ID), waiter, nil)

	// A bolted-down table cannot join.
	w := doRequest(r, "POST", fmt.Sprintf("/api/v1/tables/%d/merge", primary.ID), waiter,
		map[string]interface{}{"table_ids": []uint{fixed.ID}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(r, "POST", fmt.Sprintf("/api/v1/tables/%d/merge", primary.ID), waiter,
		map[string]interface{}{"table_ids": []uint{extra.ID}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Tables merged", parseResponse(t, w)["message"])

	var merged models.Table
	db.First(&merged, extra.ID)
	assert.Equal(t, models.TableOccupied, merged.Status)

	// A merged table cannot host its own session.
	w = doRequest(r, "POST", fmt.Sprintf("/api/v1/tables/%d/session", extra.ID), waiter, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(r, "POST", fmt.Sprintf("/api/v1/tables/%d/unmerge", primary.ID), waiter, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&merged, extra.ID)
	assert.Equal(t, models.TableAvailable, merged.Status)

	var count int64
	db.Model(&models.TableMerge{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestEndSessionReleasesMergedTables(t *testing.T) {
	db := setupTestDB(t, "end_releases_merges")
	r := setupRouter(db)
	waiter := bearerToken(t, 1, "waiter")

	primary := seedFloorAndTable(db, "A1")
	extra := seedFloorAndTable(db, "A2")

	url := fmt.Sprintf("/api/v1/tables/%d/session", primary.ID)
	doRequest(r, "POST", url, waiter, nil)
	doRequest(r, "POST", fmt.Sprintf("/api/v1/tables/%d/merge", primary.ID), waiter,
		map[string]interface{}{"table_ids": []uint{extra.ID}})

	w := doRequest(r, "DELETE", url, waiter, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var released models.Table
	db.First(&released, extra.ID)
	assert.Equal(t, models.TableAvailable, released.Status)
}

func TestAuthRequired(t *testing.T) {
	db := setupTestDB(t, "auth_required")
	r := setupRouter(db)

	w := doRequest(r, "GET", "/api/v1/tables", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
