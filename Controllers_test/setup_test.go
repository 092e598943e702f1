package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dineflow/pos-backend/models"
	"github.com/dineflow/pos-backend/realtime"
	"github.com/dineflow/pos-backend/router"
	"github.com/dineflow/pos-backend/utils"
)

// setupTestDB opens a named in-memory SQLite database. Each test uses its own
// name so state never leaks between tests, while cache=shared keeps the
// database alive across the pool's connections.
func setupTestDB(t *testing.T, name string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Floor{},
		&models.Table{},
		&models.TableSession{},
		&models.TableMerge{},
		&models.TaxGroup{},
		&models.TaxComponent{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.KOTTicket{},
		&models.Discount{},
		&models.DiscountCode{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.InvoiceTax{},
		&models.Payment{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	hub := realtime.NewHub()
	return router.SetupRouter(db, hub, realtime.NewLocalPublisher(hub))
}

func bearerToken(t *testing.T, actorID uint, role string) string {
	token, err := utils.GenerateToken(actorID, role, 1)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return "Bearer " + token
}

func doRequest(r *gin.Engine, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		payload, _ := json.Marshal(body)
		buf = bytes.NewBuffer(payload)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, url, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
	}
	return response
}

// seedFloorAndTable creates one floor with one available table.
func seedFloorAndTable(db *gorm.DB, tableNumber string) models.Table {
	var floor models.Floor
	db.FirstOrCreate(&floor, models.Floor{OutletID: 1, Name: "Ground"})
	table := models.Table{
		OutletID:    1,
		FloorID:     floor.ID,
		TableNumber: tableNumber,
		Capacity:    4,
		IsMergeable: true,
		Status:      models.TableAvailable,
	}
	db.Create(&table)
	return table
}

// seedMenu creates a GST 5% tax group plus two menu items, one per station.
func seedMenu(db *gorm.DB) (models.MenuItem, models.MenuItem) {
	group := models.TaxGroup{
		Name: "GST 5",
		Components: []models.TaxComponent{
			{Code: "CGST", Rate: 2.5},
			{Code: "SGST", Rate: 2.5},
		},
	}
	db.Create(&group)

	food := models.MenuItem{
		OutletID: 1, Name: "Paneer Tikka", Price: 169.50,
		Station: "kitchen", TaxGroupID: group.ID, IsActive: true,
	}
	drink := models.MenuItem{
		OutletID: 1, Name: "Fresh Lime Soda", Price: 80.00,
		Station: "bar", TaxGroupID: group.ID, IsActive: true,
	}
	db.Create(&food)
	db.Create(&drink)
	return food, drink
}

// createDineInOrder places an order through the API and returns its ID.
func createDineInOrder(t *testing.T, r *gin.Engine, token string, tableID uint, items []map[string]interface{}) uint {
	w := doRequest(r, "POST", "/api/v1/orders", token, map[string]interface{}{
		"table_id":   tableID,
		"order_type": "dine_in",
		"guest_name": "Walk-in",
		"items":      items,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create order failed: %d %s", w.Code, w.Body.String())
	}
	data := parseResponse(t, w)["data"].(map[string]interface{})
	return uint(data["id"].(float64))
}

// serveOrder drives every ticket of the order to served through the API.
func serveOrder(t *testing.T, r *gin.Engine, db *gorm.DB, token string, orderID uint) {
	w := doRequest(r, "POST", fmt.Sprintf("/api/v1/orders/%d/kot", orderID), token, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("send kot failed: %d %s", w.Code, w.Body.String())
	}

	var tickets []models.KOTTicket
	db.Where("order_id = ?", orderID).Find(&tickets)
	for _, ticket := range tickets {
		for _, status := range []string{"ready", "served"} {
			w := doRequest(r, "PATCH", fmt.Sprintf("/api/v1/kots/%d/%s", ticket.ID, status), token, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("ticket %d -> %s failed: %d %s", ticket.ID, status, w.Code, w.Body.String())
			}
		}
	}
}
