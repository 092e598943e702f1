package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/dineflow/pos-backend/config"
	"github.com/dineflow/pos-backend/models"
	"github.com/dineflow/pos-backend/realtime"
	"github.com/dineflow/pos-backend/router"
	"github.com/dineflow/pos-backend/utils"
)

func main() {
	utils.InitLogger()

	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	autoMigrate(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	hub := realtime.NewHub()
	local := realtime.NewLocalPublisher(hub)

	var publisher realtime.Publisher = local
	if rdb := config.InitRedis(); rdb != nil {
		publisher = realtime.NewBrokerPublisher(rdb, local)
		realtime.NewRelay(rdb, hub).Start(context.Background())
		utils.InfoLogger.Println("Realtime broker connected")
	} else {
		utils.InfoLogger.Println("No broker configured, realtime runs local-only")
	}

	r := router.SetupRouter(db, hub, publisher)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
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
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
