package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dineflow/pos-backend/controllers"
	"github.com/dineflow/pos-backend/middlewares"
	"github.com/dineflow/pos-backend/realtime"
)

// SetupRouter wires every endpoint. The websocket stream authenticates via
// query token because browsers cannot set headers on an upgrade request;
// everything else carries a Bearer token.
func SetupRouter(db *gorm.DB, hub *realtime.Hub, publisher realtime.Publisher) *gin.Engine {
	r := gin.Default()
	r.Use(middlewares.CORSMiddleware())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(50, 100).RateLimit())

	tableCtrl := controllers.NewTableController(db, publisher)
	sessionCtrl := controllers.NewSessionController(db, publisher)
	orderCtrl := controllers.NewOrderController(db, publisher)
	kotCtrl := controllers.NewKOTController(db, publisher)
	billingCtrl := controllers.NewBillingController(db, publisher)
	paymentCtrl := controllers.NewPaymentController(db, publisher)
	streamCtrl := controllers.NewStreamController(hub, publisher)

	r.GET("/health", streamCtrl.Health)
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(), streamCtrl.Stream)

	api := r.Group("/api/v1")
	api.Use(middlewares.AuthMiddleware())
	{
		api.POST("/tables", tableCtrl.CreateTable)
		api.GET("/tables", tableCtrl.GetAllTables)
		api.GET("/tables/:table_id", tableCtrl.GetTableByID)
		api.PATCH("/tables/:table_id/clean", tableCtrl.MarkTableClean)

		api.POST("/tables/:table_id/session", sessionCtrl.StartSession)
		api.DELETE("/tables/:table_id/session", sessionCtrl.EndSession)
		api.POST("/tables/:table_id/merge", sessionCtrl.MergeTables)
		api.POST("/tables/:table_id/unmerge", sessionCtrl.UnmergeTables)

		api.POST("/orders", orderCtrl.CreateOrder)
		api.GET("/orders", orderCtrl.GetAllOrders)
		api.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		api.POST("/orders/:order_id/items", orderCtrl.AddItems)
		api.POST("/orders/:order_id/items/:item_id/cancel", orderCtrl.CancelItem)
		api.POST("/orders/:order_id/cancel", orderCtrl.CancelOrder)

		api.POST("/orders/:order_id/kot", kotCtrl.SendKOT)
		api.GET("/stations/:station/kots", kotCtrl.GetStationTickets)
		api.PATCH("/kots/:kot_id/:status", kotCtrl.UpdateTicketStatus)
		api.GET("/kitchen/display", orderCtrl.GetKitchenDisplay)

		api.POST("/orders/:order_id/bill", billingCtrl.GenerateBill)
		api.POST("/orders/:order_id/discount", billingCtrl.ApplyDiscount)
		api.POST("/orders/:order_id/discount/code", billingCtrl.ApplyDiscountCode)
		api.GET("/invoices/:invoice_id", billingCtrl.GetInvoiceByID)
		api.PUT("/invoices/:invoice_id/charges", billingCtrl.UpdateCharges)
		api.POST("/invoices/:invoice_id/cancel", billingCtrl.CancelInvoice)
		api.GET("/billing/pending", billingCtrl.GetPendingBills)

		api.POST("/payments", paymentCtrl.CreatePayment)
		api.GET("/payments", paymentCtrl.GetPayments)
	}

	return r
}
