package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dineflow/pos-backend/models"
	"github.com/dineflow/pos-backend/realtime"
	"github.com/dineflow/pos-backend/services"
	"github.com/dineflow/pos-backend/utils"
)

type OrderController struct {
	DB        *gorm.DB
	Publisher realtime.Publisher
}

func NewOrderController(db *gorm.DB, publisher realtime.Publisher) *OrderController {
	return &OrderController{DB: db, Publisher: publisher}
}

type orderItemReq struct {
	MenuID   uint   `json:"menu_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Notes    string `json:"notes"`
}

// CreateOrder opens an order. For dine-in the table session is required and
// bootstrapped when missing, so scanning a table and ordering is one step.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req struct {
		TableID    *uint          `json:"table_id"`
		OrderType  string         `json:"order_type"`
		GuestName  string         `json:"guest_name"`
		GuestCount int            `json:"guest_count"`
		Items      []orderItemReq `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.OrderType == "" {
		req.OrderType = models.OrderTypeDineIn
	}
	if req.OrderType == models.OrderTypeDineIn && req.TableID == nil {
		utils.RespondError(c, http.StatusBadRequest, ErrTableUnavailable)
		return
	}

	actor := actorFrom(c)
	var order models.Order
	var table *models.Table

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		order = models.Order{
			OutletID:  actor.OutletID,
			OrderType: req.OrderType,
			Status:    models.OrderConfirmed,
			CreatedBy: actor.ID,
		}

		if req.OrderType == models.OrderTypeDineIn {
			var t models.Table
			if err := lockTable(tx, *req.TableID, &t); err != nil {
				return err
			}
			session, err := activeSession(tx, t.ID)
			if err == ErrNoActiveSession {
				var s models.TableSession
				s, t, err = startSessionTx(tx, t.ID, req.GuestName, req.GuestCount, actor)
				if err != nil {
					return err
				}
				session = &s
			} else if err != nil {
				return err
			} else if err := assertCanMutate(session, actor); err != nil {
				return err
			}
			order.TableID = &t.ID
			order.SessionID = &session.ID
			table = &t

			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			session.OrderID = &order.ID
			if err := tx.Save(session).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
		}

		if len(req.Items) > 0 {
			if err := addItemsTx(tx, &order, req.Items); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	oc.publishOrder(c, order)
	if table != nil {
		oc.Publisher.Publish(c.Request.Context(), realtime.Event{
			Type:     realtime.EventTableUpdate,
			OutletID: table.OutletID,
			FloorID:  table.FloorID,
			Data:     table,
		})
	}
	utils.InfoLogger.Printf("order %d created (%s) by actor %d", order.ID, order.OrderType, actor.ID)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// AddItems appends lines to a running order. The item list is append-only;
// corrections go through CancelItem.
func (oc *OrderController) AddItems(c *gin.Context) {
	var req struct {
		Items []orderItemReq `json:"items" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := actorFrom(c)
	var order models.Order

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockOrder(tx, c.Param("order_id"), &order); err != nil {
			return err
		}
		if order.IsTerminal() {
			return ErrInvalidStatusTransition
		}
		if err := guardOrder(tx, &order, actor); err != nil {
			return err
		}
		return addItemsTx(tx, &order, req.Items)
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	oc.publishOrder(c, order)
	utils.RespondJSON(c, http.StatusOK, "Items added", order)
}

// CancelItem marks one line cancelled. The line stays on the order for audit
// but is excluded from every later total; cancelling the last live item does
// not cancel the order.
func (oc *OrderController) CancelItem(c *gin.Context) {
	actor := actorFrom(c)
	var order models.Order
	var item models.OrderItem

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockOrder(tx, c.Param("order_id"), &order); err != nil {
			return err
		}
		if order.IsTerminal() {
			return ErrInvalidStatusTransition
		}
		if err := guardOrder(tx, &order, actor); err != nil {
			return err
		}

		if err := tx.Where("order_id = ?", order.ID).
			First(&item, c.Param("item_id")).Error; err != nil {
			return err
		}
		if item.Status == models.ItemCancelled {
			return ErrInvalidStatusTransition
		}
		item.Status = models.ItemCancelled
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		return refreshOrderTotals(tx, &order)
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	oc.publishOrder(c, order)
	utils.RespondJSON(c, http.StatusOK, "Item cancelled", item)
}

// CancelOrder is terminal and reachable from any non-terminal state. It
// cascades: the unpaid invoice is cancelled, the session ends and the table
// goes straight back to available.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !isEmptyBody(err) {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := actorFrom(c)
	var order models.Order
	var table *models.Table
	var cancelledInvoice *models.Invoice

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockOrder(tx, c.Param("order_id"), &order); err != nil {
			return err
		}
		if order.IsTerminal() {
			return ErrInvalidStatusTransition
		}
		if err := guardOrder(tx, &order, actor); err != nil {
			return err
		}

		order.Status = models.OrderCancelled
		order.CancelReason = req.Reason
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		// Open kitchen tickets are dead once the order is cancelled.
		if err := tx.Model(&models.KOTTicket{}).
			Where("order_id = ? AND status NOT IN ?", order.ID,
				[]string{models.KOTServed, models.KOTCancelled}).
			Update("status", models.KOTCancelled).Error; err != nil {
			return err
		}

		var invoice models.Invoice
		err := withRowLock(tx).
			Where("order_id = ? AND is_cancelled = ? AND payment_status <> ?",
				order.ID, false, models.PaymentPaid).
			First(&invoice).Error
		if err == nil {
			invoice.IsCancelled = true
			invoice.CancelReason = "order cancelled"
			if err := tx.Save(&invoice).Error; err != nil {
				return err
			}
			cancelledInvoice = &invoice
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		if order.TableID != nil {
			var t models.Table
			if err := lockTable(tx, *order.TableID, &t); err != nil {
				return err
			}
			session, err := activeSession(tx, t.ID)
			if err == nil {
				if err := endSessionTx(tx, session, &t, models.TableAvailable); err != nil {
					return err
				}
			} else if err != ErrNoActiveSession {
				return err
			}
			table = &t
		}
		return nil
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	oc.publishOrder(c, order)
	if table != nil {
		oc.Publisher.Publish(c.Request.Context(), realtime.Event{
			Type:     realtime.EventTableUpdate,
			OutletID: table.OutletID,
			FloorID:  table.FloorID,
			Data:     table,
		})
	}
	if cancelledInvoice != nil {
		oc.Publisher.Publish(c.Request.Context(), realtime.Event{
			Type:     realtime.EventBillStatus,
			OutletID: order.OutletID,
			Role:     "cashier",
			Data:     cancelledInvoice,
		})
	}
	utils.InfoLogger.Printf("order %d cancelled by actor %d: %s", order.ID, actor.ID, req.Reason)
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", order)
}

// GetAllOrders lists the outlet's orders with their items.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	actor := actorFrom(c)

	query := oc.DB.Where("outlet_id = ?", actor.OutletID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Preload("Items").Order("created_at desc").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID returns one order with items, tickets and discounts.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	var order models.Order
	if err := oc.DB.
		Preload("Items").Preload("Items.Menu").
		Preload("Tickets").Preload("Discounts").
		First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetKitchenDisplay gives stations the open orders with their tickets.
func (oc *OrderController) GetKitchenDisplay(c *gin.Context) {
	actor := actorFrom(c)

	var orders []models.Order
	if err := oc.DB.
		Preload("Items").Preload("Tickets").Preload("Tickets.Items").
		Where("outlet_id = ? AND status IN ?", actor.OutletID,
			[]string{models.OrderConfirmed, models.OrderPreparing, models.OrderServed}).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen display orders", orders)
}

func (oc *OrderController) publishOrder(c *gin.Context, order models.Order) {
	oc.Publisher.Publish(c.Request.Context(), realtime.Event{
		Type:     realtime.EventOrderUpdate,
		OutletID: order.OutletID,
		Data:     order,
	})
}

// guardOrder enforces the actor-lock for orders bound to a session.
// Takeaway and delivery orders carry no session and need no lock.
func guardOrder(tx *gorm.DB, order *models.Order, actor Actor) error {
	if order.SessionID == nil {
		return nil
	}
	var session models.TableSession
	if err := tx.First(&session, *order.SessionID).Error; err != nil {
		return err
	}
	return assertCanMutate(&session, actor)
}

// addItemsTx resolves each line against the catalog (price, station, tax
// group are read at add time) and refreshes the order's money cache.
func addItemsTx(tx *gorm.DB, order *models.Order, items []orderItemReq) error {
	for _, req := range items {
		var menu models.MenuItem
		if err := tx.First(&menu, req.MenuID).Error; err != nil {
			return err
		}
		item := models.OrderItem{
			OrderID:  order.ID,
			MenuID:   menu.ID,
			Quantity: req.Quantity,
			Price:    menu.Price,
			Total:    services.Round2(float64(req.Quantity) * menu.Price),
			Notes:    req.Notes,
			Station:  menu.Station,
			Status:   models.ItemPending,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
	}
	return refreshOrderTotals(tx, order)
}

// refreshOrderTotals recomputes the denormalized subtotal from the live
// lines. Tax and grand total are only filled at bill time.
func refreshOrderTotals(tx *gorm.DB, order *models.Order) error {
	if err := tx.Preload("Items").First(order, order.ID).Error; err != nil {
		return err
	}
	order.Subtotal = services.Round2(order.ActiveSubtotal())
	order.UpdatedAt = time.Now()
	return tx.Save(order).Error
}

// lockOrder reads an order row with a write lock.
func lockOrder(tx *gorm.DB, id interface{}, order *models.Order) error {
	return withRowLock(tx).First(order, id).Error
}
