package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dineflow/pos-backend/models"
	"github.com/dineflow/pos-backend/realtime"
	"github.com/dineflow/pos-backend/services"
	"github.com/dineflow/pos-backend/utils"
)

type PaymentController struct {
	DB        *gorm.DB
	Publisher realtime.Publisher
}

func NewPaymentController(db *gorm.DB, publisher realtime.Publisher) *PaymentController {
	return &PaymentController{DB: db, Publisher: publisher}
}

// CreatePayment records one settlement against an invoice. Partial amounts
// accumulate; once the sum covers the grand total the invoice is paid, the
// order completes and the table is released.
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	var req struct {
		InvoiceID uint    `json:"invoice_id" binding:"required"`
		OrderID   uint    `json:"order_id"`
		Mode      string  `json:"mode" binding:"required,oneof=cash card upi"`
		Amount    float64 `json:"amount" binding:"required,gt=0"`
		Tip       float64 `json:"tip"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := actorFrom(c)
	var payment models.Payment
	var invoice models.Invoice
	var order models.Order
	var table *models.Table

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := withRowLock(tx).First(&invoice, req.InvoiceID).Error; err != nil {
			return err
		}
		if req.OrderID != 0 && req.OrderID != invoice.OrderID {
			return gorm.ErrRecordNotFound
		}
		if invoice.IsCancelled {
			return ErrInvoiceAlreadyCancelled
		}
		if invoice.PaymentStatus == models.PaymentPaid {
			return ErrCannotModifyPaidInvoice
		}

		payment = models.Payment{
			InvoiceID:   invoice.ID,
			OrderID:     invoice.OrderID,
			Mode:        req.Mode,
			Amount:      services.Round2(req.Amount),
			Tip:         services.Round2(req.Tip),
			ReferenceID: uuid.NewString(),
			ReceivedBy:  actor.ID,
			PaidAt:      time.Now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		var paid float64
		if err := tx.Model(&models.Payment{}).
			Where("invoice_id = ?", invoice.ID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&paid).Error; err != nil {
			return err
		}

		if paid >= invoice.GrandTotal {
			invoice.PaymentStatus = models.PaymentPaid
		} else {
			invoice.PaymentStatus = models.PaymentPartial
		}
		if err := tx.Save(&invoice).Error; err != nil {
			return err
		}

		if invoice.PaymentStatus != models.PaymentPaid {
			return nil
		}

		// Fully settled: close the order and free the table.
		if err := lockOrder(tx, invoice.OrderID, &order); err != nil {
			return err
		}
		order.Status = models.OrderCompleted
		if err := tx.Save(&order).Error; err != nil {
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
			} else {
				t.Status = models.TableAvailable
				if err := tx.Save(&t).Error; err != nil {
					return err
				}
			}
			table = &t
		}
		return nil
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	pc.Publisher.Publish(c.Request.Context(), realtime.Event{
		Type:     realtime.EventPaymentUpdate,
		OutletID: invoice.OutletID,
		Role:     "cashier",
		Data:     payment,
	})
	pc.Publisher.Publish(c.Request.Context(), realtime.Event{
		Type:     realtime.EventBillStatus,
		OutletID: invoice.OutletID,
		Role:     "cashier",
		Data:     invoice,
	})
	if invoice.PaymentStatus == models.PaymentPaid {
		pc.Publisher.Publish(c.Request.Context(), realtime.Event{
			Type:     realtime.EventOrderUpdate,
			OutletID: order.OutletID,
			Data:     order,
		})
	}
	if table != nil {
		pc.Publisher.Publish(c.Request.Context(), realtime.Event{
			Type:     realtime.EventTableUpdate,
			OutletID: table.OutletID,
			FloorID:  table.FloorID,
			Data:     table,
		})
	}

	utils.InfoLogger.Printf("payment %.2f (%s) on invoice %d by actor %d, status %s",
		payment.Amount, payment.Mode, invoice.ID, actor.ID, invoice.PaymentStatus)
	utils.RespondJSON(c, http.StatusCreated, "Payment recorded", gin.H{
		"payment": payment,
		"invoice": invoice,
	})
}

// GetPayments lists settlements, optionally filtered by invoice.
func (pc *PaymentController) GetPayments(c *gin.Context) {
	query := pc.DB.Order("paid_at desc")
	if id := c.Query("invoice_id"); id != "" {
		query = query.Where("invoice_id = ?", id)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of payments", payments)
}
