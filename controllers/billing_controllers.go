package controllers

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dineflow/pos-backend/config"
	"github.com/dineflow/pos-backend/models"
	"github.com/dineflow/pos-backend/realtime"
	"github.com/dineflow/pos-backend/services"
	"github.com/dineflow/pos-backend/utils"
)

type BillingController struct {
	DB        *gorm.DB
	Publisher realtime.Publisher
}

func NewBillingController(db *gorm.DB, publisher realtime.Publisher) *BillingController {
	return &BillingController{DB: db, Publisher: publisher}
}

// GenerateBill freezes the order into an invoice. Allowed once every item is
// served; regenerating is allowed only while every earlier invoice on the
// order is cancelled.
func (bc *BillingController) GenerateBill(c *gin.Context) {
	var req struct {
		ApplyServiceCharge bool   `json:"apply_service_charge"`
		CustomerName       string `json:"customer_name"`
		CustomerGstin      string `json:"customer_gstin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !isEmptyBody(err) {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := actorFrom(c)
	var invoice models.Invoice
	var order models.Order
	var table *models.Table

	err := bc.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockOrder(tx, c.Param("order_id"), &order); err != nil {
			return err
		}
		if err := guardOrder(tx, &order, actor); err != nil {
			return err
		}

		switch order.Status {
		case models.OrderServed:
		case models.OrderBilling:
			// Re-billing only when no live invoice remains.
			var live int64
			if err := tx.Model(&models.Invoice{}).
				Where("order_id = ? AND is_cancelled = ?", order.ID, false).
				Count(&live).Error; err != nil {
				return err
			}
			if live > 0 {
				return ErrOrderNotServed
			}
		default:
			return ErrOrderNotServed
		}

		var items []models.OrderItem
		if err := tx.Preload("Menu.TaxGroup.Components").
			Where("order_id = ? AND status <> ?", order.ID, models.ItemCancelled).
			Order("id asc").
			Find(&items).Error; err != nil {
			return err
		}

		lines := make([]services.BillLine, 0, len(items))
		for _, item := range items {
			line := services.BillLine{
				MenuID:    item.MenuID,
				Name:      item.Menu.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.Price,
				Total:     item.Total,
			}
			for _, comp := range item.Menu.TaxGroup.Components {
				line.Components = append(line.Components, services.TaxRate{
					Code: comp.Code,
					Rate: comp.Rate,
				})
			}
			lines = append(lines, line)
		}

		var discounts []models.Discount
		if err := tx.Where("order_id = ?", order.ID).Find(&discounts).Error; err != nil {
			return err
		}

		opts := services.BillOptions{
			OrderType:          order.OrderType,
			ApplyServiceCharge: req.ApplyServiceCharge,
			CustomerGstin:      req.CustomerGstin,
			ServiceChargeRate:  config.ServiceChargeRate(),
		}
		bd, err := services.ComputeBill(lines, services.SumDiscounts(discounts, order.Subtotal), opts)
		if err != nil {
			return err
		}

		number, err := nextInvoiceNumber(tx, time.Now())
		if err != nil {
			return err
		}

		invoice = models.Invoice{
			InvoiceNumber:      number,
			OrderID:            order.ID,
			OutletID:           order.OutletID,
			Subtotal:           bd.Subtotal,
			DiscountAmount:     bd.DiscountAmount,
			TaxableAmount:      bd.TaxableAmount,
			TotalTax:           bd.TotalTax,
			ServiceCharge:      bd.ServiceCharge,
			RoundOff:           bd.RoundOff,
			GrandTotal:         bd.GrandTotal,
			ApplyServiceCharge: req.ApplyServiceCharge,
			ServiceChargeRate:  opts.ServiceChargeRate,
			CustomerName:       req.CustomerName,
			CustomerGstin:      req.CustomerGstin,
			PaymentStatus:      models.PaymentPending,
		}
		for _, line := range lines {
			invoice.Items = append(invoice.Items, models.InvoiceItem{
				MenuID:    line.MenuID,
				Name:      line.Name,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Total:     line.Total,
			})
		}
		for _, t := range bd.Taxes {
			invoice.Taxes = append(invoice.Taxes, models.InvoiceTax{
				Code:          t.Code,
				Rate:          t.Rate,
				TaxableAmount: t.TaxableAmount,
				Amount:        t.Amount,
			})
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		order.Status = models.OrderBilling
		order.Subtotal = bd.Subtotal
		order.DiscountAmount = bd.DiscountAmount
		order.TaxAmount = bd.TotalTax
		order.GrandTotal = bd.GrandTotal
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		if order.TableID != nil {
			var t models.Table
			if err := lockTable(tx, *order.TableID, &t); err != nil {
				return err
			}
			t.Status = models.TableBilling
			if err := tx.Save(&t).Error; err != nil {
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

	bc.publishBill(c, invoice)
	if table != nil {
		bc.Publisher.Publish(c.Request.Context(), realtime.Event{
			Type:     realtime.EventTableUpdate,
			OutletID: table.OutletID,
			FloorID:  table.FloorID,
			Data:     table,
		})
	}
	utils.InfoLogger.Printf("invoice %s generated for order %d by actor %d",
		invoice.InvoiceNumber, order.ID, actor.ID)
	utils.RespondJSON(c, http.StatusCreated, "Bill generated", invoice)
}

// UpdateCharges toggles GST and service charge on an unpaid invoice. Both
// directions re-derive from the frozen tax rows, so removing and restoring a
// charge always lands back on the original figure. Payment status is checked
// under lock on every call.
func (bc *BillingController) UpdateCharges(c *gin.Context) {
	var req struct {
		RemoveGst           *bool  `json:"remove_gst"`
		RemoveServiceCharge *bool  `json:"remove_service_charge"`
		CustomerGstin       string `json:"customer_gstin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var invoice models.Invoice
	err := bc.DB.Transaction(func(tx *gorm.DB) error {
		if err := withRowLock(tx).Preload("Taxes").Preload("Order").
			First(&invoice, c.Param("invoice_id")).Error; err != nil {
			return err
		}
		if invoice.PaymentStatus == models.PaymentPaid {
			return ErrCannotModifyPaidInvoice
		}
		if invoice.IsCancelled {
			return ErrInvoiceAlreadyCancelled
		}

		if req.CustomerGstin != "" {
			invoice.CustomerGstin = req.CustomerGstin
		}
		if req.RemoveGst != nil {
			if *req.RemoveGst && invoice.CustomerGstin == "" {
				return services.ErrMissingGstinForTaxRemoval
			}
			invoice.GstRemoved = *req.RemoveGst
		}
		if req.RemoveServiceCharge != nil {
			invoice.ServiceChargeRemoved = *req.RemoveServiceCharge
		}

		// Re-derive every dependent figure from the frozen rows.
		invoice.TotalTax = 0
		if !invoice.GstRemoved {
			for _, t := range invoice.Taxes {
				invoice.TotalTax += t.Amount
			}
			invoice.TotalTax = services.Round2(invoice.TotalTax)
		}
		invoice.ServiceCharge = 0
		if invoice.ApplyServiceCharge && !invoice.ServiceChargeRemoved &&
			invoice.Order.OrderType == models.OrderTypeDineIn {
			invoice.ServiceCharge = services.Round2(invoice.TaxableAmount * invoice.ServiceChargeRate)
		}
		raw := invoice.TaxableAmount + invoice.TotalTax + invoice.ServiceCharge
		invoice.GrandTotal = math.Round(raw)
		invoice.RoundOff = services.Round2(invoice.GrandTotal - raw)

		// The preloaded rows are the frozen source figures; never write them
		// back.
		return tx.Omit(clause.Associations).Save(&invoice).Error
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	bc.publishBill(c, invoice)
	utils.RespondJSON(c, http.StatusOK, "Charges updated", invoice)
}

// ApplyDiscount attaches a manual flat or percentage discount to an order.
// Discounts are frozen once the order is billed.
func (bc *BillingController) ApplyDiscount(c *gin.Context) {
	var req struct {
		Type  string  `json:"type" binding:"required"`
		Value float64 `json:"value" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := actorFrom(c)
	var order models.Order
	var discount models.Discount

	err := bc.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockOrder(tx, c.Param("order_id"), &order); err != nil {
			return err
		}
		if err := assertOrderDiscountable(tx, &order, actor); err != nil {
			return err
		}

		amount, err := services.ResolveManualDiscount(req.Type, req.Value, order.Subtotal)
		if err != nil {
			return err
		}
		discount = models.Discount{
			OrderID:   order.ID,
			Type:      req.Type,
			Value:     req.Value,
			Amount:    amount,
			AppliedOn: order.Subtotal,
		}
		if err := tx.Create(&discount).Error; err != nil {
			return err
		}
		return refreshOrderDiscount(tx, &order)
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	bc.publishOrder(c, order)
	utils.RespondJSON(c, http.StatusOK, "Discount applied", discount)
}

// ApplyDiscountCode redeems a named discount code against an order. One code
// per order; validity, minimum order and cap come from the code definition.
func (bc *BillingController) ApplyDiscountCode(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := actorFrom(c)
	var order models.Order
	var discount models.Discount

	err := bc.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockOrder(tx, c.Param("order_id"), &order); err != nil {
			return err
		}
		if err := assertOrderDiscountable(tx, &order, actor); err != nil {
			return err
		}

		var def models.DiscountCode
		if err := tx.Where("code = ?", req.Code).First(&def).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return services.ErrInvalidDiscountCode
			}
			return err
		}
		var existing []models.Discount
		if err := tx.Where("order_id = ?", order.ID).Find(&existing).Error; err != nil {
			return err
		}

		amount, err := services.ResolveCodeDiscount(&def, order.Subtotal, existing, time.Now())
		if err != nil {
			return err
		}
		discount = models.Discount{
			OrderID:   order.ID,
			Type:      models.DiscountCodeType,
			Value:     def.Rate,
			Code:      &def.Code,
			Amount:    amount,
			AppliedOn: order.Subtotal,
		}
		if err := tx.Create(&discount).Error; err != nil {
			return err
		}
		return refreshOrderDiscount(tx, &order)
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	bc.publishOrder(c, order)
	utils.RespondJSON(c, http.StatusOK, "Discount code applied", discount)
}

// CancelInvoice voids an unpaid invoice so the order can be re-billed.
func (bc *BillingController) CancelInvoice(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !isEmptyBody(err) {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	actor := actorFrom(c)
	var invoice models.Invoice

	err := bc.DB.Transaction(func(tx *gorm.DB) error {
		if err := withRowLock(tx).First(&invoice, c.Param("invoice_id")).Error; err != nil {
			return err
		}
		if invoice.PaymentStatus == models.PaymentPaid {
			return ErrCannotModifyPaidInvoice
		}
		if invoice.IsCancelled {
			return ErrInvoiceAlreadyCancelled
		}
		invoice.IsCancelled = true
		invoice.CancelReason = req.Reason
		return tx.Save(&invoice).Error
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	bc.publishBill(c, invoice)
	utils.InfoLogger.Printf("invoice %s cancelled by actor %d: %s",
		invoice.InvoiceNumber, actor.ID, req.Reason)
	utils.RespondJSON(c, http.StatusOK, "Invoice cancelled", invoice)
}

// GetPendingBills lists the outlet's unpaid, non-cancelled invoices for the
// cashier screen.
func (bc *BillingController) GetPendingBills(c *gin.Context) {
	actor := actorFrom(c)

	var invoices []models.Invoice
	if err := bc.DB.
		Preload("Order").Preload("Items").Preload("Taxes").Preload("Payments").
		Where("outlet_id = ? AND is_cancelled = ? AND payment_status <> ?",
			actor.OutletID, false, models.PaymentPaid).
		Order("created_at asc").
		Find(&invoices).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pending bills", invoices)
}

// GetInvoiceByID returns one invoice with its full breakdown.
func (bc *BillingController) GetInvoiceByID(c *gin.Context) {
	var invoice models.Invoice
	if err := bc.DB.
		Preload("Order").Preload("Items").Preload("Taxes").Preload("Payments").
		First(&invoice, c.Param("invoice_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invoice detail", invoice)
}

func (bc *BillingController) publishBill(c *gin.Context, invoice models.Invoice) {
	bc.Publisher.Publish(c.Request.Context(), realtime.Event{
		Type:     realtime.EventBillStatus,
		OutletID: invoice.OutletID,
		Role:     "cashier",
		Data:     invoice,
	})
}

func (bc *BillingController) publishOrder(c *gin.Context, order models.Order) {
	bc.Publisher.Publish(c.Request.Context(), realtime.Event{
		Type:     realtime.EventOrderUpdate,
		OutletID: order.OutletID,
		Data:     order,
	})
}

// assertOrderDiscountable rejects discount changes once the order is billed
// or closed; the invoice snapshot would go stale otherwise.
func assertOrderDiscountable(tx *gorm.DB, order *models.Order, actor Actor) error {
	if order.IsTerminal() || order.Status == models.OrderBilling {
		return ErrInvalidStatusTransition
	}
	return guardOrder(tx, order, actor)
}

// refreshOrderDiscount updates the order's cached discount figure.
func refreshOrderDiscount(tx *gorm.DB, order *models.Order) error {
	var discounts []models.Discount
	if err := tx.Where("order_id = ?", order.ID).Find(&discounts).Error; err != nil {
		return err
	}
	order.DiscountAmount = services.SumDiscounts(discounts, order.Subtotal)
	return tx.Save(order).Error
}

// nextInvoiceNumber issues a daily running serial, INV-20260829-00001 style.
func nextInvoiceNumber(tx *gorm.DB, now time.Time) (string, error) {
	prefix := "INV-" + now.Format("20060102")
	var count int64
	if err := tx.Model(&models.Invoice{}).
		Where("invoice_number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%05d", prefix, count+1), nil
}
