package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dineflow/pos-backend/models"
	"github.com/dineflow/pos-backend/realtime"
	"github.com/dineflow/pos-backend/utils"
)

type KOTController struct {
	DB        *gorm.DB
	Publisher realtime.Publisher
}

func NewKOTController(db *gorm.DB, publisher realtime.Publisher) *KOTController {
	return &KOTController{DB: db, Publisher: publisher}
}

// SendKOT groups every pending item by destination station into one ticket
// per station. The first ticket moves the order to preparing and the table
// to running; later tickets on the same order change neither.
func (kc *KOTController) SendKOT(c *gin.Context) {
	actor := actorFrom(c)
	var order models.Order
	var tickets []models.KOTTicket
	var table *models.Table

	err := kc.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockOrder(tx, c.Param("order_id"), &order); err != nil {
			return err
		}
		if order.IsTerminal() || order.Status == models.OrderBilling {
			return ErrInvalidStatusTransition
		}
		if err := guardOrder(tx, &order, actor); err != nil {
			return err
		}

		var pending []models.OrderItem
		if err := tx.Where("order_id = ? AND status = ?", order.ID, models.ItemPending).
			Order("id asc").Find(&pending).Error; err != nil {
			return err
		}
		if len(pending) == 0 {
			return ErrInvalidStatusTransition
		}

		byStation := make(map[string][]models.OrderItem)
		var stations []string
		for _, item := range pending {
			if _, seen := byStation[item.Station]; !seen {
				stations = append(stations, item.Station)
			}
			byStation[item.Station] = append(byStation[item.Station], item)
		}

		for _, station := range stations {
			ticket := models.KOTTicket{
				OrderID: order.ID,
				Station: station,
				Status:  models.KOTPending,
			}
			if err := tx.Create(&ticket).Error; err != nil {
				return err
			}
			group := byStation[station]
			for i := range group {
				group[i].TicketID = &ticket.ID
				group[i].Status = models.ItemSent
				if err := tx.Save(&group[i]).Error; err != nil {
					return err
				}
			}
			ticket.Items = group
			tickets = append(tickets, ticket)
		}

		if order.Status == models.OrderConfirmed || order.Status == models.OrderServed {
			// A late ticket on a served order puts the order back in the
			// kitchen until every non-cancelled ticket is served again.
			order.Status = models.OrderPreparing
			if err := tx.Save(&order).Error; err != nil {
				return err
			}
			if order.TableID != nil {
				var t models.Table
				if err := lockTable(tx, *order.TableID, &t); err != nil {
					return err
				}
				if t.Status == models.TableOccupied {
					t.Status = models.TableRunning
					if err := tx.Save(&t).Error; err != nil {
						return err
					}
					table = &t
				}
			}
		}
		return nil
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	for _, ticket := range tickets {
		kc.Publisher.Publish(c.Request.Context(), realtime.Event{
			Type:     realtime.EventKOTUpdate,
			OutletID: order.OutletID,
			Station:  ticket.Station,
			Data:     ticket,
		})
	}
	kc.Publisher.Publish(c.Request.Context(), realtime.Event{
		Type:     realtime.EventOrderUpdate,
		OutletID: order.OutletID,
		Data:     order,
	})
	if table != nil {
		kc.Publisher.Publish(c.Request.Context(), realtime.Event{
			Type:     realtime.EventTableUpdate,
			OutletID: table.OutletID,
			FloorID:  table.FloorID,
			Data:     table,
		})
	}
	utils.InfoLogger.Printf("order %d: %d ticket(s) sent", order.ID, len(tickets))
	utils.RespondJSON(c, http.StatusCreated, "Tickets sent", tickets)
}

// ticket transitions allowed per target status
var ticketTransitions = map[string][]string{
	models.KOTAccepted:  {models.KOTPending},
	models.KOTPreparing: {models.KOTPending, models.KOTAccepted},
	models.KOTReady:     {models.KOTPending, models.KOTAccepted, models.KOTPreparing},
	models.KOTServed:    {models.KOTReady},
}

// UpdateTicketStatus drives one ticket forward. When the last non-cancelled
// ticket of the order reaches served, the order itself becomes served.
func (kc *KOTController) UpdateTicketStatus(c *gin.Context) {
	target := c.Param("status")
	allowedFrom, ok := ticketTransitions[target]
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidStatusTransition)
		return
	}

	var ticket models.KOTTicket
	var order models.Order
	orderServed := false

	err := kc.DB.Transaction(func(tx *gorm.DB) error {
		if err := withRowLock(tx).First(&ticket, c.Param("kot_id")).Error; err != nil {
			return err
		}
		if !contains(allowedFrom, ticket.Status) {
			return ErrInvalidStatusTransition
		}
		ticket.Status = target
		if err := tx.Save(&ticket).Error; err != nil {
			return err
		}

		itemStatus := map[string]string{
			models.KOTReady:  models.ItemReady,
			models.KOTServed: models.ItemServed,
		}[target]
		if itemStatus != "" {
			if err := tx.Model(&models.OrderItem{}).
				Where("ticket_id = ? AND status <> ?", ticket.ID, models.ItemCancelled).
				Update("status", itemStatus).Error; err != nil {
				return err
			}
		}

		if err := lockOrder(tx, ticket.OrderID, &order); err != nil {
			return err
		}
		if target == models.KOTServed && order.Status == models.OrderPreparing {
			var open int64
			if err := tx.Model(&models.KOTTicket{}).
				Where("order_id = ? AND status NOT IN ?", order.ID,
					[]string{models.KOTServed, models.KOTCancelled}).
				Count(&open).Error; err != nil {
				return err
			}
			if open == 0 {
				order.Status = models.OrderServed
				if err := tx.Save(&order).Error; err != nil {
					return err
				}
				orderServed = true
			}
		}
		return nil
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	kc.Publisher.Publish(c.Request.Context(), realtime.Event{
		Type:     realtime.EventKOTUpdate,
		OutletID: order.OutletID,
		Station:  ticket.Station,
		Data:     ticket,
	})
	if orderServed {
		kc.Publisher.Publish(c.Request.Context(), realtime.Event{
			Type:     realtime.EventOrderUpdate,
			OutletID: order.OutletID,
			Data:     order,
		})
	}
	utils.RespondJSON(c, http.StatusOK, "Ticket updated", ticket)
}

// GetStationTickets lists the open tickets for one station's queue.
func (kc *KOTController) GetStationTickets(c *gin.Context) {
	var tickets []models.KOTTicket
	if err := kc.DB.Preload("Items").Preload("Items.Menu").
		Where("station = ? AND status NOT IN ?", c.Param("station"),
			[]string{models.KOTServed, models.KOTCancelled}).
		Order("created_at asc").
		Find(&tickets).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Station tickets", tickets)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
