package models

import "time"

const (
	OrderConfirmed = "confirmed"
	OrderPreparing = "preparing"
	OrderServed    = "served"
	OrderBilling   = "billing"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

const (
	OrderTypeDineIn   = "dine_in"
	OrderTypeTakeaway = "takeaway"
	OrderTypeDelivery = "delivery"
)

type Order struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	OutletID  uint          `gorm:"not null;index" json:"outlet_id"`
	TableID   *uint         `gorm:"index" json:"table_id,omitempty"`
	Table     *Table        `gorm:"foreignKey:TableID" json:"table,omitempty"`
	SessionID *uint         `gorm:"index" json:"session_id,omitempty"`
	Session   *TableSession `gorm:"foreignKey:SessionID" json:"session,omitempty"`
	OrderType string        `gorm:"type:varchar(20);not null;default:'dine_in'" json:"order_type"`
	Status    string        `gorm:"type:varchar(20);not null;default:'confirmed'" json:"status"`
	CreatedBy uint          `gorm:"not null" json:"created_by"`

	// Denormalized money cache, recomputed on every bill.
	Subtotal       float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"subtotal"`
	DiscountAmount float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"discount_amount"`
	TaxAmount      float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"tax_amount"`
	GrandTotal     float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"grand_total"`

	CancelReason string      `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`
	Items        []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	Discounts    []Discount  `gorm:"foreignKey:OrderID" json:"discounts,omitempty"`
	Tickets      []KOTTicket `gorm:"foreignKey:OrderID" json:"tickets,omitempty"`
	CreatedAt    time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null" json:"updated_at"`
}

// IsTerminal reports whether the order reached a final state.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderCompleted || o.Status == OrderCancelled
}

// ActiveSubtotal sums the non-cancelled lines; cancelled items stay on the
// order for audit but never count towards money.
func (o *Order) ActiveSubtotal() float64 {
	var total float64
	for _, item := range o.Items {
		if item.Status != ItemCancelled {
			total += item.Total
		}
	}
	return total
}
