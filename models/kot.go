package models

import "time"

// Kitchen order ticket statuses.
const (
	KOTPending   = "pending"
	KOTAccepted  = "accepted"
	KOTPreparing = "preparing"
	KOTReady     = "ready"
	KOTServed    = "served"
	KOTCancelled = "cancelled"
)

// KOTTicket routes a subset of an order's items to one preparation station.
// An order reaches served only when every non-cancelled ticket is served.
type KOTTicket struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"order_id"`
	Order     Order       `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Station   string      `gorm:"type:varchar(50);not null" json:"station"`
	Status    string      `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Items     []OrderItem `gorm:"foreignKey:TicketID" json:"items"`
	CreatedAt time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null" json:"updated_at"`
}
